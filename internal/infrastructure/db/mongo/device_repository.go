package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tableserve/pos-portal/internal/core/domain"
)

const collectionDevices = "pos_devices"

type DeviceRepository struct {
	col *mongo.Collection
}

func NewDeviceRepository(db *mongo.Database) *DeviceRepository {
	return &DeviceRepository{col: db.Collection(collectionDevices)}
}

// Get retrieves a device by id, optionally filtered by tenant for the
// admin-track scoping.
func (r *DeviceRepository) Get(ctx context.Context, id string, tenantID string) (*domain.Device, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": id}
	if tenantID != "" {
		filter["tenant_id"] = tenantID
	}

	var d domain.Device
	err := r.col.FindOne(ctx, filter).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDeviceNotFound
		}
		return nil, err
	}
	return &d, nil
}

// FindByIDs returns the tenant's devices among ids; unknown ids are skipped.
func (r *DeviceRepository) FindByIDs(ctx context.Context, tenantID string, ids []string) ([]domain.Device, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{
		"_id":       bson.M{"$in": ids},
		"tenant_id": tenantID,
	})
	if err != nil {
		return nil, err
	}

	var devices []domain.Device
	if err := cur.All(ctx, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// FindByBranch returns the branch's devices, optionally only the active ones.
func (r *DeviceRepository) FindByBranch(ctx context.Context, tenantID, branchID string, activeOnly bool) ([]domain.Device, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"tenant_id": tenantID, "branch_id": branchID}
	if activeOnly {
		filter["is_active"] = true
	}

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	var devices []domain.Device
	if err := cur.All(ctx, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// List returns devices matching the tenant filter (empty = all tenants) and
// optional stored status.
func (r *DeviceRepository) List(ctx context.Context, tenantID string, status domain.DeviceStatus) ([]domain.Device, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if tenantID != "" {
		filter["tenant_id"] = tenantID
	}
	if status != "" {
		filter["status"] = status
	}

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	var devices []domain.Device
	if err := cur.All(ctx, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// Update persists the device guarded by an optimistic version check: the
// filter pins the version read earlier, and the update bumps it. A miss means
// another writer got there first and surfaces as domain.ErrVersionConflict.
func (r *DeviceRepository) Update(ctx context.Context, d *domain.Device) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": d.ID, "version": d.Version},
		bson.M{
			"$set": bson.M{
				"status":     d.Status,
				"is_active":  d.IsActive,
				"last_seen":  d.LastSeen,
				"ip_address": d.IPAddress,
			},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrVersionConflict
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the devices collection.
func (r *DeviceRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "branch_id", Value: 1}, {Key: "is_active", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
