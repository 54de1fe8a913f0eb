package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tableserve/pos-portal/internal/core/domain"
)

const (
	collectionCategories = "categories"
	collectionProducts   = "products"
)

type CatalogRepository struct {
	categories *mongo.Collection
	products   *mongo.Collection
}

func NewCatalogRepository(db *mongo.Database) *CatalogRepository {
	return &CatalogRepository{
		categories: db.Collection(collectionCategories),
		products:   db.Collection(collectionProducts),
	}
}

// ListCategories returns the branch's categories. Active-state and device
// filtering happens in the service layer so the predicate stays in one place.
func (r *CatalogRepository) ListCategories(ctx context.Context, tenantID, branchID string) ([]domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.categories.Find(ctx, bson.M{"tenant_id": tenantID, "branch_id": branchID})
	if err != nil {
		return nil, err
	}

	var categories []domain.Category
	if err := cur.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// ListProducts returns the tenant's full product collection.
func (r *CatalogRepository) ListProducts(ctx context.Context, tenantID string) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.products.Find(ctx, bson.M{"tenant_id": tenantID})
	if err != nil {
		return nil, err
	}

	var products []domain.Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// FindCategory retrieves one category scoped to the tenant.
func (r *CatalogRepository) FindCategory(ctx context.Context, tenantID, categoryID string) (*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var c domain.Category
	err := r.categories.FindOne(ctx, bson.M{"_id": categoryID, "tenant_id": tenantID}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return &c, nil
}

// EnsureIndexes creates necessary indexes on the catalog collections.
func (r *CatalogRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.categories.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "branch_id", Value: 1}, {Key: "is_active", Value: 1}, {Key: "display_order", Value: 1}}},
	})
	if err != nil {
		return err
	}

	_, err = r.products.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "is_active", Value: 1}, {Key: "is_available", Value: 1}}},
		{Keys: bson.D{{Key: "category_id", Value: 1}}},
		{Keys: bson.D{{Key: "sku", Value: 1}}},
	})
	return err
}
