package queue

import (
	"context"
	"errors"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/tableserve/pos-portal/internal/core/domain"
	"github.com/tableserve/pos-portal/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Dispatcher routes batch-ingested heartbeats to a fixed set of workers using
// consistent hashing on the device id, guaranteeing per-device ordering.
// Pings are applied through the device service, so the CAS and throttle
// semantics are identical to single heartbeats.
type Dispatcher struct {
	workers []chan ports.HeartbeatPing
	service ports.DeviceService
	scope   ports.AdminScope
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used. The scope is applied to every
// ping (batch ingestion runs on the admin track).
func NewDispatcher(numWorkers int, service ports.DeviceService, scope ports.AdminScope, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.HeartbeatPing, numWorkers),
		service: service,
		scope:   scope,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.HeartbeatPing, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a ping to the worker responsible for its device.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(ping ports.HeartbeatPing) {
	d.workers[d.shardIndex(ping.DeviceID)] <- ping
}

// EnqueueBatch enqueues multiple pings preserving per-device ordering.
func (d *Dispatcher) EnqueueBatch(pings []ports.HeartbeatPing) {
	for _, p := range pings {
		d.Enqueue(p)
	}
}

// shardIndex maps a device id deterministically to a worker index.
func (d *Dispatcher) shardIndex(deviceID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(deviceID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.HeartbeatPing) {
	for {
		select {
		case <-ctx.Done():
			return
		case ping, ok := <-ch:
			if !ok {
				return
			}
			if _, err := d.service.Heartbeat(ctx, d.scope, ping.DeviceID, ping.IPAddress); err != nil {
				// Pings from deactivated or unknown devices are expected noise
				// in a batch; anything else is worth a real error.
				var scopeErr *domain.ScopeError
				if errors.As(err, &scopeErr) || errors.Is(err, domain.ErrDeviceNotFound) {
					d.log.Debug().Err(err).
						Str("device_id", ping.DeviceID).
						Int("worker_id", id).
						Msg("heartbeat skipped")
					continue
				}
				d.log.Error().Err(err).
					Str("device_id", ping.DeviceID).
					Int("worker_id", id).
					Msg("heartbeat processing failed")
			}
		}
	}
}
