package store

import (
	"context"
	"fmt"

	"transvalia/dispatch/internal/models/entities"
)

// Store is the persistence contract shared by the local and Postgres
// backends. Business rules (duplicate-record guard, usage-upsert
// orchestration) live above this interface and never branch on the backend.
//
// AddRecord does not enforce the one-record-per-route-per-day rule by itself;
// the service layer checks first. The backends still carry a uniqueness
// safeguard for the race between two near-simultaneous submissions and map it
// to ErrDuplicateRecord.
type Store interface {
	// GetRoutes returns all route templates. An empty store is seeded with
	// the fixed default list first, so the first call never returns an empty
	// slice.
	GetRoutes(ctx context.Context) ([]entities.RouteTemplate, error)
	AddRoute(ctx context.Context, route entities.RouteTemplate) (*entities.RouteTemplate, error)
	// DeleteRoute is idempotent and never cascades to historical records.
	DeleteRoute(ctx context.Context, routeID string) error

	// GetRecords returns all dispatch records, most recent first.
	GetRecords(ctx context.Context) ([]entities.RouteRecord, error)
	AddRecord(ctx context.Context, record entities.RouteRecord) (*entities.RouteRecord, error)
	// UpdateRecord replaces all mutable fields of the record with the given
	// id. Returns ErrNotFound when the id does not exist.
	UpdateRecord(ctx context.Context, record entities.RouteRecord) (*entities.RouteRecord, error)
	// DeleteRecord is idempotent; deleting a missing id is a success.
	DeleteRecord(ctx context.Context, recordID string) error

	// Reference getters return entries ordered by last use, most recent
	// first, to back the quick-pick UIs.
	GetDrivers(ctx context.Context) ([]entities.SavedDriver, error)
	GetTractors(ctx context.Context) ([]entities.SavedTractor, error)
	GetTrailers(ctx context.Context) ([]entities.SavedTrailer, error)
	GetVans(ctx context.Context) ([]entities.SavedVan, error)

	// Save* are atomic upserts keyed on the natural key: first use creates a
	// row with usage count 1, every later use increments the count and
	// refreshes the last-used timestamp in a single conditional write.
	SaveDriver(ctx context.Context, in SaveDriverInput) (*entities.SavedDriver, error)
	SaveTractor(ctx context.Context, in SaveVehicleInput) (*entities.SavedTractor, error)
	SaveTrailer(ctx context.Context, in SaveVehicleInput) (*entities.SavedTrailer, error)
	SaveVan(ctx context.Context, in SaveVehicleInput) (*entities.SavedVan, error)

	// Ping reports backend reachability for the health check. It never
	// triggers the lazy bootstrap of the remote backend.
	Ping(ctx context.Context) error
}

// SaveDriverInput carries the fields of a driver upsert. Name and phone are
// overwritten on every use; dni and route id form the natural key.
type SaveDriverInput struct {
	Name    string
	DNI     string
	Phone   string
	RouteID string
}

// SaveVehicleInput carries the fields of a tractor/trailer/van upsert.
type SaveVehicleInput struct {
	Plate   string
	RouteID string
}

// Backend selectors accepted by New.
const (
	BackendLocal    = "local"
	BackendPostgres = "postgres"
)

// New constructs the store implementation for a selector string. The Postgres
// backend connects lazily on first use, so a missing DATABASE_URL is not an
// error here.
func New(backend string, opts Options) (Store, error) {
	switch backend {
	case BackendLocal:
		return NewLocalStore(opts.LocalPath)
	case "", BackendPostgres:
		return NewPostgresStore(opts.DatabaseURL), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", backend)
	}
}

// Options carries backend configuration resolved by the caller.
type Options struct {
	// DatabaseURL is the Postgres connection string. Checked on first remote
	// operation, not at construction time.
	DatabaseURL string
	// LocalPath is the sqlite file backing the local store. ":memory:" is
	// accepted for tests.
	LocalPath string
}
