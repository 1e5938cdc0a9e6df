package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"transvalia/dispatch/internal/constants"
	"transvalia/dispatch/internal/logging"
	"transvalia/dispatch/internal/models/entities"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresStore is the remote backend. The connection and the schema
// bootstrap are lazy: nothing touches the network until the first operation,
// and a missing connection string only surfaces then.
type PostgresStore struct {
	dsn  string
	db   *sqlx.DB
	init lazyInit
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(dsn string) *PostgresStore {
	s := &PostgresStore{dsn: dsn}
	s.init.run = s.bootstrap
	return s
}

// bootstrap connects and applies the idempotent schema DDL. Runs under the
// lazyInit single-flight guard, so concurrent first callers share one
// attempt and a failure is retried by the next caller.
func (s *PostgresStore) bootstrap(ctx context.Context) error {
	if s.dsn == "" {
		return ErrDatabaseURLNotSet
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", s.dsn)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}

	for i, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return fmt.Errorf("apply schema statement #%d: %w", i+1, err)
		}
	}

	s.db = db
	logging.Info("Postgres store initialized", "statements", len(schemaStatements))
	return nil
}

func (s *PostgresStore) conn(ctx context.Context) (*sqlx.DB, error) {
	if err := s.init.ensure(ctx); err != nil {
		return nil, err
	}
	return s.db, nil
}

func (s *PostgresStore) GetRoutes(ctx context.Context) ([]entities.RouteTemplate, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	routes := []entities.RouteTemplate{}
	if err := db.SelectContext(ctx, &routes, constants.GetAllRoutes); err != nil {
		return nil, storageErr("select", "routes", err)
	}
	if len(routes) > 0 {
		return routes, nil
	}

	// Empty table, not a connectivity failure: seed the defaults. Insert is
	// conflict-free by id so racing processes cannot duplicate rows.
	for _, r := range constants.DefaultRoutes() {
		if _, err := db.ExecContext(ctx, constants.SeedRoute, r.ID, r.Name, r.Type); err != nil {
			return nil, storageErr("seed", "routes", err)
		}
	}
	if err := db.SelectContext(ctx, &routes, constants.GetAllRoutes); err != nil {
		return nil, storageErr("select", "routes", err)
	}
	return routes, nil
}

func (s *PostgresStore) AddRoute(ctx context.Context, route entities.RouteTemplate) (*entities.RouteTemplate, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var out entities.RouteTemplate
	err = db.QueryRowxContext(ctx, constants.InsertRoute, route.ID, route.Name, route.Type).StructScan(&out)
	if err != nil {
		return nil, storageErr("insert", "route", err)
	}
	return &out, nil
}

func (s *PostgresStore) DeleteRoute(ctx context.Context, routeID string) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	// No cascade: historical records keep their denormalized snapshot and a
	// now-dangling template reference.
	if _, err := db.ExecContext(ctx, constants.DeleteRouteByID, routeID); err != nil {
		return storageErr("delete", "route", err)
	}
	return nil
}

func (s *PostgresStore) GetRecords(ctx context.Context) ([]entities.RouteRecord, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	records := []entities.RouteRecord{}
	if err := db.SelectContext(ctx, &records, constants.GetAllRecords); err != nil {
		return nil, storageErr("select", "records", err)
	}
	return records, nil
}

func (s *PostgresStore) AddRecord(ctx context.Context, record entities.RouteRecord) (*entities.RouteRecord, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	var out entities.RouteRecord
	err = db.QueryRowxContext(ctx, constants.InsertRecord,
		record.ID,
		record.Date,
		record.RouteTemplateID,
		record.RouteName,
		record.RouteType,
		record.Drivers,
		record.TractorPlate,
		record.TrailerPlate,
		record.VehiclePlate,
		record.Seal,
		record.DepartureTime,
		record.CreatedAt,
	).StructScan(&out)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateRecord
		}
		return nil, storageErr("insert", "record", err)
	}
	return &out, nil
}

func (s *PostgresStore) UpdateRecord(ctx context.Context, record entities.RouteRecord) (*entities.RouteRecord, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var out entities.RouteRecord
	err = db.QueryRowxContext(ctx, constants.UpdateRecordByID,
		record.ID,
		record.Date,
		record.RouteTemplateID,
		record.RouteName,
		record.RouteType,
		record.Drivers,
		record.TractorPlate,
		record.TrailerPlate,
		record.VehiclePlate,
		record.Seal,
		record.DepartureTime,
	).StructScan(&out)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateRecord
		}
		return nil, storageErr("update", "record", err)
	}
	return &out, nil
}

func (s *PostgresStore) DeleteRecord(ctx context.Context, recordID string) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, constants.DeleteRecordByID, recordID); err != nil {
		return storageErr("delete", "record", err)
	}
	return nil
}

func (s *PostgresStore) GetDrivers(ctx context.Context) ([]entities.SavedDriver, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	drivers := []entities.SavedDriver{}
	if err := db.SelectContext(ctx, &drivers, constants.GetAllDrivers); err != nil {
		return nil, storageErr("select", "drivers", err)
	}
	return drivers, nil
}

func (s *PostgresStore) GetTractors(ctx context.Context) ([]entities.SavedTractor, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	tractors := []entities.SavedTractor{}
	if err := db.SelectContext(ctx, &tractors, constants.GetAllTractors); err != nil {
		return nil, storageErr("select", "tractors", err)
	}
	return tractors, nil
}

func (s *PostgresStore) GetTrailers(ctx context.Context) ([]entities.SavedTrailer, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	trailers := []entities.SavedTrailer{}
	if err := db.SelectContext(ctx, &trailers, constants.GetAllTrailers); err != nil {
		return nil, storageErr("select", "trailers", err)
	}
	return trailers, nil
}

func (s *PostgresStore) GetVans(ctx context.Context) ([]entities.SavedVan, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	vans := []entities.SavedVan{}
	if err := db.SelectContext(ctx, &vans, constants.GetAllVans); err != nil {
		return nil, storageErr("select", "vans", err)
	}
	return vans, nil
}

// SaveDriver is a single conditional write: the ON CONFLICT clause increments
// the usage count and refreshes contact fields without a separate read, so
// two near-simultaneous saves of the same driver cannot lose an update. The
// freshly generated id is discarded when the row already exists.
func (s *PostgresStore) SaveDriver(ctx context.Context, in SaveDriverInput) (*entities.SavedDriver, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var out entities.SavedDriver
	err = db.QueryRowxContext(ctx, constants.UpsertDriver,
		uuid.NewString(), in.Name, in.DNI, in.Phone, in.RouteID, time.Now().UTC(),
	).StructScan(&out)
	if err != nil {
		return nil, storageErr("upsert", "driver", err)
	}
	return &out, nil
}

func (s *PostgresStore) SaveTractor(ctx context.Context, in SaveVehicleInput) (*entities.SavedTractor, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var out entities.SavedTractor
	err = db.QueryRowxContext(ctx, constants.UpsertTractor,
		uuid.NewString(), in.Plate, in.RouteID, time.Now().UTC(),
	).StructScan(&out)
	if err != nil {
		return nil, storageErr("upsert", "tractor", err)
	}
	return &out, nil
}

func (s *PostgresStore) SaveTrailer(ctx context.Context, in SaveVehicleInput) (*entities.SavedTrailer, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var out entities.SavedTrailer
	err = db.QueryRowxContext(ctx, constants.UpsertTrailer,
		uuid.NewString(), in.Plate, in.RouteID, time.Now().UTC(),
	).StructScan(&out)
	if err != nil {
		return nil, storageErr("upsert", "trailer", err)
	}
	return &out, nil
}

func (s *PostgresStore) SaveVan(ctx context.Context, in SaveVehicleInput) (*entities.SavedVan, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var out entities.SavedVan
	err = db.QueryRowxContext(ctx, constants.UpsertVan,
		uuid.NewString(), in.Plate, in.RouteID, time.Now().UTC(),
	).StructScan(&out)
	if err != nil {
		return nil, storageErr("upsert", "van", err)
	}
	return &out, nil
}

// Ping reports connectivity for the health check. It never triggers the lazy
// bootstrap; before the first operation there is nothing to check.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if !s.init.done.Load() {
		return nil
	}
	return s.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
