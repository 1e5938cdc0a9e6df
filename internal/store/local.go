package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"transvalia/dispatch/internal/constants"
	"transvalia/dispatch/internal/models/entities"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Collection names for the on-device backend. One serialized list per entity
// kind, field names in camelCase, mirroring what the mobile client keeps in
// its own storage.
const (
	localKeyRoutes   = "route_templates"
	localKeyRecords  = "route_records"
	localKeyDrivers  = "saved_drivers"
	localKeyTractors = "saved_tractors"
	localKeyTrailers = "saved_trailers"
	localKeyVans     = "saved_vans"
)

// collectionRow is the single table of the local backend: a named JSON blob
// per entity kind.
type collectionRow struct {
	Name      string    `gorm:"column:name;primaryKey"`
	Data      []byte    `gorm:"column:data"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (collectionRow) TableName() string { return "collections" }

// LocalStore is the on-device backend: sqlite file holding one JSON
// collection per entity kind. A process-wide mutex spans every
// read-modify-write, which makes the check-then-insert and the usage upserts
// equivalent to a compare-and-swap.
type LocalStore struct {
	mu sync.Mutex
	db *gorm.DB
}

var _ Store = (*LocalStore)(nil)

func NewLocalStore(path string) (*LocalStore, error) {
	if path == "" {
		path = "dispatch.db"
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	if err := db.AutoMigrate(&collectionRow{}); err != nil {
		return nil, fmt.Errorf("migrate local store: %w", err)
	}
	// sqlite serializes writers anyway; a single connection also keeps
	// :memory: databases from splitting across pool connections.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	return &LocalStore{db: db}, nil
}

func readCollection[T any](s *LocalStore, key string) ([]T, error) {
	var row collectionRow
	err := s.db.Where("name = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, storageErr("read", key, err)
	}
	items := []T{}
	if err := json.Unmarshal(row.Data, &items); err != nil {
		return nil, storageErr("decode", key, err)
	}
	return items, nil
}

func writeCollection[T any](s *LocalStore, key string, items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return storageErr("encode", key, err)
	}
	row := collectionRow{Name: key, Data: data, UpdatedAt: time.Now().UTC()}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return storageErr("write", key, err)
	}
	return nil
}

func (s *LocalStore) GetRoutes(ctx context.Context) ([]entities.RouteTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	routes, err := readCollection[entities.RouteTemplate](s, localKeyRoutes)
	if err != nil {
		return nil, err
	}
	if len(routes) > 0 {
		return routes, nil
	}

	// First read of an empty store: persist the defaults so every later
	// caller sees the same seeded list.
	routes = defaultRoutesWithTimestamps()
	if err := writeCollection(s, localKeyRoutes, routes); err != nil {
		return nil, err
	}
	return routes, nil
}

func (s *LocalStore) AddRoute(ctx context.Context, route entities.RouteTemplate) (*entities.RouteTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	routes, err := readCollection[entities.RouteTemplate](s, localKeyRoutes)
	if err != nil {
		return nil, err
	}
	if route.CreatedAt.IsZero() {
		route.CreatedAt = time.Now().UTC()
	}
	routes = append(routes, route)
	if err := writeCollection(s, localKeyRoutes, routes); err != nil {
		return nil, err
	}
	return &route, nil
}

func (s *LocalStore) DeleteRoute(ctx context.Context, routeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	routes, err := readCollection[entities.RouteTemplate](s, localKeyRoutes)
	if err != nil {
		return err
	}
	kept := routes[:0]
	for _, r := range routes {
		if r.ID != routeID {
			kept = append(kept, r)
		}
	}
	return writeCollection(s, localKeyRoutes, kept)
}

func (s *LocalStore) GetRecords(ctx context.Context) ([]entities.RouteRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := readCollection[entities.RouteRecord](s, localKeyRecords)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

func (s *LocalStore) AddRecord(ctx context.Context, record entities.RouteRecord) (*entities.RouteRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := readCollection[entities.RouteRecord](s, localKeyRecords)
	if err != nil {
		return nil, err
	}
	// Same safeguard the remote schema enforces with a unique index. The
	// mutex makes check-then-insert atomic within the process.
	for _, r := range records {
		if r.RouteTemplateID == record.RouteTemplateID &&
			r.RouteType == record.RouteType &&
			r.Date == record.Date {
			return nil, ErrDuplicateRecord
		}
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	records = append(records, record)
	if err := writeCollection(s, localKeyRecords, records); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *LocalStore) UpdateRecord(ctx context.Context, record entities.RouteRecord) (*entities.RouteRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := readCollection[entities.RouteRecord](s, localKeyRecords)
	if err != nil {
		return nil, err
	}
	for i, r := range records {
		if r.ID == record.ID {
			// Creation time is immutable; everything else is replaced.
			record.CreatedAt = r.CreatedAt
			records[i] = record
			if err := writeCollection(s, localKeyRecords, records); err != nil {
				return nil, err
			}
			return &record, nil
		}
	}
	return nil, ErrNotFound
}

func (s *LocalStore) DeleteRecord(ctx context.Context, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := readCollection[entities.RouteRecord](s, localKeyRecords)
	if err != nil {
		return err
	}
	kept := records[:0]
	for _, r := range records {
		if r.ID != recordID {
			kept = append(kept, r)
		}
	}
	return writeCollection(s, localKeyRecords, kept)
}

func (s *LocalStore) GetDrivers(ctx context.Context) ([]entities.SavedDriver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drivers, err := readCollection[entities.SavedDriver](s, localKeyDrivers)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(drivers, func(i, j int) bool {
		return drivers[i].LastUsed.After(drivers[j].LastUsed)
	})
	return drivers, nil
}

func (s *LocalStore) GetTractors(ctx context.Context) ([]entities.SavedTractor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tractors, err := readCollection[entities.SavedTractor](s, localKeyTractors)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tractors, func(i, j int) bool {
		return tractors[i].LastUsed.After(tractors[j].LastUsed)
	})
	return tractors, nil
}

func (s *LocalStore) GetTrailers(ctx context.Context) ([]entities.SavedTrailer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trailers, err := readCollection[entities.SavedTrailer](s, localKeyTrailers)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(trailers, func(i, j int) bool {
		return trailers[i].LastUsed.After(trailers[j].LastUsed)
	})
	return trailers, nil
}

func (s *LocalStore) GetVans(ctx context.Context) ([]entities.SavedVan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vans, err := readCollection[entities.SavedVan](s, localKeyVans)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(vans, func(i, j int) bool {
		return vans[i].LastUsed.After(vans[j].LastUsed)
	})
	return vans, nil
}

func (s *LocalStore) SaveDriver(ctx context.Context, in SaveDriverInput) (*entities.SavedDriver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drivers, err := readCollection[entities.SavedDriver](s, localKeyDrivers)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	for i := range drivers {
		if drivers[i].DNI == in.DNI && drivers[i].RouteID == in.RouteID {
			// Latest submission wins for contact fields; the natural key and
			// the surrogate id are never rewritten.
			drivers[i].Name = in.Name
			drivers[i].Phone = in.Phone
			drivers[i].UsageCount++
			drivers[i].LastUsed = now
			if err := writeCollection(s, localKeyDrivers, drivers); err != nil {
				return nil, err
			}
			out := drivers[i]
			return &out, nil
		}
	}
	driver := entities.SavedDriver{
		ID:         uuid.NewString(),
		Name:       in.Name,
		DNI:        in.DNI,
		Phone:      in.Phone,
		RouteID:    in.RouteID,
		UsageCount: 1,
		LastUsed:   now,
	}
	drivers = append(drivers, driver)
	if err := writeCollection(s, localKeyDrivers, drivers); err != nil {
		return nil, err
	}
	return &driver, nil
}

func (s *LocalStore) SaveTractor(ctx context.Context, in SaveVehicleInput) (*entities.SavedTractor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tractors, err := readCollection[entities.SavedTractor](s, localKeyTractors)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	for i := range tractors {
		if tractors[i].Plate == in.Plate && tractors[i].RouteID == in.RouteID {
			tractors[i].UsageCount++
			tractors[i].LastUsed = now
			if err := writeCollection(s, localKeyTractors, tractors); err != nil {
				return nil, err
			}
			out := tractors[i]
			return &out, nil
		}
	}
	tractor := entities.SavedTractor{
		ID:         uuid.NewString(),
		Plate:      in.Plate,
		RouteID:    in.RouteID,
		UsageCount: 1,
		LastUsed:   now,
	}
	tractors = append(tractors, tractor)
	if err := writeCollection(s, localKeyTractors, tractors); err != nil {
		return nil, err
	}
	return &tractor, nil
}

func (s *LocalStore) SaveTrailer(ctx context.Context, in SaveVehicleInput) (*entities.SavedTrailer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trailers, err := readCollection[entities.SavedTrailer](s, localKeyTrailers)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	for i := range trailers {
		if trailers[i].Plate == in.Plate && trailers[i].RouteID == in.RouteID {
			trailers[i].UsageCount++
			trailers[i].LastUsed = now
			if err := writeCollection(s, localKeyTrailers, trailers); err != nil {
				return nil, err
			}
			out := trailers[i]
			return &out, nil
		}
	}
	trailer := entities.SavedTrailer{
		ID:         uuid.NewString(),
		Plate:      in.Plate,
		RouteID:    in.RouteID,
		UsageCount: 1,
		LastUsed:   now,
	}
	trailers = append(trailers, trailer)
	if err := writeCollection(s, localKeyTrailers, trailers); err != nil {
		return nil, err
	}
	return &trailer, nil
}

func (s *LocalStore) SaveVan(ctx context.Context, in SaveVehicleInput) (*entities.SavedVan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vans, err := readCollection[entities.SavedVan](s, localKeyVans)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	for i := range vans {
		if vans[i].Plate == in.Plate && vans[i].RouteID == in.RouteID {
			vans[i].UsageCount++
			vans[i].LastUsed = now
			if err := writeCollection(s, localKeyVans, vans); err != nil {
				return nil, err
			}
			out := vans[i]
			return &out, nil
		}
	}
	van := entities.SavedVan{
		ID:         uuid.NewString(),
		Plate:      in.Plate,
		RouteID:    in.RouteID,
		UsageCount: 1,
		LastUsed:   now,
	}
	vans = append(vans, van)
	if err := writeCollection(s, localKeyVans, vans); err != nil {
		return nil, err
	}
	return &van, nil
}

func defaultRoutesWithTimestamps() []entities.RouteTemplate {
	now := time.Now().UTC()
	routes := constants.DefaultRoutes()
	for i := range routes {
		routes[i].CreatedAt = now
	}
	return routes
}

// Ping reports sqlite reachability for the health check.
func (s *LocalStore) Ping(ctx context.Context) error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}
