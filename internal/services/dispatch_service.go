package services

import (
	"context"
	"fmt"
	"time"

	"transvalia/dispatch/internal/common"
	"transvalia/dispatch/internal/constants"
	"transvalia/dispatch/internal/logging"
	"transvalia/dispatch/internal/metrics"
	"transvalia/dispatch/internal/models/entities"
	"transvalia/dispatch/internal/store"
)

const routesCacheTTL = 5 * time.Minute

// DispatchService carries the backend-agnostic business rules above the
// store interface: the one-record-per-route-per-day guard, the usage-tracking
// upserts that follow an accepted record, and a read cache for route
// templates. It never branches on which store backend is underneath.
type DispatchService struct {
	store   store.Store
	cache   common.CacheInterface
	metrics *metrics.MetricsRegistry
}

func NewDispatchService(st store.Store, cache common.CacheInterface, reg *metrics.MetricsRegistry) *DispatchService {
	return &DispatchService{store: st, cache: cache, metrics: reg}
}

// GetRoutes serves route templates through the cache. The store seeds the
// default list on first read of an empty backend.
func (s *DispatchService) GetRoutes(ctx context.Context) ([]entities.RouteTemplate, error) {
	cacheKey := string(constants.CachePrefixRoutes) + "all"

	if s.cache != nil {
		if val, found := s.cache.Get(cacheKey); found {
			s.countCache(true)
			if routes, ok := val.([]entities.RouteTemplate); ok {
				return routes, nil
			}
		}
		s.countCache(false)
	}

	var routes []entities.RouteTemplate
	err := s.observe("get_routes", func() error {
		var err error
		routes, err = s.store.GetRoutes(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(cacheKey, routes, routesCacheTTL)
	}
	return routes, nil
}

func (s *DispatchService) AddRoute(ctx context.Context, route entities.RouteTemplate) (*entities.RouteTemplate, error) {
	var out *entities.RouteTemplate
	err := s.observe("add_route", func() error {
		var err error
		out, err = s.store.AddRoute(ctx, route)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidateRoutes()
	return out, nil
}

func (s *DispatchService) DeleteRoute(ctx context.Context, routeID string) error {
	err := s.observe("delete_route", func() error {
		return s.store.DeleteRoute(ctx, routeID)
	})
	if err != nil {
		return err
	}
	s.invalidateRoutes()
	return nil
}

func (s *DispatchService) GetRecords(ctx context.Context) ([]entities.RouteRecord, error) {
	var records []entities.RouteRecord
	err := s.observe("get_records", func() error {
		var err error
		records, err = s.store.GetRecords(ctx)
		return err
	})
	return records, err
}

// AddRecord applies the duplicate-record guard, writes the record, then runs
// the usage-tracking upserts for every referenced driver and vehicle. The
// guard's existence check is not atomic across clients, so the store keeps
// its own uniqueness safeguard and may also report ErrDuplicateRecord.
func (s *DispatchService) AddRecord(ctx context.Context, record entities.RouteRecord) (*entities.RouteRecord, error) {
	existing, err := s.GetRecords(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range existing {
		if r.RouteTemplateID == record.RouteTemplateID &&
			r.RouteType == record.RouteType &&
			r.Date == record.Date {
			s.countDuplicate()
			return nil, store.ErrDuplicateRecord
		}
	}

	var out *entities.RouteRecord
	err = s.observe("add_record", func() error {
		var err error
		out, err = s.store.AddRecord(ctx, record)
		return err
	})
	if err != nil {
		if err == store.ErrDuplicateRecord {
			s.countDuplicate()
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordsCreatedTotal.Inc()
	}

	if err := s.trackUsage(ctx, out); err != nil {
		// The record is stored; the caller still has to know the reference
		// tables were not updated.
		return out, fmt.Errorf("record stored but usage tracking failed: %w", err)
	}
	return out, nil
}

// trackUsage bumps the per-route usage counters for every driver and vehicle
// the record references. Each save is a single atomic upsert in the store.
func (s *DispatchService) trackUsage(ctx context.Context, record *entities.RouteRecord) error {
	for _, d := range record.Drivers {
		_, err := s.SaveDriver(ctx, store.SaveDriverInput{
			Name:    d.Name,
			DNI:     d.DNI,
			Phone:   d.Phone,
			RouteID: record.RouteTemplateID,
		})
		if err != nil {
			return fmt.Errorf("save driver %s: %w", d.DNI, err)
		}
	}

	switch record.RouteType {
	case entities.RouteTypeTrailer:
		if record.TractorPlate != nil && *record.TractorPlate != "" {
			in := store.SaveVehicleInput{Plate: *record.TractorPlate, RouteID: record.RouteTemplateID}
			if _, err := s.SaveTractor(ctx, in); err != nil {
				return fmt.Errorf("save tractor %s: %w", in.Plate, err)
			}
		}
		if record.TrailerPlate != nil && *record.TrailerPlate != "" {
			in := store.SaveVehicleInput{Plate: *record.TrailerPlate, RouteID: record.RouteTemplateID}
			if _, err := s.SaveTrailer(ctx, in); err != nil {
				return fmt.Errorf("save trailer %s: %w", in.Plate, err)
			}
		}
	case entities.RouteTypeFurgo:
		if record.VehiclePlate != nil && *record.VehiclePlate != "" {
			in := store.SaveVehicleInput{Plate: *record.VehiclePlate, RouteID: record.RouteTemplateID}
			if _, err := s.SaveVan(ctx, in); err != nil {
				return fmt.Errorf("save van %s: %w", in.Plate, err)
			}
		}
	}
	return nil
}

func (s *DispatchService) UpdateRecord(ctx context.Context, record entities.RouteRecord) (*entities.RouteRecord, error) {
	var out *entities.RouteRecord
	err := s.observe("update_record", func() error {
		var err error
		out, err = s.store.UpdateRecord(ctx, record)
		return err
	})
	return out, err
}

func (s *DispatchService) DeleteRecord(ctx context.Context, recordID string) error {
	return s.observe("delete_record", func() error {
		return s.store.DeleteRecord(ctx, recordID)
	})
}

func (s *DispatchService) GetDrivers(ctx context.Context) ([]entities.SavedDriver, error) {
	var drivers []entities.SavedDriver
	err := s.observe("get_drivers", func() error {
		var err error
		drivers, err = s.store.GetDrivers(ctx)
		return err
	})
	return drivers, err
}

func (s *DispatchService) GetTractors(ctx context.Context) ([]entities.SavedTractor, error) {
	var tractors []entities.SavedTractor
	err := s.observe("get_tractors", func() error {
		var err error
		tractors, err = s.store.GetTractors(ctx)
		return err
	})
	return tractors, err
}

func (s *DispatchService) GetTrailers(ctx context.Context) ([]entities.SavedTrailer, error) {
	var trailers []entities.SavedTrailer
	err := s.observe("get_trailers", func() error {
		var err error
		trailers, err = s.store.GetTrailers(ctx)
		return err
	})
	return trailers, err
}

func (s *DispatchService) GetVans(ctx context.Context) ([]entities.SavedVan, error) {
	var vans []entities.SavedVan
	err := s.observe("get_vans", func() error {
		var err error
		vans, err = s.store.GetVans(ctx)
		return err
	})
	return vans, err
}

func (s *DispatchService) SaveDriver(ctx context.Context, in store.SaveDriverInput) (*entities.SavedDriver, error) {
	var out *entities.SavedDriver
	err := s.observe("save_driver", func() error {
		var err error
		out, err = s.store.SaveDriver(ctx, in)
		return err
	})
	if err == nil {
		s.countUpsert("driver")
	}
	return out, err
}

func (s *DispatchService) SaveTractor(ctx context.Context, in store.SaveVehicleInput) (*entities.SavedTractor, error) {
	var out *entities.SavedTractor
	err := s.observe("save_tractor", func() error {
		var err error
		out, err = s.store.SaveTractor(ctx, in)
		return err
	})
	if err == nil {
		s.countUpsert("tractor")
	}
	return out, err
}

func (s *DispatchService) SaveTrailer(ctx context.Context, in store.SaveVehicleInput) (*entities.SavedTrailer, error) {
	var out *entities.SavedTrailer
	err := s.observe("save_trailer", func() error {
		var err error
		out, err = s.store.SaveTrailer(ctx, in)
		return err
	})
	if err == nil {
		s.countUpsert("trailer")
	}
	return out, err
}

func (s *DispatchService) SaveVan(ctx context.Context, in store.SaveVehicleInput) (*entities.SavedVan, error) {
	var out *entities.SavedVan
	err := s.observe("save_van", func() error {
		var err error
		out, err = s.store.SaveVan(ctx, in)
		return err
	})
	if err == nil {
		s.countUpsert("van")
	}
	return out, err
}

func (s *DispatchService) invalidateRoutes() {
	if s.cache != nil {
		s.cache.Delete(string(constants.CachePrefixRoutes) + "all")
	}
}

func (s *DispatchService) observe(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	if s.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		s.metrics.StoreOpsTotal.WithLabelValues(op, outcome).Inc()
		s.metrics.StoreOpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
	if err != nil && err != store.ErrDuplicateRecord && err != store.ErrNotFound {
		logging.Error("store operation failed", "operation", op, "error", err.Error())
	}
	return err
}

func (s *DispatchService) countCache(hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.CacheHitsTotal.WithLabelValues(string(constants.CachePrefixRoutes)).Inc()
	} else {
		s.metrics.CacheMissesTotal.WithLabelValues(string(constants.CachePrefixRoutes)).Inc()
	}
}

func (s *DispatchService) countDuplicate() {
	if s.metrics != nil {
		s.metrics.DuplicateRecordsRejected.Inc()
	}
}

func (s *DispatchService) countUpsert(kind string) {
	if s.metrics != nil {
		s.metrics.ReferenceUpsertsTotal.WithLabelValues(kind).Inc()
	}
}
