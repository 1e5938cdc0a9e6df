package services

import (
	"context"
	"errors"
	"testing"

	"transvalia/dispatch/internal/common"
	"transvalia/dispatch/internal/models/entities"
	"transvalia/dispatch/internal/store"
)

func setupService(t *testing.T) (*DispatchService, store.Store) {
	t.Helper()
	st, err := store.NewLocalStore(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	cache := common.NewCacheService(300, 600)
	return NewDispatchService(st, cache, nil), st
}

func strPtr(s string) *string { return &s }

func trailerRecord(id, routeID, date string) entities.RouteRecord {
	return entities.RouteRecord{
		ID:              id,
		Date:            date,
		RouteTemplateID: routeID,
		RouteName:       "VLC-MAD",
		RouteType:       entities.RouteTypeTrailer,
		Drivers: entities.DriverList{
			{ID: "d1", Name: "Juan", DNI: "111", Phone: "600"},
		},
		TractorPlate: strPtr("1234ABC"),
		TrailerPlate: strPtr("5678DEF"),
		Seal:         "S100",
	}
}

func TestDispatchService_AddRecord_Scenario(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	if _, err := svc.AddRoute(ctx, entities.RouteTemplate{ID: "r1", Name: "VLC-MAD", Type: entities.RouteTypeTrailer}); err != nil {
		t.Fatalf("AddRoute: %v", err)
	}

	stored, err := svc.AddRecord(ctx, trailerRecord("rec1", "r1", "2024-05-01"))
	if err != nil {
		t.Fatalf("AddRecord: %v", err)
	}
	if stored.CreatedAt.IsZero() {
		t.Error("Expected server-assigned creation time")
	}

	records, err := svc.GetRecords(ctx)
	if err != nil {
		t.Fatalf("GetRecords: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	got := records[0]
	if got.ID != "rec1" || got.Seal != "S100" || *got.TractorPlate != "1234ABC" || *got.TrailerPlate != "5678DEF" {
		t.Errorf("Stored record does not match input: %+v", got)
	}
	if len(got.Drivers) != 1 || got.Drivers[0].Name != "Juan" {
		t.Errorf("Embedded drivers lost: %+v", got.Drivers)
	}

	// Second submission for the same route and day is rejected before any
	// write happens.
	other := trailerRecord("rec2", "r1", "2024-05-01")
	if _, err := svc.AddRecord(ctx, other); !errors.Is(err, store.ErrDuplicateRecord) {
		t.Fatalf("Expected ErrDuplicateRecord, got %v", err)
	}
	records, _ = svc.GetRecords(ctx)
	if len(records) != 1 {
		t.Fatalf("Rejected add changed record count: %d", len(records))
	}
}

func TestDispatchService_AddRecord_TracksUsage(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	record := trailerRecord("rec1", "r1", "2024-05-01")
	record.Drivers = entities.DriverList{
		{ID: "d1", Name: "Juan", DNI: "111", Phone: "600"},
		{ID: "d2", Name: "Pedro", DNI: "222", Phone: "700"},
	}
	if _, err := svc.AddRecord(ctx, record); err != nil {
		t.Fatalf("AddRecord: %v", err)
	}

	drivers, err := svc.GetDrivers(ctx)
	if err != nil {
		t.Fatalf("GetDrivers: %v", err)
	}
	if len(drivers) != 2 {
		t.Fatalf("Expected 2 tracked drivers, got %d", len(drivers))
	}
	for _, d := range drivers {
		if d.UsageCount != 1 {
			t.Errorf("Driver %s: expected usage count 1, got %d", d.DNI, d.UsageCount)
		}
		if d.RouteID != "r1" {
			t.Errorf("Driver %s tracked against wrong route %s", d.DNI, d.RouteID)
		}
	}

	tractors, _ := svc.GetTractors(ctx)
	trailers, _ := svc.GetTrailers(ctx)
	if len(tractors) != 1 || tractors[0].Plate != "1234ABC" {
		t.Errorf("Tractor not tracked: %+v", tractors)
	}
	if len(trailers) != 1 || trailers[0].Plate != "5678DEF" {
		t.Errorf("Trailer not tracked: %+v", trailers)
	}

	// A record for the same route next day bumps the counters.
	next := record
	next.ID = "rec2"
	next.Date = "2024-05-02"
	if _, err := svc.AddRecord(ctx, next); err != nil {
		t.Fatalf("AddRecord next day: %v", err)
	}
	tractors, _ = svc.GetTractors(ctx)
	if tractors[0].UsageCount != 2 {
		t.Errorf("Expected tractor usage count 2, got %d", tractors[0].UsageCount)
	}
}

func TestDispatchService_AddRecord_FurgoTracksVan(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	record := entities.RouteRecord{
		ID:              "rec1",
		Date:            "2024-05-01",
		RouteTemplateID: "r8",
		RouteName:       "VLC-MD-VLC",
		RouteType:       entities.RouteTypeFurgo,
		Drivers: entities.DriverList{
			{ID: "d1", Name: "Ana", DNI: "333", Phone: "611"},
		},
		VehiclePlate: strPtr("9999ZZZ"),
		Seal:         "S200",
	}
	if _, err := svc.AddRecord(ctx, record); err != nil {
		t.Fatalf("AddRecord: %v", err)
	}

	vans, err := svc.GetVans(ctx)
	if err != nil {
		t.Fatalf("GetVans: %v", err)
	}
	if len(vans) != 1 || vans[0].Plate != "9999ZZZ" {
		t.Fatalf("Van not tracked: %+v", vans)
	}
	tractors, _ := svc.GetTractors(ctx)
	if len(tractors) != 0 {
		t.Errorf("FURGO record must not track tractors: %+v", tractors)
	}
}

func TestDispatchService_GetRoutes_CachesAndInvalidates(t *testing.T) {
	svc, st := setupService(t)
	ctx := context.Background()

	routes, err := svc.GetRoutes(ctx)
	if err != nil {
		t.Fatalf("GetRoutes: %v", err)
	}
	seeded := len(routes)
	if seeded == 0 {
		t.Fatal("Expected seeded defaults on first call")
	}

	// Write behind the cache: the cached set is served until invalidation.
	if _, err := st.AddRoute(ctx, entities.RouteTemplate{ID: "x1", Name: "VLC-BCN", Type: entities.RouteTypeTrailer}); err != nil {
		t.Fatalf("AddRoute direct: %v", err)
	}
	cached, _ := svc.GetRoutes(ctx)
	if len(cached) != seeded {
		t.Fatalf("Expected cached route set of %d, got %d", seeded, len(cached))
	}

	// A service-level mutation invalidates the cache.
	if _, err := svc.AddRoute(ctx, entities.RouteTemplate{ID: "x2", Name: "VLC-SEV", Type: entities.RouteTypeTrailer}); err != nil {
		t.Fatalf("AddRoute: %v", err)
	}
	fresh, _ := svc.GetRoutes(ctx)
	if len(fresh) != seeded+2 {
		t.Fatalf("Expected %d routes after invalidation, got %d", seeded+2, len(fresh))
	}
}

func TestDispatchService_UpdateRecord_MissingID(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.UpdateRecord(context.Background(), trailerRecord("ghost", "r1", "2024-05-01"))
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestDispatchService_SaveDriver_CountsUsagePerRoute(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	in := store.SaveDriverInput{Name: "Juan", DNI: "111", Phone: "600", RouteID: "r1"}
	first, err := svc.SaveDriver(ctx, in)
	if err != nil {
		t.Fatalf("SaveDriver: %v", err)
	}
	second, err := svc.SaveDriver(ctx, in)
	if err != nil {
		t.Fatalf("SaveDriver: %v", err)
	}
	if second.UsageCount != 2 {
		t.Errorf("Expected usage count 2, got %d", second.UsageCount)
	}
	if second.LastUsed.Before(first.LastUsed) {
		t.Errorf("lastUsed moved backwards")
	}
}
