package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"transvalia/dispatch/internal/constants"
	"transvalia/dispatch/internal/models/entities"
)

func setupLocalStore(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(":memory:")
	if err != nil {
		t.Fatalf("Failed to open local store: %v", err)
	}
	return s
}

func strPtr(s string) *string { return &s }

func testRecord(id, routeID, date string) entities.RouteRecord {
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

func TestLocalStore_GetRoutes_SeedsDefaultsOnce(t *testing.T) {
	s := setupLocalStore(t)
	ctx := context.Background()

	routes, err := s.GetRoutes(ctx)
	if err != nil {
		t.Fatalf("GetRoutes: %v", err)
	}
	want := len(constants.DefaultRoutes())
	if len(routes) != want {
		t.Fatalf("Expected %d seeded routes, got %d", want, len(routes))
	}

	// A second call must return the same set without re-seeding.
	again, err := s.GetRoutes(ctx)
	if err != nil {
		t.Fatalf("GetRoutes second call: %v", err)
	}
	if len(again) != want {
		t.Fatalf("Expected %d routes on second call, got %d", want, len(again))
	}
	for i := range routes {
		if routes[i].ID != again[i].ID || routes[i].Name != again[i].Name {
			t.Errorf("Route %d changed between calls: %+v vs %+v", i, routes[i], again[i])
		}
	}
}

func TestLocalStore_AddAndDeleteRoute(t *testing.T) {
	s := setupLocalStore(t)
	ctx := context.Background()

	if _, err := s.GetRoutes(ctx); err != nil {
		t.Fatalf("GetRoutes: %v", err)
	}

	added, err := s.AddRoute(ctx, entities.RouteTemplate{ID: "r1", Name: "VLC-MAD", Type: entities.RouteTypeTrailer})
	if err != nil {
		t.Fatalf("AddRoute: %v", err)
	}
	if added.CreatedAt.IsZero() {
		t.Error("Expected AddRoute to stamp creation time")
	}

	if err := s.DeleteRoute(ctx, "r1"); err != nil {
		t.Fatalf("DeleteRoute: %v", err)
	}
	routes, _ := s.GetRoutes(ctx)
	for _, r := range routes {
		if r.ID == "r1" {
			t.Error("Route r1 still present after delete")
		}
	}

	// Deleting again is a no-op, not an error.
	if err := s.DeleteRoute(ctx, "r1"); err != nil {
		t.Fatalf("DeleteRoute second call: %v", err)
	}
}

func TestLocalStore_DeleteRoute_DoesNotCascadeToRecords(t *testing.T) {
	s := setupLocalStore(t)
	ctx := context.Background()

	if _, err := s.AddRecord(ctx, testRecord("rec1", "r1", "2024-05-01")); err != nil {
		t.Fatalf("AddRecord: %v", err)
	}
	if err := s.DeleteRoute(ctx, "r1"); err != nil {
		t.Fatalf("DeleteRoute: %v", err)
	}

	records, err := s.GetRecords(ctx)
	if err != nil {
		t.Fatalf("GetRecords: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected orphaned record to survive, got %d records", len(records))
	}
	if records[0].RouteName != "VLC-MAD" {
		t.Errorf("Denormalized route name lost: %q", records[0].RouteName)
	}
}

func TestLocalStore_AddRecord_RejectsSameRouteAndDay(t *testing.T) {
	s := setupLocalStore(t)
	ctx := context.Background()

	if _, err := s.AddRecord(ctx, testRecord("rec1", "r1", "2024-05-01")); err != nil {
		t.Fatalf("first AddRecord: %v", err)
	}

	_, err := s.AddRecord(ctx, testRecord("rec2", "r1", "2024-05-01"))
	if !errors.Is(err, ErrDuplicateRecord) {
		t.Fatalf("Expected ErrDuplicateRecord, got %v", err)
	}

	records, _ := s.GetRecords(ctx)
	if len(records) != 1 {
		t.Fatalf("Record count changed by rejected add: %d", len(records))
	}

	// Same route on another day is fine.
	if _, err := s.AddRecord(ctx, testRecord("rec3", "r1", "2024-05-02")); err != nil {
		t.Fatalf("AddRecord for next day: %v", err)
	}
}

func TestLocalStore_GetRecords_MostRecentFirst(t *testing.T) {
	s := setupLocalStore(t)
	ctx := context.Background()

	first := testRecord("rec1", "r1", "2024-05-01")
	first.CreatedAt = time.Now().UTC().Add(-time.Hour)
	second := testRecord("rec2", "r2", "2024-05-01")
	second.CreatedAt = time.Now().UTC()

	if _, err := s.AddRecord(ctx, first); err != nil {
		t.Fatalf("AddRecord: %v", err)
	}
	if _, err := s.AddRecord(ctx, second); err != nil {
		t.Fatalf("AddRecord: %v", err)
	}

	records, err := s.GetRecords(ctx)
	if err != nil {
		t.Fatalf("GetRecords: %v", err)
	}
	if records[0].ID != "rec2" || records[1].ID != "rec1" {
		t.Errorf("Expected rec2 before rec1, got %s then %s", records[0].ID, records[1].ID)
	}
}

func TestLocalStore_UpdateRecord_FullReplace(t *testing.T) {
	s := setupLocalStore(t)
	ctx := context.Background()

	stored, err := s.AddRecord(ctx, testRecord("rec1", "r1", "2024-05-01"))
	if err != nil {
		t.Fatalf("AddRecord: %v", err)
	}

	updated := *stored
	updated.Seal = "B2"
	updated.DepartureTime = strPtr("2024-05-01T08:30:00Z")

	out, err := s.UpdateRecord(ctx, updated)
	if err != nil {
		t.Fatalf("UpdateRecord: %v", err)
	}
	if out.Seal != "B2" {
		t.Errorf("Seal not replaced: %q", out.Seal)
	}
	if out.DepartureTime == nil || *out.DepartureTime != "2024-05-01T08:30:00Z" {
		t.Errorf("Departure time not set: %v", out.DepartureTime)
	}
	if !out.CreatedAt.Equal(stored.CreatedAt) {
		t.Errorf("Creation time must be immutable: %v vs %v", out.CreatedAt, stored.CreatedAt)
	}

	records, _ := s.GetRecords(ctx)
	if records[0].Seal != "B2" {
		t.Errorf("Re-fetch does not reflect update: seal %q", records[0].Seal)
	}
}

func TestLocalStore_UpdateRecord_MissingIDIsNotFound(t *testing.T) {
	s := setupLocalStore(t)

	_, err := s.UpdateRecord(context.Background(), testRecord("ghost", "r1", "2024-05-01"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestLocalStore_DeleteRecord_Idempotent(t *testing.T) {
	s := setupLocalStore(t)
	ctx := context.Background()

	if _, err := s.AddRecord(ctx, testRecord("rec1", "r1", "2024-05-01")); err != nil {
		t.Fatalf("AddRecord: %v", err)
	}

	if err := s.DeleteRecord(ctx, "no-such-id"); err != nil {
		t.Fatalf("Delete of missing id must succeed, got %v", err)
	}
	records, _ := s.GetRecords(ctx)
	if len(records) != 1 {
		t.Fatalf("Delete of missing id changed the collection: %d records", len(records))
	}

	if err := s.DeleteRecord(ctx, "rec1"); err != nil {
		t.Fatalf("DeleteRecord: %v", err)
	}
	if err := s.DeleteRecord(ctx, "rec1"); err != nil {
		t.Fatalf("Second delete must succeed, got %v", err)
	}
	records, _ = s.GetRecords(ctx)
	if len(records) != 0 {
		t.Fatalf("Expected empty collection, got %d", len(records))
	}
}

func TestLocalStore_SaveDriver_UpsertByNaturalKey(t *testing.T) {
	s := setupLocalStore(t)
	ctx := context.Background()

	first, err := s.SaveDriver(ctx, SaveDriverInput{Name: "Juan", DNI: "111", Phone: "600", RouteID: "r1"})
	if err != nil {
		t.Fatalf("SaveDriver: %v", err)
	}
	if first.UsageCount != 1 {
		t.Errorf("Expected usage count 1, got %d", first.UsageCount)
	}
	if first.ID == "" {
		t.Error("Expected generated id")
	}

	second, err := s.SaveDriver(ctx, SaveDriverInput{Name: "Juan P.", DNI: "111", Phone: "601", RouteID: "r1"})
	if err != nil {
		t.Fatalf("SaveDriver second call: %v", err)
	}
	if second.UsageCount != 2 {
		t.Errorf("Expected usage count 2, got %d", second.UsageCount)
	}
	if second.ID != first.ID {
		t.Errorf("Surrogate id rewritten on upsert: %s vs %s", second.ID, first.ID)
	}
	if second.Name != "Juan P." || second.Phone != "601" {
		t.Errorf("Latest contact fields must win, got %s / %s", second.Name, second.Phone)
	}
	if second.LastUsed.Before(first.LastUsed) {
		t.Errorf("lastUsed moved backwards: %v before %v", second.LastUsed, first.LastUsed)
	}

	drivers, _ := s.GetDrivers(ctx)
	if len(drivers) != 1 {
		t.Fatalf("Expected a single stored row, got %d", len(drivers))
	}

	// Same DNI on another route is an independent row.
	other, err := s.SaveDriver(ctx, SaveDriverInput{Name: "Juan", DNI: "111", Phone: "600", RouteID: "r2"})
	if err != nil {
		t.Fatalf("SaveDriver other route: %v", err)
	}
	if other.UsageCount != 1 {
		t.Errorf("Expected fresh counter per route, got %d", other.UsageCount)
	}
}

func TestLocalStore_SaveVehicles_UpsertAndOrder(t *testing.T) {
	s := setupLocalStore(t)
	ctx := context.Background()

	if _, err := s.SaveTractor(ctx, SaveVehicleInput{Plate: "1111AAA", RouteID: "r1"}); err != nil {
		t.Fatalf("SaveTractor: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, err := s.SaveTractor(ctx, SaveVehicleInput{Plate: "2222BBB", RouteID: "r1"}); err != nil {
		t.Fatalf("SaveTractor: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	upserted, err := s.SaveTractor(ctx, SaveVehicleInput{Plate: "1111AAA", RouteID: "r1"})
	if err != nil {
		t.Fatalf("SaveTractor upsert: %v", err)
	}
	if upserted.UsageCount != 2 {
		t.Errorf("Expected usage count 2, got %d", upserted.UsageCount)
	}

	tractors, err := s.GetTractors(ctx)
	if err != nil {
		t.Fatalf("GetTractors: %v", err)
	}
	if len(tractors) != 2 {
		t.Fatalf("Expected 2 tractors, got %d", len(tractors))
	}
	// 1111AAA was used last, so it comes first.
	if tractors[0].Plate != "1111AAA" {
		t.Errorf("Expected most recently used first, got %s", tractors[0].Plate)
	}

	if _, err := s.SaveTrailer(ctx, SaveVehicleInput{Plate: "3333CCC", RouteID: "r1"}); err != nil {
		t.Fatalf("SaveTrailer: %v", err)
	}
	if _, err := s.SaveVan(ctx, SaveVehicleInput{Plate: "4444DDD", RouteID: "r2"}); err != nil {
		t.Fatalf("SaveVan: %v", err)
	}
	trailers, _ := s.GetTrailers(ctx)
	vans, _ := s.GetVans(ctx)
	if len(trailers) != 1 || len(vans) != 1 {
		t.Errorf("Expected 1 trailer and 1 van, got %d / %d", len(trailers), len(vans))
	}
}

func TestLocalStore_EmbeddedDriversAreCopies(t *testing.T) {
	s := setupLocalStore(t)
	ctx := context.Background()

	record := testRecord("rec1", "r1", "2024-05-01")
	record.Drivers = entities.DriverList{
		{ID: "d1", Name: "Juan", DNI: "111", Phone: "600"},
		{ID: "d2", Name: "Pedro", DNI: "222", Phone: "700"},
	}
	if _, err := s.AddRecord(ctx, record); err != nil {
		t.Fatalf("AddRecord: %v", err)
	}

	// Mutating the reference table must not touch the embedded snapshots.
	if _, err := s.SaveDriver(ctx, SaveDriverInput{Name: "Juan Renamed", DNI: "111", Phone: "999", RouteID: "r1"}); err != nil {
		t.Fatalf("SaveDriver: %v", err)
	}
	if _, err := s.SaveDriver(ctx, SaveDriverInput{Name: "Juan Renamed", DNI: "111", Phone: "999", RouteID: "r1"}); err != nil {
		t.Fatalf("SaveDriver: %v", err)
	}

	records, err := s.GetRecords(ctx)
	if err != nil {
		t.Fatalf("GetRecords: %v", err)
	}
	if len(records[0].Drivers) != 2 {
		t.Fatalf("Expected 2 embedded drivers, got %d", len(records[0].Drivers))
	}
	if records[0].Drivers[0].Name != "Juan" || records[0].Drivers[0].Phone != "600" {
		t.Errorf("Embedded driver snapshot was altered: %+v", records[0].Drivers[0])
	}
}
