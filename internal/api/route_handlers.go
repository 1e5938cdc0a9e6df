package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"transvalia/dispatch/internal/models/dtos"
	"transvalia/dispatch/internal/models/entities"
	"transvalia/dispatch/internal/services"
)

// GetRoutesHandler handles GET /api/routes. An empty backend is seeded with
// the default route list, so the response is never an empty set on first use.
func GetRoutesHandler(svc *services.DispatchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		routes, err := svc.GetRoutes(r.Context())
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, &routes)
	}
}

// AddRouteHandler handles POST /api/routes
func AddRouteHandler(svc *services.DispatchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.AddRouteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if err := req.Validate(); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		route, err := svc.AddRoute(r.Context(), req.ToEntity())
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusCreated, route)
	}
}

// DeleteRouteHandler handles DELETE /api/routes/{routeID}. Historical records
// keep their snapshot of the deleted route.
func DeleteRouteHandler(svc *services.DispatchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		routeID := chi.URLParam(r, "routeID")
		if routeID == "" {
			respondWithError(w, http.StatusBadRequest, "routeID is required")
			return
		}

		if err := svc.DeleteRoute(r.Context(), routeID); err != nil {
			respondStoreError(w, err)
			return
		}
		deleted := true
		respondWithSuccess(w, http.StatusOK, &deleted)
	}
}

// GetRecordsHandler handles GET /api/records, most recent first.
func GetRecordsHandler(svc *services.DispatchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := svc.GetRecords(r.Context())
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, &records)
	}
}

// AddRecordHandler handles POST /api/records. A submission for a route and
// day that already has a record is rejected with 409 and the reason.
func AddRecordHandler(svc *services.DispatchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.RecordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if err := req.Validate(); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		record, err := svc.AddRecord(r.Context(), req.ToEntity())
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusCreated, record)
	}
}

// UpdateRecordHandler handles PUT /api/records/{recordID}: full replace of
// all mutable fields. Unknown ids get 404.
func UpdateRecordHandler(svc *services.DispatchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recordID := chi.URLParam(r, "recordID")

		var req dtos.RecordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		req.ID = recordID
		if err := req.Validate(); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		record, err := svc.UpdateRecord(r.Context(), req.ToEntity())
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, record)
	}
}

// DeleteRecordHandler handles DELETE /api/records/{recordID}. Idempotent:
// deleting an id that is already gone still succeeds.
func DeleteRecordHandler(svc *services.DispatchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recordID := chi.URLParam(r, "recordID")
		if recordID == "" {
			respondWithError(w, http.StatusBadRequest, "recordID is required")
			return
		}

		if err := svc.DeleteRecord(r.Context(), recordID); err != nil {
			respondStoreError(w, err)
			return
		}
		deleted := true
		respondWithSuccess(w, http.StatusOK, &deleted)
	}
}

// filterByRoute keeps entries matching the optional ?routeId= query, backing
// the "saved entities for the selected route" quick-pick.
func filterByRoute[T any](items []T, routeID string, getRoute func(T) string) []T {
	if routeID == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if getRoute(it) == routeID {
			out = append(out, it)
		}
	}
	return out
}

// GetDriversHandler handles GET /api/drivers, most recently used first.
func GetDriversHandler(svc *services.DispatchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		drivers, err := svc.GetDrivers(r.Context())
		if err != nil {
			respondStoreError(w, err)
			return
		}
		drivers = filterByRoute(drivers, r.URL.Query().Get("routeId"),
			func(d entities.SavedDriver) string { return d.RouteID })
		respondWithSuccess(w, http.StatusOK, &drivers)
	}
}

// SaveDriverHandler handles POST /api/drivers: upsert by (dni, routeId).
func SaveDriverHandler(svc *services.DispatchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.SaveDriverRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if err := req.Validate(); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		driver, err := svc.SaveDriver(r.Context(), req.ToInput())
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, driver)
	}
}

// GetTractorsHandler handles GET /api/tractors
func GetTractorsHandler(svc *services.DispatchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tractors, err := svc.GetTractors(r.Context())
		if err != nil {
			respondStoreError(w, err)
			return
		}
		tractors = filterByRoute(tractors, r.URL.Query().Get("routeId"),
			func(t entities.SavedTractor) string { return t.RouteID })
		respondWithSuccess(w, http.StatusOK, &tractors)
	}
}

// SaveTractorHandler handles POST /api/tractors: upsert by (plate, routeId).
func SaveTractorHandler(svc *services.DispatchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.SaveVehicleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if err := req.Validate(); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		tractor, err := svc.SaveTractor(r.Context(), req.ToInput())
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, tractor)
	}
}

// GetTrailersHandler handles GET /api/trailers
func GetTrailersHandler(svc *services.DispatchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trailers, err := svc.GetTrailers(r.Context())
		if err != nil {
			respondStoreError(w, err)
			return
		}
		trailers = filterByRoute(trailers, r.URL.Query().Get("routeId"),
			func(t entities.SavedTrailer) string { return t.RouteID })
		respondWithSuccess(w, http.StatusOK, &trailers)
	}
}

// SaveTrailerHandler handles POST /api/trailers: upsert by (plate, routeId).
func SaveTrailerHandler(svc *services.DispatchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.SaveVehicleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if err := req.Validate(); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		trailer, err := svc.SaveTrailer(r.Context(), req.ToInput())
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, trailer)
	}
}

// GetVansHandler handles GET /api/vans
func GetVansHandler(svc *services.DispatchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vans, err := svc.GetVans(r.Context())
		if err != nil {
			respondStoreError(w, err)
			return
		}
		vans = filterByRoute(vans, r.URL.Query().Get("routeId"),
			func(v entities.SavedVan) string { return v.RouteID })
		respondWithSuccess(w, http.StatusOK, &vans)
	}
}

// SaveVanHandler handles POST /api/vans: upsert by (plate, routeId).
func SaveVanHandler(svc *services.DispatchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.SaveVehicleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if err := req.Validate(); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		van, err := svc.SaveVan(r.Context(), req.ToInput())
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, van)
	}
}
