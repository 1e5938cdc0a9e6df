package dtos

import (
	"errors"
	"fmt"

	"transvalia/dispatch/internal/models/entities"
	"transvalia/dispatch/internal/store"
)

// AddRouteRequest creates a new route template.
type AddRouteRequest struct {
	ID   string             `json:"id"`
	Name string             `json:"name"`
	Type entities.RouteType `json:"type"`
}

func (r *AddRouteRequest) Validate() error {
	if r.ID == "" {
		return errors.New("id is required")
	}
	if r.Name == "" {
		return errors.New("name is required")
	}
	if !r.Type.Valid() {
		return fmt.Errorf("type must be TRAILER or FURGO, got %q", r.Type)
	}
	return nil
}

func (r *AddRouteRequest) ToEntity() entities.RouteTemplate {
	return entities.RouteTemplate{ID: r.ID, Name: r.Name, Type: r.Type}
}

// DriverInput is one embedded driver snapshot on a record submission.
type DriverInput struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	DNI   string `json:"dni"`
	Phone string `json:"phone"`
}

// RecordRequest is the shared payload of record create and update calls.
type RecordRequest struct {
	ID              string             `json:"id"`
	Date            string             `json:"date"`
	RouteTemplateID string             `json:"routeTemplateId"`
	RouteName       string             `json:"routeName"`
	RouteType       entities.RouteType `json:"routeType"`
	Drivers         []DriverInput      `json:"drivers"`
	TractorPlate    *string            `json:"tractorPlate,omitempty"`
	TrailerPlate    *string            `json:"trailerPlate,omitempty"`
	VehiclePlate    *string            `json:"vehiclePlate,omitempty"`
	Seal            string             `json:"seal"`
	DepartureTime   *string            `json:"departureTime,omitempty"`
}

// Validate enforces the shape rules: required strings, a known route type,
// and the plate combination matching that type (tractor+trailer for TRAILER,
// a single vehicle plate for FURGO).
func (r *RecordRequest) Validate() error {
	if r.ID == "" {
		return errors.New("id is required")
	}
	if r.Date == "" {
		return errors.New("date is required")
	}
	if r.RouteTemplateID == "" {
		return errors.New("routeTemplateId is required")
	}
	if r.RouteName == "" {
		return errors.New("routeName is required")
	}
	if !r.RouteType.Valid() {
		return fmt.Errorf("routeType must be TRAILER or FURGO, got %q", r.RouteType)
	}
	if r.Seal == "" {
		return errors.New("seal is required")
	}
	if len(r.Drivers) == 0 {
		return errors.New("at least one driver is required")
	}
	for i, d := range r.Drivers {
		if d.Name == "" || d.DNI == "" {
			return fmt.Errorf("driver #%d: name and dni are required", i+1)
		}
	}

	switch r.RouteType {
	case entities.RouteTypeTrailer:
		if r.TractorPlate == nil || *r.TractorPlate == "" || r.TrailerPlate == nil || *r.TrailerPlate == "" {
			return errors.New("TRAILER records require tractorPlate and trailerPlate")
		}
		if r.VehiclePlate != nil && *r.VehiclePlate != "" {
			return errors.New("TRAILER records must not carry a vehiclePlate")
		}
	case entities.RouteTypeFurgo:
		if r.VehiclePlate == nil || *r.VehiclePlate == "" {
			return errors.New("FURGO records require vehiclePlate")
		}
		if (r.TractorPlate != nil && *r.TractorPlate != "") || (r.TrailerPlate != nil && *r.TrailerPlate != "") {
			return errors.New("FURGO records must not carry tractor or trailer plates")
		}
	}
	return nil
}

func (r *RecordRequest) ToEntity() entities.RouteRecord {
	drivers := make(entities.DriverList, 0, len(r.Drivers))
	for _, d := range r.Drivers {
		drivers = append(drivers, entities.Driver{
			ID:    d.ID,
			Name:  d.Name,
			DNI:   d.DNI,
			Phone: d.Phone,
		})
	}
	return entities.RouteRecord{
		ID:              r.ID,
		Date:            r.Date,
		RouteTemplateID: r.RouteTemplateID,
		RouteName:       r.RouteName,
		RouteType:       r.RouteType,
		Drivers:         drivers,
		TractorPlate:    r.TractorPlate,
		TrailerPlate:    r.TrailerPlate,
		VehiclePlate:    r.VehiclePlate,
		Seal:            r.Seal,
		DepartureTime:   r.DepartureTime,
	}
}

// SaveDriverRequest upserts a driver into the per-route reference table.
type SaveDriverRequest struct {
	Name    string `json:"name"`
	DNI     string `json:"dni"`
	Phone   string `json:"phone"`
	RouteID string `json:"routeId"`
}

func (r *SaveDriverRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.DNI == "" {
		return errors.New("dni is required")
	}
	if r.RouteID == "" {
		return errors.New("routeId is required")
	}
	return nil
}

func (r *SaveDriverRequest) ToInput() store.SaveDriverInput {
	return store.SaveDriverInput{
		Name:    r.Name,
		DNI:     r.DNI,
		Phone:   r.Phone,
		RouteID: r.RouteID,
	}
}

// SaveVehicleRequest upserts a tractor/trailer/van plate for a route.
type SaveVehicleRequest struct {
	Plate   string `json:"plate"`
	RouteID string `json:"routeId"`
}

func (r *SaveVehicleRequest) Validate() error {
	if r.Plate == "" {
		return errors.New("plate is required")
	}
	if r.RouteID == "" {
		return errors.New("routeId is required")
	}
	return nil
}

func (r *SaveVehicleRequest) ToInput() store.SaveVehicleInput {
	return store.SaveVehicleInput{
		Plate:   r.Plate,
		RouteID: r.RouteID,
	}
}
