package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// RouteType is the transport kind of a route: full trailer rig or van.
type RouteType string

const (
	RouteTypeTrailer RouteType = "TRAILER"
	RouteTypeFurgo   RouteType = "FURGO"
)

// Valid reports whether t is one of the two known route types.
func (t RouteType) Valid() bool {
	return t == RouteTypeTrailer || t == RouteTypeFurgo
}

// RouteTemplate is a reusable named dispatch route. Templates are immutable
// after creation; they are only ever added or deleted.
type RouteTemplate struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Type      RouteType `db:"type" json:"type"`
	CreatedAt time.Time `db:"created_at" json:"createdAt,omitempty"`
}

// Driver is the value snapshot embedded in a RouteRecord. Records own copies,
// so later edits to the saved-driver reference table never rewrite history.
type Driver struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	DNI   string `json:"dni"`
	Phone string `json:"phone"`
}

// DriverList round-trips the embedded driver snapshots through the JSONB
// column of the records table.
type DriverList []Driver

func (l DriverList) Value() (driver.Value, error) {
	if l == nil {
		l = DriverList{}
	}
	return json.Marshal(l)
}

func (l *DriverList) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		*l = DriverList{}
		return nil
	default:
		return fmt.Errorf("unsupported driver list source type %T", src)
	}
}

// RouteRecord is one concrete dispatch event for a route template on a
// calendar day. RouteName and RouteType are denormalized from the template at
// creation time so the record stays correct if the template is later deleted.
type RouteRecord struct {
	ID              string     `db:"id" json:"id"`
	Date            string     `db:"date" json:"date"`
	RouteTemplateID string     `db:"route_template_id" json:"routeTemplateId"`
	RouteName       string     `db:"route_name" json:"routeName"`
	RouteType       RouteType  `db:"route_type" json:"routeType"`
	Drivers         DriverList `db:"drivers" json:"drivers"`
	TractorPlate    *string    `db:"tractor_plate" json:"tractorPlate,omitempty"`
	TrailerPlate    *string    `db:"trailer_plate" json:"trailerPlate,omitempty"`
	VehiclePlate    *string    `db:"vehicle_plate" json:"vehiclePlate,omitempty"`
	Seal            string     `db:"seal" json:"seal"`
	DepartureTime   *string    `db:"departure_time" json:"departureTime,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
}

// SavedDriver is the per-route autocomplete entry for a driver. Natural key is
// (dni, routeId); the surrogate id never changes after the first save.
type SavedDriver struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	DNI        string    `db:"dni" json:"dni"`
	Phone      string    `db:"phone" json:"phone"`
	RouteID    string    `db:"route_id" json:"routeId"`
	UsageCount int       `db:"usage_count" json:"usageCount"`
	LastUsed   time.Time `db:"last_used" json:"lastUsed"`
}

// SavedTractor tracks tractor plate usage per route. Natural key (plate, routeId).
type SavedTractor struct {
	ID         string    `db:"id" json:"id"`
	Plate      string    `db:"plate" json:"plate"`
	RouteID    string    `db:"route_id" json:"routeId"`
	UsageCount int       `db:"usage_count" json:"usageCount"`
	LastUsed   time.Time `db:"last_used" json:"lastUsed"`
}

// SavedTrailer tracks trailer plate usage per route. Natural key (plate, routeId).
type SavedTrailer struct {
	ID         string    `db:"id" json:"id"`
	Plate      string    `db:"plate" json:"plate"`
	RouteID    string    `db:"route_id" json:"routeId"`
	UsageCount int       `db:"usage_count" json:"usageCount"`
	LastUsed   time.Time `db:"last_used" json:"lastUsed"`
}

// SavedVan tracks van plate usage per route. Natural key (plate, routeId).
type SavedVan struct {
	ID         string    `db:"id" json:"id"`
	Plate      string    `db:"plate" json:"plate"`
	RouteID    string    `db:"route_id" json:"routeId"`
	UsageCount int       `db:"usage_count" json:"usageCount"`
	LastUsed   time.Time `db:"last_used" json:"lastUsed"`
}
