package constants

import "transvalia/dispatch/internal/models/entities"

// DefaultRoutes is the fixed seed list inserted when the route-template table
// is observed empty on the first read. Seeding is insert-if-absent by id, so
// racing first callers cannot duplicate rows.
func DefaultRoutes() []entities.RouteTemplate {
	return []entities.RouteTemplate{
		{ID: "1", Name: "VLC–GUARROMAN–VLC", Type: entities.RouteTypeTrailer},
		{ID: "2", Name: "VLC–MD–VLC", Type: entities.RouteTypeTrailer},
		{ID: "3", Name: "VLC–ZARAGOZA–VLC (PRIMER y ÚLTIMA)", Type: entities.RouteTypeTrailer},
		{ID: "4", Name: "VLC–GUARROMAN–CASTELLON", Type: entities.RouteTypeTrailer},
		{ID: "5", Name: "VALENCIA–MADRID–BENAVENTE", Type: entities.RouteTypeTrailer},
		{ID: "6", Name: "VALENCIA–MD VILLAVD–VALENCIA", Type: entities.RouteTypeTrailer},
		{ID: "7", Name: "VALENCIA–BENAVENTE–LUGO", Type: entities.RouteTypeTrailer},
		{ID: "8", Name: "VLC–MD–VLC", Type: entities.RouteTypeFurgo},
		{ID: "9", Name: "VLC–ALICANTE–VLC", Type: entities.RouteTypeFurgo},
	}
}
