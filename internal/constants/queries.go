package constants

const (
	GetAllRoutes = `
	SELECT id, name, type, created_at FROM route_templates ORDER BY id
	`

	InsertRoute = `
	INSERT INTO route_templates (id, name, type)
	VALUES ($1, $2, $3)
	RETURNING id, name, type, created_at
	`

	SeedRoute = `
	INSERT INTO route_templates (id, name, type)
	VALUES ($1, $2, $3)
	ON CONFLICT (id) DO NOTHING
	`

	DeleteRouteByID = `
	DELETE FROM route_templates WHERE id = $1
	`

	GetAllRecords = `
	SELECT id, date, route_template_id, route_name, route_type, drivers,
	       tractor_plate, trailer_plate, vehicle_plate, seal, departure_time, created_at
	FROM route_records
	ORDER BY created_at DESC
	`

	InsertRecord = `
	INSERT INTO route_records (
		id, date, route_template_id, route_name, route_type, drivers,
		tractor_plate, trailer_plate, vehicle_plate, seal, departure_time, created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	RETURNING id, date, route_template_id, route_name, route_type, drivers,
	          tractor_plate, trailer_plate, vehicle_plate, seal, departure_time, created_at
	`

	UpdateRecordByID = `
	UPDATE route_records SET
		date = $2,
		route_template_id = $3,
		route_name = $4,
		route_type = $5,
		drivers = $6,
		tractor_plate = $7,
		trailer_plate = $8,
		vehicle_plate = $9,
		seal = $10,
		departure_time = $11
	WHERE id = $1
	RETURNING id, date, route_template_id, route_name, route_type, drivers,
	          tractor_plate, trailer_plate, vehicle_plate, seal, departure_time, created_at
	`

	DeleteRecordByID = `
	DELETE FROM route_records WHERE id = $1
	`

	GetAllDrivers = `
	SELECT id, name, dni, phone, route_id, usage_count, last_used
	FROM saved_drivers
	ORDER BY last_used DESC
	`

	UpsertDriver = `
	INSERT INTO saved_drivers (id, name, dni, phone, route_id, usage_count, last_used)
	VALUES ($1, $2, $3, $4, $5, 1, $6)
	ON CONFLICT (dni, route_id) DO UPDATE SET
		name = EXCLUDED.name,
		phone = EXCLUDED.phone,
		usage_count = saved_drivers.usage_count + 1,
		last_used = EXCLUDED.last_used
	RETURNING id, name, dni, phone, route_id, usage_count, last_used
	`

	GetAllTractors = `
	SELECT id, plate, route_id, usage_count, last_used
	FROM saved_tractors
	ORDER BY last_used DESC
	`

	UpsertTractor = `
	INSERT INTO saved_tractors (id, plate, route_id, usage_count, last_used)
	VALUES ($1, $2, $3, 1, $4)
	ON CONFLICT (plate, route_id) DO UPDATE SET
		usage_count = saved_tractors.usage_count + 1,
		last_used = EXCLUDED.last_used
	RETURNING id, plate, route_id, usage_count, last_used
	`

	GetAllTrailers = `
	SELECT id, plate, route_id, usage_count, last_used
	FROM saved_trailers
	ORDER BY last_used DESC
	`

	UpsertTrailer = `
	INSERT INTO saved_trailers (id, plate, route_id, usage_count, last_used)
	VALUES ($1, $2, $3, 1, $4)
	ON CONFLICT (plate, route_id) DO UPDATE SET
		usage_count = saved_trailers.usage_count + 1,
		last_used = EXCLUDED.last_used
	RETURNING id, plate, route_id, usage_count, last_used
	`

	GetAllVans = `
	SELECT id, plate, route_id, usage_count, last_used
	FROM saved_vans
	ORDER BY last_used DESC
	`

	UpsertVan = `
	INSERT INTO saved_vans (id, plate, route_id, usage_count, last_used)
	VALUES ($1, $2, $3, 1, $4)
	ON CONFLICT (plate, route_id) DO UPDATE SET
		usage_count = saved_vans.usage_count + 1,
		last_used = EXCLUDED.last_used
	RETURNING id, plate, route_id, usage_count, last_used
	`
)
