package persistence

import (
	"time"
)

// LocationModel represents the locations table
type LocationModel struct {
	ID   string `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name;not null"`
	Role string `gorm:"column:role;not null;index"`
}

func (LocationModel) TableName() string {
	return "locations"
}

// RouteModel represents the routes table: one row per directed leg
type RouteModel struct {
	FromID          string `gorm:"column:from_id;primaryKey"`
	ToID            string `gorm:"column:to_id;primaryKey"`
	DurationMinutes int    `gorm:"column:duration_minutes;not null"`
}

func (RouteModel) TableName() string {
	return "routes"
}

// DriverModel represents the drivers table
type DriverModel struct {
	ID             string     `gorm:"column:id;primaryKey"`
	Name           string     `gorm:"column:name;not null"`
	HomeBaseID     string     `gorm:"column:home_base_id;not null"`
	Category       string     `gorm:"column:category;not null;default:'resident'"`
	Phone          string     `gorm:"column:phone"`
	HourlyCost     *float64   `gorm:"column:hourly_cost"`
	ADRExpiry      *time.Time `gorm:"column:adr_expiry"`
	LicenceExpiry  *time.Time `gorm:"column:licence_expiry"`
	Active         bool       `gorm:"column:active;not null;default:true"`
	UsedExtensions int        `gorm:"column:used_extensions;not null;default:0"`
}

func (DriverModel) TableName() string {
	return "drivers"
}

// VehicleModel represents the vehicles (tractors) table
type VehicleModel struct {
	ID         string `gorm:"column:id;primaryKey"`
	Plate      string `gorm:"column:plate"`
	BaseID     string `gorm:"column:base_id;not null"`
	TankLiters int    `gorm:"column:tank_liters;not null"`
	LocationID string `gorm:"column:location_id;not null"`
	TankFull   bool   `gorm:"column:tank_full;not null;default:false"`
}

func (VehicleModel) TableName() string {
	return "vehicles"
}

// TrailerModel represents the trailers table
type TrailerModel struct {
	ID         string `gorm:"column:id;primaryKey"`
	Plate      string `gorm:"column:plate"`
	BaseID     string `gorm:"column:base_id;not null"`
	Liters     int    `gorm:"column:liters;not null"`
	LocationID string `gorm:"column:location_id;not null"`
	Full       bool   `gorm:"column:full;not null;default:false"`
}

func (TrailerModel) TableName() string {
	return "trailers"
}

// ScheduleModel represents the schedules table. The attached initial fleet
// states are stored as JSON text (maps of id → full).
type ScheduleModel struct {
	ID                  string    `gorm:"column:id;primaryKey"`
	Name                string    `gorm:"column:name;not null"`
	StartDate           time.Time `gorm:"column:start_date;not null"`
	EndDate             time.Time `gorm:"column:end_date;not null"`
	RequiredLiters      int       `gorm:"column:required_liters;not null"`
	IncludeWeekend      bool      `gorm:"column:include_weekend;not null;default:false"`
	Status              string    `gorm:"column:status;not null;default:'draft'"`
	InitialTrailerState string    `gorm:"column:initial_trailer_state;type:text"`
	InitialVehicleState string    `gorm:"column:initial_vehicle_state;type:text"`
}

func (ScheduleModel) TableName() string {
	return "schedules"
}

// TripModel represents the trips table. Trailer bindings are an ordered
// JSON array stored as text.
type TripModel struct {
	ID              string    `gorm:"column:id;primaryKey"`
	ScheduleID      string    `gorm:"column:schedule_id;not null;index"`
	DriverID        string    `gorm:"column:driver_id"`
	VehicleID       string    `gorm:"column:vehicle_id"`
	Date            time.Time `gorm:"column:date;not null;index"`
	DepartureMinute int       `gorm:"column:departure_minute;not null"`
	ReturnMinute    int       `gorm:"column:return_minute;not null"`
	TripType        string    `gorm:"column:trip_type;not null"`
	Status          string    `gorm:"column:status;not null;default:'planned'"`
	Trailers        string    `gorm:"column:trailers;type:text"`
}

func (TripModel) TableName() string {
	return "trips"
}

// WorkLogModel represents the driver_work_logs table
type WorkLogModel struct {
	DriverID       string    `gorm:"column:driver_id;primaryKey"`
	Date           time.Time `gorm:"column:date;primaryKey"`
	DrivingMinutes int       `gorm:"column:driving_minutes;not null"`
	ISOWeek        string    `gorm:"column:iso_week;not null;index"`
	ExtendedDay    bool      `gorm:"column:extended_day;not null;default:false"`
}

func (WorkLogModel) TableName() string {
	return "driver_work_logs"
}
