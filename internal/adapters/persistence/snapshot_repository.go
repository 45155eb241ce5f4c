package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/alessandroavenali/fuel-logistics-go/internal/application/planning"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/driver"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/fleet"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/location"
)

// GormSnapshotRepository reads the whole planning snapshot in one pass.
// The store is touched only here and at plan persistence.
type GormSnapshotRepository struct {
	db *gorm.DB
}

// NewGormSnapshotRepository creates a GORM-based snapshot repository
func NewGormSnapshotRepository(db *gorm.DB) *GormSnapshotRepository {
	return &GormSnapshotRepository{db: db}
}

// LoadSnapshot reads every entity class the planners consume
func (r *GormSnapshotRepository) LoadSnapshot(ctx context.Context) (*planning.Snapshot, error) {
	snap := &planning.Snapshot{}

	var locations []LocationModel
	if err := r.db.WithContext(ctx).Order("id").Find(&locations).Error; err != nil {
		return nil, fmt.Errorf("failed to load locations: %w", err)
	}
	for _, m := range locations {
		snap.Locations = append(snap.Locations, &location.Location{
			ID:   m.ID,
			Name: m.Name,
			Role: location.Role(m.Role),
		})
	}

	var routes []RouteModel
	if err := r.db.WithContext(ctx).Order("from_id, to_id").Find(&routes).Error; err != nil {
		return nil, fmt.Errorf("failed to load routes: %w", err)
	}
	for _, m := range routes {
		snap.Routes = append(snap.Routes, &location.Route{
			FromID:          m.FromID,
			ToID:            m.ToID,
			DurationMinutes: m.DurationMinutes,
		})
	}

	var drivers []DriverModel
	if err := r.db.WithContext(ctx).Order("id").Find(&drivers).Error; err != nil {
		return nil, fmt.Errorf("failed to load drivers: %w", err)
	}
	for _, m := range drivers {
		snap.Drivers = append(snap.Drivers, &driver.Driver{
			ID:             m.ID,
			Name:           m.Name,
			HomeBaseID:     m.HomeBaseID,
			Category:       driver.Category(m.Category),
			Phone:          m.Phone,
			HourlyCost:     m.HourlyCost,
			ADRExpiry:      m.ADRExpiry,
			LicenceExpiry:  m.LicenceExpiry,
			Active:         m.Active,
			UsedExtensions: m.UsedExtensions,
		})
	}

	var vehicles []VehicleModel
	if err := r.db.WithContext(ctx).Order("id").Find(&vehicles).Error; err != nil {
		return nil, fmt.Errorf("failed to load vehicles: %w", err)
	}
	for _, m := range vehicles {
		snap.Tractors = append(snap.Tractors, &fleet.Tractor{
			ID:         m.ID,
			Plate:      m.Plate,
			BaseID:     m.BaseID,
			TankLiters: m.TankLiters,
			LocationID: m.LocationID,
			TankFull:   m.TankFull,
		})
	}

	var trailers []TrailerModel
	if err := r.db.WithContext(ctx).Order("id").Find(&trailers).Error; err != nil {
		return nil, fmt.Errorf("failed to load trailers: %w", err)
	}
	for _, m := range trailers {
		snap.Trailers = append(snap.Trailers, &fleet.Trailer{
			ID:         m.ID,
			Plate:      m.Plate,
			BaseID:     m.BaseID,
			Liters:     m.Liters,
			LocationID: m.LocationID,
			Full:       m.Full,
		})
	}

	var logs []WorkLogModel
	if err := r.db.WithContext(ctx).Order("driver_id, date").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to load work logs: %w", err)
	}
	for _, m := range logs {
		snap.WorkLogs = append(snap.WorkLogs, &driver.WorkLog{
			DriverID:       m.DriverID,
			Date:           m.Date,
			DrivingMinutes: m.DrivingMinutes,
			ISOWeek:        m.ISOWeek,
			ExtendedDay:    m.ExtendedDay,
		})
	}

	return snap, nil
}
