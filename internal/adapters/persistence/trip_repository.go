package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/trip"
)

// GormTripRepository implements trip persistence using GORM
type GormTripRepository struct {
	db *gorm.DB
}

// NewGormTripRepository creates a GORM-based trip repository
func NewGormTripRepository(db *gorm.DB) *GormTripRepository {
	return &GormTripRepository{db: db}
}

// ReplacePlan atomically replaces the whole plan of a schedule: delete all
// prior trips, then insert the new list, inside one transaction. A
// half-replaced plan is never observable.
func (r *GormTripRepository) ReplacePlan(ctx context.Context, scheduleID string, trips []*trip.Trip) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("schedule_id = ?", scheduleID).Delete(&TripModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete prior plan: %w", err)
		}
		for _, t := range trips {
			model, err := tripToModel(t)
			if err != nil {
				return err
			}
			if err := tx.Create(model).Error; err != nil {
				return fmt.Errorf("failed to insert trip %s: %w", t.ID, err)
			}
		}
		return nil
	})
}

// FindBySchedule lists a schedule's trips in execution order
func (r *GormTripRepository) FindBySchedule(ctx context.Context, scheduleID string) ([]*trip.Trip, error) {
	var models []TripModel
	err := r.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Order("date, departure_minute, id").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load trips: %w", err)
	}

	trips := make([]*trip.Trip, 0, len(models))
	for i := range models {
		t, err := modelToTrip(&models[i])
		if err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, nil
}

// Save upserts one manually edited trip
func (r *GormTripRepository) Save(ctx context.Context, t *trip.Trip) error {
	model, err := tripToModel(t)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save trip: %w", err)
	}
	return nil
}

// Delete removes one trip
func (r *GormTripRepository) Delete(ctx context.Context, tripID string) error {
	result := r.db.WithContext(ctx).Where("id = ?", tripID).Delete(&TripModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete trip: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("trip %s not found", tripID)
	}
	return nil
}

func tripToModel(t *trip.Trip) (*TripModel, error) {
	bindings, err := json.Marshal(t.Trailers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode trailer bindings: %w", err)
	}
	return &TripModel{
		ID:              t.ID,
		ScheduleID:      t.ScheduleID,
		DriverID:        t.DriverID,
		VehicleID:       t.VehicleID,
		Date:            t.Date,
		DepartureMinute: t.DepartureMinute,
		ReturnMinute:    t.ReturnMinute,
		TripType:        string(t.Type),
		Status:          string(t.Status),
		Trailers:        string(bindings),
	}, nil
}

func modelToTrip(m *TripModel) (*trip.Trip, error) {
	t := &trip.Trip{
		ID:              m.ID,
		ScheduleID:      m.ScheduleID,
		DriverID:        m.DriverID,
		VehicleID:       m.VehicleID,
		Date:            m.Date,
		DepartureMinute: m.DepartureMinute,
		ReturnMinute:    m.ReturnMinute,
		Type:            trip.Type(m.TripType),
		Status:          trip.Status(m.Status),
	}
	if m.Trailers != "" {
		if err := json.Unmarshal([]byte(m.Trailers), &t.Trailers); err != nil {
			return nil, fmt.Errorf("corrupt trailer bindings on trip %s: %w", m.ID, err)
		}
	}
	return t, nil
}
