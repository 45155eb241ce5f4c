package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/schedule"
)

// GormScheduleRepository implements schedule persistence using GORM
type GormScheduleRepository struct {
	db *gorm.DB
}

// NewGormScheduleRepository creates a GORM-based schedule repository
func NewGormScheduleRepository(db *gorm.DB) *GormScheduleRepository {
	return &GormScheduleRepository{db: db}
}

// FindByID retrieves a schedule; nil when it does not exist
func (r *GormScheduleRepository) FindByID(ctx context.Context, id string) (*schedule.Schedule, error) {
	var model ScheduleModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find schedule: %w", err)
	}
	return modelToSchedule(&model)
}

// FindAll lists every schedule, newest horizon first
func (r *GormScheduleRepository) FindAll(ctx context.Context) ([]*schedule.Schedule, error) {
	var models []ScheduleModel
	if err := r.db.WithContext(ctx).Order("start_date desc, id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	schedules := make([]*schedule.Schedule, 0, len(models))
	for i := range models {
		s, err := modelToSchedule(&models[i])
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, nil
}

// Save upserts a schedule
func (r *GormScheduleRepository) Save(ctx context.Context, s *schedule.Schedule) error {
	model, err := scheduleToModel(s)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save schedule: %w", err)
	}
	return nil
}

// Delete removes the schedule row only; trips stored under the schedule's ID
// are not deleted.
func (r *GormScheduleRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&ScheduleModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete schedule: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("schedule %s not found", id)
	}
	return nil
}

func modelToSchedule(m *ScheduleModel) (*schedule.Schedule, error) {
	s := &schedule.Schedule{
		ID:             m.ID,
		Name:           m.Name,
		StartDate:      m.StartDate,
		EndDate:        m.EndDate,
		RequiredLiters: m.RequiredLiters,
		IncludeWeekend: m.IncludeWeekend,
		Status:         schedule.Status(m.Status),
	}
	if m.InitialTrailerState != "" {
		if err := json.Unmarshal([]byte(m.InitialTrailerState), &s.InitialTrailerFull); err != nil {
			return nil, fmt.Errorf("corrupt initial trailer state on schedule %s: %w", m.ID, err)
		}
	}
	if m.InitialVehicleState != "" {
		if err := json.Unmarshal([]byte(m.InitialVehicleState), &s.InitialTankFull); err != nil {
			return nil, fmt.Errorf("corrupt initial vehicle state on schedule %s: %w", m.ID, err)
		}
	}
	return s, nil
}

func scheduleToModel(s *schedule.Schedule) (*ScheduleModel, error) {
	trailerState, err := json.Marshal(s.InitialTrailerFull)
	if err != nil {
		return nil, fmt.Errorf("failed to encode initial trailer state: %w", err)
	}
	vehicleState, err := json.Marshal(s.InitialTankFull)
	if err != nil {
		return nil, fmt.Errorf("failed to encode initial vehicle state: %w", err)
	}
	return &ScheduleModel{
		ID:                  s.ID,
		Name:                s.Name,
		StartDate:           s.StartDate,
		EndDate:             s.EndDate,
		RequiredLiters:      s.RequiredLiters,
		IncludeWeekend:      s.IncludeWeekend,
		Status:              string(s.Status),
		InitialTrailerState: string(trailerState),
		InitialVehicleState: string(vehicleState),
	}, nil
}
