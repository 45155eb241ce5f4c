package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/schedule"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSchedule_WorkingDatesSkipWeekend(t *testing.T) {
	// Friday 2025-03-07 through Monday 2025-03-10
	s, err := schedule.NewSchedule("S1", "span", date(2025, 3, 7), date(2025, 3, 10), 0)
	require.NoError(t, err)

	dates := s.WorkingDates()
	require.Len(t, dates, 2)
	assert.Equal(t, time.Friday, dates[0].Weekday())
	assert.Equal(t, time.Monday, dates[1].Weekday())
}

func TestSchedule_WorkingDatesWithWeekend(t *testing.T) {
	s, err := schedule.NewSchedule("S1", "span", date(2025, 3, 7), date(2025, 3, 10), 0)
	require.NoError(t, err)
	s.IncludeWeekend = true

	assert.Len(t, s.WorkingDates(), 4)
}

func TestSchedule_ConfirmOnlyFromDraft(t *testing.T) {
	s, err := schedule.NewSchedule("S1", "span", date(2025, 3, 3), date(2025, 3, 3), 0)
	require.NoError(t, err)

	require.NoError(t, s.Confirm())
	assert.Equal(t, schedule.StatusConfirmed, s.Status)

	assert.Error(t, s.Confirm())
}

func TestSchedule_RejectsInvertedInterval(t *testing.T) {
	_, err := schedule.NewSchedule("S1", "span", date(2025, 3, 10), date(2025, 3, 3), 0)
	assert.Error(t, err)
}
