package driver

import (
	"time"

	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/shared"
)

// WorkLog accumulates the driving minutes a driver has already performed
// on a calendar date, outside of any plan under construction.
type WorkLog struct {
	DriverID       string
	Date           time.Time
	DrivingMinutes int
	ISOWeek        string
	ExtendedDay    bool
}

// NewWorkLog creates a work log entry, deriving the ISO week from the date
func NewWorkLog(driverID string, date time.Time, drivingMinutes int) (*WorkLog, error) {
	if driverID == "" {
		return nil, shared.NewValidationError("driverID", "cannot be empty")
	}
	if drivingMinutes < 0 {
		return nil, shared.NewValidationError("drivingMinutes", "cannot be negative")
	}
	return &WorkLog{
		DriverID:       driverID,
		Date:           date,
		DrivingMinutes: drivingMinutes,
		ISOWeek:        shared.ISOWeekKey(date),
	}, nil
}

// LogBook indexes work logs for limit accounting
type LogBook struct {
	byDriverDate map[string]map[string]*WorkLog
}

// NewLogBook indexes a slice of work logs by driver and date
func NewLogBook(logs []*WorkLog) *LogBook {
	book := &LogBook{byDriverDate: make(map[string]map[string]*WorkLog)}
	for _, l := range logs {
		dates, ok := book.byDriverDate[l.DriverID]
		if !ok {
			dates = make(map[string]*WorkLog)
			book.byDriverDate[l.DriverID] = dates
		}
		dates[shared.DateKey(l.Date)] = l
	}
	return book
}

// MinutesOn returns the logged driving minutes of a driver on a date
func (b *LogBook) MinutesOn(driverID string, date time.Time) int {
	if l, ok := b.byDriverDate[driverID][shared.DateKey(date)]; ok {
		return l.DrivingMinutes
	}
	return 0
}

// MinutesInWindow sums logged driving minutes of a driver over a closed
// date interval. Used for weekly and rolling two-week limit checks.
func (b *LogBook) MinutesInWindow(driverID string, from, to time.Time) int {
	total := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		total += b.MinutesOn(driverID, d)
	}
	return total
}

// ExtendedDaysInWeek counts logged extended days of a driver in the ISO week
// containing the given date.
func (b *LogBook) ExtendedDaysInWeek(driverID string, date time.Time) int {
	week := shared.ISOWeekKey(date)
	count := 0
	for _, l := range b.byDriverDate[driverID] {
		if l.ExtendedDay && l.ISOWeek == week {
			count++
		}
	}
	return count
}
