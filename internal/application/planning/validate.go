package planning

import (
	"fmt"
	"sort"
	"time"

	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/driver"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/shared"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/tasks"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/trip"
)

// ViolationKind classifies an ADR finding
type ViolationKind string

const (
	ViolationDailyLimit         ViolationKind = "daily_limit"
	ViolationWeeklyLimit        ViolationKind = "weekly_limit"
	ViolationBiweeklyLimit      ViolationKind = "biweekly_limit"
	ViolationMissingBreak       ViolationKind = "missing_break"
	ViolationExtendedDayOveruse ViolationKind = "extended_day_overuse"
	ViolationLicenceExpired     ViolationKind = "licence_expired"
)

// Violation is one hard finding; the same shape doubles as a soft warning
type Violation struct {
	DriverID string        `json:"driverId"`
	Kind     ViolationKind `json:"kind"`
	Message  string        `json:"message"`
}

// ValidationReport separates hard violations from soft threshold warnings.
// A report with violations does not fail a plan but blocks confirmation.
type ValidationReport struct {
	Violations []Violation `json:"violations"`
	Warnings   []Violation `json:"warnings"`
}

// Clean reports whether the plan carries zero hard violations
func (r *ValidationReport) Clean() bool {
	return len(r.Violations) == 0
}

// warnThresholdPercent flags soft warnings at 90% of any limit
const warnThresholdPercent = 90

// Validator checks a candidate plan plus existing work logs against the
// ADR driver-hour rules.
type Validator struct {
	catalog *tasks.Catalog
	limits  tasks.Limits
}

// NewValidator creates an ADR validator
func NewValidator(catalog *tasks.Catalog, limits tasks.Limits) *Validator {
	return &Validator{catalog: catalog, limits: limits}
}

// Validate inspects every driver touched by the plan
func (v *Validator) Validate(trips []*trip.Trip, drivers []*driver.Driver, book *driver.LogBook) *ValidationReport {
	report := &ValidationReport{}
	if book == nil {
		book = driver.NewLogBook(nil)
	}

	byDriver := make(map[string][]*trip.Trip)
	for _, t := range trips {
		if t.Status == trip.StatusCancelled || t.DriverID == "" {
			continue
		}
		byDriver[t.DriverID] = append(byDriver[t.DriverID], t)
	}

	driverByID := make(map[string]*driver.Driver, len(drivers))
	for _, d := range drivers {
		driverByID[d.ID] = d
	}

	var ids []string
	for id := range byDriver {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		v.validateDriver(report, id, driverByID[id], byDriver[id], book)
	}
	return report
}

func (v *Validator) validateDriver(report *ValidationReport, id string, d *driver.Driver, trips []*trip.Trip, book *driver.LogBook) {
	sort.SliceStable(trips, func(i, j int) bool {
		if !trips[i].Date.Equal(trips[j].Date) {
			return trips[i].Date.Before(trips[j].Date)
		}
		return trips[i].DepartureMinute < trips[j].DepartureMinute
	})

	byDate := make(map[string][]*trip.Trip)
	var dates []time.Time
	for _, t := range trips {
		key := shared.DateKey(t.Date)
		if _, seen := byDate[key]; !seen {
			dates = append(dates, t.Date)
		}
		byDate[key] = append(byDate[key], t)

		if d != nil && !d.LicenceValidOn(t.Date) {
			report.Violations = append(report.Violations, Violation{
				DriverID: id,
				Kind:     ViolationLicenceExpired,
				Message:  fmt.Sprintf("licence or ADR certificate expired before %s", key),
			})
		}
	}

	extendedByWeek := make(map[string]int)
	drivenByDate := make(map[string]int)

	for _, date := range dates {
		key := shared.DateKey(date)
		minutes := book.MinutesOn(id, date)
		for _, t := range byDate[key] {
			minutes += v.drivingMinutes(t)
		}
		drivenByDate[key] = minutes

		switch {
		case minutes > v.limits.ExtendedDriveMinutes:
			report.Violations = append(report.Violations, Violation{
				DriverID: id,
				Kind:     ViolationDailyLimit,
				Message:  fmt.Sprintf("%d driving minutes on %s exceed even the extended %d-minute day", minutes, key, v.limits.ExtendedDriveMinutes),
			})
		case minutes > v.limits.DailyDriveMinutes:
			extendedByWeek[shared.ISOWeekKey(date)]++
		case minutes*100 >= v.limits.DailyDriveMinutes*warnThresholdPercent:
			report.Warnings = append(report.Warnings, Violation{
				DriverID: id,
				Kind:     ViolationDailyLimit,
				Message:  fmt.Sprintf("%d driving minutes on %s reach %d%% of the daily limit", minutes, key, minutes*100/v.limits.DailyDriveMinutes),
			})
		}

		v.checkBreaks(report, id, key, byDate[key])
	}

	// Extended days already logged outside the plan draw from the same
	// weekly budget
	loggedWeeks := make(map[string]bool)
	for _, date := range dates {
		week := shared.ISOWeekKey(date)
		if loggedWeeks[week] {
			continue
		}
		loggedWeeks[week] = true
		extendedByWeek[week] += book.ExtendedDaysInWeek(id, date)
	}

	for week, count := range extendedByWeek {
		if count > v.limits.MaxExtendedPerWeek {
			report.Violations = append(report.Violations, Violation{
				DriverID: id,
				Kind:     ViolationExtendedDayOveruse,
				Message:  fmt.Sprintf("%d extended days in week %s, at most %d allowed", count, week, v.limits.MaxExtendedPerWeek),
			})
		}
	}

	v.checkRollingWindows(report, id, dates, drivenByDate, book)
}

// drivingMinutes derives the road minutes of a trip from its type
func (v *Validator) drivingMinutes(t *trip.Trip) int {
	code, ok := tasks.CodeForTripType(t.Type)
	if !ok {
		return 0
	}
	return v.catalog.MustSpec(code).DrivingMinutes
}

// checkBreaks walks a day's trips as driving and pause segments. Pauses
// accumulate across driving (the regulation allows a split break); once
// 45 minutes of pause have accrued the driving counter resets. More than
// 4h30 of driving without such an accumulation is a violation.
func (v *Validator) checkBreaks(report *ValidationReport, id, dateKey string, trips []*trip.Trip) {
	driving := 0
	pause := 0
	cursor := -1

	flagged := false
	addPause := func(minutes int) {
		pause += minutes
		if pause >= v.limits.BreakMinutes {
			driving = 0
			pause = 0
		}
	}

	for _, t := range trips {
		if cursor >= 0 && t.DepartureMinute > cursor {
			addPause(t.DepartureMinute - cursor)
		}
		cursor = t.ReturnMinute

		code, ok := tasks.CodeForTripType(t.Type)
		if !ok {
			continue
		}
		for _, seg := range v.catalog.Segments(code) {
			if !seg.Driving {
				addPause(seg.Minutes)
				continue
			}
			driving += seg.Minutes
			if driving > v.limits.BreakAfterDriving && !flagged {
				report.Violations = append(report.Violations, Violation{
					DriverID: id,
					Kind:     ViolationMissingBreak,
					Message:  fmt.Sprintf("more than %d driving minutes without a %d-minute break on %s", v.limits.BreakAfterDriving, v.limits.BreakMinutes, dateKey),
				})
				flagged = true
			}
		}
	}
}

// checkRollingWindows enforces the weekly and rolling two-week caps
func (v *Validator) checkRollingWindows(
	report *ValidationReport,
	id string,
	dates []time.Time,
	drivenByDate map[string]int,
	book *driver.LogBook,
) {
	weeksSeen := make(map[string]bool)
	for _, date := range dates {
		week := shared.ISOWeekKey(date)
		if weeksSeen[week] {
			continue
		}
		weeksSeen[week] = true

		weekStart := startOfISOWeek(date)
		total := 0
		for d := weekStart; !d.After(weekStart.AddDate(0, 0, 6)); d = d.AddDate(0, 0, 1) {
			total += v.minutesOn(id, d, drivenByDate, book)
		}
		switch {
		case total > v.limits.WeeklyDriveMinutes:
			report.Violations = append(report.Violations, Violation{
				DriverID: id,
				Kind:     ViolationWeeklyLimit,
				Message:  fmt.Sprintf("%d driving minutes in week %s exceed the %d-minute limit", total, week, v.limits.WeeklyDriveMinutes),
			})
		case total*100 >= v.limits.WeeklyDriveMinutes*warnThresholdPercent:
			report.Warnings = append(report.Warnings, Violation{
				DriverID: id,
				Kind:     ViolationWeeklyLimit,
				Message:  fmt.Sprintf("%d driving minutes in week %s reach %d%% of the weekly limit", total, week, total*100/v.limits.WeeklyDriveMinutes),
			})
		}
	}

	flagged := false
	for _, date := range dates {
		windowStart := date.AddDate(0, 0, -13)
		total := 0
		for d := windowStart; !d.After(date); d = d.AddDate(0, 0, 1) {
			total += v.minutesOn(id, d, drivenByDate, book)
		}
		if total > v.limits.BiweeklyDriveMinutes && !flagged {
			report.Violations = append(report.Violations, Violation{
				DriverID: id,
				Kind:     ViolationBiweeklyLimit,
				Message:  fmt.Sprintf("%d driving minutes in the two weeks ending %s exceed the %d-minute limit", total, shared.DateKey(date), v.limits.BiweeklyDriveMinutes),
			})
			flagged = true
		}
	}
}

// minutesOn combines planned and logged driving minutes of one date,
// preferring the plan's figure when both exist (the plan replaces the day).
func (v *Validator) minutesOn(id string, date time.Time, drivenByDate map[string]int, book *driver.LogBook) int {
	if minutes, ok := drivenByDate[shared.DateKey(date)]; ok {
		return minutes
	}
	return book.MinutesOn(id, date)
}
