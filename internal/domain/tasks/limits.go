package tasks

// Limits carries the ADR driver-hour parameters. Extended-day and
// extended-supply activations draw from one combined weekly budget,
// accounted on ISO-week boundaries.
type Limits struct {
	DailyDriveMinutes    int
	ExtendedDriveMinutes int
	MaxExtendedPerWeek   int
	WeeklyDriveMinutes   int
	BiweeklyDriveMinutes int

	// A 45-minute break must be embedded in any 4h30 of accumulated driving
	BreakAfterDriving int
	BreakMinutes      int
}

// DefaultLimits are the regulatory stock values
func DefaultLimits() Limits {
	return Limits{
		DailyDriveMinutes:    540,
		ExtendedDriveMinutes: 600,
		MaxExtendedPerWeek:   2,
		WeeklyDriveMinutes:   3360,
		BiweeklyDriveMinutes: 5400,
		BreakAfterDriving:    270,
		BreakMinutes:         45,
	}
}
