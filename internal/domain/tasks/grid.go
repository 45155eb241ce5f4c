package tasks

// Grid discretises a working day into uniform slots and knows the
// destination entry window. All minutes are relative to shift start.
type Grid struct {
	ShiftStartMinute int // minutes from midnight, default 06:00
	ShiftMinutes     int
	SlotMinutes      int
	EntryStartMinute int // destination entry opens, relative to shift start
	EntryEndMinute   int // destination entry closes, relative to shift start
}

// DefaultGrid is the stock 06:00 + 720-minute shift in 15-minute slots with
// the 08:00-18:30 destination entry window.
func DefaultGrid() Grid {
	return Grid{
		ShiftStartMinute: 6 * 60,
		ShiftMinutes:     720,
		SlotMinutes:      15,
		EntryStartMinute: 120,
		EntryEndMinute:   750,
	}
}

// Slots returns the number of start slots in a day
func (g Grid) Slots() int {
	return g.ShiftMinutes / g.SlotMinutes
}

// SlotToMinute converts a start slot index to minutes from shift start
func (g Grid) SlotToMinute(slot int) int {
	return slot * g.SlotMinutes
}

// MinuteToSlot converts minutes from shift start to the slot containing it
func (g Grid) MinuteToSlot(minute int) int {
	return minute / g.SlotMinutes
}

// CeilToSlot rounds a minute offset up to the next slot boundary
func (g Grid) CeilToSlot(minute int) int {
	rem := minute % g.SlotMinutes
	if rem == 0 {
		return minute
	}
	return minute + g.SlotMinutes - rem
}

// FitsShift reports whether a task starting at the given minute completes
// inside the shift window.
func (g Grid) FitsShift(startMinute, totalMinutes int) bool {
	return startMinute >= 0 && startMinute+totalMinutes <= g.ShiftMinutes
}

// EntryWindowAllows reports whether the destination arrival implied by the
// start minute falls inside the entry window. Tasks that never visit the
// destination always pass.
func (g Grid) EntryWindowAllows(startMinute int, spec Spec) bool {
	if spec.ArrivalOffset < 0 {
		return true
	}
	arrival := startMinute + spec.ArrivalOffset
	return arrival >= g.EntryStartMinute && arrival <= g.EntryEndMinute
}

// AllowedStart combines shift containment and the entry window
func (g Grid) AllowedStart(startMinute int, spec Spec) bool {
	return g.FitsShift(startMinute, spec.TotalMinutes) && g.EntryWindowAllows(startMinute, spec)
}

// EarliestAllowedStart returns the first minute ≥ from at which the task may
// start, honouring the entry window, or -1 when no start fits the day.
func (g Grid) EarliestAllowedStart(from int, spec Spec) int {
	start := from
	if spec.ArrivalOffset >= 0 && start+spec.ArrivalOffset < g.EntryStartMinute {
		start = g.EntryStartMinute - spec.ArrivalOffset
	}
	if !g.AllowedStart(start, spec) {
		return -1
	}
	return start
}
