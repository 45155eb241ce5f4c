package planning

import (
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/driver"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/fleet"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/schedule"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/shared"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/tasks"
	"github.com/alessandroavenali/fuel-logistics-go/internal/solver"
)

// maxIterationsPerDay bounds the fixed-point assignment loop
const maxIterationsPerDay = 100

// Assignment is one committed (driver, task, time) tuple of the greedy plan
type Assignment struct {
	Date        time.Time
	Driver      *driver.Driver
	Side        tasks.Side
	DriverIndex int
	Task        tasks.Code
	StartMinute int
	EndMinute   int
	Liters      int
}

// PlanDay is one simulated working day with its boundary balances
type PlanDay struct {
	Date        time.Time
	Start       solver.InitialState
	End         solver.InitialState
	Assignments []Assignment
}

// GreedyPlan is the simulator's result
type GreedyPlan struct {
	Days        []PlanDay
	Deliveries  int
	TotalLiters int
}

// GreedyPlanner is the day-by-day simulation planner. It is used for
// capacity estimates and as the fallback planner when the
// constraint-programming pipeline is unavailable. A run never suspends.
type GreedyPlanner struct {
	logger *zap.SugaredLogger
}

// NewGreedyPlanner creates a greedy planner
func NewGreedyPlanner(logger *zap.SugaredLogger) *GreedyPlanner {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &GreedyPlanner{logger: logger}
}

// weekState carries a driver's regulatory counters across days
type weekState struct {
	weekKey      string
	weekDriven   int
	credits      int // extended days plus extended-supply tasks this ISO week
	drivenByDate map[string]int
}

// breakState tracks driving and pause accumulation against the mandatory
// 45-minute break rule, mirroring the validator's walk.
type breakState struct {
	driving int
	pause   int
}

// cursor is a driver's per-day simulation state
type cursor struct {
	drv      *driver.Driver
	side     tasks.Side
	index    int
	nextFree int
	lastEnd  int
	driven   int
	extended bool
	excess   bool
	done     bool
	rest     breakState
}

// Plan simulates the horizon. requiredLiters caps the objective: once the
// target is reached no further tasks are committed; zero or negative means
// plan to capacity.
func (g *GreedyPlanner) Plan(params *Parameters, requiredLiters int) (*GreedyPlan, error) {
	remaining := requiredLiters
	if remaining <= 0 {
		remaining = math.MaxInt
	}

	ledger := fleet.NewLedger(
		params.InitialFullTrailers,
		params.InitialEmptyTrailers,
		params.InitialFullTanks,
		params.InitialEmptyTanks,
		params.TractorsAtDestination,
	)

	plan := &GreedyPlan{}
	weeks := make(map[string]*weekState)

	for dayIdx, date := range params.Dates {
		day := PlanDay{Date: date, Start: ledgerState(ledger)}

		if remaining > 0 {
			g.simulateDay(params, ledger, weeks, dayIdx, date, &day, &remaining, plan)
		}

		ledger.Flush()
		day.End = ledgerState(ledger)
		plan.Days = append(plan.Days, day)
	}

	g.logger.Debugw("greedy plan built",
		"days", len(plan.Days),
		"deliveries", plan.Deliveries,
		"liters", plan.TotalLiters)
	return plan, nil
}

func ledgerState(l *fleet.Ledger) solver.InitialState {
	// Called only at day boundaries, where no production is pending
	return solver.InitialState{
		FullTrailers:  l.Count(0, fleet.StockFullTrailers),
		EmptyTrailers: l.Count(0, fleet.StockEmptyTrailers),
		FullTanks:     l.Count(0, fleet.StockFullTanks),
		EmptyTanks:    l.Count(0, fleet.StockEmptyTanks),
	}
}

func (g *GreedyPlanner) simulateDay(
	params *Parameters,
	ledger *fleet.Ledger,
	weeks map[string]*weekState,
	dayIdx int,
	date time.Time,
	day *PlanDay,
	remaining *int,
	plan *GreedyPlan,
) {
	cursors := g.buildCursors(params, ledger, dayIdx, date, weeks)

	for iter := 0; iter < maxIterationsPerDay; iter++ {
		if *remaining <= 0 {
			return
		}
		cur := pickCursor(cursors)
		if cur == nil {
			return
		}
		g.step(params, ledger, weeks, date, cur, day, remaining, plan)
	}
}

// buildCursors assembles the day's driver cursors and marks excess parking
// drivers. Excess drivers are those beyond what is needed to drain the full
// trailers the destination side cannot absorb; they are steered to supply
// runs instead of yard refills.
func (g *GreedyPlanner) buildCursors(
	params *Parameters,
	ledger *fleet.Ledger,
	dayIdx int,
	date time.Time,
	weeks map[string]*weekState,
) []*cursor {
	var cursors []*cursor
	for i, d := range params.ParkingDrivers[dayIdx] {
		cursors = append(cursors, &cursor{drv: d, side: tasks.SideParking, index: i})
	}
	for i, d := range params.DestinationDrivers[dayIdx] {
		cursors = append(cursors, &cursor{drv: d, side: tasks.SideDestination, index: i})
	}

	for _, cur := range cursors {
		g.weekOf(weeks, cur.drv, params, date)
	}

	specV := params.Catalog.MustSpec(tasks.CodeShuttleFromDestination)
	specU := params.Catalog.MustSpec(tasks.CodeShuttle)
	specR := params.Catalog.MustSpec(tasks.CodeRefill)

	maxVPerDriver := minInt(
		params.Grid.ShiftMinutes/specV.TotalMinutes,
		params.Limits.DailyDriveMinutes/specV.DrivingMinutes,
	)
	destWithTractor := minInt(
		len(params.DestinationDrivers[dayIdx]),
		ledger.Count(0, fleet.StockTractorsAtDestination),
	)
	destCapacity := destWithTractor * maxVPerDriver

	drainNeed := ledger.Count(0, fleet.StockFullTrailers) - destCapacity
	needed := 0
	if drainNeed > 0 {
		perDrainer := minInt(
			params.Grid.ShiftMinutes/(specR.TotalMinutes+specU.TotalMinutes),
			params.Limits.DailyDriveMinutes/specU.DrivingMinutes,
		)
		if perDrainer < 1 {
			perDrainer = 1
		}
		needed = (drainNeed + perDrainer - 1) / perDrainer
	}

	excess := len(params.ParkingDrivers[dayIdx]) - needed
	if excess < 0 {
		excess = 0
	}
	// Lowest-priority parking drivers are marked excess first
	marked := 0
	for i := len(cursors) - 1; i >= 0 && marked < excess; i-- {
		if cursors[i].side == tasks.SideParking {
			cursors[i].excess = true
			marked++
		}
	}
	return cursors
}

// weekOf returns the driver's regulatory counters for the ISO week of date,
// rolling them over on week boundaries. Pre-used extensions attached to the
// schedule are charged to the horizon's first week.
func (g *GreedyPlanner) weekOf(weeks map[string]*weekState, d *driver.Driver, params *Parameters, date time.Time) *weekState {
	w, ok := weeks[d.ID]
	key := shared.ISOWeekKey(date)
	if ok && w.weekKey == key {
		return w
	}
	if !ok {
		w = &weekState{drivenByDate: make(map[string]int)}
		weeks[d.ID] = w
	}
	w.weekKey = key
	w.weekDriven = 0
	w.credits = 0
	if shared.ISOWeekKey(params.Schedule.StartDate) == key {
		w.credits = d.UsedExtensions
	}
	return w
}

// pickCursor selects the next driver to serve: earliest free, then category
// priority, then ID. Deterministic by construction.
func pickCursor(cursors []*cursor) *cursor {
	var best *cursor
	for _, c := range cursors {
		if c.done {
			continue
		}
		if best == nil {
			best = c
			continue
		}
		if c.nextFree != best.nextFree {
			if c.nextFree < best.nextFree {
				best = c
			}
			continue
		}
		if c.drv.Category.Priority() != best.drv.Category.Priority() {
			if c.drv.Category.Priority() < best.drv.Category.Priority() {
				best = c
			}
			continue
		}
		if c.drv.ID < best.drv.ID {
			best = c
		}
	}
	return best
}

// step serves one driver: commit a task, advance to a pending resource, or
// retire the driver for the day.
func (g *GreedyPlanner) step(
	params *Parameters,
	ledger *fleet.Ledger,
	weeks map[string]*weekState,
	date time.Time,
	cur *cursor,
	day *PlanDay,
	remaining *int,
	plan *GreedyPlan,
) {
	if cur.side == tasks.SideDestination {
		g.stepDestination(params, ledger, weeks, date, cur, day, remaining, plan)
		return
	}
	if cur.excess {
		g.stepExcessParking(params, ledger, weeks, date, cur, day, remaining, plan)
		return
	}
	g.stepParking(params, ledger, weeks, date, cur, day, remaining, plan)
}

func (g *GreedyPlanner) stepDestination(
	params *Parameters,
	ledger *fleet.Ledger,
	weeks map[string]*weekState,
	date time.Time,
	cur *cursor,
	day *PlanDay,
	remaining *int,
	plan *GreedyPlan,
) {
	t0 := cur.nextFree

	if ledger.Count(t0, fleet.StockTractorsAtDestination) > 0 {
		// Prefer draining a full trailer already on hand
		if ledger.Count(t0, fleet.StockFullTrailers) > 0 &&
			g.tryCommit(params, ledger, weeks, date, cur, tasks.CodeShuttleFromDestination, day, remaining, plan) {
			return
		}
		// Fall back to the extended supply when the ADR budget allows
		if ledger.Count(t0, fleet.StockEmptyTrailers) > 0 &&
			g.tryCommit(params, ledger, weeks, date, cur, tasks.CodeSupplyFromDestination, day, remaining, plan) {
			return
		}
		// Otherwise wait for an incoming trailer
		if g.advanceTo(cur, ledger, t0, fleet.StockFullTrailers, fleet.StockEmptyTrailers) {
			return
		}
		cur.done = true
		return
	}

	// No tractor on the destination side right now: the driver can still
	// run a standard shuttle from the yard when a full tank exists.
	if ledger.Count(t0, fleet.StockFullTanks) > 0 &&
		g.tryCommit(params, ledger, weeks, date, cur, tasks.CodeShuttle, day, remaining, plan) {
		return
	}
	if g.advanceTo(cur, ledger, t0, fleet.StockTractorsAtDestination, fleet.StockFullTanks) {
		return
	}
	cur.done = true
}

func (g *GreedyPlanner) stepExcessParking(
	params *Parameters,
	ledger *fleet.Ledger,
	weeks map[string]*weekState,
	date time.Time,
	cur *cursor,
	day *PlanDay,
	remaining *int,
	plan *GreedyPlan,
) {
	t0 := cur.nextFree
	if ledger.Count(t0, fleet.StockEmptyTrailers) > 0 &&
		ledger.Count(t0, fleet.StockEmptyTanks) > 0 &&
		g.tryCommit(params, ledger, weeks, date, cur, tasks.CodeSupply, day, remaining, plan) {
		return
	}
	if g.advanceTo(cur, ledger, t0, fleet.StockEmptyTrailers, fleet.StockEmptyTanks) {
		return
	}
	cur.done = true
}

func (g *GreedyPlanner) stepParking(
	params *Parameters,
	ledger *fleet.Ledger,
	weeks map[string]*weekState,
	date time.Time,
	cur *cursor,
	day *PlanDay,
	remaining *int,
	plan *GreedyPlan,
) {
	t0 := cur.nextFree

	if ledger.Count(t0, fleet.StockFullTanks) > 0 &&
		g.tryCommit(params, ledger, weeks, date, cur, tasks.CodeShuttle, day, remaining, plan) {
		return
	}
	if ledger.Count(t0, fleet.StockFullTrailers) > 0 &&
		ledger.Count(t0, fleet.StockEmptyTanks) > 0 &&
		g.tryCommit(params, ledger, weeks, date, cur, tasks.CodeRefill, day, remaining, plan) {
		return
	}
	if ledger.Count(t0, fleet.StockEmptyTrailers) > 0 &&
		ledger.Count(t0, fleet.StockEmptyTanks) > 0 &&
		g.tryCommit(params, ledger, weeks, date, cur, tasks.CodeSupply, day, remaining, plan) {
		return
	}
	if g.advanceTo(cur, ledger, t0,
		fleet.StockFullTanks, fleet.StockFullTrailers, fleet.StockEmptyTrailers, fleet.StockEmptyTanks) {
		return
	}
	// Nothing on hand and nothing pending: a full round on the integrated
	// tank alone is the last resort when the yard owns no usable trailer.
	if ledger.Count(t0, fleet.StockEmptyTanks) > 0 &&
		g.tryCommit(params, ledger, weeks, date, cur, tasks.CodeFullRound, day, remaining, plan) {
		return
	}
	cur.done = true
}

// advanceTo moves the cursor to the earliest strictly later maturity of any
// of the given stocks. Returns false when nothing relevant is pending.
func (g *GreedyPlanner) advanceTo(cur *cursor, ledger *fleet.Ledger, t0 int, stocks ...fleet.Stock) bool {
	best := -1
	for _, s := range stocks {
		at, ok := ledger.AvailableAt(t0, s)
		if !ok || at <= t0 {
			continue
		}
		if best == -1 || at < best {
			best = at
		}
	}
	if best == -1 {
		return false
	}
	cur.nextFree = best
	return true
}

// tryCommit books a task for the driver if the grid, the daily and weekly
// driving limits and the ADR extension budget all allow it, and applies the
// resource flows to the ledger.
func (g *GreedyPlanner) tryCommit(
	params *Parameters,
	ledger *fleet.Ledger,
	weeks map[string]*weekState,
	date time.Time,
	cur *cursor,
	code tasks.Code,
	day *PlanDay,
	remaining *int,
	plan *GreedyPlan,
) bool {
	spec := params.Catalog.MustSpec(code)

	start := params.Grid.EarliestAllowedStart(cur.nextFree, spec)
	if start == -1 {
		return false
	}
	start = params.Grid.CeilToSlot(start)
	if !params.Grid.AllowedStart(start, spec) {
		return false
	}

	// Embed the mandatory break: when the task's leading driving would
	// push accumulated driving past 4h30, push the start until the idle
	// gap completes a 45-minute pause.
	segments := params.Catalog.Segments(code)
	ok, endRest := walkSegments(segments, cur.restAt(start, params.Limits), params.Limits)
	if !ok {
		deficit := params.Limits.BreakMinutes - cur.restAt(start, params.Limits).pause
		if deficit < 0 {
			deficit = 0
		}
		start = params.Grid.CeilToSlot(start + deficit)
		if !params.Grid.AllowedStart(start, spec) {
			return false
		}
		ok, endRest = walkSegments(segments, cur.restAt(start, params.Limits), params.Limits)
		if !ok {
			return false
		}
	}

	week := g.weekOf(weeks, cur.drv, params, date)
	needsExtendedDay := false
	today := cur.driven + spec.DrivingMinutes
	switch {
	case today <= params.Limits.DailyDriveMinutes:
	case today <= params.Limits.ExtendedDriveMinutes:
		needsExtendedDay = !cur.extended
		if needsExtendedDay && week.credits >= params.Limits.MaxExtendedPerWeek {
			return false
		}
	default:
		return false
	}
	if spec.UsesExtension {
		charge := 1
		if needsExtendedDay {
			charge++
		}
		if week.credits+charge > params.Limits.MaxExtendedPerWeek {
			return false
		}
	}

	if !g.withinRollingLimits(params, week, cur.drv, date, spec.DrivingMinutes) {
		return false
	}

	if !g.applyFlows(ledger, spec, start) {
		return false
	}

	end := start + spec.TotalMinutes
	liters := spec.TripType.DeliveryLiters()

	cur.nextFree = end
	cur.lastEnd = end
	cur.rest = endRest
	cur.driven += spec.DrivingMinutes
	if needsExtendedDay {
		cur.extended = true
		week.credits++
	}
	if spec.UsesExtension {
		week.credits++
	}
	week.weekDriven += spec.DrivingMinutes
	week.drivenByDate[shared.DateKey(date)] += spec.DrivingMinutes

	day.Assignments = append(day.Assignments, Assignment{
		Date:        date,
		Driver:      cur.drv,
		Side:        cur.side,
		DriverIndex: cur.index,
		Task:        code,
		StartMinute: start,
		EndMinute:   end,
		Liters:      liters,
	})
	if liters > 0 {
		plan.Deliveries++
		plan.TotalLiters += liters
		*remaining -= liters
	}
	return true
}

// restAt projects the cursor's break state to a task start: idle time
// between tasks counts as pause, and 45 accumulated minutes reset the
// driving counter.
func (c *cursor) restAt(start int, limits tasks.Limits) breakState {
	st := c.rest
	if gap := start - c.lastEnd; gap > 0 {
		st.pause += gap
	}
	if st.pause >= limits.BreakMinutes {
		st = breakState{}
	}
	return st
}

// walkSegments replays a task's driving and pause segments against the
// break rule. Returns false when accumulated driving would pass the 4h30
// bound, plus the state after the task.
func walkSegments(segments []tasks.Segment, st breakState, limits tasks.Limits) (bool, breakState) {
	for _, seg := range segments {
		if !seg.Driving {
			st.pause += seg.Minutes
			if st.pause >= limits.BreakMinutes {
				st = breakState{}
			}
			continue
		}
		st.driving += seg.Minutes
		if st.driving > limits.BreakAfterDriving {
			return false, st
		}
	}
	return true, st
}
// against both the plan under construction and the existing work logs.
func (g *GreedyPlanner) withinRollingLimits(
	params *Parameters,
	week *weekState,
	d *driver.Driver,
	date time.Time,
	addMinutes int,
) bool {
	weekStart := startOfISOWeek(date)
	logged := params.LogBook.MinutesInWindow(d.ID, weekStart, weekStart.AddDate(0, 0, 6))
	if week.weekDriven+logged+addMinutes > params.Limits.WeeklyDriveMinutes {
		return false
	}

	windowStart := date.AddDate(0, 0, -13)
	total := params.LogBook.MinutesInWindow(d.ID, windowStart, date)
	for key, minutes := range week.drivenByDate {
		day, err := shared.ParseDate(key)
		if err != nil {
			continue
		}
		if !day.Before(windowStart) && !day.After(date) {
			total += minutes
		}
	}
	return total+addMinutes <= params.Limits.BiweeklyDriveMinutes
}

// applyFlows consumes and produces the ledger stocks of one task start.
// Consumption happens at the start slot, production at the task-specific
// maturity offsets.
func (g *GreedyPlanner) applyFlows(ledger *fleet.Ledger, spec tasks.Spec, start int) bool {
	end := start + spec.TotalMinutes

	switch spec.Code {
	case tasks.CodeSupply:
		if !ledger.Consume(start, fleet.StockEmptyTrailers) {
			return false
		}
		if !ledger.Consume(start, fleet.StockEmptyTanks) {
			ledger.Produce(start, fleet.StockEmptyTrailers)
			return false
		}
		ledger.Produce(start+spec.FullTrailerOffset, fleet.StockFullTrailers)
		ledger.Produce(end, fleet.StockFullTanks)

	case tasks.CodeShuttle:
		if !ledger.Consume(start, fleet.StockFullTanks) {
			return false
		}
		ledger.Produce(end, fleet.StockEmptyTanks)

	case tasks.CodeShuttleFromDestination:
		if !ledger.Consume(start, fleet.StockFullTrailers) {
			return false
		}
		if !ledger.Consume(start, fleet.StockTractorsAtDestination) {
			ledger.Produce(start, fleet.StockFullTrailers)
			return false
		}
		ledger.Produce(start+spec.EmptyTrailerOffset, fleet.StockEmptyTrailers)
		ledger.Produce(end, fleet.StockTractorsAtDestination)

	case tasks.CodeSupplyFromDestination:
		if !ledger.Consume(start, fleet.StockEmptyTrailers) {
			return false
		}
		if !ledger.Consume(start, fleet.StockTractorsAtDestination) {
			ledger.Produce(start, fleet.StockEmptyTrailers)
			return false
		}
		ledger.Produce(start+spec.FullTrailerOffset, fleet.StockFullTrailers)
		ledger.Produce(end, fleet.StockTractorsAtDestination)

	case tasks.CodeRefill:
		if !ledger.Consume(start, fleet.StockFullTrailers) {
			return false
		}
		if !ledger.Consume(start, fleet.StockEmptyTanks) {
			ledger.Produce(start, fleet.StockFullTrailers)
			return false
		}
		ledger.Produce(start+spec.EmptyTrailerOffset, fleet.StockEmptyTrailers)
		ledger.Produce(end, fleet.StockFullTanks)

	case tasks.CodeFullRound:
		if !ledger.Consume(start, fleet.StockEmptyTanks) {
			return false
		}
		ledger.Produce(end, fleet.StockEmptyTanks)

	default:
		return false
	}
	return true
}

// startOfISOWeek returns the Monday of the ISO week containing the date
func startOfISOWeek(date time.Time) time.Time {
	weekday := int(date.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return date.AddDate(0, 0, -(weekday - 1))
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// EstimateMax computes the capacity of a configuration with the monotone
// envelope: the requested availability is evaluated together with the
// residents-only baseline and with each non-resident driver-day added one
// at a time, and the best result wins. Adding driver-days therefore never
// decreases the reported maximum.
func (g *GreedyPlanner) EstimateMax(
	snap *Snapshot,
	sched *schedule.Schedule,
	requested driver.Availability,
	grid tasks.Grid,
	limits tasks.Limits,
) (*GreedyPlan, *Parameters, error) {
	configs := buildEnvelopeConfigs(snap, requested)

	var bestPlan *GreedyPlan
	var bestParams *Parameters
	for _, cfg := range configs {
		params, err := ResolveParameters(snap, sched, cfg, grid, limits)
		if err != nil {
			return nil, nil, err
		}
		plan, err := g.Plan(params, 0)
		if err != nil {
			return nil, nil, err
		}
		if bestPlan == nil || plan.TotalLiters > bestPlan.TotalLiters {
			bestPlan = plan
			bestParams = params
		}
	}
	return bestPlan, bestParams, nil
}

// buildEnvelopeConfigs expands the requested availability into the subset
// chain the monotonicity envelope evaluates.
func buildEnvelopeConfigs(snap *Snapshot, requested driver.Availability) []driver.Availability {
	if requested == nil {
		return []driver.Availability{nil}
	}

	nonResident := make(map[string]bool)
	for _, d := range snap.Drivers {
		if d.Category != driver.CategoryResident {
			nonResident[d.ID] = true
		}
	}

	base := make(driver.Availability)
	for id, days := range requested {
		if nonResident[id] {
			continue
		}
		base[id] = copyDays(days)
	}

	configs := []driver.Availability{base}
	current := base

	var ids []string
	for id := range requested {
		if nonResident[id] {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	for _, id := range ids {
		var days []string
		for day, ok := range requested[id] {
			if ok {
				days = append(days, day)
			}
		}
		sort.Strings(days)
		for _, day := range days {
			next := cloneAvailability(current)
			if next[id] == nil {
				next[id] = make(map[string]bool)
			}
			next[id][day] = true
			configs = append(configs, next)
			current = next
		}
	}
	return configs
}

func cloneAvailability(a driver.Availability) driver.Availability {
	out := make(driver.Availability, len(a))
	for id, days := range a {
		out[id] = copyDays(days)
	}
	return out
}

func copyDays(days map[string]bool) map[string]bool {
	out := make(map[string]bool, len(days))
	for k, v := range days {
		out[k] = v
	}
	return out
}
