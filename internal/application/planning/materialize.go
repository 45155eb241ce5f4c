package planning

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/driver"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/fleet"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/shared"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/tasks"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/trip"
	"github.com/alessandroavenali/fuel-logistics-go/internal/solver"
)

// Materializer binds the solver's abstract (driver-index, task, slot)
// assignments to concrete tractor and trailer identities. The solver
// promised feasibility: any binding failure here means a converter bug or
// a nondeterministic alternate optimum, and aborts the whole conversion.
type Materializer struct {
	params *Parameters
	logger *zap.SugaredLogger
	newID  func() string
}

// NewMaterializer creates a materialiser for one run. newID generates trip
// identities (injected for deterministic tests).
func NewMaterializer(params *Parameters, newID func() string, logger *zap.SugaredLogger) *Materializer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Materializer{params: params, newID: newID, logger: logger}
}

// boundStart is one assignment with its side and driver resolved
type boundStart struct {
	task      tasks.Code
	slot      int
	side      tasks.Side
	driverIdx int // -1 for refills
}

// Materialize converts the solver output into concrete trips. Assignments
// are processed in non-decreasing start-slot order; at every day start the
// local fleet partition is reset to the solver's reported counts and all
// pending reservations are cleared.
func (m *Materializer) Materialize(out *solver.Output, scheduleID string) ([]*trip.Trip, error) {
	if !out.Status.HasPlan() {
		return nil, shared.NewInfeasibleError(fmt.Sprintf("solver status %s carries no plan", out.Status))
	}
	if len(out.Days) != len(m.params.Dates) {
		return nil, shared.NewMaterializationError("", 0,
			fmt.Sprintf("solver returned %d days for a %d-day horizon", len(out.Days), len(m.params.Dates)))
	}

	trailers := fleet.NewTrailerPool(m.params.TrailerIDs, 0)
	tractors := fleet.NewTractorPool(m.params.TractorsAtParkingIDs, m.params.TractorsAtDestIDs, 0)

	var trips []*trip.Trip
	totalLiters := 0

	for dayIdx, day := range out.Days {
		date := m.params.Dates[dayIdx]
		if day.Date != "" && day.Date != shared.DateKey(date) {
			return nil, shared.NewMaterializationError("", 0,
				fmt.Sprintf("solver day %d reports date %s, expected %s", dayIdx, day.Date, shared.DateKey(date)))
		}

		trailers.Reset(day.FullTrailersStart)
		tractors.Reset(day.FullTanksStart)

		dayTrips, err := m.materializeDay(day, dayIdx, date, scheduleID, trailers, tractors)
		if err != nil {
			return nil, err
		}
		for _, t := range dayTrips {
			totalLiters += t.DeliveryLiters()
		}
		trips = append(trips, dayTrips...)

		if err := m.reconcileDayEnd(day, trailers, tractors); err != nil {
			return nil, err
		}
	}

	// Equivalence check: the materialised plan must carry exactly the
	// litres the solver claims, or persistence is aborted.
	if totalLiters != out.ObjectiveLiters {
		return nil, shared.NewMaterializationError("", 0,
			fmt.Sprintf("materialised %d liters, solver objective is %d", totalLiters, out.ObjectiveLiters))
	}

	m.logger.Infow("plan materialised", "trips", len(trips), "liters", totalLiters)
	return trips, nil
}

func (m *Materializer) materializeDay(
	day solver.Day,
	dayIdx int,
	date time.Time,
	scheduleID string,
	trailers *fleet.TrailerPool,
	tractors *fleet.TractorPool,
) ([]*trip.Trip, error) {
	starts := collectStarts(day)

	parkingPool := m.params.ParkingDrivers[dayIdx]
	destPool := m.params.DestinationDrivers[dayIdx]

	// Full-day busy intervals per driver: verifies the solver's no-overlap
	// promise up front and guides refill attachment.
	busy, err := m.indexedIntervals(starts, parkingPool, destPool)
	if err != nil {
		return nil, err
	}

	var trips []*trip.Trip
	for _, s := range starts {
		spec, err := m.params.Catalog.Spec(s.task)
		if err != nil {
			return nil, shared.NewMaterializationError(string(s.task), s.slot, err.Error())
		}

		start := m.params.Grid.SlotToMinute(s.slot)
		end := start + spec.TotalMinutes
		if !m.params.Grid.AllowedStart(start, spec) {
			return nil, shared.NewMaterializationError(string(s.task), s.slot, "start violates shift or entry window")
		}

		driverID, err := m.resolveDriver(s, start, end, parkingPool, destPool, busy)
		if err != nil {
			return nil, err
		}

		vehicleID, bindings, err := m.bindResources(s, spec, start, end, trailers, tractors)
		if err != nil {
			return nil, err
		}

		departure := m.params.Grid.ShiftStartMinute + start
		ret := m.params.Grid.ShiftStartMinute + end
		t, err := trip.NewTrip(m.newID(), scheduleID, driverID, vehicleID, date, departure, ret, spec.TripType, bindings)
		if err != nil {
			return nil, shared.NewMaterializationError(string(s.task), s.slot, err.Error())
		}
		trips = append(trips, t)
	}
	return trips, nil
}

// collectStarts flattens a solver day into a deterministic processing
// order: by start slot, parking side before destination side, then driver
// index. Refills sort with the yard tasks and carry no driver index.
func collectStarts(day solver.Day) []boundStart {
	var starts []boundStart
	for idx, dd := range day.DriversParking {
		for _, ts := range dd.Starts {
			starts = append(starts, boundStart{task: tasks.Code(ts.Task), slot: ts.Slot, side: tasks.SideParking, driverIdx: idx})
		}
	}
	for idx, dd := range day.DriversDestination {
		for _, ts := range dd.Starts {
			starts = append(starts, boundStart{task: tasks.Code(ts.Task), slot: ts.Slot, side: tasks.SideDestination, driverIdx: idx})
		}
	}
	for _, rs := range day.RefillStarts {
		count := rs.Count
		if count == 0 {
			count = 1
		}
		for i := 0; i < count; i++ {
			starts = append(starts, boundStart{task: tasks.Code(rs.Task), slot: rs.Slot, side: tasks.SideParking, driverIdx: -1})
		}
	}

	sort.SliceStable(starts, func(i, j int) bool {
		if starts[i].slot != starts[j].slot {
			return starts[i].slot < starts[j].slot
		}
		if starts[i].side != starts[j].side {
			return starts[i].side < starts[j].side
		}
		return starts[i].driverIdx < starts[j].driverIdx
	})
	return starts
}

// indexedIntervals expands every driver-indexed start into its busy
// interval, verifying the solver's per-driver no-overlap promise.
func (m *Materializer) indexedIntervals(
	starts []boundStart,
	parkingPool, destPool []*driver.Driver,
) (map[string][][2]int, error) {
	busy := make(map[string][][2]int)
	for _, s := range starts {
		if s.driverIdx < 0 {
			continue
		}
		spec, err := m.params.Catalog.Spec(s.task)
		if err != nil {
			return nil, shared.NewMaterializationError(string(s.task), s.slot, err.Error())
		}
		d, err := m.poolDriver(s, parkingPool, destPool)
		if err != nil {
			return nil, err
		}
		start := m.params.Grid.SlotToMinute(s.slot)
		end := start + spec.TotalMinutes
		if overlapsAny(busy[d.ID], start, end) {
			return nil, shared.NewMaterializationError(string(s.task), s.slot,
				fmt.Sprintf("driver %s already busy", d.ID))
		}
		busy[d.ID] = append(busy[d.ID], [2]int{start, end})
	}
	return busy, nil
}

func (m *Materializer) poolDriver(s boundStart, parkingPool, destPool []*driver.Driver) (*driver.Driver, error) {
	pool := parkingPool
	if s.side == tasks.SideDestination {
		pool = destPool
	}
	if s.driverIdx >= len(pool) {
		return nil, shared.NewMaterializationError(string(s.task), s.slot,
			fmt.Sprintf("driver index %d outside pool of %d", s.driverIdx, len(pool)))
	}
	return pool[s.driverIdx], nil
}

// resolveDriver maps a start onto its concrete driver. Refills attach to
// any parking driver free for the whole interval, for traceability only;
// an unattended refill keeps no driver.
func (m *Materializer) resolveDriver(
	s boundStart,
	start, end int,
	parkingPool, destPool []*driver.Driver,
	busy map[string][][2]int,
) (string, error) {
	if s.driverIdx < 0 {
		for _, d := range parkingPool {
			if !overlapsAny(busy[d.ID], start, end) {
				busy[d.ID] = append(busy[d.ID], [2]int{start, end})
				return d.ID, nil
			}
		}
		return "", nil
	}
	d, err := m.poolDriver(s, parkingPool, destPool)
	if err != nil {
		return "", err
	}
	return d.ID, nil
}

func overlapsAny(intervals [][2]int, start, end int) bool {
	for _, iv := range intervals {
		if start < iv[1] && iv[0] < end {
			return true
		}
	}
	return false
}

// bindResources selects the concrete tractor and trailers of one task and
// applies their state transitions, including the pending-availability
// bookkeeping.
func (m *Materializer) bindResources(
	s boundStart,
	spec tasks.Spec,
	start, end int,
	trailers *fleet.TrailerPool,
	tractors *fleet.TractorPool,
) (string, []trip.TrailerBinding, error) {
	fail := func(err error) (string, []trip.TrailerBinding, error) {
		return "", nil, shared.NewMaterializationError(string(s.task), s.slot, err.Error())
	}

	switch spec.Code {
	case tasks.CodeSupply:
		vehicleID, err := tractors.AcquireAtParking(start, false, end)
		if err != nil {
			return fail(err)
		}
		trailerID, err := trailers.Acquire(start, fleet.TrailerAtParkingEmpty)
		if err != nil {
			return fail(err)
		}
		if err := trailers.Schedule(trailerID, end, fleet.TrailerAtParkingFull); err != nil {
			return fail(err)
		}
		_ = tractors.SetTank(vehicleID, true)
		return vehicleID, []trip.TrailerBinding{{
			TrailerID:         trailerID,
			LitersLoaded:      m.params.LitersPerDelivery(),
			DropOffLocationID: m.params.Parking.ID,
			IsPickup:          true,
		}}, nil

	case tasks.CodeShuttle:
		vehicleID, err := tractors.AcquireAtParking(start, true, end)
		if err != nil {
			return fail(err)
		}
		_ = tractors.SetTank(vehicleID, false)
		return vehicleID, nil, nil

	case tasks.CodeShuttleFromDestination:
		vehicleID, err := tractors.AcquireAtDestination(start, end)
		if err != nil {
			return fail(err)
		}
		trailerID, err := trailers.Acquire(start, fleet.TrailerAtParkingFull)
		if err != nil {
			return fail(err)
		}
		if err := trailers.Schedule(trailerID, start+spec.EmptyTrailerOffset, fleet.TrailerAtParkingEmpty); err != nil {
			return fail(err)
		}
		return vehicleID, []trip.TrailerBinding{{
			TrailerID:         trailerID,
			LitersLoaded:      m.params.LitersPerDelivery(),
			DropOffLocationID: m.params.Parking.ID,
			IsPickup:          true,
		}}, nil

	case tasks.CodeSupplyFromDestination:
		vehicleID, err := tractors.AcquireAtDestination(start, end)
		if err != nil {
			return fail(err)
		}
		trailerID, err := trailers.Acquire(start, fleet.TrailerAtParkingEmpty)
		if err != nil {
			return fail(err)
		}
		if err := trailers.Schedule(trailerID, start+spec.FullTrailerOffset, fleet.TrailerAtParkingFull); err != nil {
			return fail(err)
		}
		return vehicleID, []trip.TrailerBinding{{
			TrailerID:         trailerID,
			LitersLoaded:      m.params.LitersPerDelivery(),
			DropOffLocationID: m.params.Parking.ID,
			IsPickup:          true,
		}}, nil

	case tasks.CodeRefill:
		vehicleID, err := tractors.AcquireAtParking(start, false, end)
		if err != nil {
			return fail(err)
		}
		_ = tractors.SetTank(vehicleID, true)
		trailerID, err := trailers.Acquire(start, fleet.TrailerAtParkingFull)
		if err != nil {
			return fail(err)
		}
		if err := trailers.Schedule(trailerID, start+spec.EmptyTrailerOffset, fleet.TrailerAtParkingEmpty); err != nil {
			return fail(err)
		}
		return vehicleID, []trip.TrailerBinding{{
			TrailerID:         trailerID,
			LitersLoaded:      m.params.LitersPerDelivery(),
			DropOffLocationID: m.params.Parking.ID,
			IsPickup:          false,
		}}, nil

	case tasks.CodeFullRound:
		vehicleID, err := tractors.AcquireAtParking(start, false, end)
		if err != nil {
			return fail(err)
		}
		return vehicleID, nil, nil

	default:
		return fail(fmt.Errorf("unknown task %q", spec.Code))
	}
}

// reconcileDayEnd verifies the pool partitions against the balances the
// solver reported for the day end.
func (m *Materializer) reconcileDayEnd(day solver.Day, trailers *fleet.TrailerPool, tractors *fleet.TractorPool) error {
	trailers.Mature(m.params.Grid.ShiftMinutes)
	gotFull := trailers.Count(fleet.TrailerAtParkingFull)
	if gotFull != day.FullTrailersEnd {
		return shared.NewMaterializationError("", 0,
			fmt.Sprintf("day end: %d full trailers materialised, solver reports %d", gotFull, day.FullTrailersEnd))
	}
	gotTanks := tractors.CountParkingFullTank()
	if gotTanks != day.FullTanksEnd {
		return shared.NewMaterializationError("", 0,
			fmt.Sprintf("day end: %d full tanks materialised, solver reports %d", gotTanks, day.FullTanksEnd))
	}
	return nil
}
