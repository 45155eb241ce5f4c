package planning

import (
	"fmt"
	"sort"
	"time"

	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/driver"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/fleet"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/location"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/schedule"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/shared"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/tasks"
	"github.com/alessandroavenali/fuel-logistics-go/internal/solver"
)

// Parameters is the resolved, self-contained input of one planning run:
// the horizon, the canonical per-day driver pools, the task catalog derived
// from the snapshot's routes, and the day-zero fleet balances.
type Parameters struct {
	Schedule *schedule.Schedule

	Source      *location.Location
	Parking     *location.Location
	Destination *location.Location

	Dates []time.Time

	// Canonical driver pools per day, sorted by category priority then ID.
	// The solver's per-day driver indices refer to these orderings, so the
	// sort is load-bearing for materialisation.
	ParkingDrivers     [][]*driver.Driver
	DestinationDrivers [][]*driver.Driver

	Catalog *tasks.Catalog
	Grid    tasks.Grid
	Limits  tasks.Limits

	InitialFullTrailers   int
	InitialEmptyTrailers  int
	InitialFullTanks      int
	InitialEmptyTanks     int
	TractorsAtDestination int

	TrailerIDs            []string
	TractorsAtParkingIDs  []string
	TractorsAtDestIDs     []string

	TotalTrailers int
	TotalTractors int

	LogBook      *driver.LogBook
	Availability driver.Availability
}

// ResolveParameters derives a run's parameters from the snapshot. Every
// failure here is an invalid-input condition: the job fails with no
// partial write.
func ResolveParameters(
	snap *Snapshot,
	sched *schedule.Schedule,
	availability driver.Availability,
	grid tasks.Grid,
	limits tasks.Limits,
) (*Parameters, error) {
	if sched == nil {
		return nil, shared.NewInvalidInputError("schedule not found")
	}

	p := &Parameters{
		Schedule:     sched,
		Grid:         grid,
		Limits:       limits,
		Availability: availability,
		LogBook:      driver.NewLogBook(snap.WorkLogs),
	}

	for _, loc := range snap.Locations {
		switch loc.Role {
		case location.RoleSource:
			p.Source = loc
		case location.RoleParking:
			p.Parking = loc
		case location.RoleDestination:
			p.Destination = loc
		}
	}
	if p.Source == nil || p.Parking == nil || p.Destination == nil {
		return nil, shared.NewInvalidInputError("snapshot must contain one source, one parking and one destination location")
	}

	durations, err := resolveDurations(snap, p)
	if err != nil {
		return nil, err
	}
	p.Catalog = tasks.NewCatalog(durations)

	p.Dates = sched.WorkingDates()
	if len(p.Dates) == 0 {
		return nil, shared.NewInvalidInputError("schedule has no working days")
	}

	if err := p.resolveDrivers(snap); err != nil {
		return nil, err
	}
	if err := p.resolveFleet(snap, sched); err != nil {
		return nil, err
	}

	return p, nil
}

// resolveDurations loads the four route legs the task alphabet needs.
// Service times come from the catalog defaults, not the store.
func resolveDurations(snap *Snapshot, p *Parameters) (tasks.Durations, error) {
	table := location.NewRouteTable(snap.Routes)
	d := tasks.DefaultDurations()

	legs := []struct {
		from, to string
		into     *int
	}{
		{p.Parking.ID, p.Source.ID, &d.ParkingToSource},
		{p.Source.ID, p.Parking.ID, &d.SourceToParking},
		{p.Parking.ID, p.Destination.ID, &d.ParkingToDestination},
		{p.Destination.ID, p.Parking.ID, &d.DestinationToParking},
	}
	for _, leg := range legs {
		minutes, err := table.Duration(leg.from, leg.to)
		if err != nil {
			return d, err
		}
		*leg.into = minutes
	}
	return d, nil
}

// resolveDrivers builds the canonical per-day pools split by home base
func (p *Parameters) resolveDrivers(snap *Snapshot) error {
	var active []*driver.Driver
	for _, d := range snap.Drivers {
		if d.Active {
			active = append(active, d)
		}
	}
	if len(active) == 0 {
		return shared.NewInvalidInputError("no active drivers")
	}

	sort.Slice(active, func(i, j int) bool {
		if active[i].Category.Priority() != active[j].Category.Priority() {
			return active[i].Category.Priority() < active[j].Category.Priority()
		}
		return active[i].ID < active[j].ID
	})

	p.ParkingDrivers = make([][]*driver.Driver, len(p.Dates))
	p.DestinationDrivers = make([][]*driver.Driver, len(p.Dates))
	for i, date := range p.Dates {
		key := shared.DateKey(date)
		for _, d := range active {
			if !p.Availability.IsAvailable(d, key) || !d.LicenceValidOn(date) {
				continue
			}
			if d.HomeBaseID == p.Destination.ID {
				p.DestinationDrivers[i] = append(p.DestinationDrivers[i], d)
			} else {
				p.ParkingDrivers[i] = append(p.ParkingDrivers[i], d)
			}
		}
	}
	return nil
}

// resolveFleet counts the day-zero yard balances, applying the schedule's
// attached initial-state overrides on top of the snapshot state.
func (p *Parameters) resolveFleet(snap *Snapshot, sched *schedule.Schedule) error {
	if len(snap.Tractors) == 0 {
		return shared.NewInvalidInputError("no vehicles")
	}
	if len(snap.Trailers) == 0 {
		return shared.NewInvalidInputError("no trailers")
	}

	for _, t := range snap.Trailers {
		if t.LocationID == p.Destination.ID {
			return shared.NewInvalidInputError(fmt.Sprintf("trailer %s is at the destination", t.ID))
		}
		p.TrailerIDs = append(p.TrailerIDs, t.ID)
		if t.LocationID != p.Parking.ID {
			continue
		}
		full := t.Full
		if override, ok := sched.InitialTrailerFull[t.ID]; ok {
			full = override
		}
		if full {
			p.InitialFullTrailers++
		} else {
			p.InitialEmptyTrailers++
		}
	}
	sort.Strings(p.TrailerIDs)

	for _, t := range snap.Tractors {
		if t.LocationID == p.Destination.ID {
			p.TractorsAtDestination++
			p.TractorsAtDestIDs = append(p.TractorsAtDestIDs, t.ID)
			continue
		}
		p.TractorsAtParkingIDs = append(p.TractorsAtParkingIDs, t.ID)
		full := t.TankFull
		if override, ok := sched.InitialTankFull[t.ID]; ok {
			full = override
		}
		if full {
			p.InitialFullTanks++
		} else {
			p.InitialEmptyTanks++
		}
	}
	sort.Strings(p.TractorsAtParkingIDs)
	sort.Strings(p.TractorsAtDestIDs)

	p.TotalTrailers = len(snap.Trailers)
	p.TotalTractors = len(snap.Tractors)
	return nil
}

// SolverInput translates the parameters into the solver wire document.
// This is the model-builder half of the child-process boundary: the
// constraint model itself lives behind it.
func (p *Parameters) SolverInput(timeLimitSeconds, numWorkers int, seed int64) *solver.Input {
	in := &solver.Input{
		StartDate: shared.DateKey(p.Dates[0]),
		EndDate:   shared.DateKey(p.Dates[len(p.Dates)-1]),
		InitialState: solver.InitialState{
			FullTrailers:  p.InitialFullTrailers,
			EmptyTrailers: p.InitialEmptyTrailers,
			FullTanks:     p.InitialFullTanks,
			EmptyTanks:    p.InitialEmptyTanks,
		},
		LitersPerUnit: p.LitersPerDelivery(),
		TotalTrailers: p.TotalTrailers,
		TotalTractors: p.TotalTractors,

		ShiftMinutes: p.Grid.ShiftMinutes,
		SlotMinutes:  p.Grid.SlotMinutes,

		DriveMinutesDaily:       p.Limits.DailyDriveMinutes,
		DriveMinutesExtended:    p.Limits.ExtendedDriveMinutes,
		MaxExtendedDaysPerWeek:  p.Limits.MaxExtendedPerWeek,
		WeeklyDriveLimitMinutes: p.Limits.WeeklyDriveMinutes,
		BiweeklyDriveLimit:      p.Limits.BiweeklyDriveMinutes,

		EntryStartMinutes: p.Grid.EntryStartMinute,
		EntryEndMinutes:   p.Grid.EntryEndMinute,

		TimeLimitSeconds: timeLimitSeconds,
		NumSearchWorkers: numWorkers,
		Seed:             seed,
	}
	for i := range p.Dates {
		in.ParkingDrivers = append(in.ParkingDrivers, len(p.ParkingDrivers[i]))
		in.DestinationDrivers = append(in.DestinationDrivers, len(p.DestinationDrivers[i]))
	}
	return in
}

// LitersPerDelivery returns the litres one delivery credit stands for
func (p *Parameters) LitersPerDelivery() int {
	return fleet.DefaultTankLiters
}
