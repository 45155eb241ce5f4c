// fuelplan-solver is the reference planning engine behind the child-process
// boundary: one JSON input document on stdin, exactly one JSON output
// document on stdout, newline-delimited progress JSON on stderr, and a
// cooperative STOP message on stdin. It answers with the greedy simulator;
// the production constraint-programming engine is a drop-in replacement
// speaking the same contract.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alessandroavenali/fuel-logistics-go/internal/application/planning"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/driver"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/fleet"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/location"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/schedule"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/shared"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/tasks"
	"github.com/alessandroavenali/fuel-logistics-go/internal/solver"
)

func main() {
	started := time.Now()

	reader := bufio.NewReader(os.Stdin)
	dec := json.NewDecoder(reader)
	var in solver.Input
	if err := dec.Decode(&in); err != nil {
		fail(fmt.Sprintf("invalid input document: %v", err))
	}
	if err := in.Validate(); err != nil {
		emit(&solver.Output{Status: solver.StatusModelInvalid})
		return
	}

	// Watch for the cooperative stop message. The greedy engine finishes in
	// milliseconds, so a stop simply means "flush what you have". The
	// decoder may have buffered past the document, so stitch its remainder
	// back in front of stdin.
	rest := io.MultiReader(dec.Buffered(), reader)
	stop := make(chan struct{})
	go func() {
		scanner := bufio.NewScanner(rest)
		for scanner.Scan() {
			if strings.TrimSpace(scanner.Text()) == "STOP" {
				close(stop)
				return
			}
		}
	}()

	progress(solver.Progress{ElapsedSeconds: time.Since(started).Seconds()})

	out, err := plan(&in)
	if err != nil {
		emit(&solver.Output{Status: solver.StatusModelInvalid})
		return
	}

	progress(solver.Progress{
		Solutions:           1,
		ObjectiveDeliveries: out.ObjectiveDeliveries,
		ObjectiveLiters:     out.ObjectiveLiters,
		ElapsedSeconds:      time.Since(started).Seconds(),
	})
	emit(out)
}

// plan reconstructs a synthetic snapshot from the count-level input and
// lets the greedy simulator schedule it.
func plan(in *solver.Input) (*solver.Output, error) {
	start, err := shared.ParseDate(in.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := shared.ParseDate(in.EndDate)
	if err != nil {
		return nil, err
	}

	sched, err := schedule.NewSchedule("solver-input", "solver input", start, end, 0)
	if err != nil {
		return nil, err
	}
	if len(sched.WorkingDates()) != in.Days() {
		sched.IncludeWeekend = true
		if len(sched.WorkingDates()) != in.Days() {
			return nil, fmt.Errorf("driver vectors cover %d days, horizon has %d working days", in.Days(), len(sched.WorkingDates()))
		}
	}

	snap := &planning.Snapshot{}
	for _, l := range []struct {
		id   string
		role location.Role
	}{
		{"milano", location.RoleSource},
		{"tirano", location.RoleParking},
		{"livigno", location.RoleDestination},
	} {
		loc, err := location.NewLocation(l.id, l.id, l.role)
		if err != nil {
			return nil, err
		}
		snap.Locations = append(snap.Locations, loc)
	}

	d := tasks.DefaultDurations()
	for _, r := range []struct {
		from, to string
		minutes  int
	}{
		{"tirano", "milano", d.ParkingToSource},
		{"milano", "tirano", d.SourceToParking},
		{"tirano", "livigno", d.ParkingToDestination},
		{"livigno", "tirano", d.DestinationToParking},
	} {
		route, err := location.NewRoute(r.from, r.to, r.minutes)
		if err != nil {
			return nil, err
		}
		snap.Routes = append(snap.Routes, route)
	}

	availability := make(driver.Availability)
	dates := sched.WorkingDates()
	addDrivers := func(prefix, baseID string, perDay []int) error {
		max := 0
		for _, n := range perDay {
			if n > max {
				max = n
			}
		}
		for i := 0; i < max; i++ {
			id := fmt.Sprintf("%s%02d", prefix, i)
			drv, err := driver.NewDriver(id, id, baseID, driver.CategoryResident)
			if err != nil {
				return err
			}
			snap.Drivers = append(snap.Drivers, drv)
			days := make(map[string]bool)
			for dayIdx, date := range dates {
				if i < perDay[dayIdx] {
					days[shared.DateKey(date)] = true
				}
			}
			availability[id] = days
		}
		return nil
	}
	if err := addDrivers("T", "tirano", in.ParkingDrivers); err != nil {
		return nil, err
	}
	if err := addDrivers("L", "livigno", in.DestinationDrivers); err != nil {
		return nil, err
	}

	atParking := in.InitialState.FullTrailers + in.InitialState.EmptyTrailers
	for i := 0; i < in.TotalTrailers; i++ {
		tr, err := fleet.NewTrailer(fmt.Sprintf("TR%02d", i), "", "tirano")
		if err != nil {
			return nil, err
		}
		if i < atParking {
			tr.LocationID = "tirano"
			tr.Full = i < in.InitialState.FullTrailers
		} else {
			tr.LocationID = "milano"
		}
		snap.Trailers = append(snap.Trailers, tr)
	}

	parkingTractors := in.InitialState.FullTanks + in.InitialState.EmptyTanks
	for i := 0; i < in.TotalTractors; i++ {
		tc, err := fleet.NewTractor(fmt.Sprintf("TC%02d", i), "", "tirano")
		if err != nil {
			return nil, err
		}
		if i < parkingTractors {
			tc.LocationID = "tirano"
			tc.TankFull = i < in.InitialState.FullTanks
		} else {
			tc.LocationID = "livigno"
		}
		snap.Tractors = append(snap.Tractors, tc)
	}

	grid := tasks.Grid{
		ShiftStartMinute: tasks.DefaultGrid().ShiftStartMinute,
		ShiftMinutes:     in.ShiftMinutes,
		SlotMinutes:      in.SlotMinutes,
		EntryStartMinute: in.EntryStartMinutes,
		EntryEndMinute:   in.EntryEndMinutes,
	}
	limits := tasks.Limits{
		DailyDriveMinutes:    in.DriveMinutesDaily,
		ExtendedDriveMinutes: in.DriveMinutesExtended,
		MaxExtendedPerWeek:   in.MaxExtendedDaysPerWeek,
		WeeklyDriveMinutes:   in.WeeklyDriveLimitMinutes,
		BiweeklyDriveMinutes: in.BiweeklyDriveLimit,
		BreakAfterDriving:    tasks.DefaultLimits().BreakAfterDriving,
		BreakMinutes:         tasks.DefaultLimits().BreakMinutes,
	}

	params, err := planning.ResolveParameters(snap, sched, availability, grid, limits)
	if err != nil {
		return nil, err
	}
	greedy := planning.NewGreedyPlanner(nil)
	result, err := greedy.Plan(params, 0)
	if err != nil {
		return nil, err
	}
	return result.ToOutput(params), nil
}

func progress(p solver.Progress) {
	raw, _ := json.Marshal(p)
	fmt.Fprintln(os.Stderr, string(raw))
}

func emit(out *solver.Output) {
	enc := json.NewEncoder(os.Stdout)
	if err := enc.Encode(out); err != nil {
		fail(fmt.Sprintf("failed to write output: %v", err))
	}
}

func fail(message string) {
	fmt.Fprintln(os.Stderr, message)
	os.Exit(1)
}
