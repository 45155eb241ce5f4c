package planning

import (
	"sort"

	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/shared"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/tasks"
	"github.com/alessandroavenali/fuel-logistics-go/internal/solver"
)

// ToOutput renders the greedy plan in the solver's wire shape so the
// materialisation stage can consume either planner. Yard refills are moved
// to the refill_starts list, matching the solver's driverless encoding.
func (p *GreedyPlan) ToOutput(params *Parameters) *solver.Output {
	out := &solver.Output{
		Status:              solver.StatusFeasible,
		ObjectiveDeliveries: p.Deliveries,
		ObjectiveLiters:     p.TotalLiters,
	}

	for dayIdx, day := range p.Days {
		d := solver.Day{
			Date:               shared.DateKey(day.Date),
			ParkingDrivers:     len(params.ParkingDrivers[dayIdx]),
			DestinationDrivers: len(params.DestinationDrivers[dayIdx]),

			FullTrailersStart:  day.Start.FullTrailers,
			EmptyTrailersStart: day.Start.EmptyTrailers,
			FullTanksStart:     day.Start.FullTanks,
			EmptyTanksStart:    day.Start.EmptyTanks,

			FullTrailersEnd:  day.End.FullTrailers,
			EmptyTrailersEnd: day.End.EmptyTrailers,
			FullTanksEnd:     day.End.FullTanks,
			EmptyTanksEnd:    day.End.EmptyTanks,
		}

		d.DriversParking = make([]solver.DriverDay, d.ParkingDrivers)
		d.DriversDestination = make([]solver.DriverDay, d.DestinationDrivers)

		assignments := append([]Assignment(nil), day.Assignments...)
		sort.SliceStable(assignments, func(i, j int) bool {
			return assignments[i].StartMinute < assignments[j].StartMinute
		})

		for _, a := range assignments {
			slot := params.Grid.MinuteToSlot(a.StartMinute)
			switch a.Task {
			case tasks.CodeSupply:
				d.SupplyCount++
			case tasks.CodeShuttle:
				d.ShuttleCount++
			case tasks.CodeShuttleFromDestination:
				d.ShuttleFromCount++
			case tasks.CodeSupplyFromDestination:
				d.SupplyFromCount++
			case tasks.CodeRefill:
				d.RefillCount++
				d.RefillStarts = append(d.RefillStarts, solver.RefillStart{
					Task: string(tasks.CodeRefill),
					Slot: slot,
				})
				continue
			}

			start := solver.TaskStart{Task: string(a.Task), Slot: slot}
			if a.Side == tasks.SideParking {
				d.DriversParking[a.DriverIndex].Starts = append(d.DriversParking[a.DriverIndex].Starts, start)
			} else {
				d.DriversDestination[a.DriverIndex].Starts = append(d.DriversDestination[a.DriverIndex].Starts, start)
			}
		}

		out.Days = append(out.Days, d)
	}
	return out
}
