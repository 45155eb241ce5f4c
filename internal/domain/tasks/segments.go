package tasks

import "github.com/alessandroavenali/fuel-logistics-go/internal/domain/trip"

// Segment is one leg of a task: either continuous driving or a service
// pause (loading, unloading, hooking, transferring, resting).
type Segment struct {
	Driving bool
	Minutes int
}

// Segments returns the ordered driving/pause structure of a task. The ADR
// validator walks these to verify that a 45-minute break is embedded in
// every 4h30 of accumulated driving.
func (c *Catalog) Segments(code Code) []Segment {
	d := c.durations
	switch code {
	case CodeSupply:
		return []Segment{
			{Driving: true, Minutes: d.ParkingToSource},
			{Minutes: d.LoadMinutes},
			{Driving: true, Minutes: d.SourceToParking},
		}
	case CodeShuttle:
		return []Segment{
			{Driving: true, Minutes: d.ParkingToDestination},
			{Minutes: d.UnloadMinutes},
			{Driving: true, Minutes: d.DestinationToParking},
		}
	case CodeShuttleFromDestination:
		return []Segment{
			{Driving: true, Minutes: d.DestinationToParking},
			{Minutes: d.HookMinutes},
			{Driving: true, Minutes: d.ParkingToDestination},
			{Minutes: d.UnloadMinutes},
		}
	case CodeSupplyFromDestination:
		return []Segment{
			{Driving: true, Minutes: d.DestinationToParking + d.ParkingToSource},
			{Minutes: d.LoadMinutes},
			{Driving: true, Minutes: d.SourceToParking + d.ParkingToDestination},
			{Minutes: d.UnloadMinutes},
		}
	case CodeRefill:
		return []Segment{{Minutes: d.TransferMinutes}}
	case CodeFullRound:
		return []Segment{
			{Driving: true, Minutes: d.ParkingToSource},
			{Minutes: d.LoadMinutes},
			{Driving: true, Minutes: d.SourceToParking + d.ParkingToDestination},
			{Minutes: d.UnloadMinutes + d.BreakMinutes},
			{Driving: true, Minutes: d.DestinationToParking},
		}
	default:
		return nil
	}
}

// CodeForTripType maps the persisted trip vocabulary back onto the task
// alphabet.
func CodeForTripType(t trip.Type) (Code, bool) {
	switch t {
	case trip.TypeSupplyMilano:
		return CodeSupply, true
	case trip.TypeShuttleLivigno:
		return CodeShuttle, true
	case trip.TypeShuttleFromLivigno:
		return CodeShuttleFromDestination, true
	case trip.TypeSupplyFromLivigno:
		return CodeSupplyFromDestination, true
	case trip.TypeTransferTirano:
		return CodeRefill, true
	case trip.TypeFullRound:
		return CodeFullRound, true
	default:
		return "", false
	}
}
