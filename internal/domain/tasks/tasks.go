package tasks

import (
	"fmt"

	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/trip"
)

// Code is the one-letter task alphabet shared by the solver contract and
// the greedy simulator.
type Code string

const (
	// CodeSupply is a supply run parking → source → parking (S)
	CodeSupply Code = "S"
	// CodeShuttle is a shuttle parking → destination → parking on the
	// integrated tank (U)
	CodeShuttle Code = "U"
	// CodeShuttleFromDestination is a shuttle destination → parking →
	// destination draining one full trailer at the yard (V)
	CodeShuttleFromDestination Code = "V"
	// CodeSupplyFromDestination is the extended supply destination →
	// source → destination leaving a full trailer at the yard (A)
	CodeSupplyFromDestination Code = "A"
	// CodeRefill is the yard trailer-to-tank transfer (R)
	CodeRefill Code = "R"
	// CodeFullRound chains source loading and destination delivery on the
	// integrated tank alone. Produced only by the greedy simulator.
	CodeFullRound Code = "F"
)

// Side tells which driver pool a task draws from
type Side int

const (
	// SideParking tasks start at the yard
	SideParking Side = iota
	// SideDestination tasks start at the destination
	SideDestination
)

// Durations carries the route legs and service times every task duration
// derives from. All values are minutes.
type Durations struct {
	ParkingToSource      int
	SourceToParking      int
	ParkingToDestination int
	DestinationToParking int
	LoadMinutes          int
	UnloadMinutes        int
	TransferMinutes      int
	HookMinutes          int
	BreakMinutes         int
}

// DefaultDurations are the stock Tirano/Milano/Livigno legs
func DefaultDurations() Durations {
	return Durations{
		ParkingToSource:      150,
		SourceToParking:      150,
		ParkingToDestination: 105,
		DestinationToParking: 105,
		LoadMinutes:          45,
		UnloadMinutes:        30,
		TransferMinutes:      30,
		HookMinutes:          30,
		BreakMinutes:         45,
	}
}

// Spec is the fixed shape of one task type
type Spec struct {
	Code           Code
	Side           Side
	TotalMinutes   int
	DrivingMinutes int

	// ArrivalOffset is the minute, relative to task start, at which the
	// vehicle physically enters the destination; -1 when the task never
	// visits it.
	ArrivalOffset int

	// EmptyTrailerOffset is the minute, relative to start, at which a
	// consumed full trailer becomes available empty at the yard; -1 when
	// the task touches no full trailer.
	EmptyTrailerOffset int

	// FullTrailerOffset is the minute, relative to start, at which a
	// produced full trailer becomes available at the yard; -1 when the
	// task produces none.
	FullTrailerOffset int

	TripType trip.Type

	// UsesExtension marks tasks that charge one ADR weekly extension
	// credit regardless of the minutes they add.
	UsesExtension bool
}

// Catalog resolves task specs for one concrete set of durations
type Catalog struct {
	durations Durations
	specs     map[Code]Spec
}

// NewCatalog derives every task spec from the given durations
func NewCatalog(d Durations) *Catalog {
	specs := make(map[Code]Spec)

	specs[CodeSupply] = Spec{
		Code:               CodeSupply,
		Side:               SideParking,
		TotalMinutes:       d.ParkingToSource + d.LoadMinutes + d.SourceToParking,
		DrivingMinutes:     d.ParkingToSource + d.SourceToParking,
		ArrivalOffset:      -1,
		EmptyTrailerOffset: -1,
		FullTrailerOffset:  d.ParkingToSource + d.LoadMinutes + d.SourceToParking,
		TripType:           trip.TypeSupplyMilano,
	}

	specs[CodeShuttle] = Spec{
		Code:               CodeShuttle,
		Side:               SideParking,
		TotalMinutes:       d.ParkingToDestination + d.UnloadMinutes + d.DestinationToParking,
		DrivingMinutes:     d.ParkingToDestination + d.DestinationToParking,
		ArrivalOffset:      d.ParkingToDestination,
		EmptyTrailerOffset: -1,
		FullTrailerOffset:  -1,
		TripType:           trip.TypeShuttleLivigno,
	}

	specs[CodeShuttleFromDestination] = Spec{
		Code:               CodeShuttleFromDestination,
		Side:               SideDestination,
		TotalMinutes:       d.DestinationToParking + d.HookMinutes + d.ParkingToDestination + d.UnloadMinutes,
		DrivingMinutes:     d.DestinationToParking + d.ParkingToDestination,
		ArrivalOffset:      d.DestinationToParking + d.HookMinutes + d.ParkingToDestination,
		EmptyTrailerOffset: d.DestinationToParking + d.HookMinutes,
		FullTrailerOffset:  -1,
		TripType:           trip.TypeShuttleFromLivigno,
	}

	returnToYard := d.DestinationToParking + d.ParkingToSource + d.LoadMinutes + d.SourceToParking
	specs[CodeSupplyFromDestination] = Spec{
		Code:               CodeSupplyFromDestination,
		Side:               SideDestination,
		TotalMinutes:       returnToYard + d.ParkingToDestination + d.UnloadMinutes,
		DrivingMinutes:     d.DestinationToParking + d.ParkingToSource + d.SourceToParking + d.ParkingToDestination,
		ArrivalOffset:      returnToYard + d.ParkingToDestination,
		EmptyTrailerOffset: -1,
		FullTrailerOffset:  returnToYard,
		TripType:           trip.TypeSupplyFromLivigno,
		UsesExtension:      true,
	}

	specs[CodeRefill] = Spec{
		Code:               CodeRefill,
		Side:               SideParking,
		TotalMinutes:       d.TransferMinutes,
		DrivingMinutes:     0,
		ArrivalOffset:      -1,
		EmptyTrailerOffset: d.TransferMinutes,
		FullTrailerOffset:  -1,
		TripType:           trip.TypeTransferTirano,
	}

	outbound := d.ParkingToSource + d.LoadMinutes + d.SourceToParking + d.ParkingToDestination
	specs[CodeFullRound] = Spec{
		Code:               CodeFullRound,
		Side:               SideParking,
		TotalMinutes:       outbound + d.UnloadMinutes + d.BreakMinutes + d.DestinationToParking,
		DrivingMinutes:     d.ParkingToSource + d.SourceToParking + d.ParkingToDestination + d.DestinationToParking,
		ArrivalOffset:      outbound,
		EmptyTrailerOffset: -1,
		FullTrailerOffset:  -1,
		TripType:           trip.TypeFullRound,
	}

	return &Catalog{durations: d, specs: specs}
}

// Spec returns the spec of a task code
func (c *Catalog) Spec(code Code) (Spec, error) {
	s, ok := c.specs[code]
	if !ok {
		return Spec{}, fmt.Errorf("unknown task code %q", code)
	}
	return s, nil
}

// MustSpec returns the spec of a known task code, panicking on unknown
// codes. Callers pass compile-time constants.
func (c *Catalog) MustSpec(code Code) Spec {
	s, err := c.Spec(code)
	if err != nil {
		panic(err)
	}
	return s
}

// Durations returns the leg durations the catalog was derived from
func (c *Catalog) Durations() Durations {
	return c.durations
}
