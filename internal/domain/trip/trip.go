package trip

import (
	"time"

	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/fleet"
	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/shared"
)

// Type is the persisted trip-type vocabulary. Values are stored verbatim
// and must stay bit-exact for compatibility with existing records.
type Type string

const (
	TypeShuttleLivigno     Type = "SHUTTLE_LIVIGNO"
	TypeSupplyMilano       Type = "SUPPLY_MILANO"
	TypeFullRound          Type = "FULL_ROUND"
	TypeTransferTirano     Type = "TRANSFER_TIRANO"
	TypeShuttleFromLivigno Type = "SHUTTLE_FROM_LIVIGNO"
	TypeSupplyFromLivigno  Type = "SUPPLY_FROM_LIVIGNO"
)

// Status is the execution state of a trip
type Status string

const (
	StatusPlanned    Status = "planned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// DeliveryLiters returns the delivery credit a trip of this type deposits
// at the destination. Supply and yard-transfer trips deliver nothing.
func (t Type) DeliveryLiters() int {
	switch t {
	case TypeShuttleLivigno, TypeShuttleFromLivigno, TypeSupplyFromLivigno, TypeFullRound:
		return fleet.DefaultTankLiters
	default:
		return 0
	}
}

// VisitsDestination reports whether a trip of this type physically enters
// the destination and is therefore bound by the entry window.
func (t Type) VisitsDestination() bool {
	switch t {
	case TypeShuttleLivigno, TypeShuttleFromLivigno, TypeSupplyFromLivigno, TypeFullRound:
		return true
	default:
		return false
	}
}

// TrailerBinding records one trailer's involvement in a trip
type TrailerBinding struct {
	TrailerID         string
	LitersLoaded      int
	DropOffLocationID string
	IsPickup          bool
}

// Trip is one scheduled task execution bound to concrete identities.
// Departure and return are minutes from midnight of the trip date; both
// fall inside the working-day window and return is strictly after departure.
type Trip struct {
	ID              string
	ScheduleID      string
	DriverID        string
	VehicleID       string
	Date            time.Time
	DepartureMinute int
	ReturnMinute    int
	Type            Type
	Status          Status
	Trailers        []TrailerBinding
}

// Working-day window bounds in minutes from midnight
const (
	DayWindowStartMinute = 6 * 60  // 06:00
	DayWindowEndMinute   = 22 * 60 // 22:00
)

// NewTrip creates a planned trip, enforcing the time-window invariants
func NewTrip(
	id, scheduleID, driverID, vehicleID string,
	date time.Time,
	departureMinute, returnMinute int,
	tripType Type,
	trailers []TrailerBinding,
) (*Trip, error) {
	if returnMinute <= departureMinute {
		return nil, shared.NewValidationError("returnMinute", "must be after departure")
	}
	if departureMinute < DayWindowStartMinute || returnMinute > DayWindowEndMinute {
		return nil, shared.NewValidationError("window", "trip must fit inside the 06:00-22:00 working day")
	}
	return &Trip{
		ID:              id,
		ScheduleID:      scheduleID,
		DriverID:        driverID,
		VehicleID:       vehicleID,
		Date:            date,
		DepartureMinute: departureMinute,
		ReturnMinute:    returnMinute,
		Type:            tripType,
		Status:          StatusPlanned,
		Trailers:        trailers,
	}, nil
}

// Overlaps reports whether two trips on the same date occupy intersecting
// half-open time intervals.
func (t *Trip) Overlaps(other *Trip) bool {
	if !t.Date.Equal(other.Date) {
		return false
	}
	return t.DepartureMinute < other.ReturnMinute && other.DepartureMinute < t.ReturnMinute
}

// DeliveryLiters returns the delivery credit of this trip
func (t *Trip) DeliveryLiters() int {
	return t.Type.DeliveryLiters()
}
