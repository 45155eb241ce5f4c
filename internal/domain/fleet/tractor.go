package fleet

import "github.com/alessandroavenali/fuel-logistics-go/internal/domain/shared"

// DefaultTankLiters is the capacity of an integrated tank and of a trailer.
// One delivery credit corresponds to exactly one such unit.
const DefaultTankLiters = 17500

// Tractor is a snapshot record of a driver-tractor unit. The integrated
// tank is non-detachable and is either full (one unit) or empty.
type Tractor struct {
	ID         string
	Plate      string
	BaseID     string
	TankLiters int
	LocationID string
	TankFull   bool
}

// NewTractor creates a tractor with the default integrated tank capacity
func NewTractor(id, plate, baseID string) (*Tractor, error) {
	if id == "" {
		return nil, shared.NewValidationError("id", "cannot be empty")
	}
	return &Tractor{
		ID:         id,
		Plate:      plate,
		BaseID:     baseID,
		TankLiters: DefaultTankLiters,
		LocationID: baseID,
	}, nil
}
