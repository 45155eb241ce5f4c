package fleet

import "github.com/alessandroavenali/fuel-logistics-go/internal/domain/shared"

// Trailer is a snapshot record of a fuel trailer. Trailers shuttle between
// the source and the parking yard only; a trailer at the destination is a
// hard invariant violation.
type Trailer struct {
	ID         string
	Plate      string
	BaseID     string
	Liters     int
	LocationID string
	Full       bool
}

// NewTrailer creates a trailer with the default capacity
func NewTrailer(id, plate, baseID string) (*Trailer, error) {
	if id == "" {
		return nil, shared.NewValidationError("id", "cannot be empty")
	}
	return &Trailer{
		ID:     id,
		Plate:  plate,
		BaseID: baseID,
		Liters: DefaultTankLiters,
	}, nil
}
