package location

import "github.com/alessandroavenali/fuel-logistics-go/internal/domain/shared"

// Role tags a location with its function in the supply chain.
// Exactly one location of each role exists in a valid snapshot.
type Role string

const (
	// RoleSource is the supply depot where trailers and tanks are loaded (Milano)
	RoleSource Role = "source"

	// RoleParking is the yard where trailers are staged between runs (Tirano)
	RoleParking Role = "parking"

	// RoleDestination is the delivery point (Livigno)
	RoleDestination Role = "destination"
)

// Location is a named site with a role tag
type Location struct {
	ID   string
	Name string
	Role Role
}

// NewLocation creates a location, validating the role tag
func NewLocation(id, name string, role Role) (*Location, error) {
	switch role {
	case RoleSource, RoleParking, RoleDestination:
	default:
		return nil, shared.NewValidationError("role", "must be source, parking or destination")
	}
	if id == "" {
		return nil, shared.NewValidationError("id", "cannot be empty")
	}
	return &Location{ID: id, Name: name, Role: role}, nil
}

// IsDeliveryPoint reports whether this location may receive deliveries.
// Only the destination role may receive a delivery.
func (l *Location) IsDeliveryPoint() bool {
	return l.Role == RoleDestination
}

// IsLoadingPoint reports whether full trailers may be loaded here.
// Only the source role may load a full trailer.
func (l *Location) IsLoadingPoint() bool {
	return l.Role == RoleSource
}
