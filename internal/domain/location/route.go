package location

import (
	"fmt"

	"github.com/alessandroavenali/fuel-logistics-go/internal/domain/shared"
)

// Route is a directed leg between two locations with a fixed travel time.
// Road distances are inputs; no route planning happens in the core.
type Route struct {
	FromID          string
	ToID            string
	DurationMinutes int
}

// NewRoute creates a route, rejecting non-positive durations
func NewRoute(fromID, toID string, durationMinutes int) (*Route, error) {
	if durationMinutes <= 0 {
		return nil, shared.NewValidationError("durationMinutes", "must be positive")
	}
	if fromID == "" || toID == "" {
		return nil, shared.NewValidationError("route", "endpoints cannot be empty")
	}
	return &Route{FromID: fromID, ToID: toID, DurationMinutes: durationMinutes}, nil
}

// RouteTable resolves the travel time of a directed leg
type RouteTable struct {
	durations map[string]int
}

// NewRouteTable builds a lookup table from a route list
func NewRouteTable(routes []*Route) *RouteTable {
	durations := make(map[string]int, len(routes))
	for _, r := range routes {
		durations[routeKey(r.FromID, r.ToID)] = r.DurationMinutes
	}
	return &RouteTable{durations: durations}
}

// Duration returns the travel time of the (from, to) leg.
// A missing leg is an invalid-input condition: the planner cannot price
// a task whose road time is unknown.
func (t *RouteTable) Duration(fromID, toID string) (int, error) {
	d, ok := t.durations[routeKey(fromID, toID)]
	if !ok {
		return 0, shared.NewInvalidInputError(fmt.Sprintf("no route from %s to %s", fromID, toID))
	}
	return d, nil
}

func routeKey(fromID, toID string) string {
	return fromID + "→" + toID
}
