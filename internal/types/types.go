// README: Common value types shared across modules.
package types

import "github.com/google/uuid"

// ID identifies an entity (route, offer, settings snapshot).
type ID string

func NewID() ID {
	return ID(uuid.NewString())
}

func (id ID) String() string {
	return string(id)
}

// Location is a named point on a route, as resolved by the maps provider.
type Location struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
