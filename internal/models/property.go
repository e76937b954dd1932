// internal/models/property.go
package models

import (
	"fmt"
	"time"
)

// PropertyType classifies a listing by structure.
type PropertyType string

const (
	PropertyHouse     PropertyType = "house"
	PropertyApartment PropertyType = "apartment"
	PropertyLand      PropertyType = "land"
	PropertyPenthouse PropertyType = "penthouse"
	PropertyOffice    PropertyType = "office"
	PropertyOther     PropertyType = "other"
)

// AvailabilityStatus is the commercial state of a listing.
type AvailabilityStatus string

const (
	AvailabilityActive   AvailabilityStatus = "active"
	AvailabilityReserved AvailabilityStatus = "reserved"
	AvailabilitySold     AvailabilityStatus = "sold"
)

// Coordinate is a WGS84 point.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the point lies inside the WGS84 ranges.
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// Price is an amount in a named currency. Amounts in different currencies
// are never compared directly; conversion happens in scoring when the
// profile supplies a rate.
type Price struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Property is one real-estate listing as ingested from a source dataset.
// Coordinate is a pointer because a listing without geodata is still a
// valid, scoreable candidate.
type Property struct {
	ID         string             `json:"id"`
	Coordinate *Coordinate        `json:"coordinate,omitempty"`
	Price      Price              `json:"price"`
	Type       PropertyType       `json:"type"`
	Bedrooms   int                `json:"bedrooms"`
	Bathrooms  int                `json:"bathrooms"`
	BuiltArea  float64            `json:"builtAreaM2"`
	LotArea    float64            `json:"lotAreaM2"`
	Zone       string             `json:"zone,omitempty"`
	Status     AvailabilityStatus `json:"status"`
	SourceFile string             `json:"sourceFile,omitempty"`
	IngestedAt time.Time          `json:"ingestedAt,omitempty"`
}

// HasValidCoordinate reports whether the listing carries usable geodata.
func (p Property) HasValidCoordinate() bool {
	return p.Coordinate != nil && p.Coordinate.Valid()
}

// Validate checks structural integrity of the record itself. Geodata is
// not required here: missing coordinates degrade sub-scores, they do not
// reject the listing.
func (p Property) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("property id is required")
	}
	if p.Price.Amount < 0 {
		return fmt.Errorf("property %s: negative price", p.ID)
	}
	if p.Coordinate != nil && !p.Coordinate.Valid() {
		return fmt.Errorf("property %s: coordinate outside WGS84 ranges", p.ID)
	}
	return nil
}
