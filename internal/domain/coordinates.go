package domain

import "strings"

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64
	Lat float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Location is a named place a shipment or trip starts or ends at.
// Coords is nil until a geocoder (or the intake collaborator) supplies it.
type Location struct {
	City    string
	Region  string
	Address string
	Coords  *Coordinates
}

// HasCoords reports whether the location can be used for great-circle distance.
func (l Location) HasCoords() bool { return l.Coords != nil }

// SameCity compares city names ignoring case and surrounding whitespace.
func (l Location) SameCity(other Location) bool {
	a := strings.TrimSpace(l.City)
	b := strings.TrimSpace(other.City)
	return a != "" && strings.EqualFold(a, b)
}

func (l Location) String() string {
	if l.Region == "" {
		return l.City
	}
	return l.City + ", " + l.Region
}
