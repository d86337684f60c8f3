package domain

import "strings"

// VesselClass identifies the category of boat being chartered. The wire
// values are the identifiers the dock has always used.
type VesselClass string

const (
	VesselNone  VesselClass = ""
	VesselTaxi  VesselClass = "lancha"
	VesselSport VesselClass = "deportiva"
	VesselBarge VesselClass = "planchon"
	VesselBoat  VesselClass = "barco"
	VesselYacht VesselClass = "yate"
	VesselCargo VesselClass = "carguero"
)

// AllVessels in menu order.
func AllVessels() []VesselClass {
	return []VesselClass{VesselTaxi, VesselSport, VesselBarge, VesselBoat, VesselYacht, VesselCargo}
}

// ParseVesselClass accepts the canonical identifiers plus common aliases.
// Empty input clears the selection.
func ParseVesselClass(s string) (VesselClass, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return VesselNone, true
	case "lancha", "taxi":
		return VesselTaxi, true
	case "deportiva", "sport":
		return VesselSport, true
	case "planchon", "planchón", "barge":
		return VesselBarge, true
	case "barco", "boat":
		return VesselBoat, true
	case "yate", "yacht":
		return VesselYacht, true
	case "carguero", "cargo":
		return VesselCargo, true
	}
	return VesselNone, false
}

// Display returns the label shown on tickets ("Lancha", "Deportiva", ...).
func (v VesselClass) Display() string {
	s := string(v)
	if s == "" {
		return "-"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
