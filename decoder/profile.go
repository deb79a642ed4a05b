package decoder

import (
	"fmt"
	"strings"
)

// Layout selects which revision of the vehicle's message map is decoded.
type Layout int

const (
	LayoutV6 Layout = iota
	LayoutLegacy
)

func (l Layout) String() string {
	if l == LayoutLegacy {
		return "legacy"
	}
	return "v6"
}

// Profile is the per-deployment decoding configuration.
type Profile struct {
	Layout Layout
	// FeedbackTorqueScale multiplies inverter-reported torque after the /1000 step.
	FeedbackTorqueScale float64
	// CommandTorqueScale multiplies commanded torque after the /1000 step.
	CommandTorqueScale float64
	// MirroredUnits are inverter units whose torque sign is flipped.
	MirroredUnits []int
}

func (p Profile) Name() string { return p.Layout.String() }

func (p Profile) Mirrored(unit int) bool {
	for _, u := range p.MirroredUnits {
		if u == unit {
			return true
		}
	}
	return false
}

// V6Profile is the current car: feedback and command torque x20, unit 3 mounted mirrored.
func V6Profile() Profile {
	return Profile{
		Layout:              LayoutV6,
		FeedbackTorqueScale: 20,
		CommandTorqueScale:  20,
		MirroredUnits:       []int{3},
	}
}

// LegacyProfile is the earlier car: feedback torque x25, no mirrored units.
func LegacyProfile() Profile {
	return Profile{
		Layout:              LayoutLegacy,
		FeedbackTorqueScale: 25,
		CommandTorqueScale:  20,
	}
}

func ProfileByName(name string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "v6":
		return V6Profile(), nil
	case "legacy":
		return LegacyProfile(), nil
	default:
		return Profile{}, fmt.Errorf("unknown profile %q (want v6 or legacy)", name)
	}
}
