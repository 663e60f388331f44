package enums

import "fmt"

// CustomizationMode controls which input styles a customization category offers.
type CustomizationMode string

const (
	CustomizationModePredefined CustomizationMode = "predefined"
	CustomizationModeFreeform   CustomizationMode = "freeform"
	CustomizationModeBoth       CustomizationMode = "both"
)

var validCustomizationModes = []CustomizationMode{
	CustomizationModePredefined,
	CustomizationModeFreeform,
	CustomizationModeBoth,
}

// String implements fmt.Stringer.
func (m CustomizationMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known CustomizationMode.
func (m CustomizationMode) IsValid() bool {
	for _, candidate := range validCustomizationModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// Allows reports whether a category configured with m accepts the requested input mode.
// Only predefined and freeform are selectable; both is a category setting.
func (m CustomizationMode) Allows(requested CustomizationMode) bool {
	switch requested {
	case CustomizationModePredefined, CustomizationModeFreeform:
		return m == CustomizationModeBoth || m == requested
	default:
		return false
	}
}

// ParseCustomizationMode converts raw input into a CustomizationMode.
func ParseCustomizationMode(value string) (CustomizationMode, error) {
	for _, candidate := range validCustomizationModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid customization mode %q", value)
}

// Placement is where on the hat a customization is applied.
type Placement string

const (
	PlacementFront     Placement = "front"
	PlacementBack      Placement = "back"
	PlacementLeftSide  Placement = "left-side"
	PlacementRightSide Placement = "right-side"
	PlacementTop       Placement = "top"
	PlacementBrim      Placement = "brim"
)

var validPlacements = []Placement{
	PlacementFront,
	PlacementBack,
	PlacementLeftSide,
	PlacementRightSide,
	PlacementTop,
	PlacementBrim,
}

// String implements fmt.Stringer.
func (p Placement) String() string {
	return string(p)
}

// IsValid reports whether the value is a known Placement.
func (p Placement) IsValid() bool {
	for _, candidate := range validPlacements {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePlacement converts raw input into a Placement.
func ParsePlacement(value string) (Placement, error) {
	for _, candidate := range validPlacements {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid placement %q", value)
}
