package model

import (
	"fmt"
	"regexp"
)

var timePattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// NormalizeScheduleTime validates and canonicalizes a schedule time: either
// a literal "HH:MM" or one of the astronomical keywords "sunrise"/"sunset"
// substituted at evaluation time by the scheduler's sun-position
// calculator.
func NormalizeScheduleTime(s string) (string, error) {
	if s == "sunrise" || s == "sunset" {
		return s, nil
	}
	if !timePattern.MatchString(s) {
		return "", fmt.Errorf("invalid schedule time %q: want HH:MM, sunrise, or sunset", s)
	}
	return s, nil
}

// ValidHeatMode reports whether mode is one of the modes this package
// defines; variant-specific availability (e.g. solar-preferred requiring a
// solar heater on the body) is checked by the Board layer, which knows the
// equipment's actual heat sources.
func ValidHeatMode(mode HeatMode) bool {
	switch mode {
	case HeatModeOff, HeatModeHeater, HeatModeSolar, HeatModeSolarPref:
		return true
	default:
		return false
	}
}

// HeatModePermitted reports whether sources (a BodyConfig.HeatSources
// bitmask) permits mode, per spec §3's "a body's heatMode must be permitted
// by its heatSources bitmask for the current controller variant."
// HeatModeOff is always permitted.
func HeatModePermitted(sources uint32, mode HeatMode) bool {
	switch mode {
	case HeatModeOff:
		return true
	case HeatModeHeater:
		return sources&HeatSourceHeater != 0
	case HeatModeSolar:
		return sources&HeatSourceSolar != 0
	case HeatModeSolarPref:
		return sources&HeatSourceHeater != 0 && sources&HeatSourceSolar != 0
	default:
		return false
	}
}

// ChemSetpointRange bounds pH/ORP setpoints; values outside these ranges
// fail validation before any frame is queued, per spec §4.5's "validate
// range and enum membership before queuing a frame."
type ChemSetpointRange struct {
	MinPH, MaxPH   float64
	MinORP, MaxORP float64
}

func DefaultChemSetpointRange() ChemSetpointRange {
	return ChemSetpointRange{MinPH: 7.0, MaxPH: 7.8, MinORP: 400, MaxORP: 800}
}

func (r ChemSetpointRange) ValidatePH(v float64) error {
	if v < r.MinPH || v > r.MaxPH {
		return fmt.Errorf("pH setpoint %.2f out of range [%.2f, %.2f]", v, r.MinPH, r.MaxPH)
	}
	return nil
}

func (r ChemSetpointRange) ValidateORP(v float64) error {
	if v < r.MinORP || v > r.MaxORP {
		return fmt.Errorf("ORP setpoint %.0f out of range [%.0f, %.0f]", v, r.MinORP, r.MaxORP)
	}
	return nil
}

// HeatSetpointRange bounds body heat/cool setpoints by variant; boards
// supply their own range since permitted ranges differ across controller
// families (spec §8's "values outside the variant's permitted range return
// InvalidEquipmentData").
type HeatSetpointRange struct {
	MinF, MaxF float64
}

func (r HeatSetpointRange) Validate(v float64) error {
	if v < r.MinF || v > r.MaxF {
		return fmt.Errorf("heat setpoint %.1f out of range [%.1f, %.1f]", v, r.MinF, r.MaxF)
	}
	return nil
}
