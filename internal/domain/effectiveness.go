package domain

// Intervention names produced by the selector and keyed in the effectiveness table.
const (
	InterventionTruckBan             = "Truck Entry Ban (12 hours)"
	InterventionOddEven              = "Odd-Even Vehicle Scheme"
	InterventionPeakHourRestrictions = "Peak Hour Traffic Restrictions"
	InterventionConstructionHalt     = "Construction Activity Halt & Street Washing"
	InterventionStreetCleaning       = "Enhanced Street Cleaning & Dust Control"
	InterventionIndustrialControl    = "Industrial Emission Control + Vehicle Restrictions"
	InterventionEmissionStandards    = "Emission Standards Enforcement"
	InterventionPublicTransport      = "Public Transport Incentive Program"
)

// EffectivenessRange is the fractional pm2.5 reduction reported in the
// literature for an intervention: 0 <= Min <= Typical <= Max <= 1.
type EffectivenessRange struct {
	Min     float64 `json:"min"`
	Typical float64 `json:"typical"`
	Max     float64 `json:"max"`
}

// DefaultEffectiveness is the conservative range used for unknown interventions.
var DefaultEffectiveness = EffectivenessRange{Min: 0.08, Typical: 0.15, Max: 0.22}

// effectivenessTable sources: Delhi odd-even evaluations (IIT Delhi 2016-2019,
// EPCA), Guttikunda et al. 2014, CPCB dust control guidelines, DPCC emission
// inventory and metro ridership impact studies.
var effectivenessTable = map[string]EffectivenessRange{
	InterventionTruckBan:             {Min: 0.12, Typical: 0.18, Max: 0.25},
	InterventionOddEven:              {Min: 0.08, Typical: 0.14, Max: 0.20},
	InterventionPeakHourRestrictions: {Min: 0.10, Typical: 0.16, Max: 0.22},
	InterventionConstructionHalt:     {Min: 0.15, Typical: 0.22, Max: 0.30},
	InterventionStreetCleaning:       {Min: 0.08, Typical: 0.12, Max: 0.18},
	InterventionIndustrialControl:    {Min: 0.20, Typical: 0.30, Max: 0.40},
	InterventionEmissionStandards:    {Min: 0.10, Typical: 0.15, Max: 0.22},
	InterventionPublicTransport:      {Min: 0.05, Typical: 0.10, Max: 0.15},
}

// Effectiveness returns the range for a named intervention and whether the
// name was found. Unknown names get DefaultEffectiveness.
func Effectiveness(intervention string) (EffectivenessRange, bool) {
	r, ok := effectivenessTable[intervention]
	if !ok {
		return DefaultEffectiveness, false
	}
	return r, true
}

// Interventions lists every intervention with a literature-backed range.
func Interventions() []string {
	return []string{
		InterventionTruckBan,
		InterventionOddEven,
		InterventionPeakHourRestrictions,
		InterventionConstructionHalt,
		InterventionStreetCleaning,
		InterventionIndustrialControl,
		InterventionEmissionStandards,
		InterventionPublicTransport,
	}
}
