package models

// CulturePhase is a stage of the cultivation cycle.
type CulturePhase string

const (
	PhaseGermination CulturePhase = "germination"
	PhaseGrowth      CulturePhase = "croissance"
	PhaseFlowering   CulturePhase = "floraison"
	PhaseHarvest     CulturePhase = "recolte"
)

// DefaultPhase is reported until a phase has been set.
const DefaultPhase = PhaseGrowth

// CulturePhases lists the recognized phases in cycle order.
var CulturePhases = []CulturePhase{
	PhaseGermination,
	PhaseGrowth,
	PhaseFlowering,
	PhaseHarvest,
}

// Valid reports whether p is one of CulturePhases.
func (p CulturePhase) Valid() bool {
	for _, known := range CulturePhases {
		if p == known {
			return true
		}
	}
	return false
}
