package tanks

import (
	"Aquaquote/internal/calc/flow"
	"Aquaquote/internal/calc/plant"
)

type ID string

const (
	BarScreen         ID = "BarScreen"
	OilGreaseTank     ID = "OilGreaseTank"
	EqualizationTank  ID = "EqualizationTank"
	AnoxicTank        ID = "AnoxicTank"
	MBBRTank          ID = "MBBRTank"
	TubeSettle        ID = "TubeSettle"
	FilterFeedTank    ID = "FilterFeedTank"
	TreatedWaterTank  ID = "TreatedWaterTank"
	UFWaterTank       ID = "UFWaterTank"
	SludgeHoldingTank ID = "SludgeHoldingTank"
)

// All lists the tanks in treatment order.
var All = []ID{
	BarScreen,
	OilGreaseTank,
	EqualizationTank,
	AnoxicTank,
	MBBRTank,
	TubeSettle,
	FilterFeedTank,
	TreatedWaterTank,
	UFWaterTank,
	SludgeHoldingTank,
}

func Valid(id ID) bool {
	for _, t := range All {
		if t == id {
			return true
		}
	}
	return false
}

// minDenominator keeps loading rates and consistencies away from zero.
const minDenominator = 1e-6

// Coefficients are the design constants behind every formula. Retention
// times are in hours, loading rates in kg/m3.day.
type Coefficients struct {
	BarScreenHours     float64 `json:"barScreenHours" yaml:"barScreenHours"`
	OilGreaseHours     float64 `json:"oilGreaseHours" yaml:"oilGreaseHours"`
	EqualizationHours  float64 `json:"equalizationHours" yaml:"equalizationHours"`
	AnoxicHours        float64 `json:"anoxicHours" yaml:"anoxicHours"`
	TubeSettleHours    float64 `json:"tubeSettleHours" yaml:"tubeSettleHours"`
	FilterFeedHours    float64 `json:"filterFeedHours" yaml:"filterFeedHours"`
	TreatedWaterHours  float64 `json:"treatedWaterHours" yaml:"treatedWaterHours"`
	UFWaterHours       float64 `json:"ufWaterHours" yaml:"ufWaterHours"`
	OrganicLoadingRate float64 `json:"organicLoadingRate" yaml:"organicLoadingRate"`
	SludgeYield        float64 `json:"sludgeYield" yaml:"sludgeYield"`
	SolidsCapture      float64 `json:"solidsCapture" yaml:"solidsCapture"`
	SludgeConsistency  float64 `json:"sludgeConsistency" yaml:"sludgeConsistency"`
	SludgeStorageDays  float64 `json:"sludgeStorageDays" yaml:"sludgeStorageDays"`
	LengthM            float64 `json:"length" yaml:"length"`
	HeightM            float64 `json:"height" yaml:"height"`
}

// Set holds every tank volume (m3) of one sizing run.
type Set struct {
	Type        plant.Type     `json:"type"`
	Volumes     map[ID]float64 `json:"volumes"`
	Widths      map[ID]float64 `json:"breath"`
	LengthM     float64        `json:"length"`
	HeightM     float64        `json:"height"`
	TotalVolume float64        `json:"volume"`
}

func (s Set) Volume(id ID) float64 {
	return s.Volumes[id]
}

// Empty is the set shown before any sizing has happened.
func Empty(c Coefficients) Set {
	return build(plant.TypeSTP, make(map[ID]float64, len(All)), c)
}

// Size runs every formula and returns the complete set.
func Size(f flow.Flow, spec plant.Spec, c Coefficients) Set {
	v := map[ID]float64{
		BarScreen:         PretreatmentVolume(f.FlowRate, f.PeakFlow, c.BarScreenHours),
		OilGreaseTank:     PretreatmentVolume(f.FlowRate, f.PeakFlow, c.OilGreaseHours),
		EqualizationTank:  RetentionVolume(f.FlowRate, c.EqualizationHours),
		AnoxicTank:        RetentionVolume(f.FlowRate, c.AnoxicHours),
		MBBRTank:          MBBRVolume(spec.Capacity, spec.BOD, c),
		TubeSettle:        RetentionVolume(f.FlowRate, c.TubeSettleHours),
		FilterFeedTank:    RetentionVolume(f.FlowRate, c.FilterFeedHours),
		TreatedWaterTank:  RetentionVolume(f.FlowRate, c.TreatedWaterHours),
		UFWaterTank:       RetentionVolume(f.FlowRate, c.UFWaterHours),
		SludgeHoldingTank: SludgeHoldingVolume(spec.Capacity, spec.BOD, spec.TSS, c),
	}
	return build(spec.Type, v, c)
}

func build(t plant.Type, volumes map[ID]float64, c Coefficients) Set {
	s := Set{
		Type:    t,
		Volumes: make(map[ID]float64, len(All)),
		Widths:  make(map[ID]float64, len(All)),
		LengthM: c.LengthM,
		HeightM: c.HeightM,
	}
	face := c.LengthM * c.HeightM
	for _, id := range All {
		vol := volumes[id]
		s.Volumes[id] = vol
		s.TotalVolume += vol
		w := 0.0
		if face > 0 {
			w = vol / face
		}
		s.Widths[id] = w
	}
	return s
}

// PretreatmentVolume sizes screen and skimming chambers on the mean of
// average and peak flow.
func PretreatmentVolume(flowRate, peakFlow, hours float64) float64 {
	if flowRate <= 0 || peakFlow <= 0 || hours <= 0 {
		return 0
	}
	return (flowRate + peakFlow) / 2 * hours
}

func RetentionVolume(flowRate, hours float64) float64 {
	if flowRate <= 0 || hours <= 0 {
		return 0
	}
	return flowRate * hours
}

// MBBRVolume = BOD load (kg/day) / organic loading rate.
func MBBRVolume(capacity, bod float64, c Coefficients) float64 {
	if capacity <= 0 || bod <= 0 {
		return 0
	}
	load := capacity * bod / 1000.0
	return load / floor(c.OrganicLoadingRate)
}

// SludgeHoldingVolume stores the biological and captured solids for the
// configured number of days.
func SludgeHoldingVolume(capacity, bod, tss float64, c Coefficients) float64 {
	if capacity <= 0 || bod <= 0 || tss <= 0 {
		return 0
	}
	solids := capacity * (c.SludgeYield*bod + c.SolidsCapture*tss) / 1000.0
	v := solids / floor(c.SludgeConsistency) * c.SludgeStorageDays
	if v < 0 {
		return 0
	}
	return v
}

func floor(d float64) float64 {
	if d < minDenominator {
		return minDenominator
	}
	return d
}
