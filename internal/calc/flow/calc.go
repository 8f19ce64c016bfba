package flow

// PeakFactor applies when no peak flow override is given.
const PeakFactor = 1.5

const minOperatingHours = 1.0

// Conversion turns a daily capacity into an hourly design flow.
type Conversion struct {
	OperatingHours float64 `json:"operatingHours" yaml:"operatingHours"`
}

type Input struct {
	CapacityKLD float64 `json:"capacity"`
	PeakFlowKLD float64 `json:"PeakFlow"`
}

// Flow values are in m3/h.
type Flow struct {
	FlowRate float64 `json:"flowRate"`
	PeakFlow float64 `json:"peakFlow"`
}

func (c Conversion) hours() float64 {
	if c.OperatingHours < minOperatingHours {
		return minOperatingHours
	}
	return c.OperatingHours
}

// Derive converts capacity (KLD, i.e. m3/day) into a flow rate over the
// operating hours. A positive override is converted the same way and never
// drops peak flow below the flow rate.
func Derive(in Input, c Conversion) Flow {
	if in.CapacityKLD <= 0 {
		return Flow{}
	}
	h := c.hours()
	rate := in.CapacityKLD / h
	peak := rate * PeakFactor
	if in.PeakFlowKLD > 0 {
		peak = in.PeakFlowKLD / h
		if peak < rate {
			peak = rate
		}
	}
	return Flow{FlowRate: rate, PeakFlow: peak}
}
