// Package scale derives adaptive colour and status bands from observed load
// peaks so heatmaps and timelines stay readable at any magnitude.
package scale

// MinVMax is the floor for the adaptive ceiling, used even when every load is 0.
const MinVMax = 20.0

const peakHeadroom = 1.5

// Fractions of vmax at which each banding scheme steps up.
var (
	heatSteps     = []float64{0.15, 0.35, 0.60, 0.80}
	timelineSteps = []float64{0.35, 0.60, 0.80}
)

// Scale is an adaptive ceiling fitted to a series of loads.
type Scale struct {
	Peak float64 `json:"peak"`
	VMax float64 `json:"vmax"`
}

// Fit computes vmax = max(peak × 1.5, 20) for loads.
func Fit(loads []float64) Scale {
	peak := 0.0
	for i, v := range loads {
		if i == 0 || v > peak {
			peak = v
		}
	}
	vmax := peak * peakHeadroom
	if vmax < MinVMax {
		vmax = MinVMax
	}
	return Scale{Peak: peak, VMax: vmax}
}

// Thresholds returns the absolute cut points for a scheme with the given
// number of bands (5 for heat, 4 for timeline). Other counts yield nil.
func (s Scale) Thresholds(bands int) []float64 {
	var steps []float64
	switch bands {
	case 5:
		steps = heatSteps
	case 4:
		steps = timelineSteps
	default:
		return nil
	}
	out := make([]float64, len(steps))
	for i, f := range steps {
		out[i] = f * s.VMax
	}
	return out
}

// Band returns the zero-based band index of value in a scheme with the given
// band count. A value equal to a threshold falls into the higher band.
func (s Scale) Band(value float64, bands int) int {
	idx := 0
	for _, t := range s.Thresholds(bands) {
		if value >= t {
			idx++
		}
	}
	return idx
}

// HeatLevel is the five-band daily heatmap classification.
type HeatLevel string

const (
	HeatVeryLow  HeatLevel = "very_low"
	HeatLow      HeatLevel = "low"
	HeatMedium   HeatLevel = "medium"
	HeatHigh     HeatLevel = "high"
	HeatVeryHigh HeatLevel = "very_high"
)

var heatLevels = []HeatLevel{HeatVeryLow, HeatLow, HeatMedium, HeatHigh, HeatVeryHigh}

// Heat classifies a daily load on the five-band scheme.
func (s Scale) Heat(value float64) HeatLevel {
	return heatLevels[s.Band(value, len(heatLevels))]
}

// TimelineStatus is the four-band weekly timeline classification.
type TimelineStatus string

const (
	TimelineGood    TimelineStatus = "good"
	TimelineBusy    TimelineStatus = "busy"
	TimelineWarning TimelineStatus = "warning"
	TimelineOver    TimelineStatus = "over"
)

var timelineStatuses = []TimelineStatus{TimelineGood, TimelineBusy, TimelineWarning, TimelineOver}

// Timeline classifies a utilization on the four-band scheme.
func (s Scale) Timeline(value float64) TimelineStatus {
	return timelineStatuses[s.Band(value, len(timelineStatuses))]
}

// Relative annotates how a value compares with the rest of the fitted series.
func (s Scale) Relative(value float64) string {
	switch s.Timeline(value) {
	case TimelineOver, TimelineWarning:
		return "Peak workload period"
	case TimelineBusy:
		return "Typical workload"
	default:
		return "Lighter than usual"
	}
}
