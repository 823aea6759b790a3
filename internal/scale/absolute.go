package scale

// Status is the fixed, non-adaptive capacity classification.
type Status string

const (
	StatusGood Status = "good"
	StatusBusy Status = "busy"
	StatusOver Status = "over"
)

// Default absolute cut points, in percent of team capacity.
const (
	DefaultBusyThreshold = 70.0
	DefaultOverThreshold = 100.0
)

// Limits holds the absolute busy/over cut points.
type Limits struct {
	Busy float64
	Over float64
}

// DefaultLimits returns the 70/100 limits.
func DefaultLimits() Limits {
	return Limits{Busy: DefaultBusyThreshold, Over: DefaultOverThreshold}
}

// Classify maps a utilization onto good/busy/over regardless of any peak.
func (l Limits) Classify(utilization float64) Status {
	busy, over := l.Busy, l.Over
	if busy <= 0 {
		busy = DefaultBusyThreshold
	}
	if over <= 0 {
		over = DefaultOverThreshold
	}
	switch {
	case utilization >= over:
		return StatusOver
	case utilization >= busy:
		return StatusBusy
	default:
		return StatusGood
	}
}
