package tiertrace

// Method identifies one of the hit ratio estimation methods in a trace.
type Method int

const (
	MethodActual Method = iota
	MethodEstimated
	MethodPTS
	numMethods
)

// Methods lists all methods in display order.
var Methods = [numMethods]Method{MethodActual, MethodEstimated, MethodPTS}

func (m Method) String() string {
	switch m {
	case MethodActual:
		return "actual"
	case MethodEstimated:
		return "estimated"
	case MethodPTS:
		return "pts"
	default:
		return "unknown"
	}
}

// Ratio returns the method's hit ratio for the interval.
func (m Method) Ratio(r IntervalRecord) float64 {
	switch m {
	case MethodActual:
		return r.ActualHitRatio
	case MethodEstimated:
		return r.EstimatedHitRatio
	case MethodPTS:
		return r.PTSHitRatio
	}
	panic("tiertrace: invalid method")
}

// Derived holds the quantities computed from an interval's raw columns.
type Derived struct {
	ActualHits         float64 `json:"actual_hits"`
	EstimatedHits      float64 `json:"estimated_hits"`
	PTSHits            float64 `json:"pts_hits"`
	HitRatioDifference float64 `json:"hit_ratio_difference"` // actual - estimated
}

// Hits returns the derived hit count of the given method.
func (d Derived) Hits(m Method) float64 {
	switch m {
	case MethodActual:
		return d.ActualHits
	case MethodEstimated:
		return d.EstimatedHits
	case MethodPTS:
		return d.PTSHits
	}
	panic("tiertrace: invalid method")
}

// Derive computes hit counts and the ratio difference of one interval.
// It only reads raw columns, so deriving again yields the same values.
func Derive(r IntervalRecord) Derived {
	n := float64(r.TotalAccessCount)
	return Derived{
		ActualHits:         n * r.ActualHitRatio,
		EstimatedHits:      n * r.EstimatedHitRatio,
		PTSHits:            n * r.PTSHitRatio,
		HitRatioDifference: r.ActualHitRatio - r.EstimatedHitRatio,
	}
}

// NormalizedRecord is a timed interval together with its derived values.
type NormalizedRecord struct {
	TimedRecord
	Derived
}

// DeriveAll returns a new slice with derived values attached to each record.
func DeriveAll(timed []TimedRecord) []NormalizedRecord {
	out := make([]NormalizedRecord, len(timed))
	for i, r := range timed {
		out[i] = NormalizedRecord{TimedRecord: r, Derived: Derive(r.IntervalRecord)}
	}
	return out
}
