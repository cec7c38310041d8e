package matching

// Default tuning values.
const (
	DefaultConfidenceFloor = 0.34
	DefaultTopN            = 3
)

// Options tunes candidate ranking and primary selection.
type Options struct {
	// ConfidenceFloor is the minimum score a candidate needs to become a
	// primary match.
	ConfidenceFloor float64
	// TopN is how many ranked candidates each source keeps.
	TopN int
}

// DefaultOptions returns the production tuning.
func DefaultOptions() Options {
	return Options{
		ConfidenceFloor: DefaultConfidenceFloor,
		TopN:            DefaultTopN,
	}
}

func (o Options) topN() int {
	if o.TopN <= 0 {
		return DefaultTopN
	}
	return o.TopN
}
