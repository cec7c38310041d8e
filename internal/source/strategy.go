// Package source turns raw venue listings into scored domain.Candidates.
package source

// Price is a probability extracted from a listing together with the
// outcome it refers to.
type Price struct {
	Probability float64
	Label       string
}

// PriceStrategy extracts a price from a raw listing of type T. Extract
// reports false when the strategy does not apply.
type PriceStrategy[T any] struct {
	Name    string
	Extract func(T) (Price, bool)
}

// firstPrice runs strategies in order and returns the first success.
func firstPrice[T any](strategies []PriceStrategy[T], listing T) (Price, bool) {
	for _, s := range strategies {
		if p, ok := s.Extract(listing); ok {
			return p, true
		}
	}
	return Price{}, false
}

func inUnitInterval(p float64) bool {
	return p >= 0 && p <= 1
}
