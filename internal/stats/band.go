package stats

// Compare selects how a value is tested against a band bound.
type Compare int

const (
	// Below matches when value < bound. Use with ascending bounds.
	Below Compare = iota
	// AtMost matches when value ≤ bound. Use with ascending bounds.
	AtMost
	// AtLeast matches when value ≥ bound. Use with descending bounds.
	AtLeast
)

func (c Compare) match(v, bound float64) bool {
	switch c {
	case Below:
		return v < bound
	case AtMost:
		return v <= bound
	case AtLeast:
		return v >= bound
	default:
		return false
	}
}

// Band is one rung of a graduated ladder: values matching Bound map to Factor.
type Band struct {
	Bound  float64
	Factor float64
}

// Ladder is an ordered list of bands plus the factor used when no band matches.
type Ladder struct {
	Cmp       Compare
	Bands     []Band
	Otherwise float64
}

// Factor returns the factor of the first band v matches, in order.
func (l Ladder) Factor(v float64) float64 {
	for _, b := range l.Bands {
		if l.Cmp.match(v, b.Bound) {
			return b.Factor
		}
	}
	return l.Otherwise
}

// Scale returns weight multiplied by the factor for v.
func (l Ladder) Scale(v, weight float64) float64 {
	return weight * l.Factor(v)
}
