package dedup

const (
	DefaultThreshold   = 0.3
	DefaultMinKeywords = 6
)

// Policy decides when a headline counts as a duplicate.
//
// A title is a duplicate when its score exceeds Threshold, or when it has
// fewer than MinKeywords keywords (too short to compare reliably).
type Policy struct {
	Threshold   float64
	MinKeywords int
}

func DefaultPolicy() Policy {
	return Policy{Threshold: DefaultThreshold, MinKeywords: DefaultMinKeywords}
}

// IsDuplicate applies the policy to title against prior.
func (p Policy) IsDuplicate(title string, prior []string) bool {
	score, n := Score(title, prior)
	if n < p.MinKeywords {
		return true
	}
	return score > p.Threshold
}
