package rank

// Weights are the coefficients of the combined relevance score.
// The domain, company and expanded signals are each capped at 1 before
// weighting; the prior is not.
type Weights struct {
	Semantic float64 `yaml:"semantic"`
	Domain   float64 `yaml:"domain"`
	Company  float64 `yaml:"company"`
	Expanded float64 `yaml:"expanded"`
	Prior    float64 `yaml:"prior"`
}

// DefaultWeights returns the stock coefficients.
func DefaultWeights() Weights {
	return Weights{
		Semantic: 0.6,
		Domain:   0.3,
		Company:  0.1,
		Expanded: 0.1,
		Prior:    0.5,
	}
}

func (w Weights) valid() bool {
	return w.Semantic >= 0 && w.Domain >= 0 && w.Company >= 0 && w.Expanded >= 0 && w.Prior >= 0
}

// signalCap is the raw value at which a bonus signal saturates.
const signalCap = 10.0

func (w Weights) combine(semantic float64, r signals, prior float64) float64 {
	return semantic*w.Semantic +
		min(r.domain/signalCap, 1)*w.Domain +
		min(r.company/signalCap, 1)*w.Company +
		min(r.expanded/signalCap, 1)*w.Expanded +
		prior*w.Prior
}
