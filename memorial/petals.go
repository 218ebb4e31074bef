package memorial

// Petal is one falling petal of the background animation.
type Petal struct {
	SizePx      float64
	LeftPct     float64
	DurationSec float64
	DelaySec    float64
	Opacity     float64
}

// Petals returns n petals with randomized size, position, timing and opacity.
func (h *Hall) Petals(n int) []Petal {
	if n <= 0 {
		return nil
	}
	out := make([]Petal, n)
	for i := range out {
		out[i] = Petal{
			SizePx:      h.between(10, 30),
			LeftPct:     h.between(0, 100),
			DurationSec: h.between(10, 20),
			DelaySec:    h.between(0, 5),
			Opacity:     h.between(0.3, 0.8),
		}
	}
	return out
}
