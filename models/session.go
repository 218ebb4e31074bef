package models

import "time"

// Candle is one virtual candle lit by a visitor. X and Y are percentages of the candle area.
type Candle struct {
	X     float64   `json:"x"`
	Y     float64   `json:"y"`
	LitAt time.Time `json:"lit_at"`
}

// VisitorSession is the per-visitor state of the memorial hall.
// None of it is sent to the API.
type VisitorSession struct {
	Candles      []Candle  `json:"candles"`
	Playing      bool      `json:"playing"`
	Muted        bool      `json:"muted"`
	SilenceUntil time.Time `json:"silence_until"`
	ResumeMusic  bool      `json:"resume_music"`
}

// Photo is one entry of the memorial photo manifest.
type Photo struct {
	Src   string `yaml:"src" json:"src"`
	Large string `yaml:"large" json:"large,omitempty"`
	Title string `yaml:"title" json:"title"`
	Desc  string `yaml:"desc" json:"desc,omitempty"`
	Taken string `yaml:"taken" json:"taken,omitempty"`
}

// Image returns the best available source, preferring the large variant.
func (p Photo) Image() string {
	if p.Large != "" {
		return p.Large
	}
	return p.Src
}
