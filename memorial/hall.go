// Package memorial implements the cosmetic parts of the memorial hall:
// candles, background music, the moment of silence, petals and the photo wall.
// All state lives in the visitor's session; nothing is sent to the API.
package memorial

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/cjy-OIer/blog/models"
	"github.com/cjy-OIer/blog/utils"
)

var (
	// ErrCandleLimit is returned once the visitor lit the maximum number of candles.
	ErrCandleLimit   = errors.New("memorial: candle limit reached")
	// ErrSilenceActive is returned when a moment of silence is already running.
	ErrSilenceActive = errors.New("memorial: moment of silence in progress")
)

// Toast texts for hall actions.
const (
	MsgMusicPlaying   = "安魂曲播放中..."
	MsgSilenceMusic   = "正在默哀... 请保持安静"
	MsgSilenceEnded   = "默哀结束，感谢您的敬意"
	MsgSilenceRunning = "默哀中..."
)

// Hall applies memorial actions to visitor sessions.
type Hall struct {
	maxCandles int
	silence    time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

// HallOption configures a Hall.
type HallOption func(*Hall)

// WithMaxCandles caps the candles per visitor session.
func WithMaxCandles(n int) HallOption {
	return func(h *Hall) {
		if n > 0 {
			h.maxCandles = n
		}
	}
}

// WithSilence sets how long a moment of silence lasts.
func WithSilence(d time.Duration) HallOption {
	return func(h *Hall) {
		if d > 0 {
			h.silence = d
		}
	}
}

// WithRand makes candle and petal placement deterministic.
func WithRand(r *rand.Rand) HallOption {
	return func(h *Hall) {
		if r != nil {
			h.rnd = r
		}
	}
}

// NewHall returns a Hall with 10 candles and a 30 second silence unless overridden.
func NewHall(opts ...HallOption) *Hall {
	h := &Hall{
		maxCandles: 10,
		silence:    30 * time.Second,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// MaxCandles is the per-visitor candle cap.
func (h *Hall) MaxCandles() int { return h.maxCandles }

// between returns a random multiple of 0.1 in [lo, hi).
func (h *Hall) between(lo, hi float64) float64 {
	steps := int(math.Round((hi - lo) * 10))
	h.mu.Lock()
	k := h.rnd.Intn(steps)
	h.mu.Unlock()
	return (math.Round(lo*10) + float64(k)) / 10
}

// LightCandle adds a candle at a random spot of the candle area.
func (h *Hall) LightCandle(s *models.VisitorSession, now time.Time) (models.Toast, error) {
	if len(s.Candles) >= h.maxCandles {
		return models.ErrorToast(fmt.Sprintf("已达到最大蜡烛数量（%d支）。感谢您的虔诚。", h.maxCandles)), ErrCandleLimit
	}
	s.Candles = append(s.Candles, models.Candle{
		X:     h.between(10, 90),
		Y:     h.between(20, 80),
		LitAt: now,
	})
	return models.SuccessToast(fmt.Sprintf("已点亮 %d 支蜡烛", len(s.Candles))), nil
}

// TogglePlay flips the music between playing and paused.
// Only starting playback produces a notice.
func (h *Hall) TogglePlay(s *models.VisitorSession) (models.Toast, bool) {
	s.Playing = !s.Playing
	s.ResumeMusic = false
	if s.Playing {
		return models.SuccessToast(MsgMusicPlaying), true
	}
	return models.Toast{}, false
}

// ToggleMute flips the mute flag.
func (h *Hall) ToggleMute(s *models.VisitorSession) {
	s.Muted = !s.Muted
}

// StartSilence pauses the music and disables the silence control for the configured duration.
func (h *Hall) StartSilence(s *models.VisitorSession, now time.Time) (models.Toast, error) {
	if st := h.SilenceStatus(s, now); st.Active {
		return models.InfoToast(MsgSilenceRunning), ErrSilenceActive
	}
	s.SilenceUntil = now.Add(h.silence)
	if s.Playing {
		s.Playing = false
		s.ResumeMusic = true
		return models.InfoToast(MsgSilenceMusic), nil
	}
	return models.InfoToast(fmt.Sprintf("请保持%d秒的静默...", int(h.silence/time.Second))), nil
}

// Silence describes the moment-of-silence control at a point in time.
type Silence struct {
	Active    bool
	Remaining int // whole seconds, rounded up
	Ended     bool
}

// SilenceStatus reports the control state. Once the silence has elapsed it
// re-enables the control and resumes music that the silence paused; Ended is
// true exactly once per silence.
func (h *Hall) SilenceStatus(s *models.VisitorSession, now time.Time) Silence {
	if s.SilenceUntil.IsZero() {
		return Silence{}
	}
	if left := s.SilenceUntil.Sub(now); left > 0 {
		return Silence{Active: true, Remaining: utils.CeilSeconds(left)}
	}
	s.SilenceUntil = time.Time{}
	if s.ResumeMusic {
		s.Playing = true
		s.ResumeMusic = false
	}
	return Silence{Ended: true}
}
