package memorial

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cjy-OIer/blog/models"
)

func newHall(opts ...HallOption) *Hall {
	return NewHall(append([]HallOption{WithRand(rand.New(rand.NewSource(1)))}, opts...)...)
}

func TestLightCandleCapsAtMax(t *testing.T) {
	h := newHall()
	s := &models.VisitorSession{}
	now := time.Now()

	for i := 1; i <= 10; i++ {
		toast, err := h.LightCandle(s, now)
		require.NoError(t, err)
		assert.Equal(t, models.ToastSuccess, toast.Kind)
		if i == 3 {
			assert.Equal(t, "已点亮 3 支蜡烛", toast.Text)
		}
	}
	toast, err := h.LightCandle(s, now)
	assert.ErrorIs(t, err, ErrCandleLimit)
	assert.Equal(t, "已达到最大蜡烛数量（10支）。感谢您的虔诚。", toast.Text)
	assert.Len(t, s.Candles, 10)

	for _, c := range s.Candles {
		assert.GreaterOrEqual(t, c.X, 10.0)
		assert.Less(t, c.X, 90.0)
		assert.GreaterOrEqual(t, c.Y, 20.0)
		assert.Less(t, c.Y, 80.0)
	}
}

func TestCandlePositionsStayBelowUpperBound(t *testing.T) {
	h := newHall(WithMaxCandles(20000))
	s := &models.VisitorSession{}
	now := time.Now()
	maxX, maxY := 0.0, 0.0
	for i := 0; i < 20000; i++ {
		_, err := h.LightCandle(s, now)
		require.NoError(t, err)
		c := s.Candles[len(s.Candles)-1]
		require.True(t, c.X >= 10 && c.X < 90, "x=%v", c.X)
		require.True(t, c.Y >= 20 && c.Y < 80, "y=%v", c.Y)
		maxX, maxY = max(maxX, c.X), max(maxY, c.Y)
	}
	// positions step by 0.1, so the top of each range is one step short of the bound
	assert.InDelta(t, 89.9, maxX, 1e-9)
	assert.InDelta(t, 79.9, maxY, 1e-9)
}

func TestMusicToggles(t *testing.T) {
	h := newHall()
	s := &models.VisitorSession{}

	toast, ok := h.TogglePlay(s)
	assert.True(t, ok)
	assert.Equal(t, MsgMusicPlaying, toast.Text)
	assert.True(t, s.Playing)

	_, ok = h.TogglePlay(s)
	assert.False(t, ok)
	assert.False(t, s.Playing)

	h.ToggleMute(s)
	assert.True(t, s.Muted)
	h.ToggleMute(s)
	assert.False(t, s.Muted)
}

func TestSilencePausesAndResumesMusic(t *testing.T) {
	h := newHall(WithSilence(30 * time.Second))
	s := &models.VisitorSession{Playing: true}
	start := time.Date(2024, 4, 4, 10, 0, 0, 0, time.UTC)

	toast, err := h.StartSilence(s, start)
	require.NoError(t, err)
	assert.Equal(t, MsgSilenceMusic, toast.Text)
	assert.False(t, s.Playing)

	st := h.SilenceStatus(s, start.Add(10500*time.Millisecond))
	assert.True(t, st.Active)
	assert.Equal(t, 20, st.Remaining)

	_, err = h.StartSilence(s, start.Add(time.Second))
	assert.ErrorIs(t, err, ErrSilenceActive)

	st = h.SilenceStatus(s, start.Add(30*time.Second))
	assert.True(t, st.Ended)
	assert.False(t, st.Active)
	assert.True(t, s.Playing)

	assert.Equal(t, Silence{}, h.SilenceStatus(s, start.Add(31*time.Second)))
}

func TestSilenceWithoutMusic(t *testing.T) {
	h := newHall()
	s := &models.VisitorSession{}
	now := time.Now()

	toast, err := h.StartSilence(s, now)
	require.NoError(t, err)
	assert.Equal(t, "请保持30秒的静默...", toast.Text)
	assert.True(t, h.SilenceStatus(s, now).Active)

	st := h.SilenceStatus(s, now.Add(time.Minute))
	assert.True(t, st.Ended)
	assert.False(t, s.Playing)
}

func TestPetalsRanges(t *testing.T) {
	petals := newHall().Petals(15)
	require.Len(t, petals, 15)
	for _, p := range petals {
		assert.True(t, p.SizePx >= 10 && p.SizePx < 30)
		assert.True(t, p.LeftPct >= 0 && p.LeftPct < 100)
		assert.True(t, p.DurationSec >= 10 && p.DurationSec < 20)
		assert.True(t, p.DelaySec >= 0 && p.DelaySec < 5)
		assert.True(t, p.Opacity >= 0.3 && p.Opacity < 0.8, "opacity=%v", p.Opacity)
	}
	assert.Nil(t, newHall().Petals(0))
}

func TestPhotoWallViewWraps(t *testing.T) {
	w := PhotoWall{Wall: []models.Photo{
		{Src: "a.jpg", Title: "童年"},
		{Src: "b.jpg", Large: "b-large.jpg", Taken: "1999年夏"},
		{},
	}}

	v, err := w.View("0")
	require.NoError(t, err)
	assert.Equal(t, "2", v.Prev)
	assert.Equal(t, "1", v.Next)
	assert.Equal(t, "待填写", v.Taken)

	v, err = w.View("1")
	require.NoError(t, err)
	assert.Equal(t, "b-large.jpg", v.Src)
	assert.Empty(t, v.Placeholder)
	assert.Equal(t, "1999年夏", v.Taken)
	assert.Equal(t, "纪念照片", v.Title)

	v, err = w.View("3")
	require.NoError(t, err)
	assert.Equal(t, "0", v.Which)

	v, err = w.View("-1")
	require.NoError(t, err)
	assert.Equal(t, "2", v.Which)
	assert.False(t, v.HasImage)
	assert.Equal(t, "请先添加照片", v.Taken)

	_, err = w.View("nope")
	assert.ErrorIs(t, err, ErrUnknownPhoto)
}

func TestPhotoWallMainAndEmpty(t *testing.T) {
	var w PhotoWall
	v, err := w.View("main")
	require.NoError(t, err)
	assert.Equal(t, "永恒的回忆", v.Title)
	assert.False(t, v.HasImage)
	assert.Equal(t, MsgNoPhotoLink, v.Placeholder)
	assert.Empty(t, v.Next)

	v, err = w.View("0")
	require.NoError(t, err)
	assert.False(t, v.HasImage)
	assert.Empty(t, v.Prev)
}

func TestLoadPhotoWall(t *testing.T) {
	dir := t.TempDir()

	w, err := LoadPhotoWall(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, w.Wall)

	path := filepath.Join(dir, "photos.yaml")
	manifest := "main:\n  src: /static/img/main.jpg\nwall:\n  - src: /static/img/1.jpg\n    title: 毕业\n    taken: 2010年6月\n"
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o600))
	w, err = LoadPhotoWall(path)
	require.NoError(t, err)
	assert.Equal(t, "/static/img/main.jpg", w.Main.Src)
	require.Len(t, w.Wall, 1)
	assert.Equal(t, "毕业", w.Wall[0].Title)

	require.NoError(t, os.WriteFile(path, []byte("wall: [unclosed"), 0o600))
	_, err = LoadPhotoWall(path)
	assert.Error(t, err)
}
