package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cjy-OIer/blog/config"
	"github.com/cjy-OIer/blog/guestbook"
	"github.com/cjy-OIer/blog/memorial"
	"github.com/cjy-OIer/blog/middleware"
	"github.com/cjy-OIer/blog/models"
	"github.com/cjy-OIer/blog/utils"
)

const (
	memorialPath = "/memorial"
	retryPath    = "/memorial?reload=1"
	anchorCandle = "candles"
	anchorTop    = "top"
)

// MemorialController serves the memorial hall page, its guestbook and its cosmetic actions.
type MemorialController struct {
	book   *guestbook.Controller
	hall   *memorial.Hall
	photos memorial.PhotoWall
	store  *utils.SessionStore
	cfg    config.AppConfig
	log    *zap.Logger
	now    func() time.Time
}

// NewMemorialController wires the hall. A nil logger uses utils.Logger.
func NewMemorialController(book *guestbook.Controller, hall *memorial.Hall, photos memorial.PhotoWall,
	store *utils.SessionStore, cfg config.AppConfig, log *zap.Logger) *MemorialController {
	if log == nil {
		log = utils.Logger
	}
	return &MemorialController{book: book, hall: hall, photos: photos, store: store, cfg: cfg, log: log, now: time.Now}
}

// MessageCard is one rendered guestbook entry.
type MessageCard struct {
	ID      int64
	Anchor  string
	Author  string
	Content string
	When    string
	Pending bool
}

// BoardView is the data of the "messages" and "stats" templates.
type BoardView struct {
	State       string
	EmptyText   string
	Error       string
	RetryURL    string
	Messages    []MessageCard
	HasStats    bool
	Total       string
	LastUpdated string
}

// WallItem is one photo wall thumbnail.
type WallItem struct {
	Index string
	Src   string
	Title string
}

// HallPage is the data of memorial.html.
type HallPage struct {
	Page
	Board       BoardView
	Form        guestbook.Form
	Submitting  bool
	MaxNameLen  int
	Candles     []models.Candle
	CandleCount int
	MaxCandles  int
	Petals      []memorial.Petal
	Playing     bool
	Muted       bool
	MusicSrc    string
	Silence     memorial.Silence
	MainPhoto   memorial.PhotoView
	Wall        []WallItem
	RefreshSec  int
}

// PhotoPage is the data of photo.html.
type PhotoPage struct {
	Page
	View memorial.PhotoView
}

func (m *MemorialController) boardView(b guestbook.Board) BoardView {
	now := m.now()
	v := BoardView{State: b.State, EmptyText: guestbook.MsgNoMessages, Error: b.Error, RetryURL: retryPath, HasStats: b.HasStats}
	if v.State == guestbook.StateIdle {
		v.State = guestbook.StateEmpty
	}
	for _, msg := range b.Messages {
		v.Messages = append(v.Messages, MessageCard{
			ID:      msg.ID,
			Anchor:  guestbook.Anchor(msg),
			Author:  msg.AuthorName,
			Content: msg.MessageContent,
			When:    utils.RelativeTime(msg.CreatedAt.Time, now),
			Pending: msg.Pending(),
		})
	}
	if b.HasStats {
		v.Total = utils.FormatCount(b.Stats.TotalMessages)
		v.LastUpdated = utils.FormatDate(b.Stats.LastUpdated.Time)
	}
	return v
}

func (m *MemorialController) session(ctx *gin.Context) (string, models.VisitorSession) {
	id := middleware.VisitorID(ctx)
	sess, err := m.store.Load(ctx.Request.Context(), id)
	if err != nil {
		m.log.Warn("load visitor session failed", zap.String("visitor", id), zap.Error(err))
	}
	return id, sess
}

func (m *MemorialController) save(ctx *gin.Context, id string, sess models.VisitorSession) {
	if err := m.store.Save(ctx.Request.Context(), id, sess); err != nil {
		m.log.Warn("save visitor session failed", zap.String("visitor", id), zap.Error(err))
	}
}

func (m *MemorialController) flash(ctx *gin.Context, id string, t models.Toast) {
	if t.Text == "" {
		return
	}
	if err := m.store.PushFlash(ctx.Request.Context(), id, t); err != nil {
		m.log.Warn("push flash failed", zap.String("visitor", id), zap.Error(err))
	}
}

// renderHall writes the hall page. toast, when set, replaces any pending flash.
func (m *MemorialController) renderHall(ctx *gin.Context, status int, form guestbook.Form, toast *models.Toast) {
	id, sess := m.session(ctx)
	page := HallPage{
		Page:       newPage(m.cfg, "纪念馆"),
		Board:      m.boardView(m.book.Snapshot()),
		Form:       form,
		Submitting: m.book.Submitting(id),
		MaxNameLen: m.book.MaxNameLen(),
		Candles:    sess.Candles,
		MaxCandles: m.hall.MaxCandles(),
		Petals:     m.hall.Petals(m.cfg.PetalCount),
		MusicSrc:   m.cfg.MusicURL,
		RefreshSec: int(m.book.Interval() / time.Second),
	}
	page.BodyClass = "memorial"
	page.CandleCount = len(sess.Candles)

	if t, ok := m.store.PopFlash(ctx.Request.Context(), id); ok {
		page.Toast = &t
	}
	page.Silence = m.hall.SilenceStatus(&sess, m.now())
	if page.Silence.Ended {
		ended := models.SuccessToast(memorial.MsgSilenceEnded)
		page.Toast = &ended
	}
	if toast != nil {
		page.Toast = toast
	}
	page.Playing, page.Muted = sess.Playing, sess.Muted
	m.save(ctx, id, sess)

	page.MainPhoto, _ = m.photos.View("main")
	for i, p := range m.photos.Wall {
		title := p.Title
		if title == "" {
			title = "纪念照片"
		}
		page.Wall = append(page.Wall, WallItem{Index: itoa(i), Src: p.Src, Title: title})
	}
	ctx.HTML(status, "memorial.html", page)
}

// Page renders the hall. The board is loaded on first use and on ?reload=1.
func (m *MemorialController) Page(ctx *gin.Context) {
	status := http.StatusOK
	if m.book.Snapshot().State == guestbook.StateIdle || ctx.Query("reload") == "1" {
		rctx := ctx.Request.Context()
		if err := m.book.LoadMessages(rctx); err != nil {
			status = http.StatusBadGateway
		}
		m.book.UpdateStats(rctx)
	}
	m.renderHall(ctx, status, guestbook.Form{}, nil)
}

// Messages returns the guestbook list alone, for the refresh script.
func (m *MemorialController) Messages(ctx *gin.Context) {
	if ctx.Query("reload") == "1" {
		_ = m.book.LoadMessages(ctx.Request.Context())
	}
	board := m.book.Snapshot()
	failed := board.State == guestbook.StateError
	if wantsJSON(ctx) {
		if failed {
			utils.Error(ctx, http.StatusBadGateway, utils.CodeUpstream, board.Error)
			return
		}
		utils.Success(ctx, gin.H{"state": board.State, "messages": board.Messages, "loaded_at": board.LoadedAt})
		return
	}
	ctx.HTML(statusFor(failed), "messages", m.boardView(board))
}

// SubmitMessage accepts the guestbook form (urlencoded or JSON).
// Browsers are redirected back on success and shown the form again on failure.
func (m *MemorialController) SubmitMessage(ctx *gin.Context) {
	var form guestbook.Form
	if err := ctx.ShouldBind(&form); err != nil && wantsJSON(ctx) {
		utils.Error(ctx, http.StatusBadRequest, utils.CodeBadRequest, "invalid request payload")
		return
	}

	id := middleware.VisitorID(ctx)
	out, err := m.book.Submit(ctx.Request.Context(), id, form)
	if err == nil {
		if wantsJSON(ctx) {
			utils.SuccessMessage(ctx, out.Toast.Text, gin.H{"message": out.Message, "anchor": out.Anchor})
			return
		}
		m.flash(ctx, id, out.Toast)
		ctx.Redirect(http.StatusSeeOther, memorialPath+"#"+out.Anchor)
		return
	}

	var (
		ve     *guestbook.ValidationError
		status = http.StatusBadGateway
		code   = utils.CodeUpstream
		data   gin.H
	)
	switch {
	case errors.As(err, &ve):
		status, code, data = http.StatusBadRequest, utils.CodeValidation, gin.H{"field": ve.Field}
	case errors.Is(err, guestbook.ErrSubmitInFlight):
		status, code = http.StatusConflict, utils.CodeConflict
	}
	if wantsJSON(ctx) {
		utils.ErrorWithData(ctx, status, code, out.Toast.Text, data)
		return
	}
	m.renderHall(ctx, status, out.Form, &out.Toast)
}

// RateLimited answers a throttled hall action.
func (m *MemorialController) RateLimited(ctx *gin.Context) {
	if wantsJSON(ctx) {
		utils.Error(ctx, http.StatusTooManyRequests, utils.CodeRateLimit, middleware.MsgRateLimited)
		return
	}
	m.flash(ctx, middleware.VisitorID(ctx), models.ErrorToast(middleware.MsgRateLimited))
	ctx.Redirect(http.StatusSeeOther, memorialPath)
}

// finish answers a cosmetic action: scripts get the envelope, browsers a flash and a redirect.
func (m *MemorialController) finish(ctx *gin.Context, id string, err error, toast models.Toast, anchor string, data gin.H) {
	if wantsJSON(ctx) {
		if err != nil {
			utils.ErrorWithData(ctx, http.StatusConflict, utils.CodeConflict, toast.Text, data)
			return
		}
		utils.SuccessMessage(ctx, toast.Text, data)
		return
	}
	m.flash(ctx, id, toast)
	ctx.Redirect(http.StatusSeeOther, memorialPath+"#"+anchor)
}

// LightCandle lights one more candle for the visitor.
func (m *MemorialController) LightCandle(ctx *gin.Context) {
	id, sess := m.session(ctx)
	toast, err := m.hall.LightCandle(&sess, m.now())
	if err == nil {
		m.save(ctx, id, sess)
	}
	m.finish(ctx, id, err, toast, anchorCandle, gin.H{"candles": sess.Candles, "max": m.hall.MaxCandles()})
}

// Music toggles playback (action=toggle, the default) or mute (action=mute).
func (m *MemorialController) Music(ctx *gin.Context) {
	id, sess := m.session(ctx)
	var toast models.Toast
	switch ctx.DefaultQuery("action", ctx.DefaultPostForm("action", "toggle")) {
	case "mute":
		m.hall.ToggleMute(&sess)
	case "toggle":
		toast, _ = m.hall.TogglePlay(&sess)
	default:
		utils.Error(ctx, http.StatusBadRequest, utils.CodeBadRequest, "unknown music action")
		return
	}
	m.save(ctx, id, sess)
	m.finish(ctx, id, nil, toast, anchorTop, gin.H{"playing": sess.Playing, "muted": sess.Muted})
}

// Silence starts the moment of silence.
func (m *MemorialController) Silence(ctx *gin.Context) {
	id, sess := m.session(ctx)
	now := m.now()
	toast, err := m.hall.StartSilence(&sess, now)
	if err == nil {
		m.save(ctx, id, sess)
	}
	st := m.hall.SilenceStatus(&sess, now)
	m.finish(ctx, id, err, toast, anchorTop, gin.H{"remaining": st.Remaining, "playing": sess.Playing})
}

// Photo shows the main photo ("main") or a wall photo by index.
func (m *MemorialController) Photo(ctx *gin.Context) {
	view, err := m.photos.View(ctx.Param("which"))
	if err != nil {
		RenderError(ctx, m.cfg, http.StatusNotFound, "照片不存在", "请返回纪念馆查看其他照片")
		return
	}
	page := PhotoPage{Page: newPage(m.cfg, view.Title), View: view}
	page.BodyClass = "memorial"
	ctx.HTML(http.StatusOK, "photo.html", page)
}
