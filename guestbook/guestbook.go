// Package guestbook owns the memorial guestbook board: it loads recent messages,
// validates and submits new ones, tracks stats and refreshes the board on a schedule.
package guestbook

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/cjy-OIer/blog/client"
	"github.com/cjy-OIer/blog/models"
)

// API is the part of the REST client the guestbook needs.
type API interface {
	ListMessages(ctx context.Context, limit int) ([]models.Message, error)
	CreateMessage(ctx context.Context, msg models.NewMessage) (models.Message, error)
	Stats(ctx context.Context) (models.Stats, error)
}

// Board states.
const (
	StateIdle  = "idle"
	StateReady = "ready"
	StateEmpty = "empty"
	StateError = "error"
)

// User-facing texts.
const (
	MsgIncomplete    = "请填写完整信息"
	MsgSubmitted     = "留言提交成功！感谢您的纪念"
	MsgSubmitFailed  = "提交失败"
	MsgInFlight      = "留言正在提交中，请稍候"
	MsgLoadFailed    = "留言加载失败，请稍后刷新重试"
	MsgNoMessages    = "暂无留言，成为第一个留言者吧"
	AnchorList       = "messages"
	anchorItemPrefix = "message-"
)

const followUpTimeout = 10 * time.Second

// ErrSubmitInFlight is returned when a visitor submits again before the previous submission settled.
var ErrSubmitInFlight = errors.New("guestbook: submission already in progress")

// ValidationError is a local rejection; no request was sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Form holds the guestbook form values as the visitor typed them.
type Form struct {
	AuthorName     string `form:"author_name" json:"author_name"`
	MessageContent string `form:"message_content" json:"message_content"`
}

// Outcome is what the page shows after a submission attempt.
type Outcome struct {
	Toast   models.Toast
	Form    Form   // values to put back into the form
	Anchor  string // scroll target
	Message models.Message
}

// Board is a point-in-time copy of the rendered guestbook.
type Board struct {
	State    string
	Messages []models.Message
	Error    string
	Stats    models.Stats
	HasStats bool
	LoadedAt time.Time
}

// Anchor returns the element id of a message card.
func Anchor(m models.Message) string {
	return anchorItemPrefix + strconv.FormatInt(m.ID, 10)
}

// Controller is safe for concurrent use by request handlers and the refresh scheduler.
type Controller struct {
	api        API
	log        *zap.Logger
	limit      int
	maxNameLen int
	interval   time.Duration
	now        func() time.Time

	mu          sync.Mutex
	board       Board
	lastStart   time.Time
	loadSeq     uint64
	appliedSeq  uint64
	inFlight    map[string]struct{}
	sched       *cron.Cron
	cancelTicks context.CancelFunc
}

// Option configures a Controller.
type Option func(*Controller)

// WithLimit sets how many recent messages are loaded.
func WithLimit(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.limit = n
		}
	}
}

// WithMaxNameLen sets the author name limit in characters.
func WithMaxNameLen(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxNameLen = n
		}
	}
}

// WithInterval sets the automatic refresh period.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a Controller. A nil logger discards log output.
func New(api API, log *zap.Logger, opts ...Option) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{
		api:        api,
		log:        log,
		limit:      20,
		maxNameLen: 100,
		interval:   60 * time.Second,
		now:        time.Now,
		board:      Board{State: StateIdle},
		inFlight:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Interval returns the refresh period.
func (c *Controller) Interval() time.Duration { return c.interval }

// MaxNameLen returns the author name limit.
func (c *Controller) MaxNameLen() int { return c.maxNameLen }

// LoadMessages replaces the board with the most recent messages.
// A failed load puts the board into the error state and returns the error.
func (c *Controller) LoadMessages(ctx context.Context) error {
	c.mu.Lock()
	c.loadSeq++
	seq := c.loadSeq
	prevStart := c.lastStart
	c.lastStart = c.now()
	c.mu.Unlock()

	msgs, err := c.api.ListMessages(ctx, c.limit)

	c.mu.Lock()
	defer c.mu.Unlock()
	if errors.Is(err, context.Canceled) {
		// the caller went away; the board keeps what it had
		if seq == c.loadSeq {
			c.lastStart = prevStart
		}
		c.log.Debug("guestbook load canceled", zap.Error(err))
		return fmt.Errorf("load messages: %w", err)
	}
	if seq < c.appliedSeq {
		// a newer load already landed
		return err
	}
	c.appliedSeq = seq
	if err != nil {
		c.log.Warn("load guestbook messages failed", zap.Error(err))
		c.board.State = StateError
		c.board.Error = MsgLoadFailed
		c.board.Messages = nil
		return fmt.Errorf("load messages: %w", err)
	}
	c.board.Messages = append([]models.Message(nil), msgs...)
	c.board.Error = ""
	c.board.LoadedAt = c.now()
	if len(msgs) == 0 {
		c.board.State = StateEmpty
	} else {
		c.board.State = StateReady
	}
	c.log.Debug("guestbook messages loaded", zap.Int("count", len(msgs)))
	return nil
}

// UpdateStats refreshes the stats line. Failures are logged and keep the previous stats.
func (c *Controller) UpdateStats(ctx context.Context) {
	s, err := c.api.Stats(ctx)
	if err != nil {
		c.log.Warn("update guestbook stats failed", zap.Error(err))
		return
	}
	c.mu.Lock()
	c.board.Stats = s
	c.board.HasStats = true
	c.mu.Unlock()
}

// Validate trims the form and checks it locally.
func (c *Controller) Validate(f Form) (models.NewMessage, error) {
	msg := models.NewMessage{
		AuthorName:     strings.TrimSpace(f.AuthorName),
		MessageContent: strings.TrimSpace(f.MessageContent),
	}
	if msg.AuthorName == "" {
		return msg, &ValidationError{Field: "author_name", Message: MsgIncomplete}
	}
	if msg.MessageContent == "" {
		return msg, &ValidationError{Field: "message_content", Message: MsgIncomplete}
	}
	if utf8.RuneCountInString(msg.AuthorName) > c.maxNameLen {
		return msg, &ValidationError{
			Field:   "author_name",
			Message: fmt.Sprintf("姓名不能超过%d个字符", c.maxNameLen),
		}
	}
	return msg, nil
}

// Submit validates the form and creates the message on behalf of visitorID.
// On success the board is reloaded once and the stats updated once.
func (c *Controller) Submit(ctx context.Context, visitorID string, f Form) (Outcome, error) {
	msg, err := c.Validate(f)
	if err != nil {
		return Outcome{Toast: models.ErrorToast(err.Error()), Form: f, Anchor: AnchorList}, err
	}

	if !c.acquire(visitorID) {
		return Outcome{Toast: models.InfoToast(MsgInFlight), Form: f, Anchor: AnchorList}, ErrSubmitInFlight
	}
	defer c.release(visitorID)

	created, err := c.api.CreateMessage(ctx, msg)
	if err != nil {
		c.log.Warn("submit guestbook message failed", zap.String("visitor", visitorID), zap.Error(err))
		return Outcome{Toast: models.ErrorToast(submitFailure(err)), Form: f, Anchor: AnchorList},
			fmt.Errorf("create message: %w", err)
	}
	c.log.Info("guestbook message submitted", zap.Int64("id", created.ID), zap.String("visitor", visitorID))

	// the create landed, so the follow-up must not depend on the visitor staying
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), followUpTimeout)
	defer cancel()
	_ = c.LoadMessages(fctx)
	c.UpdateStats(fctx)

	out := Outcome{Toast: models.SuccessToast(MsgSubmitted), Anchor: AnchorList, Message: created}
	c.mu.Lock()
	if len(c.board.Messages) > 0 {
		out.Anchor = Anchor(c.board.Messages[0])
	}
	c.mu.Unlock()
	return out, nil
}

func submitFailure(err error) string {
	if d := client.Detail(err); d != "" {
		return MsgSubmitFailed + ": " + d
	}
	return MsgSubmitFailed
}

// Submitting reports whether visitorID has a submission pending.
func (c *Controller) Submitting(visitorID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inFlight[visitorID]
	return ok
}

func (c *Controller) acquire(visitorID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inFlight[visitorID]; busy {
		return false
	}
	c.inFlight[visitorID] = struct{}{}
	return true
}

func (c *Controller) release(visitorID string) {
	c.mu.Lock()
	delete(c.inFlight, visitorID)
	c.mu.Unlock()
}

// Snapshot returns a copy of the board.
func (c *Controller) Snapshot() Board {
	c.mu.Lock()
	defer c.mu.Unlock()
	b := c.board
	b.Messages = append([]models.Message(nil), c.board.Messages...)
	return b
}
