// Package blog loads posts from the API and shapes them for the list and detail pages.
package blog

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/cjy-OIer/blog/client"
	"github.com/cjy-OIer/blog/models"
	"github.com/cjy-OIer/blog/utils"
)

// PostSource is the subset of the API client used by the loaders.
type PostSource interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
	SearchPosts(ctx context.Context, q client.SearchQuery) (models.SearchResult, error)
	GetPost(ctx context.Context, id string) (models.Post, error)
}

// List states.
const (
	StateReady = "ready"
	StateEmpty = "empty"
	StateError = "error"
)

// User-facing messages.
const (
	MsgNoPosts      = "暂无文章"
	MsgListFailed   = "文章加载失败，请稍后刷新重试"
	MsgMissingID    = "文章ID未指定"
	MsgNotFound     = "文章不存在或已被删除"
	MsgLoadFailed   = "加载失败"
	MsgReturnOrWait = "请返回首页或稍后重试"
)

// Card is one entry of the post list.
type Card struct {
	ID         int64
	Title      string
	Excerpt    string
	CoverImage string
	Date       string
	Tags       []string
}

// ListView is the rendered state of the post list.
type ListView struct {
	State   string
	Cards   []Card
	Query   client.SearchQuery
	Total   int
	Message string
}

// Outcome classifies a detail load.
type Outcome int

const (
	DetailOK Outcome = iota
	DetailMissingID
	DetailNotFound
	DetailFailed
)

// DetailView is the rendered state of a single post page.
type DetailView struct {
	Outcome   Outcome
	Post      models.Post
	Published string
	Body      string // sanitized HTML
	Message   string
}

// Loader renders posts fetched from a PostSource.
type Loader struct {
	src        PostSource
	log        *zap.Logger
	excerptLen int
	format     Formatter
	loc        *time.Location
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithExcerptLen sets the card excerpt length in characters.
func WithExcerptLen(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.excerptLen = n
		}
	}
}

// WithFormatter sets how post bodies become HTML.
func WithFormatter(f Formatter) LoaderOption {
	return func(l *Loader) {
		if f != nil {
			l.format = f
		}
	}
}

// WithLocation sets the zone used for displayed dates.
func WithLocation(loc *time.Location) LoaderOption {
	return func(l *Loader) {
		if loc != nil {
			l.loc = loc
		}
	}
}

// NewLoader builds a Loader. A nil logger discards log output.
func NewLoader(src PostSource, log *zap.Logger, opts ...LoaderOption) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	l := &Loader{
		src:        src,
		log:        log,
		excerptLen: 100,
		format:     PlainFormatter{},
		loc:        time.Local,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// List loads every post, or the search results when the query has a keyword or tag.
// Failures never escape: they become the error state.
func (l *Loader) List(ctx context.Context, q client.SearchQuery) ListView {
	view := ListView{Query: q}

	var (
		posts []models.Post
		err   error
	)
	if strings.TrimSpace(q.Keyword) != "" || strings.TrimSpace(q.Tag) != "" {
		var res models.SearchResult
		res, err = l.src.SearchPosts(ctx, q)
		posts, view.Total = res.Posts, res.Total
	} else {
		posts, err = l.src.ListPosts(ctx)
		view.Total = len(posts)
	}
	if err != nil {
		l.log.Warn("load posts failed", zap.Error(err), zap.String("keyword", q.Keyword), zap.String("tag", q.Tag))
		view.State = StateError
		view.Message = MsgListFailed
		return view
	}
	if len(posts) == 0 {
		view.State = StateEmpty
		view.Message = MsgNoPosts
		return view
	}

	view.State = StateReady
	view.Cards = make([]Card, 0, len(posts))
	for _, p := range posts {
		view.Cards = append(view.Cards, Card{
			ID:         p.ID,
			Title:      p.Title,
			Excerpt:    l.excerpt(p),
			CoverImage: p.CoverImage,
			Date:       l.date(p.CreatedAt.Time),
			Tags:       p.Tags,
		})
	}
	return view
}

// Detail loads a single post by the raw id taken from the request.
func (l *Loader) Detail(ctx context.Context, rawID string) DetailView {
	id := strings.TrimSpace(rawID)
	if id == "" {
		return DetailView{Outcome: DetailMissingID, Message: MsgMissingID}
	}
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		// the API only knows integer ids
		return DetailView{Outcome: DetailNotFound, Message: MsgNotFound}
	}

	post, err := l.src.GetPost(ctx, id)
	switch {
	case errors.Is(err, client.ErrNotFound):
		l.log.Info("post not found", zap.String("id", id))
		return DetailView{Outcome: DetailNotFound, Message: MsgNotFound}
	case err != nil:
		l.log.Warn("load post failed", zap.String("id", id), zap.Error(err))
		return DetailView{Outcome: DetailFailed, Message: MsgLoadFailed + ": " + failureReason(err)}
	}

	return DetailView{
		Outcome:   DetailOK,
		Post:      post,
		Published: l.dateTime(post.CreatedAt.Time),
		Body:      l.format.Format(post.Content),
	}
}

func failureReason(err error) string {
	if d := client.Detail(err); d != "" {
		return d
	}
	var se *client.StatusError
	if errors.As(err, &se) {
		return "HTTP " + strconv.Itoa(se.Status)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "请求超时"
	}
	return "网络错误"
}

func (l *Loader) excerpt(p models.Post) string {
	src := utils.PlainText(p.Excerpt)
	if src == "" {
		src = utils.PlainText(p.Content)
	}
	return Truncate(src, l.excerptLen) + "..."
}

// Truncate cuts s to at most n characters without splitting a rune.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

func (l *Loader) date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(l.loc).Format("2006/1/2")
}

func (l *Loader) dateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(l.loc).Format("2006/1/2 15:04")
}
