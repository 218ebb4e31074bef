package blog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cjy-OIer/blog/client"
	"github.com/cjy-OIer/blog/models"
)

type fakeSource struct {
	posts     []models.Post
	listErr   error
	search    models.SearchResult
	searched  []client.SearchQuery
	post      models.Post
	getErr    error
	getCalls  int
	lastGetID string
}

func (f *fakeSource) ListPosts(context.Context) ([]models.Post, error) {
	return f.posts, f.listErr
}

func (f *fakeSource) SearchPosts(_ context.Context, q client.SearchQuery) (models.SearchResult, error) {
	f.searched = append(f.searched, q)
	return f.search, f.listErr
}

func (f *fakeSource) GetPost(_ context.Context, id string) (models.Post, error) {
	f.getCalls++
	f.lastGetID = id
	return f.post, f.getErr
}

func ts(t *testing.T, s string) models.Timestamp {
	t.Helper()
	tm, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return models.Timestamp{Time: tm}
}

func TestListReadyBuildsCards(t *testing.T) {
	src := &fakeSource{posts: []models.Post{{
		ID:        7,
		Title:     "第一篇",
		Content:   strings.Repeat("字", 150),
		Tags:      models.TagList{"生活", "Go"},
		CreatedAt: ts(t, "2024-03-05T10:00:00Z"),
	}}}
	l := NewLoader(src, zaptest.NewLogger(t), WithLocation(time.UTC))

	view := l.List(context.Background(), client.SearchQuery{})
	require.Equal(t, StateReady, view.State)
	require.Len(t, view.Cards, 1)
	card := view.Cards[0]
	assert.Equal(t, strings.Repeat("字", 100)+"...", card.Excerpt)
	assert.Equal(t, "2024/3/5", card.Date)
	assert.Equal(t, []string{"生活", "Go"}, card.Tags)
	assert.Empty(t, src.searched)
}

func TestListExcerptDropsMarkup(t *testing.T) {
	src := &fakeSource{posts: []models.Post{{ID: 1, Title: "t", Content: "<p>a &amp; <b>b</b></p>"}}}
	view := NewLoader(src, zaptest.NewLogger(t)).List(context.Background(), client.SearchQuery{})
	assert.Equal(t, "a & b...", view.Cards[0].Excerpt)
}

func TestListPrefersServerExcerpt(t *testing.T) {
	src := &fakeSource{posts: []models.Post{{ID: 1, Title: "t", Content: "long body", Excerpt: "short"}}}
	view := NewLoader(src, nil).List(context.Background(), client.SearchQuery{})
	assert.Equal(t, "short...", view.Cards[0].Excerpt)
}

func TestListEmptyShowsPlaceholder(t *testing.T) {
	view := NewLoader(&fakeSource{}, nil).List(context.Background(), client.SearchQuery{})
	assert.Equal(t, StateEmpty, view.State)
	assert.Equal(t, MsgNoPosts, view.Message)
	assert.Empty(t, view.Cards)
}

func TestListFailureShowsError(t *testing.T) {
	src := &fakeSource{listErr: errors.New("dial tcp: refused")}
	view := NewLoader(src, zaptest.NewLogger(t)).List(context.Background(), client.SearchQuery{})
	assert.Equal(t, StateError, view.State)
	assert.Equal(t, MsgListFailed, view.Message)
}

func TestListUsesSearchForKeyword(t *testing.T) {
	src := &fakeSource{search: models.SearchResult{Total: 3, Posts: []models.Post{{ID: 2, Title: "x"}}}}
	view := NewLoader(src, nil).List(context.Background(), client.SearchQuery{Tag: "Go"})
	require.Len(t, src.searched, 1)
	assert.Equal(t, "Go", src.searched[0].Tag)
	assert.Equal(t, 3, view.Total)
	assert.Equal(t, StateReady, view.State)
}

func TestDetailMissingID(t *testing.T) {
	src := &fakeSource{}
	view := NewLoader(src, nil).Detail(context.Background(), " ")
	assert.Equal(t, DetailMissingID, view.Outcome)
	assert.Equal(t, MsgMissingID, view.Message)
	assert.Zero(t, src.getCalls)
}

func TestDetailNotFoundIsDistinct(t *testing.T) {
	src := &fakeSource{getErr: &client.StatusError{Status: 404, Detail: "Post not found"}}
	view := NewLoader(src, zaptest.NewLogger(t)).Detail(context.Background(), "9")
	assert.Equal(t, DetailNotFound, view.Outcome)
	assert.Equal(t, MsgNotFound, view.Message)
	assert.NotContains(t, view.Message, MsgLoadFailed)
}

func TestDetailNonNumericIDIsNotFound(t *testing.T) {
	src := &fakeSource{}
	view := NewLoader(src, nil).Detail(context.Background(), "abc")
	assert.Equal(t, DetailNotFound, view.Outcome)
	assert.Zero(t, src.getCalls)
}

func TestDetailFailureCarriesReason(t *testing.T) {
	src := &fakeSource{getErr: &client.StatusError{Status: 500, Detail: "数据库连接失败"}}
	view := NewLoader(src, zaptest.NewLogger(t)).Detail(context.Background(), "1")
	assert.Equal(t, DetailFailed, view.Outcome)
	assert.Equal(t, "加载失败: 数据库连接失败", view.Message)

	src.getErr = &client.StatusError{Status: 503}
	view = NewLoader(src, nil).Detail(context.Background(), "1")
	assert.Equal(t, "加载失败: HTTP 503", view.Message)
}

func TestDetailOK(t *testing.T) {
	src := &fakeSource{post: models.Post{
		ID:        5,
		Title:     "标题",
		Content:   "第一段\n\n<b>第二段</b>\n",
		CreatedAt: ts(t, "2024-03-05T09:07:00Z"),
	}}
	view := NewLoader(src, nil, WithLocation(time.UTC)).Detail(context.Background(), "5")
	require.Equal(t, DetailOK, view.Outcome)
	assert.Equal(t, "5", src.lastGetID)
	assert.Equal(t, "2024/3/5 09:07", view.Published)
	assert.Equal(t, "<p>第一段</p><p>&lt;b&gt;第二段&lt;/b&gt;</p>", view.Body)
}

func TestMarkdownFormatterSanitizes(t *testing.T) {
	out := NewFormatter("markdown").Format("# Hi\n\n<script>alert(1)</script>\n\n**bold**")
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.NotContains(t, out, "<script>")
}

func TestNewFormatterDefaultsToPlain(t *testing.T) {
	assert.IsType(t, PlainFormatter{}, NewFormatter(""))
	assert.IsType(t, PlainFormatter{}, NewFormatter("html"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "你好", Truncate("你好世界", 2))
}
