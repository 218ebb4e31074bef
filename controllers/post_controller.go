package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cjy-OIer/blog/blog"
	"github.com/cjy-OIer/blog/client"
	"github.com/cjy-OIer/blog/config"
)

// PostController renders the post list and post detail pages.
type PostController struct {
	loader *blog.Loader
	cfg    config.AppConfig
}

// NewPostController creates a new PostController instance.
func NewPostController(loader *blog.Loader, cfg config.AppConfig) *PostController {
	return &PostController{loader: loader, cfg: cfg}
}

// ListPage is the data of index.html.
type ListPage struct {
	Page
	View blog.ListView
}

// PostPage is the data of post.html.
type PostPage struct {
	Page
	View blog.DetailView
}

// ListPosts renders every post, or the search results for ?keyword= / ?tag=.
func (p *PostController) ListPosts(ctx *gin.Context) {
	q := client.SearchQuery{Keyword: ctx.Query("keyword"), Tag: ctx.Query("tag")}
	view := p.loader.List(ctx.Request.Context(), q)
	ctx.HTML(statusFor(view.State == blog.StateError), "index.html", ListPage{Page: newPage(p.cfg, ""), View: view})
}

// GetPost renders one post. The id comes from /posts/:id or ?id=.
func (p *PostController) GetPost(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		id = ctx.Query("id")
	}
	view := p.loader.Detail(ctx.Request.Context(), id)

	status, title := http.StatusOK, view.Post.Title
	switch view.Outcome {
	case blog.DetailMissingID:
		status, title = http.StatusBadRequest, view.Message
	case blog.DetailNotFound:
		status, title = http.StatusNotFound, view.Message
	case blog.DetailFailed:
		status, title = http.StatusBadGateway, blog.MsgLoadFailed
	}
	ctx.HTML(status, "post.html", PostPage{Page: newPage(p.cfg, title), View: view})
}
