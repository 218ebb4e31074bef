package client

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/cjy-OIer/blog/models"
)

// ErrMissingID is returned when a post lookup has no identifier.
var ErrMissingID = errors.New("client: missing post id")

// ListPosts fetches GET /api/posts.
func (c *Client) ListPosts(ctx context.Context) ([]models.Post, error) {
	endpoint, err := c.endpoint(nil, "api", "posts")
	if err != nil {
		return nil, err
	}
	var posts []models.Post
	if err := c.getJSON(ctx, endpoint, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost fetches GET /api/posts/{id}. A 404 satisfies errors.Is(err, ErrNotFound).
func (c *Client) GetPost(ctx context.Context, id string) (models.Post, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Post{}, ErrMissingID
	}
	endpoint, err := c.endpoint(nil, "api", "posts", id)
	if err != nil {
		return models.Post{}, err
	}
	var post models.Post
	if err := c.getJSON(ctx, endpoint, &post); err != nil {
		return models.Post{}, err
	}
	return post, nil
}

// SearchQuery filters GET /api/posts/search.
type SearchQuery struct {
	Keyword string
	Tag     string
	Limit   int
	Offset  int
}

// SearchPosts fetches GET /api/posts/search.
func (c *Client) SearchPosts(ctx context.Context, q SearchQuery) (models.SearchResult, error) {
	v := url.Values{}
	if kw := strings.TrimSpace(q.Keyword); kw != "" {
		v.Set("keyword", kw)
	}
	if tag := strings.TrimSpace(q.Tag); tag != "" {
		v.Set("tag", tag)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	endpoint, err := c.endpoint(v, "api", "posts", "search")
	if err != nil {
		return models.SearchResult{}, err
	}
	var res models.SearchResult
	if err := c.getJSON(ctx, endpoint, &res); err != nil {
		return models.SearchResult{}, err
	}
	return res, nil
}

// Health fetches GET /api/health.
func (c *Client) Health(ctx context.Context) (models.Health, error) {
	endpoint, err := c.endpoint(nil, "api", "health")
	if err != nil {
		return models.Health{}, err
	}
	var h models.Health
	if err := c.getJSON(ctx, endpoint, &h); err != nil {
		return models.Health{}, err
	}
	return h, nil
}
