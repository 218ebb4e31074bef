package models

import (
	"encoding/json"
	"strings"
)

// Post is a blog article as served by the external API.
type Post struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Excerpt    string    `json:"excerpt,omitempty"`
	CoverImage string    `json:"cover_image,omitempty"`
	Status     string    `json:"status,omitempty"`
	ViewCount  int64     `json:"view_count"`
	Tags       TagList   `json:"tags"`
	CreatedAt  Timestamp `json:"created_at"`
	UpdatedAt  Timestamp `json:"updated_at"`
}

// TagList keeps tag names in API order. The API sends either plain strings
// or objects shaped like {"id":1,"name":"Go","slug":"go"}.
type TagList []string

func (l *TagList) UnmarshalJSON(b []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	out := make(TagList, 0, len(items))
	for _, raw := range items {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			var obj struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal(raw, &obj); err != nil {
				return err
			}
			name = obj.Name
		}
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	*l = out
	return nil
}

// SearchResult mirrors GET /api/posts/search.
type SearchResult struct {
	Total  int    `json:"total"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	Posts  []Post `json:"posts"`
}
