package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostDecodesTagObjectsAndStrings(t *testing.T) {
	var withObjects Post
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": 7, "title": "Vercel部署指南", "content": "正文",
		"tags": [{"id": 1, "name": "Python", "slug": "python"}, {"name": " 部署 "}, {"name": ""}],
		"created_at": "2023-10-15T08:30:00", "updated_at": null
	}`), &withObjects))
	assert.Equal(t, TagList{"Python", "部署"}, withObjects.Tags)
	assert.Equal(t, 2023, withObjects.CreatedAt.Year())
	assert.Equal(t, time.October, withObjects.CreatedAt.Month())
	assert.True(t, withObjects.UpdatedAt.IsZero())

	var withStrings Post
	require.NoError(t, json.Unmarshal([]byte(`{"id": 1, "tags": ["Go", "CSS"]}`), &withStrings))
	assert.Equal(t, TagList{"Go", "CSS"}, withStrings.Tags)
}

func TestTimestampFormats(t *testing.T) {
	cases := map[string]int{
		`"2024-03-01T10:00:00Z"`:      10,
		`"2024-03-01T10:00:00+08:00"`: 10,
		`"2024-03-01 10:00:00"`:       10,
	}
	for in, hour := range cases {
		var ts Timestamp
		require.NoError(t, json.Unmarshal([]byte(in), &ts), in)
		assert.Equal(t, hour, ts.Hour(), in)
		assert.Equal(t, 1, ts.Day(), in)
	}

	var empty Timestamp
	require.NoError(t, json.Unmarshal([]byte(`""`), &empty))
	assert.True(t, empty.IsZero())

	var bad Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"not a date at all"`), &bad))
}

func TestTimestampMarshal(t *testing.T) {
	b, err := json.Marshal(Stats{TotalMessages: 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_messages":3,"last_updated":null}`, string(b))
}

func TestMessagePending(t *testing.T) {
	assert.True(t, Message{Status: MessagePending}.Pending())
	assert.False(t, Message{Status: MessageApproved}.Pending())
}

func TestPhotoImagePrefersLarge(t *testing.T) {
	assert.Equal(t, "big.jpg", Photo{Src: "small.jpg", Large: "big.jpg"}.Image())
	assert.Equal(t, "small.jpg", Photo{Src: "small.jpg"}.Image())
	assert.Empty(t, Photo{}.Image())
}
