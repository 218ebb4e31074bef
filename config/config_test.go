package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	c, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	assert.Equal(t, "8080", c.AppPort)
	assert.Equal(t, 20, c.MessageLimit)
	assert.Equal(t, 100, c.AuthorNameMaxLen)
	assert.Equal(t, 10, c.MaxCandles)
	assert.Equal(t, 60*time.Second, c.RefreshInterval())
	assert.Equal(t, 30*time.Second, c.SilenceDuration())
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
	assert.Equal(t, "plain", c.PostContentFormat)
}

func TestLoadFromGroupedSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
		"app": {"AppPort": "9090", "AllowedOrigins": ["https://a.example", "https://b.example"]},
		"api": {"BaseURL": "https://api.example", "TimeoutSec": 3},
		"guestbook": {"MessageLimit": 50, "RefreshIntervalSec": 120},
		"memorial": {"MaxCandles": 3, "PhotoManifest": "photos.yaml"},
		"redis": {"Host": "cache", "Port": 6380},
		"log": {"Level": "debug", "Compress": true}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	c, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", c.AppPort)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.AllowedOrigins)
	assert.Equal(t, "https://api.example", c.APIBaseURL)
	assert.Equal(t, 3*time.Second, c.APITimeout())
	assert.Equal(t, 50, c.MessageLimit)
	assert.Equal(t, 2*time.Minute, c.RefreshInterval())
	assert.Equal(t, 3, c.MaxCandles)
	assert.Equal(t, "photos.yaml", c.PhotoManifest)
	assert.Equal(t, "cache", c.RedisHost)
	assert.Equal(t, 6380, c.RedisPort)
	assert.Equal(t, "debug", c.LogLevel)
	assert.True(t, c.LogCompress)
}

func TestLoadFromInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestEnvOverridesWin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"guestbook": {"MessageLimit": 50}}`), 0o600))
	t.Setenv("MESSAGE_LIMIT", "5")
	t.Setenv("API_BASE_URL", "http://env.example")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://x.example , ,https://y.example")
	t.Setenv("POST_CONTENT_FORMAT", "Markdown")

	c, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, 5, c.MessageLimit)
	assert.Equal(t, "http://env.example", c.APIBaseURL)
	assert.Equal(t, []string{"https://x.example", "https://y.example"}, c.AllowedOrigins)
	assert.Equal(t, "markdown", c.PostContentFormat)
}

func TestLoadCachesAcrossConcurrentCallers(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.json"))
	t.Setenv("APP_PORT", "7070")

	var wg sync.WaitGroup
	ports := make([]string, 8)
	for i := range ports {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ports[i] = Get().AppPort
		}(i)
	}
	wg.Wait()
	for _, p := range ports {
		assert.Equal(t, "7070", p)
	}

	t.Setenv("APP_PORT", "9999")
	assert.Equal(t, "7070", Load().AppPort, "later env changes do not reload")
}
