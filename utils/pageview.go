package utils

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pageViewKeyPrefix = "pv:"
	pageViewKeep      = 48 * time.Hour
)

// PageViews counts successful page views per local day and path.
type PageViews struct {
	rc *redis.Client

	mu  sync.Mutex
	mem map[string]map[string]int64 // day -> path -> count
}

// NewPageViews creates a counter. rc may be nil for in-memory counting.
func NewPageViews(rc *redis.Client) *PageViews {
	return &PageViews{rc: rc, mem: map[string]map[string]int64{}}
}

// DayKey formats the local calendar day a timestamp falls on.
func DayKey(t time.Time) string {
	return t.In(time.Local).Format("2006-01-02")
}

// Record adds one view of path on day.
func (p *PageViews) Record(ctx context.Context, day, path string) {
	if p.rc != nil {
		ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
		defer cancel()
		key := pageViewKeyPrefix + day
		pipe := p.rc.TxPipeline()
		pipe.HIncrBy(ctx, key, path, 1)
		pipe.Expire(ctx, key, pageViewKeep)
		if _, err := pipe.Exec(ctx); err != nil {
			Sugar.Warnf("record page view failed day=%s path=%s err=%v", day, path, err)
		}
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	byPath, ok := p.mem[day]
	if !ok {
		// only today and yesterday are ever asked for
		for d := range p.mem {
			if d < day {
				delete(p.mem, d)
			}
		}
		byPath = map[string]int64{}
		p.mem[day] = byPath
	}
	byPath[path]++
}

// Day returns per-path counts for day.
func (p *PageViews) Day(ctx context.Context, day string) map[string]int64 {
	out := map[string]int64{}
	if p.rc != nil {
		ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
		defer cancel()
		res, err := p.rc.HGetAll(ctx, pageViewKeyPrefix+day).Result()
		if err != nil {
			Sugar.Warnf("read page views failed day=%s err=%v", day, err)
			return out
		}
		for path, v := range res {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				out[path] = n
			}
		}
		return out
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for path, n := range p.mem[day] {
		out[path] = n
	}
	return out
}

// DayTotal sums all paths for day.
func (p *PageViews) DayTotal(ctx context.Context, day string) int64 {
	var total int64
	for _, n := range p.Day(ctx, day) {
		total += n
	}
	return total
}
