package pagecache

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

/*
PageCache holds rendered public pages keyed by request path. Admin
mutations invalidate the paths that show the mutated content.
*/
type PageCache interface {
	Get(path string) ([]byte, bool)
	Set(path string, body []byte)
	Invalidate(paths ...string)
}

type RedisCacheConfig struct {
	Client *redis.Client
	Prefix string
	TTL    time.Duration
}

type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCache(config RedisCacheConfig) RedisCache {
	if config.Prefix == "" {
		config.Prefix = "portfolio:page:"
	}

	if config.TTL <= 0 {
		config.TTL = time.Hour
	}

	return RedisCache{
		client: config.Client,
		prefix: config.Prefix,
		ttl:    config.TTL,
	}
}

func (c RedisCache) Get(path string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*2)
	defer cancel()

	b, err := c.client.Get(ctx, c.prefix+path).Bytes()

	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Error("error reading page cache", "path", path, "error", err)
		}

		return nil, false
	}

	return b, true
}

func (c RedisCache) Set(path string, body []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*2)
	defer cancel()

	if err := c.client.Set(ctx, c.prefix+path, body, c.ttl).Err(); err != nil {
		slog.Error("error writing page cache", "path", path, "error", err)
	}
}

func (c RedisCache) Invalidate(paths ...string) {
	if len(paths) == 0 {
		return
	}

	keys := make([]string, 0, len(paths))

	for _, p := range paths {
		keys = append(keys, c.prefix+p)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*2)
	defer cancel()

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		slog.Error("error invalidating page cache", "paths", paths, "error", err)
	}
}

/*
NoopCache is used when no Redis URL is configured. Every page is rendered
fresh.
*/
type NoopCache struct{}

func (NoopCache) Get(path string) ([]byte, bool) {
	return nil, false
}

func (NoopCache) Set(path string, body []byte) {}

func (NoopCache) Invalidate(paths ...string) {}

/*
Serve writes the cached page for the request path when there is one.
Otherwise it runs render against a buffer and copies the result to w. The
output is stored only when render reports it cacheable and the status is
200, so a page built from a failed read is not served after recovery.
*/
func Serve(cache PageCache, w http.ResponseWriter, r *http.Request, render func(w http.ResponseWriter) bool) {
	path := r.URL.Path

	if body, ok := cache.Get(path); ok {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("X-Page-Cache", "hit")
		_, _ = w.Write(body)
		return
	}

	buffer := newBufferedWriter()
	cacheable := render(buffer)

	if cacheable && buffer.status == http.StatusOK {
		cache.Set(path, buffer.body.Bytes())
	}

	for key, values := range buffer.header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}

	w.Header().Set("X-Page-Cache", "miss")
	w.WriteHeader(buffer.status)
	_, _ = w.Write(buffer.body.Bytes())
}

type bufferedWriter struct {
	header http.Header
	body   *bytes.Buffer
	status int
}

func newBufferedWriter() *bufferedWriter {
	return &bufferedWriter{
		header: http.Header{},
		body:   &bytes.Buffer{},
		status: http.StatusOK,
	}
}

func (b *bufferedWriter) Header() http.Header {
	return b.header
}

func (b *bufferedWriter) Write(p []byte) (int, error) {
	return b.body.Write(p)
}

func (b *bufferedWriter) WriteHeader(status int) {
	b.status = status
}
