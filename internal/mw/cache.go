package mw

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// snapshot is a rendered response kept for replay.
type snapshot struct {
	status int
	header http.Header
	body   []byte
}

// recorder copies everything a handler writes.
type recorder struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func (r recorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r recorder) WriteString(s string) (int, error) {
	r.buf.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}

// ResponseCache replays rendered read responses until they expire or a
// write flushes them.
type ResponseCache struct {
	entries *cache.Cache
	ttl     time.Duration
}

// NewResponseCache creates a cache whose entries live for ttl.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{entries: cache.New(ttl, 2*ttl), ttl: ttl}
}

// Read serves GET requests from the cache, keyed by request URI. Only 2xx
// responses are stored.
func (rc *ResponseCache) Read() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.URL.RequestURI()
		if v, ok := rc.entries.Get(key); ok {
			snap := v.(snapshot)
			for k, vs := range snap.header {
				c.Writer.Header()[k] = vs
			}
			c.Writer.Header().Set("X-Cache", "HIT")
			c.Writer.WriteHeader(snap.status)
			c.Writer.Write(snap.body)
			c.Abort()
			return
		}

		rec := recorder{ResponseWriter: c.Writer, buf: &bytes.Buffer{}}
		c.Writer = rec
		c.Next()

		if status := rec.Status(); status >= 200 && status < 300 {
			rc.entries.Set(key, snapshot{
				status: status,
				header: rec.Header().Clone(),
				body:   rec.buf.Bytes(),
			}, rc.ttl)
		}
	}
}

// Invalidate drops every cached response once the wrapped write succeeds.
func (rc *ResponseCache) Invalidate() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.Writer.Status() < http.StatusBadRequest {
			rc.entries.Flush()
		}
	}
}
