// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements Idempotency-Key handling for POST routes. The first
// successful (2xx) response for a (caller, route, key) triple is stored and
// later requests with the same key receive that stored response verbatim
// instead of re-running the handler. A retried mint therefore never reaches
// the chain twice once the first attempt has answered.
//
// Two requests racing with the same key both run; the second store attempt
// hits the unique index and is dropped.
package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/rehab-rewards-backend/internal/repo"
)

// HeaderIdempotencyKey is the request header carrying the client's key.
const HeaderIdempotencyKey = "Idempotency-Key"

// HeaderIdempotentReplay is set to "true" on replayed responses.
const HeaderIdempotentReplay = "Idempotent-Replayed"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
)

// GetIdempotencyKey returns the validated key stored by Idempotency.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	s := c.GetString(ctxKeyIdemKey)
	return s, s != ""
}

// IsReplay reports whether the response was served from the store.
func IsReplay(c *gin.Context) bool { return c.GetBool(ctxKeyIdemReplay) }

// StoredResponse is a previously recorded answer.
type StoredResponse struct {
	Status int
	Body   []byte
}

// IdempotencyStore persists responses per (scope, key).
type IdempotencyStore interface {
	Lookup(ctx context.Context, scope, key string, now time.Time) (*StoredResponse, error)
	Save(ctx context.Context, scope, key string, resp StoredResponse) error
}

// IdempotencyOptions configures Idempotency.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters; nil means ^[A-Za-z0-9._~\-:]+$.
	Pattern *regexp.Regexp
}

// Idempotency validates the Idempotency-Key header on POST requests and
// replays or records responses through store. Requests without the header,
// and non-POST requests, pass through untouched. Store failures are logged
// and never fail the request.
//
// Place it after AuthOptional so the scope includes the caller identity.
func Idempotency(opts IdempotencyOptions, store IdempotencyStore) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "bad_idempotency_key",
				"message":    "invalid Idempotency-Key",
			})
			return
		}
		c.Set(ctxKeyIdemKey, key)
		if store == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		scope := idempotencyScope(c)
		lg := LoggerFrom(c)

		prev, err := store.Lookup(ctx, scope, key, time.Now().UTC())
		if err != nil {
			lg.Warn().Err(err).Msg("idempotency lookup failed")
		}
		if prev != nil {
			c.Set(ctxKeyIdemReplay, true)
			c.Header(HeaderIdempotentReplay, "true")
			c.Data(prev.Status, "application/json; charset=utf-8", prev.Body)
			c.Abort()
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		status := rec.Status()
		if status < 200 || status >= 300 {
			return
		}
		if err := store.Save(ctx, scope, key, StoredResponse{Status: status, Body: rec.buf.Bytes()}); err != nil {
			lg.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency store failed")
		}
	}
}

// idempotencyScope is "<account id or ip:addr> <route>".
func idempotencyScope(c *gin.Context) string {
	who := c.GetString(ctxKeyUserID)
	if who == "" {
		who = "ip:" + c.ClientIP()
	}
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	return who + " " + route
}

// bodyRecorder tees the response body into a buffer.
type bodyRecorder struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// DBIdempotencyStore keeps responses in the idempotency table for TTL.
type DBIdempotencyStore struct {
	DB  *gorm.DB
	TTL time.Duration
}

// Lookup implements IdempotencyStore. A missing or expired row is (nil, nil).
func (s DBIdempotencyStore) Lookup(ctx context.Context, scope, key string, now time.Time) (*StoredResponse, error) {
	rec, err := repo.GetIdempotency(ctx, s.DB, scope, key, now)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &StoredResponse{Status: rec.Status, Body: rec.Body}, nil
}

// Save implements IdempotencyStore. A concurrent duplicate is not an error.
func (s DBIdempotencyStore) Save(ctx context.Context, scope, key string, resp StoredResponse) error {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	_, err := repo.CreateIdempotency(ctx, s.DB, scope, key, resp.Status, resp.Body, ttl)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil
	}
	return err
}
