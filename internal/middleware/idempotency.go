package middleware

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	internalRedis "shuttle/internal/redis"
)

const idempotencyHeader = "Idempotency-Key"

// responseWriter wraps gin.ResponseWriter to capture the response.
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the stored response of a POST or PATCH that
// repeats an Idempotency-Key, so a resent booking form does not admit twice.
// Keys are scoped to method and route. Store errors fall through to normal
// processing.
func IdempotencyMiddleware(store internalRedis.ResponseStore, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if store == nil || (c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPatch) {
			c.Next()
			return
		}

		key := c.GetHeader(idempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		scoped := c.Request.Method + ":" + c.FullPath() + ":" + key

		stored, err := store.Lookup(ctx, scoped)
		if err != nil {
			logger.Warn("idempotency lookup failed", zap.Error(err))
			c.Next()
			return
		}
		if stored != nil {
			if stored.Pending() {
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "request with this idempotency key is in progress"})
				return
			}
			replay(c, stored)
			return
		}

		reserved, err := store.Reserve(ctx, scoped)
		if err != nil {
			logger.Warn("idempotency reserve failed", zap.Error(err))
			c.Next()
			return
		}
		if !reserved {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "request with this idempotency key is in progress"})
			return
		}

		w := &responseWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w

		c.Next()

		status := c.Writer.Status()
		if status >= 500 {
			if err := store.Release(ctx, scoped); err != nil {
				logger.Warn("idempotency release failed", zap.Error(err))
			}
			return
		}

		headers := make(http.Header)
		if ct := c.Writer.Header().Get("Content-Type"); ct != "" {
			headers.Set("Content-Type", ct)
		}
		resp := internalRedis.StoredResponse{StatusCode: status, Body: w.body.Bytes(), Headers: headers}
		if err := store.Save(ctx, scoped, resp); err != nil {
			logger.Warn("idempotency save failed", zap.Error(err))
		}
	}
}

func replay(c *gin.Context, stored *internalRedis.StoredResponse) {
	contentType := stored.Headers.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	c.Data(stored.StatusCode, contentType, stored.Body)
	c.Abort()
}
