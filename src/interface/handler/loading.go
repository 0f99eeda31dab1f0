package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// cachedStore is the load surface shared by the cache-backed stores.
type cachedStore interface {
	Loaded() bool
	Load(ctx context.Context) error
}

// ensureLoaded retries the initial load when it has not yet succeeded.
// While the remote store stays unreachable the read endpoints answer 503
// with a retryable error body instead of serving an empty cache.
func ensureLoaded(c *gin.Context, store cachedStore) bool {
	if store.Loaded() {
		return true
	}
	if err := store.Load(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponseDTO{
			Error:     "Board data unavailable",
			Message:   err.Error(),
			Retryable: true,
		})
		return false
	}
	return true
}
