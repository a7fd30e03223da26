package schedule

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/cache"
)

// ChangeSource delivers cache writes; *cache.Bus implements it.
type ChangeSource interface {
	Subscribe(ctx context.Context) (<-chan cache.Change, error)
}

// RegisterChangeStream serves GET /api/schedule/changes as server-sent
// events, one "cache" event per rewritten key, so open views can reload.
func RegisterChangeStream(r *gin.Engine, src ChangeSource) {
	r.GET("/api/schedule/changes", func(c *gin.Context) {
		ctx := c.Request.Context()
		changes, err := src.Subscribe(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Status(http.StatusOK)
		c.Writer.Flush()
		for {
			select {
			case <-ctx.Done():
				return
			case ch, ok := <-changes:
				if !ok {
					return
				}
				c.SSEvent("cache", gin.H{"key": ch.Key})
				c.Writer.Flush()
			}
		}
	})
}
