package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// streamEvents writes every value received from events as a server-sent event until
// the channel closes, the client goes away or render marks a value as the last one
func streamEvents[T any](c *gin.Context, events <-chan T, render func(T) (event string, data any, last bool)) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case v, ok := <-events:
			if !ok {
				return
			}
			event, data, last := render(v)
			c.SSEvent(event, data)
			c.Writer.Flush()
			if last {
				return
			}
		}
	}
}
