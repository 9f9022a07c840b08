package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hwangseoul-netizen/tention-mini/pkg/logger"
)

// ActorHeader names the acting participant
const ActorHeader = "X-Actor-ID"

// ContextKeyActor is the gin context key for the acting participant
const ContextKeyActor = "actor"

const maxActorLen = 64

// Actor resolves the acting participant from X-Actor-ID, falling back to
// defaultActor. There is no authentication: the header is trusted as given.
func Actor(defaultActor string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := strings.TrimSpace(c.GetHeader(ActorHeader))
		if actor == "" {
			actor = defaultActor
		}
		actor = truncateRunes(actor, maxActorLen)

		c.Set(ContextKeyActor, actor)
		ctx := context.WithValue(c.Request.Context(), logger.ActorKey, actor)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// truncateRunes cuts s to at most n runes without splitting one
func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// GetActor extracts the acting participant from gin context
func GetActor(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextKeyActor)
	if !exists {
		return "", false
	}
	actor, ok := v.(string)
	return actor, ok && actor != ""
}
