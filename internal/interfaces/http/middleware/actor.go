package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/proptax/backend/internal/domain/audit"
	"github.com/proptax/backend/internal/infrastructure/logger"
	"github.com/proptax/backend/internal/interfaces/http/dto"
)

const (
	// ActorIDKey is the gin context key holding the acting user
	ActorIDKey = "actor_id"
	// DefaultActorHeader is set by the authenticating gateway in front of the service
	DefaultActorHeader = "X-Actor-ID"
	// MaxActorIDLength caps the actor header value
	MaxActorIDLength = 128
)

// Actor reads the acting user from header and attaches it, together with the
// request origin used by audit entries, to the request context.
// An oversized header is treated as absent.
func Actor(header string) gin.HandlerFunc {
	if header == "" {
		header = DefaultActorHeader
	}
	return func(c *gin.Context) {
		actor := strings.TrimSpace(c.GetHeader(header))
		if len(actor) > MaxActorIDLength {
			actor = ""
		}

		ctx := c.Request.Context()
		if actor != "" {
			c.Set(ActorIDKey, actor)
			ctx = logger.WithActorID(ctx, actor)
		}
		ctx = audit.WithOrigin(ctx, audit.Origin{
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			RequestID: GetRequestID(c),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetActorID returns the actor set by Actor
func GetActorID(c *gin.Context) string {
	return c.GetString(ActorIDKey)
}

// RequireActor rejects requests that reach it without an actor
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetActorID(c) == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeMissingActor, "Acting user is required for this operation", GetRequestID(c)))
			return
		}
		c.Next()
	}
}
