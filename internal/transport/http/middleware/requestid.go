package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	resp "usercenter/internal/transport/http/response"
)

const HeaderRequestID = "X-Request-ID"

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if rid == "" || len(rid) > 128 {
			rid = uuid.NewString()
		}
		c.Writer.Header().Set(HeaderRequestID, rid)
		c.Set(resp.RequestIDKey, rid)
		c.Next()
	}
}
