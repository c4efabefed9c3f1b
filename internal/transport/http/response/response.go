package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"usercenter/internal/domain"
)

// Success is the envelope of every 2xx body. Data is never omitted so an
// empty list still renders as [].
type Success struct {
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

// Failure is the envelope of every error body.
type Failure struct {
	Message string `json:"message"`
}

func OK(c *gin.Context, data any) { JSON(c, http.StatusOK, "", data) }

func Created(c *gin.Context, data any) { JSON(c, http.StatusCreated, "", data) }

func JSON(c *gin.Context, status int, msg string, data any) {
	c.JSON(status, Success{Message: msg, Data: data})
}

// Abort stops the chain with an error body.
func Abort(c *gin.Context, status int, msg string) {
	if msg == "" {
		msg = defaultMsg(status)
	}
	c.AbortWithStatusJSON(status, Failure{Message: msg})
}

// Fail translates err into a status and message. Internal errors are logged in
// full and answered with a generic message.
func Fail(c *gin.Context, l *zap.Logger, err error) {
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind == domain.KindInternal {
		if l != nil {
			l.Error("request failed",
				zap.String("rid", c.GetString(RequestIDKey)),
				zap.String("method", c.Request.Method),
				zap.String("path", c.FullPath()),
				zap.Error(err),
			)
		}
		_ = c.Error(err)
		Abort(c, http.StatusInternalServerError, "")
		return
	}
	Abort(c, StatusOf(de.Kind), de.Msg)
}
