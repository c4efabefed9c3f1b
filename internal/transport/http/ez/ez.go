package ez

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"usercenter/internal/domain"
	mdw "usercenter/internal/transport/http/middleware"
	resp "usercenter/internal/transport/http/response"
)

// 绑定方式
type Binder string

const (
	BindJSON    Binder = "json"     // 从 JSON 绑定
	BindQuery   Binder = "query"    // 从 URL ?a=b 绑定
	BindURI     Binder = "uri"      // 从路径参数 :id 绑定
	BindURIJSON Binder = "uri+json" // 路径参数 + JSON
	BindNone    Binder = "none"     // 不绑定
)

// EZ registers actions on a router group and reports failures through l.
type EZ struct {
	g *gin.RouterGroup
	l *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ {
	if l == nil {
		l = zap.NewNop()
	}
	return EZ{g: g, l: l}
}

// Action 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string   // "GET" | "POST" | "PUT" | "DELETE"
	Path    string   // 例："/auth/login"、"/users/:id"
	Binder  Binder   // 绑定方式
	Status  int      // 成功状态码，默认 200
	Message string   // 成功时附带的 message（可选）
	Roles   []string // 限定角色（可选），需挂在 AuthJWT 之后
	Handler func(c *gin.Context, in *I) (O, error)
}

// RegisterAction binds I, runs the handler and renders O or the error.
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}

	h := func(c *gin.Context) {
		var in I
		if err := bind(c, a.Binder, &in); err != nil {
			resp.Fail(c, e.l, err)
			return
		}
		out, err := a.Handler(c, &in)
		if err != nil {
			resp.Fail(c, e.l, err)
			return
		}
		resp.JSON(c, status, a.Message, out)
	}

	chain := make([]gin.HandlerFunc, 0, 2)
	if len(a.Roles) > 0 {
		chain = append(chain, mdw.RequireRoles(a.Roles...))
	}
	chain = append(chain, h)
	e.g.Handle(strings.ToUpper(a.Method), a.Path, chain...)
}

func bind(c *gin.Context, b Binder, in any) error {
	var err error
	switch b {
	case BindJSON:
		err = c.ShouldBindJSON(in)
	case BindQuery:
		err = c.ShouldBindQuery(in)
	case BindURI:
		err = c.ShouldBindUri(in)
	case BindURIJSON:
		if err = c.ShouldBindUri(in); err == nil {
			err = c.ShouldBindJSON(in)
		}
	default: // BindNone
	}
	if err != nil {
		return bindError(err)
	}
	return nil
}

// bindError turns binding/validation failures into InvalidInput with a readable summary.
func bindError(err error) error {
	var (
		ves    validator.ValidationErrors
		numErr *strconv.NumError
		synErr *json.SyntaxError
		typErr *json.UnmarshalTypeError
		maxErr *http.MaxBytesError
	)
	switch {
	case errors.As(err, &ves):
		msgs := make([]string, 0, len(ves))
		for _, fe := range ves {
			msgs = append(msgs, fieldMessage(fe))
		}
		return domain.InvalidInput(strings.Join(msgs, "; "))
	case errors.As(err, &maxErr):
		return domain.InvalidInput("Request body too large")
	case errors.As(err, &numErr):
		return domain.InvalidInput(fmt.Sprintf("Validation failed (numeric string is expected): %q", numErr.Num))
	case errors.As(err, &typErr):
		return domain.InvalidInput(fmt.Sprintf("%s must be a %s", typErr.Field, typErr.Type))
	case errors.As(err, &synErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return domain.InvalidInput("Malformed JSON body")
	}
	return domain.InvalidInput(err.Error())
}

func fieldMessage(fe validator.FieldError) string {
	name := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "email":
		return name + " must be an email"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", name, fe.Param())
		}
		return fmt.Sprintf("%s must not be less than %s", name, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long", name, fe.Param())
		}
		return fmt.Sprintf("%s must not be greater than %s", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, fe.Param())
	}
	return fmt.Sprintf("%s failed on %s", name, fe.Tag())
}

func lowerFirst(s string) string {
	if s == "" || s == strings.ToUpper(s) {
		return strings.ToLower(s)
	}
	return strings.ToLower(s[:1]) + s[1:]
}
