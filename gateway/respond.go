package gateway

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/example/clickmenu/pkg/models"
	"github.com/example/clickmenu/pkg/service"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

func respond(c *gin.Context, status int, body gin.H) {
	if body == nil {
		body = gin.H{}
	}
	body["ok"] = true
	c.JSON(status, body)
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"ok": false, "error": msg})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrScope), errors.Is(err, service.ErrStoreInactive):
		return http.StatusForbidden
	case errors.Is(err, models.ErrOrderNotFound),
		errors.Is(err, models.ErrItemNotFound),
		errors.Is(err, models.ErrStoreNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, models.ErrStatusConflict),
		errors.Is(err, models.ErrStoreExists),
		errors.Is(err, models.ErrDuplicateRequestID):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (g *Gateway) fail(c *gin.Context, err error) {
	status := statusFor(err)
	body := gin.H{"ok": false, "error": err.Error()}

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		body["fields"] = verr.Fields
	case status == http.StatusForbidden && errors.Is(err, service.ErrScope):
		body["error"] = "Forbidden"
	case status == http.StatusInternalServerError:
		g.logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		body["error"] = "Internal server error"
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(field, reason string) error {
	return &service.ValidationError{Fields: map[string]string{field: reason}}
}

var jsonFieldNames sync.Once

// useJSONFieldNames reports binding failures under the json names clients send.
func useJSONFieldNames() {
	jsonFieldNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// bindError turns a failed ShouldBindJSON into a ValidationError.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return badRequest("body", err.Error())
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = ruleReason(fe)
	}
	return &service.ValidationError{Fields: fields}
}

func ruleReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without", "required_without_all":
		return "is required"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "min":
		return "must have at least " + fe.Param() + " entries"
	case "email":
		return "must be an email address"
	}
	return "is invalid"
}
