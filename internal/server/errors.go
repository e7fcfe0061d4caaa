package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/orderdesk/internal/authorization"
	"github.com/smallbiznis/orderdesk/internal/backend"
	csdomain "github.com/smallbiznis/orderdesk/internal/clientstate/domain"
	"github.com/smallbiznis/orderdesk/internal/identity"
	masterdatadomain "github.com/smallbiznis/orderdesk/internal/masterdata/domain"
	orderdomain "github.com/smallbiznis/orderdesk/internal/order/domain"
	sessiondomain "github.com/smallbiznis/orderdesk/internal/session/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	// Form validation messages are shown to the user as they are.
	var orderErr *orderdomain.ValidationError
	if errors.As(err, &orderErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: orderErr.Message,
			Errors: []ValidationError{
				{Field: orderErr.Field, Code: orderErr.Err.Error(), Message: orderErr.Message},
			},
		}
	}
	var masterErr *masterdatadomain.ValidationError
	if errors.As(err, &masterErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: masterErr.Message,
			Errors: []ValidationError{
				{Field: masterErr.Field, Code: "required", Message: masterErr.Message},
			},
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, sessiondomain.ErrNoSession),
		errors.Is(err, backend.ErrUnauthorized),
		errors.Is(err, identity.ErrInvalidToken):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, sessiondomain.ErrInvalidTransition),
		errors.Is(err, csdomain.ErrLockTimeout):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case errors.Is(err, sessiondomain.ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many attempts",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, backend.ErrUpstreamUnavailable),
		errors.Is(err, identity.ErrUnavailable),
		errors.Is(err, identity.ErrNotConfigured):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	case errors.Is(err, backend.ErrRequestRejected):
		return http.StatusBadGateway, errorPayload{
			Type:    "upstream_rejected",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog mirrors mapError without building the payload.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	return payload.Type, code
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, sessiondomain.ErrInvalidClient),
		errors.Is(err, sessiondomain.ErrInvalidRoleType),
		errors.Is(err, sessiondomain.ErrInvalidEmail),
		errors.Is(err, sessiondomain.ErrInvalidPassword),
		errors.Is(err, sessiondomain.ErrInvalidUsername),
		errors.Is(err, sessiondomain.ErrInvalidCode),
		errors.Is(err, sessiondomain.ErrInvalidKind),
		errors.Is(err, csdomain.ErrInvalidClient),
		errors.Is(err, csdomain.ErrInvalidRole),
		errors.Is(err, csdomain.ErrInvalidEmail),
		errors.Is(err, masterdatadomain.ErrInvalidKind),
		errors.Is(err, masterdatadomain.ErrInvalidCode),
		errors.Is(err, orderdomain.ErrInvalidOrderNumber),
		errors.Is(err, authorization.ErrInvalidObject),
		errors.Is(err, authorization.ErrInvalidAction):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, orderdomain.ErrNotFound),
		errors.Is(err, masterdatadomain.ErrNotFound),
		errors.Is(err, sessiondomain.ErrProfileNotFound),
		errors.Is(err, backend.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
