package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/docflow/internal/authorization"
	catalogdomain "github.com/smallbiznis/docflow/internal/catalog/domain"
	documentdomain "github.com/smallbiznis/docflow/internal/document/domain"
	"github.com/smallbiznis/docflow/internal/kvstore/collection"
	kvdomain "github.com/smallbiznis/docflow/internal/kvstore/domain"
	numberingdomain "github.com/smallbiznis/docflow/internal/numbering/domain"
	obstracing "github.com/smallbiznis/docflow/internal/observability/tracing"
	valuationdomain "github.com/smallbiznis/docflow/internal/valuation/domain"
	"github.com/smallbiznis/docflow/pkg/db/pagination"
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
	Type      string            `json:"type"`
	Message   string            `json:"message"`
	Retryable bool              `json:"retryable,omitempty"`
	Errors    []ValidationError `json:"errors,omitempty"`
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
		c.Set(obstracing.ErrorTypeKey, payload.Type)
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
		errors.Is(err, authorization.ErrUnauthenticated):
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
		errors.Is(err, kvdomain.ErrUpdateConflict):
		return http.StatusConflict, errorPayload{
			Type:      "conflict",
			Message:   "conflict",
			Retryable: true,
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case numberingdomain.IsRetryable(err):
		return http.StatusServiceUnavailable, errorPayload{
			Type:      "numbering_unavailable",
			Message:   "document number could not be persisted, retry",
			Retryable: true,
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, kvdomain.ErrNotConfigured):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog returns the payload type and code logged for err.
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
		errors.Is(err, pagination.ErrInvalidPageToken):
		return true
	case isValuationValidationError(err),
		isNumberingValidationError(err),
		isDocumentValidationError(err),
		isCatalogValidationError(err):
		return true
	default:
		return false
	}
}

func isValuationValidationError(err error) bool {
	return errors.Is(err, valuationdomain.ErrInvalidInput) ||
		errors.Is(err, valuationdomain.ErrInvalidRate) ||
		errors.Is(err, valuationdomain.ErrInvalidConvention)
}

func isNumberingValidationError(err error) bool {
	return errors.Is(err, numberingdomain.ErrInvalidDocumentType) ||
		errors.Is(err, numberingdomain.ErrInvalidYear)
}

func isDocumentValidationError(err error) bool {
	return errors.Is(err, documentdomain.ErrInvalidType) ||
		errors.Is(err, documentdomain.ErrInvalidDate)
}

func isCatalogValidationError(err error) bool {
	return errors.Is(err, catalogdomain.ErrInvalidName) ||
		errors.Is(err, catalogdomain.ErrInvalidPrice) ||
		errors.Is(err, catalogdomain.ErrInvalidTaxRate) ||
		errors.Is(err, catalogdomain.ErrInvalidTemplateType)
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, documentdomain.ErrNotFound),
		errors.Is(err, catalogdomain.ErrNotFound),
		errors.Is(err, collection.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

var validationSentinels = []error{
	ErrInvalidRequest,
	pagination.ErrInvalidPageToken,
	valuationdomain.ErrInvalidInput,
	valuationdomain.ErrInvalidRate,
	valuationdomain.ErrInvalidConvention,
	numberingdomain.ErrInvalidDocumentType,
	numberingdomain.ErrInvalidYear,
	documentdomain.ErrInvalidType,
	documentdomain.ErrInvalidDate,
	catalogdomain.ErrInvalidName,
	catalogdomain.ErrInvalidPrice,
	catalogdomain.ErrInvalidTaxRate,
	catalogdomain.ErrInvalidTemplateType,
}

// validationErrorCode unwraps err to the sentinel it carries.
func validationErrorCode(err error) string {
	for _, sentinel := range validationSentinels {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
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
	case "invalid_tax_rate":
		return "tax rate must be between 0 and 1 as a fraction, or 0 and 100 as a percent"
	case "invalid_input":
		return "quantity, price and rate must be finite numbers"
	default:
		return "invalid value"
	}
}
