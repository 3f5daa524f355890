package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/costequity/internal/app/models/dto"
	"github.com/yigit/costequity/internal/pkg/apperrors"
	"github.com/yigit/costequity/internal/pkg/logger"
)

// HandleAPIError maps an application error to its HTTP status and writes the
// standard error response
func HandleAPIError(c *gin.Context, err error) {
	status, detail := classify(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled API error")
	}
	c.JSON(status, dto.NewErrorResponse(detail))
}

func classify(err error) (int, *dto.ErrorDetail) {
	message := err.Error()
	var custom *apperrors.CustomError
	errors.As(err, &custom)

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, withDetails(dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, message), custom)
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, withDetails(dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, message), custom)
	case errors.Is(err, apperrors.ErrRange):
		return http.StatusBadRequest, withDetails(dto.NewErrorDetail(dto.ErrorCodeOutOfRange, message), custom)
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest, withDetails(dto.NewErrorDetail(dto.ErrorCodeValidationFailed, message), custom)
	case errors.Is(err, apperrors.ErrDataGap):
		return http.StatusUnprocessableEntity, dto.NewErrorDetail(dto.ErrorCodeDataGap, message).
			WithSeverity(dto.ErrorSeverityWarning)
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeForbidden, "Permission denied")
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrInvalidFormat):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")
	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}

func withDetails(detail *dto.ErrorDetail, custom *apperrors.CustomError) *dto.ErrorDetail {
	if custom != nil && len(custom.Details) > 0 {
		return detail.WithDetails(custom.Details)
	}
	return detail
}
