package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yigit/costequity/internal/app/models/dto"
	"github.com/yigit/costequity/internal/middleware"
	"github.com/yigit/costequity/internal/pkg/validation"
)

func badRequest(ctx *gin.Context, message, details string) {
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, message).WithDetails(details)
	ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
}

// pathID parses the :id parameter; it writes a 400 and returns false on failure
func pathID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(ctx, "Invalid institution ID", "Institution ID must be a positive integer")
		return 0, false
	}
	return id, true
}

// parseYear accepts a year from a path or query value. Non-numeric input is a
// validation error; fractional or out-of-range years are range errors.
func parseYear(ctx *gin.Context, raw string) (int, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		badRequest(ctx, "Invalid year", "Year must be a number")
		return 0, false
	}
	year, err := validation.YearFromFloat(v)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return 0, false
	}
	return year, true
}

// requiredQuery reads a mandatory query parameter
func requiredQuery(ctx *gin.Context, name string) (string, bool) {
	v := strings.TrimSpace(ctx.Query(name))
	if v == "" {
		badRequest(ctx, "Missing query parameter", name+" is required")
		return "", false
	}
	return v, true
}

// splitList parses a comma-separated query value, dropping empty items
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
