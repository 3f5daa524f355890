package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/costequity/internal/app/models/dto"
	"github.com/yigit/costequity/internal/app/services"
	"github.com/yigit/costequity/internal/middleware"
	"github.com/yigit/costequity/internal/pkg/helpers"
)

// InstitutionController handles institution CRUD
type InstitutionController struct {
	ingestionService services.IngestionService
	queryService     services.QueryService
}

// NewInstitutionController creates a new InstitutionController
func NewInstitutionController(ingestionService services.IngestionService, queryService services.QueryService) *InstitutionController {
	return &InstitutionController{
		ingestionService: ingestionService,
		queryService:     queryService,
	}
}

// CreateInstitution handles institution creation
// @Summary Create a new institution
// @Tags institutions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.InstitutionRequest true "Institution information"
// @Success 201 {object} dto.APIResponse{data=dto.CreatedResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "Institution already exists"
// @Router /institutions [post]
func (c *InstitutionController) CreateInstitution(ctx *gin.Context) {
	var req dto.InstitutionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	id, err := c.ingestionService.CreateInstitution(ctx.Request.Context(), req.ToInput())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(dto.CreatedResponse{ID: id}))
}

// GetInstitution retrieves an institution by ID
// @Summary Get institution by ID
// @Tags institutions
// @Produce json
// @Param id path int true "Institution ID"
// @Success 200 {object} dto.APIResponse{data=models.Institution}
// @Failure 404 {object} dto.ErrorResponse "Institution not found"
// @Router /institutions/{id} [get]
func (c *InstitutionController) GetInstitution(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	inst, err := c.queryService.GetInstitution(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(inst))
}

// ListInstitutions lists institutions with optional filters
// @Summary List institutions
// @Tags institutions
// @Produce json
// @Param state query string false "Filter by state"
// @Param region query string false "Filter by region"
// @Param degreeLength query int false "Filter by degree length"
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /institutions [get]
func (c *InstitutionController) ListInstitutions(ctx *gin.Context) {
	var query dto.InstitutionListQuery
	if !middleware.BindQuery(ctx, &query) {
		return
	}

	institutions, err := c.queryService.ListInstitutions(ctx.Request.Context(), query.ToFilter())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)
	start, end := helpers.CalculateSliceIndices(page, size, len(institutions))
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.PaginatedResponse{
		Items:      institutions[start:end],
		Pagination: helpers.NewPaginationInfo(int64(len(institutions)), page, size),
	}))
}

// UpdateInstitution replaces the attributes of an institution
// @Summary Update institution
// @Tags institutions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Institution ID"
// @Param request body dto.InstitutionRequest true "Institution information"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse "Institution not found"
// @Failure 409 {object} dto.ErrorResponse "Institution already exists"
// @Router /institutions/{id} [put]
func (c *InstitutionController) UpdateInstitution(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var req dto.InstitutionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.ingestionService.UpdateInstitution(ctx.Request.Context(), id, req.ToInput()); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// DeleteInstitution deletes an institution and all its records
// @Summary Delete institution
// @Tags institutions
// @Security BearerAuth
// @Param id path int true "Institution ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse "Institution not found"
// @Router /institutions/{id} [delete]
func (c *InstitutionController) DeleteInstitution(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	if err := c.ingestionService.DeleteInstitution(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
