package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/costequity/internal/app/models/dto"
	"github.com/yigit/costequity/internal/app/services"
	"github.com/yigit/costequity/internal/middleware"
)

// IngestionController accepts per-institution records from loaders
type IngestionController struct {
	ingestionService services.IngestionService
}

// NewIngestionController creates a new IngestionController
func NewIngestionController(ingestionService services.IngestionService) *IngestionController {
	return &IngestionController{ingestionService: ingestionService}
}

// UpsertTuition sets the tuition of one year
// @Summary Upsert tuition
// @Tags ingestion
// @Accept json
// @Security BearerAuth
// @Param id path int true "Institution ID"
// @Param year path int true "Academic year"
// @Param request body dto.TuitionRequest true "Tuition amount"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse "Invalid amount or year"
// @Failure 404 {object} dto.ErrorResponse "Institution not found"
// @Router /institutions/{id}/tuition/{year} [put]
func (c *IngestionController) UpsertTuition(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	year, ok := parseYear(ctx, ctx.Param("year"))
	if !ok {
		return
	}
	var req dto.TuitionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.ingestionService.UpsertTuition(ctx.Request.Context(), id, year, *req.Amount); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// UpsertDiversity sets the demographic breakdown of one year
// @Summary Upsert diversity record
// @Tags ingestion
// @Accept json
// @Security BearerAuth
// @Param id path int true "Institution ID"
// @Param year path int true "Academic year"
// @Param request body dto.DiversityRequest true "Demographic fields"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse "Invalid demographics"
// @Failure 404 {object} dto.ErrorResponse "Institution not found"
// @Router /institutions/{id}/diversity/{year} [put]
func (c *IngestionController) UpsertDiversity(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	year, ok := parseYear(ctx, ctx.Param("year"))
	if !ok {
		return
	}
	var req dto.DiversityRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	in := services.DiversityInput{Year: year, Fields: req.Demographics, Partitions: req.Partitions}
	if err := c.ingestionService.UpsertDiversity(ctx.Request.Context(), id, in); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// AddSalaryOutcome appends one salary observation
// @Summary Add salary outcome
// @Tags ingestion
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Institution ID"
// @Param request body dto.SalaryRequest true "Median salary"
// @Success 201 {object} dto.APIResponse{data=dto.SalaryCreatedResponse}
// @Failure 404 {object} dto.ErrorResponse "Institution not found"
// @Router /institutions/{id}/salaries [post]
func (c *IngestionController) AddSalaryOutcome(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var req dto.SalaryRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	seq, err := c.ingestionService.AddSalaryOutcome(ctx.Request.Context(), id, *req.MedianSalary)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(dto.SalaryCreatedResponse{InstitutionID: id, Seq: seq}))
}

// UpsertIncomeBracketCost sets the average net cost of one bracket
// @Summary Upsert income bracket cost
// @Tags ingestion
// @Accept json
// @Security BearerAuth
// @Param id path int true "Institution ID"
// @Param bracket path string true "Bracket label"
// @Param request body dto.BracketCostRequest true "Average net cost"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse "Institution not found"
// @Router /institutions/{id}/brackets/{bracket} [put]
func (c *IngestionController) UpsertIncomeBracketCost(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var req dto.BracketCostRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.ingestionService.UpsertIncomeBracketCost(ctx.Request.Context(), id, ctx.Param("bracket"), *req.AvgNetCost); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
