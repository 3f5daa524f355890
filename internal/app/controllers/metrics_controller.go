package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/costequity/internal/app/metrics"
	"github.com/yigit/costequity/internal/app/models"
	"github.com/yigit/costequity/internal/app/models/dto"
	"github.com/yigit/costequity/internal/app/services"
	"github.com/yigit/costequity/internal/middleware"
)

// MetricsController serves per-institution derived metrics
type MetricsController struct {
	engine       *metrics.Engine
	queryService services.QueryService
	bracketOrder []string
}

// NewMetricsController creates a new MetricsController. bracketOrder is the
// default lowest-to-highest income order used when a request omits one.
func NewMetricsController(engine *metrics.Engine, queryService services.QueryService, bracketOrder []string) *MetricsController {
	return &MetricsController{
		engine:       engine,
		queryService: queryService,
		bracketOrder: bracketOrder,
	}
}

// metricFromQuery builds a Metric from the metric, bracket, field and order
// query parameters
func (c *MetricsController) metricFromQuery(ctx *gin.Context, name string) metrics.Metric {
	m := metrics.Metric{
		Name:    name,
		Bracket: ctx.Query("bracket"),
		Field:   ctx.Query("field"),
	}
	if name == metrics.MetricEquityGap {
		m.BracketOrder = c.bracketOrder
		if order := splitList(ctx.Query("order")); len(order) > 0 {
			m.BracketOrder = order
		}
	}
	return m
}

func (c *MetricsController) respond(ctx *gin.Context, id int64, metric string, year int, value float64, err error) {
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.MetricValueResponse{
		InstitutionID: id,
		Metric:        metric,
		Year:          year,
		Bracket:       ctx.Query("bracket"),
		Field:         ctx.Query("field"),
		Value:         value,
	}))
}

// Affordability returns avgNetCost(bracket) / tuition(year)
// @Summary Affordability ratio
// @Tags metrics
// @Produce json
// @Param id path int true "Institution ID"
// @Param year query int true "Academic year"
// @Param bracket query string true "Income bracket label"
// @Success 200 {object} dto.APIResponse{data=dto.MetricValueResponse}
// @Failure 404 {object} dto.ErrorResponse "Institution not found"
// @Failure 422 {object} dto.ErrorResponse "Required data missing"
// @Router /institutions/{id}/metrics/affordability [get]
func (c *MetricsController) Affordability(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	rawYear, ok := requiredQuery(ctx, "year")
	if !ok {
		return
	}
	year, ok := parseYear(ctx, rawYear)
	if !ok {
		return
	}
	bracket, ok := requiredQuery(ctx, "bracket")
	if !ok {
		return
	}

	value, err := c.engine.AffordabilityRatio(ctx.Request.Context(), id, year, bracket)
	c.respond(ctx, id, metrics.MetricAffordabilityRatio, year, value, err)
}

// CostTrend returns the tuition history ascending by year
// @Summary Cost trend
// @Tags metrics
// @Produce json
// @Param id path int true "Institution ID"
// @Success 200 {object} dto.APIResponse{data=dto.SeriesResponse}
// @Failure 404 {object} dto.ErrorResponse "Institution not found"
// @Router /institutions/{id}/metrics/cost-trend [get]
func (c *MetricsController) CostTrend(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	trend, err := c.engine.CostTrend(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	points := []models.SeriesPoint{}
	for year, amount := range trend {
		points = append(points, models.SeriesPoint{Year: year, Value: amount})
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SeriesResponse{
		InstitutionID: id,
		Metric:        metrics.MetricTuition,
		Points:        points,
	}))
}

// EquityGap returns the net cost spread between the highest and lowest present brackets
// @Summary Equity gap
// @Tags metrics
// @Produce json
// @Param id path int true "Institution ID"
// @Param year query int true "Academic year"
// @Param order query string false "Comma-separated bracket order, lowest income first"
// @Success 200 {object} dto.APIResponse{data=dto.MetricValueResponse}
// @Failure 422 {object} dto.ErrorResponse "Fewer than two brackets present"
// @Router /institutions/{id}/metrics/equity-gap [get]
func (c *MetricsController) EquityGap(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	rawYear, ok := requiredQuery(ctx, "year")
	if !ok {
		return
	}
	year, ok := parseYear(ctx, rawYear)
	if !ok {
		return
	}

	m := c.metricFromQuery(ctx, metrics.MetricEquityGap)
	if err := m.Validate(); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	value, err := c.engine.EquityGap(ctx.Request.Context(), id, year, m.BracketOrder)
	c.respond(ctx, id, metrics.MetricEquityGap, year, value, err)
}

// OutcomeToCost returns the latest salary over the most recent tuition
// @Summary Outcome to cost ratio
// @Tags metrics
// @Produce json
// @Param id path int true "Institution ID"
// @Success 200 {object} dto.APIResponse{data=dto.MetricValueResponse}
// @Failure 422 {object} dto.ErrorResponse "Salary or tuition missing"
// @Router /institutions/{id}/metrics/outcome-to-cost [get]
func (c *MetricsController) OutcomeToCost(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	value, err := c.engine.OutcomeToCostRatio(ctx.Request.Context(), id)
	c.respond(ctx, id, metrics.MetricOutcomeToCost, 0, value, err)
}

// DiversityWeighted returns the affordability ratio weighted by a demographic share
// @Summary Diversity-weighted affordability
// @Tags metrics
// @Produce json
// @Param id path int true "Institution ID"
// @Param year query int true "Academic year"
// @Param bracket query string true "Income bracket label"
// @Param field query string true "Demographic field"
// @Success 200 {object} dto.APIResponse{data=dto.MetricValueResponse}
// @Failure 422 {object} dto.ErrorResponse "Required data missing"
// @Router /institutions/{id}/metrics/diversity-weighted [get]
func (c *MetricsController) DiversityWeighted(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	rawYear, ok := requiredQuery(ctx, "year")
	if !ok {
		return
	}
	year, ok := parseYear(ctx, rawYear)
	if !ok {
		return
	}
	bracket, ok := requiredQuery(ctx, "bracket")
	if !ok {
		return
	}
	field, ok := requiredQuery(ctx, "field")
	if !ok {
		return
	}

	value, err := c.engine.DiversityWeightedAffordability(ctx.Request.Context(), id, year, bracket, field)
	c.respond(ctx, id, metrics.MetricDiversityWeightedAffordability, year, value, err)
}

// TuitionChange returns tuition(year) minus the previous recorded year
// @Summary Tuition change
// @Tags metrics
// @Produce json
// @Param id path int true "Institution ID"
// @Param year query int true "Academic year"
// @Success 200 {object} dto.APIResponse{data=dto.MetricValueResponse}
// @Failure 422 {object} dto.ErrorResponse "No earlier tuition"
// @Router /institutions/{id}/metrics/tuition-change [get]
func (c *MetricsController) TuitionChange(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	rawYear, ok := requiredQuery(ctx, "year")
	if !ok {
		return
	}
	year, ok := parseYear(ctx, rawYear)
	if !ok {
		return
	}

	value, err := c.engine.TuitionChange(ctx.Request.Context(), id, year)
	c.respond(ctx, id, metrics.MetricTuitionChange, year, value, err)
}

// Series exports (year, value) points of any metric for visualization
// @Summary Export metric series
// @Tags metrics
// @Produce json
// @Param id path int true "Institution ID"
// @Param metric query string true "Metric name"
// @Param bracket query string false "Bracket label"
// @Param field query string false "Demographic field"
// @Param order query string false "Comma-separated bracket order"
// @Success 200 {object} dto.APIResponse{data=dto.SeriesResponse}
// @Failure 400 {object} dto.ErrorResponse "Unknown metric"
// @Router /institutions/{id}/series [get]
func (c *MetricsController) Series(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	name, ok := requiredQuery(ctx, "metric")
	if !ok {
		return
	}

	seq, err := c.queryService.ExportSeries(ctx.Request.Context(), id, c.metricFromQuery(ctx, name))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	points := []models.SeriesPoint{}
	for year, value := range seq {
		points = append(points, models.SeriesPoint{Year: year, Value: value})
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SeriesResponse{
		InstitutionID: id,
		Metric:        name,
		Points:        points,
	}))
}
