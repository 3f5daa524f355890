package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yigit/costequity/internal/app/models"
	"github.com/yigit/costequity/internal/app/models/dto"
	"github.com/yigit/costequity/internal/app/services"
	"github.com/yigit/costequity/internal/middleware"
)

// QueryController serves cross-institution aggregates and rankings
type QueryController struct {
	queryService services.QueryService
	metrics      *MetricsController
	summaryTopN  int
}

// NewQueryController creates a new QueryController
func NewQueryController(queryService services.QueryService, metrics *MetricsController, summaryTopN int) *QueryController {
	return &QueryController{
		queryService: queryService,
		metrics:      metrics,
		summaryTopN:  summaryTopN,
	}
}

// AggregateTuition returns grouped tuition statistics
// @Summary Aggregate tuition
// @Tags queries
// @Produce json
// @Param groupBy query string true "region, state or degree_length"
// @Param year query int true "Academic year"
// @Success 200 {object} dto.APIResponse{data=dto.AggregateResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid grouping"
// @Router /aggregates/tuition [get]
func (c *QueryController) AggregateTuition(ctx *gin.Context) {
	groupBy, ok := requiredQuery(ctx, "groupBy")
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

	groups, err := c.queryService.AggregateTuition(ctx.Request.Context(), models.GroupBy(groupBy), year)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.AggregateResponse{GroupBy: groupBy, Year: year, Groups: groups}))
}

// Rankings orders institutions by a metric
// @Summary Rank institutions by metric
// @Tags queries
// @Produce json
// @Param metric query string true "Metric name"
// @Param year query int true "Academic year"
// @Param direction query string false "asc or desc" default(desc)
// @Param limit query int false "Maximum rows; 0 for all"
// @Param bracket query string false "Bracket label"
// @Param field query string false "Demographic field"
// @Param order query string false "Comma-separated bracket order"
// @Success 200 {object} dto.APIResponse{data=dto.RankingResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid metric or direction"
// @Router /rankings [get]
func (c *QueryController) Rankings(ctx *gin.Context) {
	var query dto.RankingQuery
	if !middleware.BindQuery(ctx, &query) {
		return
	}
	year, ok := parseYear(ctx, query.Year)
	if !ok {
		return
	}
	direction := models.Direction(query.Direction)
	if direction == "" {
		direction = models.Descending
	}

	ranked, err := c.queryService.RankByMetric(ctx.Request.Context(), c.metrics.metricFromQuery(ctx, query.Metric), year, direction, query.Limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.RankingResponse{
		Metric:    query.Metric,
		Year:      year,
		Direction: string(direction),
		Items:     ranked,
	}))
}

// Summary returns the dashboard overview for one year
// @Summary Dashboard summary
// @Tags queries
// @Produce json
// @Param year query int true "Academic year"
// @Param topN query int false "Number of top states"
// @Success 200 {object} dto.APIResponse{data=models.Summary}
// @Router /summary [get]
func (c *QueryController) Summary(ctx *gin.Context) {
	rawYear, ok := requiredQuery(ctx, "year")
	if !ok {
		return
	}
	year, ok := parseYear(ctx, rawYear)
	if !ok {
		return
	}
	topN := c.summaryTopN
	if v := ctx.Query("topN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(ctx, "Invalid topN", "topN must be a non-negative integer")
			return
		}
		topN = n
	}

	summary, err := c.queryService.Summary(ctx.Request.Context(), year, topN)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(summary))
}
