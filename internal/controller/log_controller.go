package controller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/wrferreira1003/Bug-Finder/internal/dto"
	"github.com/wrferreira1003/Bug-Finder/internal/model"
	"github.com/wrferreira1003/Bug-Finder/internal/service"
	"github.com/wrferreira1003/Bug-Finder/internal/util"
)

type LogController struct {
	pipeline        service.PipelineService
	logQueryService service.LogQueryService
}

func NewLogController(pipeline service.PipelineService, logQueryService service.LogQueryService) *LogController {
	return &LogController{
		pipeline:        pipeline,
		logQueryService: logQueryService,
	}
}

func RegisterLogRoutes(router *gin.Engine, controller *LogController) {
	v1 := router.Group("/api/v1/logs")
	{
		v1.POST("", controller.SubmitLog)
		v1.POST("/analyze", controller.AnalyzeLog)
		v1.GET("", controller.GetLogs)
	}
}

// SubmitLog godoc
// @Summary      Submit a raw log for processing
// @Description  Runs the full pipeline on the submitted log content: classification, duplicate detection, drafting, review and (when warranted) issue publication with notification.
// @Tags         logs
// @Accept       json
// @Produce      json
// @Param        request  body      dto.LogSubmitRequest  true  "Raw log content, plain text or JSON-encoded"
// @Success      200      {object}  model.ProcessResult "Pipeline run result"
// @Failure      400      {object}  model.Response "Invalid request body"
// @Router       /api/v1/logs [post]
func (c *LogController) SubmitLog(ctx *gin.Context) {
	var req dto.LogSubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, model.NewResponse("Invalid request body: content is required", nil))
		return
	}

	result := c.pipeline.ProcessContent(ctx.Request.Context(), req.Content, req.Source)
	ctx.JSON(http.StatusOK, result)
}

// AnalyzeLog godoc
// @Summary      Analyze a raw log without side effects
// @Description  Classifies the submitted log and checks for duplicates, returning what a real run would have done. Nothing is published or persisted.
// @Tags         logs
// @Accept       json
// @Produce      json
// @Param        request  body      dto.LogSubmitRequest  true  "Raw log content, plain text or JSON-encoded"
// @Success      200      {object}  model.ProcessResult "Dry-run analysis result"
// @Failure      400      {object}  model.Response "Invalid or unparseable log content"
// @Router       /api/v1/logs/analyze [post]
func (c *LogController) AnalyzeLog(ctx *gin.Context) {
	var req dto.LogSubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, model.NewResponse("Invalid request body: content is required", nil))
		return
	}

	result, err := c.pipeline.AnalyzeContent(ctx.Request.Context(), req.Content, req.Source)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, model.NewResponse("Could not parse log content: "+err.Error(), nil))
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetLogs godoc
// @Summary      Search and filter archived logs
// @Description  Retrieves processed logs based on time range, search query, levels, and services. Supports pagination and sorting.
// @Tags         logs
// @Accept       json
// @Produce      json
// @Param        startTime  query     string  true   "Start time in ISO 8601 format or epoch milliseconds"
// @Param        endTime    query     string  true   "End time in ISO 8601 format or epoch milliseconds"
// @Param        query      query     string  false  "Free text search query"
// @Param        levels     query     string  false  "Comma-separated list of log levels (e.g., ERROR,CRITICAL)"
// @Param        services   query     string  false  "Comma-separated list of service IDs"
// @Param        sortBy     query     string  false  "Field to sort by (default: @timestamp)" Enums(@timestamp, level, component, service)
// @Param        sortOrder  query     string  false  "Sort order (asc or desc, default: desc)" Enums(asc, desc)
// @Param        page       query     int     false  "Page number (default: 1)" minimum(1)
// @Param        size       query     int     false  "Number of logs per page (default: 50, max: 1000)" minimum(1) maximum(1000)
// @Success      200        {object}  dto.LogSearchResponse "Successfully retrieved logs"
// @Failure      400        {object}  model.Response "Invalid query parameters"
// @Failure      500        {object}  model.Response "Internal server error"
// @Router       /api/v1/logs [get]
func (c *LogController) GetLogs(ctx *gin.Context) {
	startTimeStr := ctx.Query("startTime")
	endTimeStr := ctx.Query("endTime")
	query := ctx.Query("query")
	levelsStr := ctx.Query("levels")
	servicesStr := ctx.Query("services")
	sortBy := ctx.DefaultQuery("sortBy", "@timestamp")
	sortOrder := ctx.DefaultQuery("sortOrder", "desc")
	pageStr := ctx.DefaultQuery("page", "1")
	sizeStr := ctx.DefaultQuery("size", "50")

	startTime, errStart := util.ParseTimeFlexible(startTimeStr)
	endTime, errEnd := util.ParseTimeFlexible(endTimeStr)
	if errStart != nil || errEnd != nil {
		ctx.JSON(http.StatusBadRequest, model.NewResponse("Invalid startTime or endTime format. Use ISO 8601 or epoch milliseconds.", nil))
		return
	}

	var levels []string
	if levelsStr != "" {
		levels = strings.Split(levelsStr, ",")
		for i := range levels {
			levels[i] = strings.TrimSpace(levels[i])
		}
	}
	var services []string
	if servicesStr != "" {
		services = strings.Split(servicesStr, ",")
		for i := range services {
			services[i] = strings.TrimSpace(services[i])
		}
	}
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil || size <= 0 || size > 1000 {
		size = 50
	}

	searchReq := dto.LogSearchRequest{
		StartTime: startTime,
		EndTime:   endTime,
		Query:     query,
		Levels:    levels,
		Services:  services,
		SortBy:    sortBy,
		SortOrder: sortOrder,
		Page:      page,
		Size:      size,
	}

	result, err := c.logQueryService.SearchLogs(ctx.Request.Context(), searchReq)
	if err != nil {
		log.Error().Err(err).Msg("Error searching logs")
		ctx.JSON(http.StatusInternalServerError, model.NewResponse("Failed to search logs", nil))
		return
	}

	ctx.JSON(http.StatusOK, result)
}
