package controller

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/wrferreira1003/Bug-Finder/internal/dto"
	"github.com/wrferreira1003/Bug-Finder/internal/model"
	"github.com/wrferreira1003/Bug-Finder/internal/service"
	"github.com/wrferreira1003/Bug-Finder/internal/util"
)

type StatusController struct {
	pipeline           service.PipelineService
	metricQueryService service.MetricQueryService
}

func NewStatusController(pipeline service.PipelineService, metricQueryService service.MetricQueryService) *StatusController {
	return &StatusController{
		pipeline:           pipeline,
		metricQueryService: metricQueryService,
	}
}

func RegisterStatusRoutes(router *gin.Engine, controller *StatusController) {
	v1 := router.Group("/api/v1")
	{
		v1.GET("/status", controller.GetStatus)
		v1.GET("/metrics/summary", controller.GetMetricSummary)
	}
}

// GetStatus godoc
// @Summary      Pipeline status
// @Description  Returns uptime and the in-process pipeline counters.
// @Tags         status
// @Produce      json
// @Success      200  {object}  dto.StatusResponse
// @Router       /api/v1/status [get]
func (c *StatusController) GetStatus(ctx *gin.Context) {
	resp := dto.StatusResponse{
		Status: "ok",
		Uptime: time.Since(c.pipeline.StartedAt()).Round(time.Second).String(),
		Stats:  c.pipeline.Stats(),
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetMetricSummary godoc
// @Summary      Pipeline metric summary
// @Description  Counts pipeline metric events in a time range, optionally filtered by services.
// @Tags         status
// @Produce      json
// @Param        startTime  query     string  true   "Start time in ISO 8601 format or epoch milliseconds"
// @Param        endTime    query     string  true   "End time in ISO 8601 format or epoch milliseconds"
// @Param        services   query     string  false  "Comma-separated list of service IDs"
// @Success      200        {object}  dto.MetricSummaryResponse
// @Failure      400        {object}  model.Response "Invalid query parameters"
// @Failure      500        {object}  model.Response "Internal server error"
// @Router       /api/v1/metrics/summary [get]
func (c *StatusController) GetMetricSummary(ctx *gin.Context) {
	startTime, errStart := util.ParseTimeFlexible(ctx.Query("startTime"))
	endTime, errEnd := util.ParseTimeFlexible(ctx.Query("endTime"))
	if errStart != nil || errEnd != nil {
		ctx.JSON(http.StatusBadRequest, model.NewResponse("Invalid startTime or endTime format. Use ISO 8601 or epoch milliseconds.", nil))
		return
	}

	var services []string
	if servicesStr := ctx.Query("services"); servicesStr != "" {
		services = strings.Split(servicesStr, ",")
		for i := range services {
			services[i] = strings.TrimSpace(services[i])
		}
	}

	req := dto.MetricSummaryRequest{
		StartTime: startTime,
		EndTime:   endTime,
		Services:  services,
	}

	result, err := c.metricQueryService.GetSummary(ctx.Request.Context(), req)
	if err != nil {
		log.Error().Err(err).Msg("Error getting metric summary")
		ctx.JSON(http.StatusInternalServerError, model.NewResponse("Failed to get metric summary", nil))
		return
	}

	ctx.JSON(http.StatusOK, result)
}
