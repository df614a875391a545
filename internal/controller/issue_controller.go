package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/wrferreira1003/Bug-Finder/internal/dto"
	"github.com/wrferreira1003/Bug-Finder/internal/model"
	"github.com/wrferreira1003/Bug-Finder/internal/service"
)

type IssueController struct {
	issueQueryService service.IssueQueryService
}

func NewIssueController(issueQueryService service.IssueQueryService) *IssueController {
	return &IssueController{
		issueQueryService: issueQueryService,
	}
}

func RegisterIssueRoutes(router *gin.Engine, controller *IssueController) {
	v1 := router.Group("/api/v1/issues")
	{
		v1.GET("", controller.GetIssues)
	}
}

// GetIssues godoc
// @Summary      List filed issues
// @Description  Lists issues the pipeline has published, newest first, optionally filtered by severity and category.
// @Tags         issues
// @Accept       json
// @Produce      json
// @Param        severity  query     string  false  "Filter by severity" Enums(low, medium, high, critical)
// @Param        category  query     string  false  "Filter by bug category (e.g., database, network)"
// @Param        page      query     int     false  "Page number (default: 1)" minimum(1)
// @Param        size      query     int     false  "Issues per page (default: 50, max: 500)" minimum(1) maximum(500)
// @Success      200       {object}  dto.IssueListResponse "Successfully retrieved issues"
// @Failure      500       {object}  model.Response "Internal server error"
// @Router       /api/v1/issues [get]
func (c *IssueController) GetIssues(ctx *gin.Context) {
	page, err := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(ctx.DefaultQuery("size", "50"))
	if err != nil || size <= 0 || size > 500 {
		size = 50
	}

	req := dto.IssueListRequest{
		Severity: ctx.Query("severity"),
		Category: ctx.Query("category"),
		Page:     page,
		Size:     size,
	}

	result, err := c.issueQueryService.SearchIssues(ctx.Request.Context(), req)
	if err != nil {
		log.Error().Err(err).Msg("Error listing issues")
		ctx.JSON(http.StatusInternalServerError, model.NewResponse("Failed to list issues", nil))
		return
	}

	ctx.JSON(http.StatusOK, result)
}
