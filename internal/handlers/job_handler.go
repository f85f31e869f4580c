package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pocketjobs/pocketjobs-api/internal/dtos"
	"github.com/pocketjobs/pocketjobs-api/internal/services"
)

type JobHandler struct {
	Jobs *services.JobService
	Log  *zap.Logger
}

func NewJobHandler(jobs *services.JobService, log *zap.Logger) *JobHandler {
	return &JobHandler{Jobs: jobs, Log: log}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// List is GET /jobs: load visible postings, then filter and sort them with
// the listing engine. Query params: sort, categories (comma separated),
// max_distance_km, market_id.
func (h *JobHandler) List(c *gin.Context) {
	var marketID *string
	if m := c.Query("market_id"); m != "" {
		marketID = &m
	}

	items, err := h.Jobs.Browse(c.Request.Context(), marketID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	filters := services.Filters{}
	if cats := c.Query("categories"); cats != "" {
		for _, cat := range strings.Split(cats, ",") {
			if cat = strings.TrimSpace(cat); cat != "" {
				filters.Categories = append(filters.Categories, cat)
			}
		}
	}
	if raw := c.Query("max_distance_km"); raw != "" {
		max, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid max_distance_km", "code": "bad_request"})
			return
		}
		filters.MaxDistanceKm = &max
	}

	mode := services.SortMode(c.DefaultQuery("sort", string(services.SortNewest)))
	switch mode {
	case services.SortDistance, services.SortNewest, services.SortWageDesc:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sort mode", "code": "bad_request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"jobs": services.DeriveVisibleJobs(items, filters, mode),
	})
}

// Create is POST /jobs.
func (h *JobHandler) Create(c *gin.Context) {
	var req dtos.JobCreationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON: " + err.Error(), "code": "bad_request"})
		return
	}

	job, err := h.Jobs.Create(c.Request.Context(), caller(c), services.NewJobParams{
		Title:               req.Title,
		Description:         req.Description,
		Category:            req.Category,
		WageHourly:          req.WageHourly,
		MarketID:            req.MarketID,
		PublicLocationLabel: req.PublicLocationLabel,
		Publish:             req.Publish,
	})
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

// Mine is GET /jobs/mine.
func (h *JobHandler) Mine(c *gin.Context) {
	jobs, err := h.Jobs.Mine(c.Request.Context(), caller(c).ID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// Applicants is GET /jobs/:id/applications.
func (h *JobHandler) Applicants(c *gin.Context) {
	apps, err := h.Jobs.Applicants(c.Request.Context(), caller(c).ID, c.Param("id"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": apps})
}
