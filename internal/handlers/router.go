package handlers

import (
	"github.com/gin-gonic/gin"
)

// Register wires the API routes onto the group.
func Register(api *gin.RouterGroup, jobs *JobHandler, apps *ApplicationHandler) {
	api.GET("/health", HealthCheck)

	api.GET("/jobs", jobs.List)
	api.POST("/jobs", RequireUser(), jobs.Create)
	api.GET("/jobs/mine", RequireUser(), jobs.Mine)
	api.GET("/jobs/:id/applications", RequireUser(), jobs.Applicants)
	api.POST("/jobs/:id/apply", RequireUser(), apps.Apply)

	api.POST("/applications/:id/withdraw", RequireUser(), apps.Withdraw)
	api.POST("/applications/:id/accept", RequireUser(), apps.Accept)
	api.POST("/applications/:id/reject", RequireUser(), apps.Reject)
}
