package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pocketjobs/pocketjobs-api/internal/services"
)

// errorMapping gives every domain failure a stable HTTP status and machine
// code so calling UIs can branch on them.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{services.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{services.ErrForbidden, http.StatusForbidden, "forbidden"},
	{services.ErrGuardianConsentRequired, http.StatusForbidden, "guardian_consent_required"},
	{services.ErrJobNotFound, http.StatusNotFound, "job_not_found"},
	{services.ErrApplicationNotFound, http.StatusNotFound, "application_not_found"},
	{services.ErrJobNotAccepting, http.StatusConflict, "job_not_accepting_applications"},
	{services.ErrDuplicateApplication, http.StatusConflict, "duplicate_application"},
	{services.ErrInvalidStatus, http.StatusBadRequest, "invalid_status"},
}

func respondError(c *gin.Context, log *zap.Logger, err error) {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			c.JSON(m.status, gin.H{"error": m.err.Error(), "code": m.code})
			return
		}
	}
	log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "internal error",
		"code":  "persistence_failure",
	})
}
