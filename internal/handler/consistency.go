package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rinkstats/hockey-stats-service/internal/service"
	"github.com/rinkstats/hockey-stats-service/pkg/response"
)

type ConsistencyHandler struct {
	svc service.ConsistencyReporter
}

func NewConsistencyHandler(svc service.ConsistencyReporter) *ConsistencyHandler {
	return &ConsistencyHandler{svc: svc}
}

func (h *ConsistencyHandler) Register(r *gin.RouterGroup) {
	r.GET("/consistency", h.report)
}

// report compares event counts against derived stat counts. Scope defaults to
// global; player and team scopes require an id.
func (h *ConsistencyHandler) report(c *gin.Context) {
	scope := service.ConsistencyScope{Kind: c.DefaultQuery("scope", "global")}
	if idStr := c.Query("id"); idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			response.WriteError(c, service.NewInvalidInputError([]service.FieldError{{Field: "id", Message: "must be a valid integer"}}))
			return
		}
		scope.ID = id
	}
	report, err := h.svc.Report(c.Request.Context(), scope)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, report)
}
