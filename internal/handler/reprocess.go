package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rinkstats/hockey-stats-service/internal/service"
	"github.com/rinkstats/hockey-stats-service/pkg/response"
)

type ReprocessHandler struct {
	svc service.Reprocessor
}

func NewReprocessHandler(svc service.Reprocessor) *ReprocessHandler {
	return &ReprocessHandler{svc: svc}
}

func (h *ReprocessHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/reprocess")
	{
		g.POST("", h.reprocessAll)
		g.POST("/players/:player_id", h.reprocessPlayer)
		g.POST("/teams/:team_id", h.reprocessTeam)
	}
}

func (h *ReprocessHandler) reprocessPlayer(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("player_id"), 10, 64)
	if err != nil {
		response.WriteError(c, service.NewInvalidInputError([]service.FieldError{{Field: "player_id", Message: "must be a valid integer"}}))
		return
	}
	stats, err := h.svc.ReprocessPlayer(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, stats)
}

func (h *ReprocessHandler) reprocessTeam(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("team_id"), 10, 64)
	if err != nil {
		response.WriteError(c, service.NewInvalidInputError([]service.FieldError{{Field: "team_id", Message: "must be a valid integer"}}))
		return
	}
	run, err := h.svc.ReprocessTeam(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, run)
}

func (h *ReprocessHandler) reprocessAll(c *gin.Context) {
	run, err := h.svc.ReprocessAll(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, run)
}
