package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rinkstats/hockey-stats-service/internal/repository"
	"github.com/rinkstats/hockey-stats-service/internal/service"
	"github.com/rinkstats/hockey-stats-service/pkg/response"
)

type PlayerHandler struct {
	svc service.PlayerService
}

func NewPlayerHandler(svc service.PlayerService) *PlayerHandler { return &PlayerHandler{svc: svc} }

func (h *PlayerHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/players")
	{
		g.POST("", h.create)
		g.GET("/:player_id", h.getByID)
		g.GET("/:player_id/stats", h.getAggregates)
	}
	// Nested listing: /api/v1/teams/:team_id/players
	r.Group("/teams").GET("/:team_id/players", h.listByTeam)
}

type createPlayerRequest struct {
	TeamID    int64  `json:"team_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Position  string `json:"position"`
}

func (h *PlayerHandler) create(c *gin.Context) {
	var req createPlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	player, err := h.svc.CreatePlayer(c.Request.Context(), req.TeamID, req.FirstName, req.LastName, req.Position)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, player)
}

func (h *PlayerHandler) getByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("player_id"), 10, 64)
	if err != nil {
		response.WriteError(c, service.NewInvalidInputError([]service.FieldError{{Field: "player_id", Message: "must be a valid integer"}}))
		return
	}
	player, err := h.svc.GetPlayer(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, player)
}

func (h *PlayerHandler) listByTeam(c *gin.Context) {
	teamID, err := strconv.ParseInt(strings.TrimSpace(c.Param("team_id")), 10, 64)
	if err != nil {
		response.WriteError(c, service.NewInvalidInputError([]service.FieldError{{Field: "team_id", Message: "must be a valid integer"}}))
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	page := repository.Page{Limit: limit, Offset: offset}
	res, err := h.svc.ListPlayersByTeam(c.Request.Context(), teamID, page)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

// getAggregates returns a player's aggregated statistics. An empty list means
// the player exists but has no stats yet.
func (h *PlayerHandler) getAggregates(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("player_id"), 10, 64)
	if err != nil {
		response.WriteError(c, service.NewInvalidInputError([]service.FieldError{{Field: "player_id", Message: "must be a valid integer"}}))
		return
	}
	stats, err := h.svc.PlayerAggregates(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, stats)
}
