package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rinkstats/hockey-stats-service/internal/repository"
	"github.com/rinkstats/hockey-stats-service/internal/service"
	"github.com/rinkstats/hockey-stats-service/pkg/response"
)

type GameHandler struct {
	svc service.GameService
}

func NewGameHandler(svc service.GameService) *GameHandler { return &GameHandler{svc: svc} }

func (h *GameHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/games")
	{
		g.POST("", h.create)
		g.GET("/:game_id", h.getByID)
		g.GET("", h.list)
	}
}

type createGameRequest struct {
	Date       time.Time `json:"date"`
	HomeTeamID int64     `json:"home_team_id"`
	AwayTeamID int64     `json:"away_team_id"`
	Status     string    `json:"status"`
}

func (h *GameHandler) create(c *gin.Context) {
	var req createGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	game, err := h.svc.CreateGame(c.Request.Context(), req.Date, req.HomeTeamID, req.AwayTeamID, req.Status)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, game)
}

func (h *GameHandler) getByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("game_id"), 10, 64)
	if err != nil {
		response.WriteError(c, service.NewInvalidInputError([]service.FieldError{{Field: "game_id", Message: "must be a valid integer"}}))
		return
	}
	game, err := h.svc.GetGame(c.Request.Context(), id)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, game)
}

func (h *GameHandler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	page := repository.Page{Limit: limit, Offset: offset}
	res, err := h.svc.ListGames(c.Request.Context(), page)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}
