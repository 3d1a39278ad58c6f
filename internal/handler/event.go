package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rinkstats/hockey-stats-service/internal/model"
	"github.com/rinkstats/hockey-stats-service/internal/service"
	"github.com/rinkstats/hockey-stats-service/pkg/response"
)

type EventHandler struct {
	svc service.EventService
}

func NewEventHandler(svc service.EventService) *EventHandler { return &EventHandler{svc: svc} }

func (h *EventHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/games/:game_id/events")
	{
		g.POST("", h.submit)
		g.GET("", h.listByGame)
	}
}

type submitEventRequest struct {
	Type     model.EventType    `json:"type"`
	Period   int                `json:"period"`
	TeamSide model.TeamSide     `json:"team_side"`
	Details  model.EventDetails `json:"details"`
}

// submitEventResponse pairs the persisted event with its recording outcome so
// callers can see partial role failures without a second request.
type submitEventResponse struct {
	Event  model.GameEvent      `json:"event"`
	Result service.RecordResult `json:"result"`
}

func (h *EventHandler) submit(c *gin.Context) {
	gameID, err := strconv.ParseInt(c.Param("game_id"), 10, 64)
	if err != nil {
		response.WriteError(c, service.NewInvalidInputError([]service.FieldError{{Field: "game_id", Message: "must be a valid integer"}}))
		return
	}
	var req submitEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	event := model.GameEvent{
		GameID:   gameID,
		Type:     req.Type,
		Period:   req.Period,
		TeamSide: req.TeamSide,
		Details:  req.Details,
	}
	persisted, result, err := h.svc.SubmitEvent(c.Request.Context(), event)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, submitEventResponse{Event: persisted, Result: result})
}

func (h *EventHandler) listByGame(c *gin.Context) {
	gameID, err := strconv.ParseInt(c.Param("game_id"), 10, 64)
	if err != nil {
		response.WriteError(c, service.NewInvalidInputError([]service.FieldError{{Field: "game_id", Message: "must be a valid integer"}}))
		return
	}
	events, err := h.svc.ListEventsByGame(c.Request.Context(), gameID)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, events)
}
