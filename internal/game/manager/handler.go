package manager

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"PixelJack/internal/game/engine"
	"PixelJack/internal/gamestore"
	"PixelJack/internal/session"
)

type Handler struct {
	mgr *GameManager
}

func NewHandler(mgr *GameManager) *Handler {
	return &Handler{mgr: mgr}
}

type CreateGameRequest struct {
	Host   string `json:"host" binding:"required"`
	Friend string `json:"friend"`
}

type ActionRequest struct {
	Role   string `json:"role" binding:"required,oneof=host guest"`
	Player string `json:"player"` // 可省，省了就按座位名
	Action string `json:"action" binding:"required"`
	Amount int    `json:"amount"`
}

// POST /games  body: {host, friend}
func (h *Handler) CreateGame(c *gin.Context) {
	var req CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := h.mgr.CreateGame(c.Request.Context(), req.Host, req.Friend)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// GET /games/:id
func (h *Handler) GetGame(c *gin.Context) {
	rec, err := h.mgr.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// POST /games/:id/action  body: {role, action, amount}
func (h *Handler) Action(c *gin.Context) {
	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess := session.Context{GameID: c.Param("id"), Role: session.Role(req.Role), PlayerName: req.Player}
	rec, err := h.mgr.HandleAction(c.Request.Context(), sess, req.Action, req.Amount)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, gamestore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, gamestore.ErrExists):
		return http.StatusConflict
	case errors.Is(err, gamestore.ErrConflict):
		// 重试次数用尽还在打架
		return http.StatusConflict
	case errors.Is(err, engine.ErrUnimplemented):
		return http.StatusNotImplemented
	case errors.Is(err, engine.ErrInvalidAction),
		errors.Is(err, engine.ErrInsufficientFunds),
		errors.Is(err, engine.ErrDuplicateBet),
		errors.Is(err, engine.ErrEmptyDeck):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
