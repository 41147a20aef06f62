package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sentriwatch/sentriwatch/backend"
	"github.com/sentriwatch/sentriwatch/mutate"
	"github.com/sentriwatch/sentriwatch/tool"
)

// MutateController exposes the state-changing operations.
type MutateController struct {
	coordinator *mutate.Coordinator
}

func NewMutateController(coordinator *mutate.Coordinator) *MutateController {
	return &MutateController{coordinator: coordinator}
}

type nicknameRequest struct {
	Nickname string `json:"nickname"`
}

// HandleToggleBlock flips the block state of one device.
// POST /api/dash/v1/device/:mac/block
func (m *MutateController) HandleToggleBlock(c *gin.Context) {
	mac := c.Param("mac")
	blocked, err := m.coordinator.ToggleBlock(c.Request.Context(), mac)
	if err != nil {
		if errors.Is(err, mutate.ErrToggleInFlight) {
			c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(gin.H{
				"applied": false,
				"message": "A block change for this device is already in progress",
			}))
			return
		}
		respondMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(gin.H{
		"applied":   true,
		"mac":       mac,
		"isBlocked": blocked,
	}))
}

// HandleSetNickname assigns a label to one device. The nickname may come as
// a JSON body or a query parameter, and empty clears the label.
// POST /api/dash/v1/device/:mac/nickname
func (m *MutateController) HandleSetNickname(c *gin.Context) {
	mac := c.Param("mac")
	var req nicknameRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, tool.FastReturnError("Invalid request body: "+err.Error()))
			return
		}
	} else {
		req.Nickname = c.Query("nickname")
	}

	if err := m.coordinator.SetNickname(c.Request.Context(), mac, req.Nickname); err != nil {
		respondMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(gin.H{
		"mac":      mac,
		"nickname": req.Nickname,
	}))
}

// HandlePanicLock triggers the global block-everything action.
// POST /api/dash/v1/panic
func (m *MutateController) HandlePanicLock(c *gin.Context) {
	m.respondBulk(c, m.coordinator.PanicLock)
}

// HandlePanicUnlock releases the global block.
// POST /api/dash/v1/panic/unlock
func (m *MutateController) HandlePanicUnlock(c *gin.Context) {
	m.respondBulk(c, m.coordinator.PanicUnlock)
}

func (m *MutateController) respondBulk(c *gin.Context, action func(ctx context.Context) (string, error)) {
	msg, err := action(c.Request.Context())
	if err != nil {
		if errors.Is(err, mutate.ErrBulkInFlight) {
			c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(gin.H{
				"applied": false,
				"message": "A bulk action is already in progress",
			}))
			return
		}
		respondMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(gin.H{
		"applied": true,
		"message": msg,
	}))
}

// respondMutationError maps a backend refusal to 400 with the server's own
// message and anything else (transport fault) to 502.
func respondMutationError(c *gin.Context, err error) {
	var rejected *backend.RejectedError
	if errors.As(err, &rejected) {
		c.JSON(http.StatusBadRequest, tool.FastReturnError(rejected.Message))
		return
	}
	c.JSON(http.StatusBadGateway, tool.FastReturnError("Backend unreachable: "+err.Error()))
}
