package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sentriwatch/sentriwatch/autoscan"
	"github.com/sentriwatch/sentriwatch/tool"
	"github.com/sentriwatch/sentriwatch/types"
)

// AutoScanController exposes the recurring-scan toggle.
type AutoScanController struct {
	scheduler       *autoscan.Scheduler
	defaultInterval int
}

func NewAutoScanController(scheduler *autoscan.Scheduler, defaultInterval int) *AutoScanController {
	return &AutoScanController{scheduler: scheduler, defaultInterval: defaultInterval}
}

// HandleStart enables auto-scan with the given interval in minutes.
// POST /api/dash/v1/auto-scan/start?interval_minutes=5
func (a *AutoScanController) HandleStart(c *gin.Context) {
	interval, ok := a.parseInterval(c, a.defaultInterval)
	if !ok {
		return
	}
	if err := a.scheduler.Start(interval); err != nil {
		respondMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(a.scheduler.Status()))
}

// HandleStop disables auto-scan.
// POST /api/dash/v1/auto-scan/stop
func (a *AutoScanController) HandleStop(c *gin.Context) {
	if err := a.scheduler.Stop(); err != nil {
		respondMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(a.scheduler.Status()))
}

// HandleSetInterval forwards a new interval to the backend.
// POST /api/dash/v1/auto-scan/interval?interval_minutes=10
func (a *AutoScanController) HandleSetInterval(c *gin.Context) {
	interval, ok := a.parseInterval(c, 0)
	if !ok {
		return
	}
	if interval == 0 {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Missing required parameter: interval_minutes"))
		return
	}
	if err := a.scheduler.SetInterval(interval); err != nil {
		respondMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(a.scheduler.Status()))
}

// HandleStatus returns the local mirror of the toggle.
// GET /api/dash/v1/auto-scan/status
func (a *AutoScanController) HandleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(a.scheduler.Status()))
}

func (a *AutoScanController) parseInterval(c *gin.Context, fallback int) (int, bool) {
	raw := c.Query("interval_minutes")
	if raw == "" {
		return fallback, true
	}
	interval, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Invalid interval_minutes: "+raw))
		return 0, false
	}
	if interval < types.AutoScanMinIntervalMinutes || interval > types.AutoScanMaxIntervalMinutes {
		c.JSON(http.StatusBadRequest, tool.FastReturnError(fmt.Sprintf(
			"interval_minutes must be between %d and %d",
			types.AutoScanMinIntervalMinutes, types.AutoScanMaxIntervalMinutes)))
		return 0, false
	}
	return interval, true
}
