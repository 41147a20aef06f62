package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sentriwatch/sentriwatch/autoscan"
	"github.com/sentriwatch/sentriwatch/scan"
	"github.com/sentriwatch/sentriwatch/store"
	"github.com/sentriwatch/sentriwatch/tool"
)

const backendProbeTimeout = 800 * time.Millisecond

// StatusController reports the overall daemon state in one call, including
// an ICMP reachability check of the backend host so the UI can tell "backend
// down" from "backend host gone".
type StatusController struct {
	inventory   *store.Inventory
	log         *store.EventLog
	scanCtl     *scan.Controller
	scheduler   *autoscan.Scheduler
	backendHost string
}

func NewStatusController(inventory *store.Inventory, log *store.EventLog, scanCtl *scan.Controller, scheduler *autoscan.Scheduler, backendHost string) *StatusController {
	return &StatusController{
		inventory:   inventory,
		log:         log,
		scanCtl:     scanCtl,
		scheduler:   scheduler,
		backendHost: backendHost,
	}
}

// HandleStatus returns daemon and backend state for the dashboard header.
// GET /api/dash/v1/status
func (s *StatusController) HandleStatus(c *gin.Context) {
	reachable := false
	if s.backendHost != "" {
		reachable = tool.QuickICMPProbe(s.backendHost, backendProbeTimeout)
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(gin.H{
		"running":          true,
		"deviceCount":      s.inventory.Count(),
		"logCount":         s.log.Count(),
		"scan":             s.scanCtl.Session(),
		"autoScan":         s.scheduler.Status(),
		"backendReachable": reachable,
	}))
}
