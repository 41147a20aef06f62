package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sentriwatch/sentriwatch/scan"
	"github.com/sentriwatch/sentriwatch/tool"
)

// ScanController exposes the manual scan lifecycle.
type ScanController struct {
	ctl *scan.Controller
}

func NewScanController(ctl *scan.Controller) *ScanController {
	return &ScanController{ctl: ctl}
}

// HandleStartScan begins a scan session. A start while one is active is not
// an error, the response just says so.
// POST /api/dash/v1/scan
func (s *ScanController) HandleStartScan(c *gin.Context) {
	s.respondStart(c, s.ctl.Start())
}

// HandleForceScan begins a session that clears the backend device cache
// first and rescans everything.
// POST /api/dash/v1/scan/force
func (s *ScanController) HandleForceScan(c *gin.Context) {
	s.respondStart(c, s.ctl.ForceStart())
}

func (s *ScanController) respondStart(c *gin.Context, started bool) {
	if !started {
		c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(gin.H{
			"started": false,
			"message": "Scan already in progress",
			"session": s.ctl.Session(),
		}))
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(gin.H{
		"started": true,
		"session": s.ctl.Session(),
	}))
}

// HandleScanStatus reports the current session and the outcome of the last
// finished one, so the UI can tell a timed-out scan from a clean finish.
// GET /api/dash/v1/scan/status
func (s *ScanController) HandleScanStatus(c *gin.Context) {
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(gin.H{
		"session":     s.ctl.Session(),
		"lastOutcome": s.ctl.LastOutcome().String(),
	}))
}
