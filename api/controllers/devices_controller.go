package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sentriwatch/sentriwatch/store"
	"github.com/sentriwatch/sentriwatch/tool"
)

// DeviceController serves the two store snapshots to the dashboard.
type DeviceController struct {
	inventory *store.Inventory
	log       *store.EventLog
}

func NewDeviceController(inventory *store.Inventory, log *store.EventLog) *DeviceController {
	return &DeviceController{inventory: inventory, log: log}
}

// HandleListDevices returns the current inventory snapshot.
// GET /api/dash/v1/devices
func (ctl *DeviceController) HandleListDevices(c *gin.Context) {
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(ctl.inventory.Snapshot()))
}

// HandleGetDevice returns a single device by MAC.
// GET /api/dash/v1/device/:mac
func (ctl *DeviceController) HandleGetDevice(c *gin.Context) {
	mac := c.Param("mac")
	device, ok := ctl.inventory.Get(mac)
	if !ok {
		c.JSON(http.StatusNotFound, tool.FastReturnError("Device not found: "+mac))
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(device))
}

// HandleListLogs returns the current audit log snapshot.
// GET /api/dash/v1/logs
func (ctl *DeviceController) HandleListLogs(c *gin.Context) {
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(ctl.log.Snapshot()))
}
