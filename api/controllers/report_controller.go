package controllers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sentriwatch/sentriwatch/report"
	"github.com/sentriwatch/sentriwatch/store"
	"github.com/sentriwatch/sentriwatch/tool"
)

// ReportController renders the inventory snapshot as export artifacts.
type ReportController struct {
	inventory *store.Inventory
}

func NewReportController(inventory *store.Inventory) *ReportController {
	return &ReportController{inventory: inventory}
}

func (r *ReportController) build() report.Report {
	return report.Build(r.inventory.Snapshot(), time.Now())
}

// HandleReportJSON returns the structured report for in-dashboard display.
// GET /api/dash/v1/report
func (r *ReportController) HandleReportJSON(c *gin.Context) {
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(r.build()))
}

// HandleReportText returns the pipe-separated text table.
// GET /api/dash/v1/report.txt
func (r *ReportController) HandleReportText(c *gin.Context) {
	var buf bytes.Buffer
	if err := report.RenderText(&buf, r.build()); err != nil {
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Failed to render report: "+err.Error()))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="security-report.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
}

// HandleReportCSV returns the report as CSV.
// GET /api/dash/v1/report.csv
func (r *ReportController) HandleReportCSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := report.RenderCSV(&buf, r.build()); err != nil {
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Failed to render report: "+err.Error()))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="security-report.csv"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// HandleReportXLSX returns the report as an Excel workbook.
// GET /api/dash/v1/report.xlsx
func (r *ReportController) HandleReportXLSX(c *gin.Context) {
	var buf bytes.Buffer
	if err := report.RenderXLSX(&buf, r.build()); err != nil {
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Failed to render report: "+err.Error()))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="security-report.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
