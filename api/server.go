package api

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/sentriwatch/sentriwatch/api/controllers"
	"github.com/sentriwatch/sentriwatch/api/middlewares"
	"github.com/sentriwatch/sentriwatch/api/notifyhub"
	"github.com/sentriwatch/sentriwatch/autoscan"
	"github.com/sentriwatch/sentriwatch/mutate"
	"github.com/sentriwatch/sentriwatch/scan"
	"github.com/sentriwatch/sentriwatch/store"
	"github.com/sentriwatch/sentriwatch/tool"
)

// Deps are the sync-core components the API serves.
type Deps struct {
	Inventory   *store.Inventory
	Log         *store.EventLog
	Scan        *scan.Controller
	Scheduler   *autoscan.Scheduler
	Coordinator *mutate.Coordinator
	Hub         *notifyhub.Hub
	BackendHost string

	// DefaultAutoScanInterval seeds auto-scan starts with no explicit interval.
	DefaultAutoScanInterval int
}

// Server is the dashboard-facing HTTP API.
type Server struct {
	port   int
	deps   Deps
	engine *gin.Engine
	server *http.Server
	mu     sync.RWMutex
}

func NewServer(port int, deps Deps) *Server {
	return &Server{port: port, deps: deps}
}

func (s *Server) setupRoutes() *gin.Engine {
	if tool.DefaultLogger.GetLevel() == log.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.Default()
	engine.Use(middlewares.AllowAllCORS())
	engine.Use(gin.Recovery())

	deviceCtrl := controllers.NewDeviceController(s.deps.Inventory, s.deps.Log)
	scanCtrl := controllers.NewScanController(s.deps.Scan)
	mutateCtrl := controllers.NewMutateController(s.deps.Coordinator)
	autoScanCtrl := controllers.NewAutoScanController(s.deps.Scheduler, s.deps.DefaultAutoScanInterval)
	reportCtrl := controllers.NewReportController(s.deps.Inventory)
	statusCtrl := controllers.NewStatusController(s.deps.Inventory, s.deps.Log, s.deps.Scan, s.deps.Scheduler, s.deps.BackendHost)

	v1 := engine.Group("/api/dash/v1", middlewares.OnlyAllowLocal)
	{
		v1.GET("/status", statusCtrl.HandleStatus)
		v1.GET("/devices", deviceCtrl.HandleListDevices)
		v1.GET("/device/:mac", deviceCtrl.HandleGetDevice)
		v1.GET("/logs", deviceCtrl.HandleListLogs)

		v1.POST("/scan", scanCtrl.HandleStartScan)
		v1.POST("/scan/force", scanCtrl.HandleForceScan)
		v1.GET("/scan/status", scanCtrl.HandleScanStatus)

		v1.POST("/device/:mac/block", mutateCtrl.HandleToggleBlock)
		v1.POST("/device/:mac/nickname", mutateCtrl.HandleSetNickname)
		v1.POST("/panic", mutateCtrl.HandlePanicLock)
		v1.POST("/panic/unlock", mutateCtrl.HandlePanicUnlock)

		v1.POST("/auto-scan/start", autoScanCtrl.HandleStart)
		v1.POST("/auto-scan/stop", autoScanCtrl.HandleStop)
		v1.POST("/auto-scan/interval", autoScanCtrl.HandleSetInterval)
		v1.GET("/auto-scan/status", autoScanCtrl.HandleStatus)

		v1.GET("/report", reportCtrl.HandleReportJSON)
		v1.GET("/report.txt", reportCtrl.HandleReportText)
		v1.GET("/report.csv", reportCtrl.HandleReportCSV)
		v1.GET("/report.xlsx", reportCtrl.HandleReportXLSX)

		v1.GET("/create-qr-code", controllers.GenerateQRCode)
		if s.deps.Hub != nil {
			v1.GET("/notify-ws", notifyhub.HandleNotifyWS(s.deps.Hub))
		}
	}

	return engine
}

// Start starts the HTTP server and blocks until it exits.
func (s *Server) Start() error {
	engine := s.setupRoutes()

	s.mu.Lock()
	s.engine = engine
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: engine,
	}
	s.mu.Unlock()

	tool.DefaultLogger.Infof("Starting dashboard API on http://127.0.0.1:%d", s.port)
	return s.server.ListenAndServe()
}
