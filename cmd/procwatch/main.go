package main

import (
	"context"
	"flag"
	"fmt"
	htmltmpl "html/template"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"procwatch/internal/config"
	"procwatch/internal/handlers"
	"procwatch/internal/middleware"
	"procwatch/internal/presenter"
	"procwatch/internal/sampler"
	"procwatch/internal/utils"
	"procwatch/internal/version"
	ui "procwatch/web"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	configPath := flag.String("config", "procwatch.json", "path to the JSON config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "procwatch: %v\n", err)
		os.Exit(1)
	}

	log := utils.NewLogger(cfg.LogFile)
	defer log.Close()
	log.Writef("procwatch %s starting on port %d (refresh %.1fs, page size %d, window %d)",
		version.String(), cfg.Port, cfg.RefreshIntervalSeconds, cfg.PageSize, cfg.WindowCapacity)

	hub := middleware.NewHub(log)
	go hub.Run()

	smp := sampler.New()
	sink := handlers.NewFrameSink(hub)
	pres := presenter.New(smp, presenter.Sinks{
		Table:   sink,
		Charts:  sink,
		Summary: sink,
		Detail:  sink,
		Notices: sink,
	}, presenter.Options{
		Interval:       cfg.RefreshInterval(),
		PageSize:       cfg.PageSize,
		WindowCapacity: cfg.WindowCapacity,
	}, log)
	pres.Start()

	monitorHandlers := handlers.NewMonitorHandlers(pres, handlers.PageSettings{
		Theme:                  cfg.Theme,
		RefreshIntervalSeconds: cfg.RefreshIntervalSeconds,
		PageSize:               cfg.PageSize,
	}, log)

	limiter := middleware.NewRateLimiter(rate.Every(time.Minute/600), 30)
	router := setupRouter(monitorHandlers, hub, limiter, log, cfg.VerboseHTTP)

	srv := &http.Server{
		Addr:           ":" + strconv.Itoa(cfg.Port),
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   0, // the websocket endpoint holds its connection open
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Writef("serving dashboard on http://localhost:%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Writef("server failed: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Write("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Writef("server shutdown: %v", err)
	}
	pres.Stop()
	limiter.Stop()
	hub.Close()
	log.Write("procwatch exited")
}

func setupRouter(mh *handlers.MonitorHandlers, hub *middleware.Hub, limiter *middleware.RateLimiter, log *utils.Logger, verboseHTTP bool) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log, verboseHTTP))
	r.Use(middleware.SecurityHeaders())
	r.Use(limiter.Middleware())

	tmpl, err := htmltmpl.ParseFS(ui.Assets, "templates/*.html")
	if err != nil {
		log.Writef("FATAL: parse templates: %v", err)
		os.Exit(1)
	}
	r.SetHTMLTemplate(tmpl)

	staticFS, err := fs.Sub(ui.Assets, "static")
	if err != nil {
		log.Writef("FATAL: embedded static directory missing: %v", err)
		os.Exit(1)
	}
	r.StaticFS("/static", http.FS(staticFS))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version": version.Version,
			"commit":  version.Commit,
			"date":    version.Date,
			"display": version.String(),
		})
	})

	r.GET("/", mh.DashboardGET)

	api := r.Group("/api")
	{
		api.GET("/processes", mh.ProcessesGET)
		api.POST("/processes/:pid/terminate", mh.TerminatePOST)
		api.POST("/search", mh.SearchPOST)
		api.POST("/page/next", mh.PageNextPOST)
		api.POST("/page/prev", mh.PagePrevPOST)
		api.POST("/select", mh.SelectPOST)
		api.POST("/deselect", mh.DeselectPOST)
		api.GET("/selection", mh.SelectionGET)
		api.GET("/system", mh.SystemGET)
		api.GET("/series", mh.SeriesGET)
		api.POST("/refresh", mh.RefreshPOST)
	}

	r.GET("/ws", hub.Handler())

	return r
}
