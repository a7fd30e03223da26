package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "time/tzdata"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/auth"
	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/cache"
	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/config"
	dbpkg "github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/db"
	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/members"
	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/metrics"
	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/schedule"
)

func main() {
	cfgPath := flag.String("config", "", "config file (default ./config/config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal(err)
	}

	// Persisted store (gorm over modernc sqlite, goose migrations)
	gdb, err := dbpkg.Open(cfg.DB.Path)
	if err != nil {
		logger.WithError(err).Fatal("open db")
	}
	defer dbpkg.Close(gdb)

	// Client-local cache with change notifications
	bus := cache.NewBus(logger)
	defer bus.Close()
	blobs, err := cache.OpenSQLite(cfg.Cache.Path, bus)
	if err != nil {
		logger.WithError(err).Fatal("open cache")
	}
	defer blobs.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	engine := schedule.NewEngine(schedule.NewRepository(gdb), blobs, schedule.Config{
		ClubNames: cfg.ClubNames(),
		Location:  loc,
	}, logger, m)
	roster := members.NewService(members.NewRepository(gdb), logger, m)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go logChanges(ctx, bus, logger)

	// HTTP
	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	// Explicit trusted proxies avoid gin's trust-all warning; loopback by default
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.WithError(err).Fatal("trusted proxies")
	}

	protect := auth.Protect(cfg.Auth.TokenHash, logger)
	if protect == nil {
		logger.Warn("auth.token_hash not set, mutating routes are unprotected")
	}
	schedule.RegisterRoutes(r, engine, protect)
	schedule.RegisterChangeStream(r, bus)
	members.RegisterRoutes(r, roster, protect)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	if cfg.Pprof {
		pprof.Register(r)
	}
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	srv := &http.Server{Addr: cfg.Addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	logger.WithFields(logrus.Fields{"addr": cfg.Addr, "db": cfg.DB.Path, "cache": cfg.Cache.Path}).Info("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Fatal("serve")
	}
}

func logChanges(ctx context.Context, bus *cache.Bus, logger *logrus.Logger) {
	changes, err := bus.Subscribe(ctx)
	if err != nil {
		logger.WithError(err).Warn("cache change subscription failed")
		return
	}
	for ch := range changes {
		logger.WithField("key", ch.Key).Debug("cache changed")
	}
}
