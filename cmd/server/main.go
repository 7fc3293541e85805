package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/sshcollectorpro/configparser/api/router"
	"github.com/sshcollectorpro/configparser/internal/config"
	"github.com/sshcollectorpro/configparser/internal/database"
	"github.com/sshcollectorpro/configparser/internal/service"
	"github.com/sshcollectorpro/configparser/pkg/logger"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "YAML config path")
	flag.Parse()

	// 配置文件不存在时仅使用默认值与环境变量，且不监听
	path := *configPath
	if _, err := os.Stat(path); err != nil {
		path = ""
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.LoggerConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	logger.WithField("version", "1.0.0").Info("Starting Config Parser Server")

	if cfg.Database.SQLite.Enabled {
		if err := database.InitSQLite(cfg.Database.SQLite); err != nil {
			logger.WithField("error", err).Fatal("Failed to initialize database")
		}
		defer database.Close()
	}

	parseService := service.NewParseService(cfg)
	r := router.SetupRouter(parseService)

	server := &http.Server{
		Addr:           cfg.GetServerAddr(),
		Handler:        r,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.WithFields(logrus.Fields{"addr": server.Addr, "mode": cfg.Server.Mode}).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	if path != "" {
		g.Go(func() error {
			return watchConfig(gctx, path, parseService)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Server shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.WithField("error", err).Error("Server forced to shutdown")
			return err
		}
		logger.Info("Server shutdown complete")
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.WithField("error", err).Error("Server exited with error")
		os.Exit(1)
	}
}

// watchConfig 监听配置文件并热更新；监听失败只记录预警，不影响服务
func watchConfig(ctx context.Context, path string, svc *service.ParseService) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.WithField("error", err).Warn("Config watch init failed")
		return nil
	}
	defer watcher.Close()
	if err := watcher.Add(path); err != nil {
		logger.WithField("error", err).Warn("Config watch add failed")
		return nil
	}

	var debounce *time.Timer
	debounceInterval := 300 * time.Millisecond
	trigger := func() {
		newCfg, err := config.Load(path)
		if err != nil {
			logger.WithField("error", err).Warn("Config reload failed")
			return
		}
		// 监听地址与数据库不随热更新变化
		cur := svc.Config()
		newCfg.Server.Host = cur.Server.Host
		newCfg.Server.Port = cur.Server.Port
		newCfg.Database = cur.Database
		if err := logger.Init(newCfg.LoggerConfig()); err != nil {
			logger.WithField("error", err).Warn("Logger reconfigure failed")
		}
		svc.Reload(newCfg)
		logger.Info("Config reloaded")
	}

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(debounceInterval, trigger)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.WithField("error", err).Warn("Config watch error")
		}
	}
}
