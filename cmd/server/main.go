// Vårdschema 医疗排班服务
// 主程序入口

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vardschema/vardschema/internal/config"
	"github.com/vardschema/vardschema/internal/database"
	"github.com/vardschema/vardschema/internal/handler"
	"github.com/vardschema/vardschema/internal/metrics"
	"github.com/vardschema/vardschema/internal/middleware"
	"github.com/vardschema/vardschema/pkg/logger"
	"github.com/vardschema/vardschema/pkg/optimizer"
	"github.com/vardschema/vardschema/pkg/scheduler/assign"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: "console",
	})

	logger.Info().
		Str("version", Version).
		Str("build", BuildTime).
		Str("commit", GitCommit).
		Str("env", cfg.App.Env).
		Msg("vårdschema 排班服务启动中")

	// 数据库可选：未启用时服务以无持久化模式运行
	var db *database.DB
	if cfg.Database.Enabled {
		db, err = database.New(&cfg.Database)
		if err != nil {
			logger.Fatal().Err(err).Msg("数据库连接失败")
		}
		defer db.Close()
	} else {
		logger.Info().Msg("数据库未启用，以无持久化模式运行")
	}

	// 排班流水线配置
	schedCfg := assign.DefaultConfig()
	schedCfg.MinStaff = cfg.Scheduler.MinStaff()
	schedCfg.MaxConsecutiveDays = cfg.Scheduler.MaxConsecutiveDays
	schedCfg.MinRestHours = cfg.Scheduler.MinRestHours
	schedCfg.OverstaffCap = cfg.Scheduler.OverstaffCap
	schedCfg.Department = cfg.Scheduler.Department

	// 外部优化服务可选
	var optClient *optimizer.Client
	if cfg.Optimizer.Enabled && cfg.Optimizer.BaseURL != "" {
		optClient = optimizer.NewClient(optimizer.Config{
			BaseURL: cfg.Optimizer.BaseURL,
			APIKey:  cfg.Optimizer.APIKey,
			Timeout: cfg.Optimizer.Timeout,
		})
		logger.Info().Str("base_url", cfg.Optimizer.BaseURL).Msg("外部优化服务已启用")
	}

	scheduleHandler := handler.NewScheduleHandler(schedCfg, optClient)
	constraintHandler := handler.NewConstraintHandler()
	statsHandler := handler.NewStatsHandler(cfg.Scheduler.MinStaff())
	if db != nil {
		scheduleHandler = scheduleHandler.WithStore(db)
		constraintHandler = constraintHandler.WithStore(db)
	}

	mux := http.NewServeMux()

	// 系统端点
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"vardschema"}`))
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Health(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable","reason":"database"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	})

	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s","build_time":"%s","git_commit":"%s"}`, Version, BuildTime, GitCommit)
	})

	// API 根路由
	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"message": "Vårdschema 排班服务 API v1",
			"endpoints": {
				"schedule": {
					"generate": "POST /api/v1/schedule/generate",
					"validate": "POST /api/v1/schedule/validate"
				},
				"constraints": {
					"parse": "POST /api/v1/constraints/parse",
					"vocabulary": "GET /api/v1/constraints/vocabulary"
				},
				"stats": {
					"coverage": "POST /api/v1/stats/coverage",
					"fairness": "POST /api/v1/stats/fairness"
				}
			}
		}`))
	})

	// 排班 API
	mux.HandleFunc("/api/v1/schedule/generate", scheduleHandler.Generate)
	mux.HandleFunc("/api/v1/schedule/validate", scheduleHandler.Validate)

	// 约束解析 API
	mux.HandleFunc("/api/v1/constraints/parse", constraintHandler.Parse)
	mux.HandleFunc("/api/v1/constraints/vocabulary", constraintHandler.Vocabulary)

	// 统计分析 API
	mux.HandleFunc("/api/v1/stats/coverage", statsHandler.Coverage)
	mux.HandleFunc("/api/v1/stats/fairness", statsHandler.Fairness)

	// 员工名册 API（需要数据库）
	if db != nil {
		employeeHandler := handler.NewEmployeeHandler(db)
		mux.HandleFunc("/api/v1/employees", employeeHandler.Collection)
		mux.HandleFunc("/api/v1/employees/", employeeHandler.Item)
	}

	// Prometheus 指标端点
	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	// 中间件链（第一个最外层）
	limiter := middleware.NewRateLimiter(cfg.API.RateLimit, time.Minute)
	root := middleware.Chain(mux,
		middleware.RequestIDMiddleware,
		middleware.RecoveryMiddleware,
		middleware.SecurityHeadersMiddleware,
		middleware.CORSMiddleware(&cfg.API.CORS),
		middleware.RateLimitMiddleware(limiter),
		middleware.APIKeyMiddleware(&cfg.API, []string{"/health", "/ready", "/version", cfg.Metrics.Path}),
		middleware.LoggingMiddleware,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      root,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info().
			Int("port", cfg.App.Port).
			Str("version", Version).
			Msg("服务器启动")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("服务器启动失败")
			os.Exit(1)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
		os.Exit(1)
	}

	logger.Info().Msg("服务器已关闭")
}
