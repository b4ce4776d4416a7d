package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Gopher0727/Accounts/config"
	"github.com/Gopher0727/Accounts/internal/events"
	"github.com/Gopher0727/Accounts/internal/handlers"
	"github.com/Gopher0727/Accounts/internal/routers"
	"github.com/Gopher0727/Accounts/internal/services"
	"github.com/Gopher0727/Accounts/internal/storage"
	"github.com/Gopher0727/Accounts/internal/utils"
	"github.com/Gopher0727/Accounts/middleware/jwt"
	logger "github.com/Gopher0727/Accounts/middleware/log"
	"github.com/Gopher0727/Accounts/utils/ratelimit"
	"github.com/Gopher0727/Accounts/utils/snowflake"
)

func main() {
	configPath := flag.String("config", os.Getenv("ACCOUNTS_CONFIG"), "配置文件路径")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("配置初始化失败: %v", err)
	}

	appLog, err := logger.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}
	defer appLog.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 初始化数据库（Open 会应用表结构）
	db, err := storage.Open(cfg.Database)
	if err != nil {
		appLog.Fatal("数据库初始化失败", zap.Error(err))
	}

	// Redis 可选：未启用时不限流
	var limiter ratelimit.Limiter = ratelimit.Unlimited{}
	if cfg.Redis.Enabled {
		redisClient, err := storage.InitRedis(ctx, cfg.Redis)
		if err != nil {
			appLog.Fatal("redis 初始化失败", zap.Error(err))
		}
		defer redisClient.Close()
		limiter = ratelimit.NewWindowLimiter(redisClient, appLog.Logger, cfg.RateLimit.FailOpen)
	}

	ids, err := snowflake.NewGenerator(snowflake.Config{
		DatacenterID:   cfg.Snowflake.DatacenterID,
		WorkerID:       cfg.Snowflake.WorkerID,
		DatacenterBits: cfg.Snowflake.DatacenterBits,
		WorkerIDBits:   cfg.Snowflake.WorkerIDBits,
	})
	if err != nil {
		appLog.Fatal("ID 生成器初始化失败", zap.Error(err))
	}

	tokens := jwt.NewTokenManager(cfg.JWT.Secret, cfg.JWT.ExpireHours, cfg.JWT.RefreshHours)

	publisher, err := events.NewPublisher(cfg.Kafka)
	if err != nil {
		appLog.Warn("Kafka 生产者初始化失败，账号事件将不会发布", zap.Error(err))
		publisher = events.Nop{}
	}
	defer publisher.Close()

	// 事件发布放到协程池中，不阻塞请求
	pool := utils.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize, appLog.Logger)
	pool.Start()
	defer pool.Stop()

	userService := services.NewUserService(db, ids, tokens, publisher, pool, appLog)
	guildService := services.NewGuildService(db, ids)

	h := routers.Handlers{
		User:  handlers.NewUserHandler(userService, appLog),
		Guild: handlers.NewGuildHandler(guildService, appLog),
	}
	if cfg.Accounts.BotCreationEnabled {
		botService := services.NewBotService(services.BotServiceConfig{
			DB:        db,
			IDs:       ids,
			Tokens:    tokens,
			Limiter:   limiter,
			Rule:      ratelimit.BotCreateRule(cfg.RateLimit),
			Publisher: publisher,
			Pool:      pool,
			Logger:    appLog,
		})
		h.Bot = handlers.NewBotHandler(botService, appLog)
	} else {
		appLog.Info("bot creation disabled")
	}

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	routers.SetupRoutes(r, appLog, tokens, userService.Exists, h)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLog.Info("正在启动服务器", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("启动服务器失败", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	appLog.Info("正在关闭服务器")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("关闭服务器失败", zap.Error(err))
	}
}
