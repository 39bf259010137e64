package http

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mr0ak1/social-app/internal/config"
	"github.com/mr0ak1/social-app/internal/database"
	"github.com/mr0ak1/social-app/internal/handler"
	"github.com/mr0ak1/social-app/internal/logging"
	"github.com/mr0ak1/social-app/internal/queue"
	"github.com/mr0ak1/social-app/internal/redis"
	"github.com/mr0ak1/social-app/internal/repository"
	"github.com/mr0ak1/social-app/internal/service"
	"github.com/mr0ak1/social-app/internal/transport/http/middleware"
	"github.com/mr0ak1/social-app/internal/worker"
)

const shutdownTimeout = 15 * time.Second

func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to Database
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// 3. Repositories
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	chatRepo := repository.NewChatRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	deviceTokenRepo := repository.NewDeviceTokenRepository(db)

	// 4. Push pipeline (optional)
	var (
		publisher queue.Publisher
		manager   *worker.Manager
	)
	if cfg.RedisURL != "" {
		redisClient, err := redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()

		publisher = queue.NewPublisher(redisClient.Client)

		pushHandler := worker.NewHandler(deviceTokenRepo, service.NewExpoPushClient(""))
		if cfg.FCMEnabled() {
			fcm, err := service.NewFCMClient(ctx, cfg.FCMProjectID, cfg.FCMClientEmail, cfg.FCMPrivateKey)
			if err != nil {
				return fmt.Errorf("failed to init fcm: %w", err)
			}
			pushHandler.WithNativePusher(fcm)
		}

		managerCfg := worker.DefaultManagerConfig()
		managerCfg.WorkerCount = cfg.PushWorkers
		manager = worker.NewManager(queue.NewConsumer(redisClient.Client), pushHandler, managerCfg)
		if err := manager.Start(ctx); err != nil {
			return fmt.Errorf("failed to start push workers: %w", err)
		}
		defer manager.Stop()
	} else {
		logrus.Warn("[Server] REDIS_URL not set, push notifications disabled")
	}

	// 5. Media storage (optional)
	var (
		uploader handler.MediaUploader
		deleter  service.ObjectDeleter
	)
	if mediaService, err := service.NewMediaService(ctx, cfg); err != nil {
		logrus.WithError(err).Warn("[Server] Media storage disabled")
	} else {
		uploader, deleter = mediaService, mediaService
	}

	// 6. Services
	authService := service.NewAuthService(cfg)
	notifService := service.NewNotificationService(notifRepo, deviceTokenRepo, publisher)
	userService := service.NewUserService(userRepo, followRepo, deleter, cfg.DefaultAvatarKey)
	followService := service.NewFollowService(followRepo, userRepo, notifService)
	postService := service.NewPostService(postRepo, userRepo, notifService, deleter)
	commentService := service.NewCommentService(commentRepo, postRepo, userRepo, notifService)
	chatService := service.NewChatService(chatRepo, messageRepo, userRepo, notifService)

	// 7. Router
	router := NewRouter(RouterConfig{
		AuthHandler:         handler.NewAuthHandler(userService, authService, uploader, cfg.CookieSecure),
		UserHandler:         handler.NewUserHandler(userService, followService, uploader),
		PostHandler:         handler.NewPostHandler(postService, uploader),
		CommentHandler:      handler.NewCommentHandler(commentService),
		MessageHandler:      handler.NewMessageHandler(chatService),
		NotificationHandler: handler.NewNotificationHandler(notifService),
		Tokens:              authService,
		TokenExpiredErr:     service.ErrTokenExpired,
		CORSOrigins:         cfg.CORSOrigins,
		RateLimiter:         newRateLimiter(cfg),
	})

	// 8. Serve until signalled
	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("addr", srv.Addr).Info("[Server] Listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logrus.Info("[Server] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

func newRateLimiter(cfg *config.Config) *middleware.RateLimiter {
	if cfg.RateLimitRPS <= 0 {
		return nil
	}
	return middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
}
