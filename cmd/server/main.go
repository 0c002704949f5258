package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"dashboard-gate/internal/auth"
	"dashboard-gate/internal/config"
	"dashboard-gate/internal/domain"
	apphttp "dashboard-gate/internal/http"
	"dashboard-gate/internal/repository"
	"dashboard-gate/internal/repository/sqlite"
	"dashboard-gate/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	accessRepo := sqlite.NewAccessRepository(db)

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := accessRepo.Init(ctx); err != nil {
		logger.Fatalf("init access repository: %v", err)
	}

	if cfg.Database.Seed {
		if err := seedSampleData(ctx, userRepo, accessRepo, logger); err != nil {
			logger.Fatalf("seed sample data: %v", err)
		}
	}

	userService := service.NewUserService(userRepo)
	accessService := service.NewAccessService(accessRepo)
	tokenService := auth.NewTokenService(
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.SessionTTLMinutes)*time.Minute,
		time.Duration(cfg.Auth.EmbedTTLMinutes)*time.Minute,
	)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(userService, accessService, tokenService, logger)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

// seedSampleData provisions the demo accounts and grants if they are not
// present yet, so repeated startups are idempotent.
func seedSampleData(ctx context.Context, users repository.UserRepository, grants repository.AccessRepository, logger *logrus.Logger) error {
	sampleUsers := []struct {
		username  string
		password  string
		isManager bool
		name      string
	}{
		{"manager", "password123", true, "Manager Admin"},
		{"john", "password123", false, "John Smith"},
		{"jane", "password123", false, "Jane Doe"},
	}

	ids := make(map[string]int64, len(sampleUsers))
	for _, sample := range sampleUsers {
		existing, err := users.GetByUsername(ctx, sample.username)
		if err == nil {
			ids[sample.username] = existing.ID
			continue
		}
		if !strings.Contains(strings.ToLower(err.Error()), "not found") {
			return err
		}

		hash, err := auth.HashPassword(sample.password)
		if err != nil {
			return err
		}
		id, err := users.Create(ctx, &domain.User{
			Username:     sample.username,
			PasswordHash: hash,
			DisplayName:  sample.name,
			IsManager:    sample.isManager,
		})
		if err != nil {
			return err
		}
		ids[sample.username] = id
		logger.Infof("seeded user %s", sample.username)
	}

	sampleGrants := []struct {
		username    string
		dashboardID string
		canAccess   bool
	}{
		{"john", "sales", true},
		{"john", "hr", false},
		{"john", "finance", true},
		{"jane", "sales", false},
		{"jane", "hr", true},
		{"jane", "finance", false},
	}

	for _, sample := range sampleGrants {
		existing, err := grants.Get(ctx, ids[sample.username], sample.dashboardID)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if err := grants.Upsert(ctx, &domain.AccessGrant{
			UserID:      ids[sample.username],
			DashboardID: sample.dashboardID,
			CanAccess:   sample.canAccess,
		}); err != nil {
			return err
		}
	}

	return nil
}
