package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SaiNageswarS/go-api-boot/config"
	"github.com/SaiNageswarS/go-api-boot/dotenv"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/hazemmrad17/cftravel-sub000/agent"
	"github.com/hazemmrad17/cftravel-sub000/appconfig"
	"github.com/hazemmrad17/cftravel-sub000/catalog"
	"github.com/hazemmrad17/cftravel-sub000/llm"
	"github.com/hazemmrad17/cftravel-sub000/memory"
	"github.com/hazemmrad17/cftravel-sub000/services"
)

func main() {
	dotenv.LoadEnv()

	cfg := &appconfig.AppConfig{}
	if err := config.LoadConfig("config.ini", cfg); err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	cfg.Defaults()

	roleConfig, err := llm.LoadRoleConfig(cfg.ModelsPath)
	if err != nil {
		logger.Fatal("Failed to load model config", zap.Error(err))
	}

	switches := llm.NewSwitchStore()
	router := llm.NewRouter(roleConfig, switches,
		llm.WithCallTimeout(time.Duration(cfg.CallTimeoutSec)*time.Second))

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Fatal("Failed to load offer catalog", zap.Error(err))
	}
	logger.Info("catalog loaded", zap.String("path", cfg.CatalogPath), zap.Int("offers", cat.Len()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cat.Backfill(ctx, router.Embed, cfg.EmbedWorkers); err != nil {
		logger.Fatal("Failed to backfill embeddings", zap.Error(err))
	}

	index, err := catalog.NewIndex(cat)
	if err != nil {
		logger.Fatal("Failed to build embedding index", zap.Error(err))
	}
	logger.Info("embedding index ready", zap.Int("offers", index.Len()))

	store := memory.NewStore(cfg.MaxExchanges)
	flow := agent.NewFlow(store,
		agent.NewExtractStep(router),
		agent.NewRetrieveStep(router, cat, index, cfg.MaxCandidates, cfg.RankerTokenBudget),
		agent.NewRankStep(router),
		agent.NewSynthesizeStep(router))

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	services.NewChatService(flow, store, switches).RegisterRoutes(e)

	go func() {
		logger.Info("http server starting", zap.String("port", cfg.HTTPPort))
		if err := e.Start(cfg.HTTPPort); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
