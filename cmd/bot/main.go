// cmd/bot/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"whitelist-bot/internal/common/config"
	"whitelist-bot/internal/common/discord"
	"whitelist-bot/internal/common/logger"
	"whitelist-bot/internal/common/observability"
	"whitelist-bot/internal/workflow/access"
	"whitelist-bot/internal/workflow/claim"
	"whitelist-bot/internal/workflow/intake"
	"whitelist-bot/internal/workflow/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Configuration problems are deploy-time errors; refuse to
		// start rather than discover them mid-claim.
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting whitelist bot",
		zap.String("environment", cfg.App.Environment),
		zap.Int("httpPort", cfg.HTTP.Port),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	// --- Gateway session ---
	session, err := discordgo.New("Bot " + cfg.Discord.BotToken)
	if err != nil {
		zapLog.Fatal("gateway session init failed", zap.Error(err))
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	gateway := discord.NewSessionGateway(session, cfg.Discord.GuildID, cfg.Discord.TicketCategoryID)
	policy := access.NewPolicy(cfg.Discord.GuildID, cfg.Discord.ReviewerRoleID)
	reporter := report.NewReporter(gateway, cfg.Discord.OpsChannelID, cfg.Discord.GatewayTimeout, log)

	claimHandler := claim.NewHandler(
		claim.LoadConfig(cfg.Discord.ReviewerRoleID, cfg.Discord.GatewayTimeout),
		gateway, policy, reporter, obs, log,
	)

	// One fixed-id component handler registered on every start keeps
	// messages posted before a restart claimable.
	session.AddHandler(claimHandler.InteractionHandler())
	session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		zapLog.Info("gateway session ready", zap.String("user", r.User.Username))
	})

	if err := session.Open(); err != nil {
		zapLog.Fatal("gateway connection failed", zap.Error(err))
	}
	defer session.Close()

	// --- Intake pipeline ---
	intakeCfg := intake.LoadConfig(cfg.Discord.ReviewChannelID, cfg.Intake.QueueSize, cfg.Discord.GatewayTimeout)
	intakeHandler := intake.NewHandler(intakeCfg, log)
	poster := intake.NewPoster(intakeCfg, gateway, log)

	posterCtx, stopPoster := context.WithCancel(context.Background())
	defer stopPoster()
	go poster.Run(posterCtx, intakeHandler.Queue())

	// --- HTTP server ---
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	intakeHandler.Register(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLog.Info("intake endpoint listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	zapLog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Warn("http shutdown incomplete", zap.Error(err))
	}
	stopPoster()
}
