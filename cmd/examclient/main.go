// Command examclient runs one exam attempt: it keeps the countdown, saves
// answers to the exam server and serves the page state on a local UI port.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exam-session-client/internal/api"
	"github.com/SAP-F-2025/exam-session-client/internal/cache"
	"github.com/SAP-F-2025/exam-session-client/internal/config"
	"github.com/SAP-F-2025/exam-session-client/internal/events"
	"github.com/SAP-F-2025/exam-session-client/internal/handlers"
	"github.com/SAP-F-2025/exam-session-client/internal/media"
	"github.com/SAP-F-2025/exam-session-client/internal/models"
	"github.com/SAP-F-2025/exam-session-client/internal/page"
	"github.com/SAP-F-2025/exam-session-client/internal/services"
	"github.com/SAP-F-2025/exam-session-client/internal/utils"
	"github.com/SAP-F-2025/exam-session-client/internal/validator"
	"github.com/SAP-F-2025/exam-session-client/pkg"
)

const (
	journalTTL      = 24 * time.Hour
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "examclient:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := utils.NewLogger(cfg.Environment).With("attempt_id", cfg.AttemptID)
	slogger := utils.ToSlogLogger(logger)
	v := validator.New()

	layout, err := config.LoadLayout(cfg.Layout, v)
	if err != nil {
		return fmt.Errorf("load layout %q: %w", cfg.Layout, err)
	}

	client, err := api.New(api.Config{
		BaseURL:       cfg.ServerURL,
		SessionCookie: cfg.SessionCookie,
		Timeout:       cfg.RequestTimeout,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	journal, closeJournal := newJournal(ctx, cfg, logger)
	defer closeJournal()

	bus := events.NewBus(cfg.Events.Topic, slogger)
	defer bus.Close()
	publisher, err := cfg.Events.CreateEventPublisher(bus, slogger)
	if err != nil {
		return fmt.Errorf("create event publisher: %w", err)
	}
	defer func() {
		if publisher != events.EventPublisher(bus) {
			if err := publisher.Close(); err != nil {
				logger.Warn("Failed to close event publisher", "error", err)
			}
		}
	}()

	view := page.New()
	view.OnTone(func(models.Tone) {
		fmt.Fprint(os.Stderr, "\a")
	})

	caps := media.NewCapabilities(cfg.AudioFormats)
	session := services.NewSession(services.SessionConfig{
		AttemptID:     cfg.AttemptID,
		TimeRemaining: cfg.TimeRemaining,
		Layout:        layout,
		Mode:          cfg.Mode,
		AutoAdvance:   cfg.AutoAdvance,
		SaveDebounce:  cfg.SaveDebounce,
		TickInterval:  cfg.TickInterval,
		SyncInterval:  cfg.SyncInterval,
		SubmitGrace:   cfg.SubmitGrace,
	}, services.Dependencies{
		API:          client,
		View:         view,
		Publisher:    publisher,
		Journal:      journal,
		Capabilities: caps,
		Logger:       logger,
	})
	registerAudio(session, layout, cfg, caps)

	session.Start(ctx)
	if cfg.AudioBaseURL != "" {
		go session.Audio.Preload(ctx)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), utils.LoggerMiddleware(logger))
	handlers.NewHandlerManager(session, view, bus, v, logger, cfg.AttemptID).SetupRoutes(router)

	srv := &http.Server{
		Addr:              cfg.UIAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Event streams end with the session.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("UI server listening", "addr", cfg.UIAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	go func() {
		if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("Session stopped", "error", err)
		}
	}()

	signals := make(chan os.Signal, 2)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)

	var runErr error
	warned := false
wait:
	for {
		select {
		case sig := <-signals:
			if sig == os.Interrupt && !warned {
				if confirm, message := session.Timer.ConfirmLeave(); confirm {
					logger.Warn(message, "hint", "press Ctrl+C again to leave")
					warned = true
					continue
				}
			}
			logger.Info("Leaving exam", "signal", sig.String())
			break wait
		case <-session.Submitter.Done():
			logger.Info("Attempt submitted, shutting down")
			break wait
		case err := <-serverErr:
			runErr = fmt.Errorf("ui server: %w", err)
			break wait
		}
	}

	cancel()

	closeCtx, closeCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer closeCancel()
	session.Close(closeCtx)
	if err := srv.Shutdown(closeCtx); err != nil {
		logger.Warn("UI server shutdown failed", "error", err)
	}
	return runErr
}

// newJournal prefers redis so pending answers survive a crash; without it
// answers are journaled in memory for the life of the process.
func newJournal(ctx context.Context, cfg *config.Config, logger utils.Logger) (cache.AnswerJournal, func()) {
	if cfg.RedisURL == "" {
		logger.Info("REDIS_URL not set, journaling answers in memory")
		return cache.NewMemoryJournal(), func() {}
	}

	client, err := pkg.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn("Redis unavailable, journaling answers in memory", "error", err)
		return cache.NewMemoryJournal(), func() {}
	}
	return cache.NewRedisJournal(client, journalTTL), func() {
		if err := client.Close(); err != nil {
			logger.Warn("Failed to close redis client", "error", err)
		}
	}
}

// registerAudio adds a track for every question of the listening parts plus
// the home page sample.
func registerAudio(session *services.Session, layout *models.ExamLayout, cfg *config.Config, caps *media.Capabilities) {
	if cfg.AudioBaseURL == "" {
		return
	}
	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	opts := []media.TrackOption{media.WithHTTPClient(httpClient), media.WithCapabilities(caps)}

	for _, part := range layout.Parts {
		if !part.Listening {
			continue
		}
		for q := part.Start; q <= part.End; q++ {
			session.Audio.Register(q, media.NewTrack(media.QuestionTrackURL(cfg.AudioBaseURL, q), opts...))
		}
	}
	session.Audio.RegisterSample(media.NewTrack(media.SampleTrackURL(cfg.AudioBaseURL), opts...))
}
