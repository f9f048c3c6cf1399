package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/casebot/casebot/internal/common/logtrace"
	"github.com/casebot/casebot/internal/relay/assistant"
	"github.com/casebot/casebot/internal/relay/chat"
	"github.com/casebot/casebot/internal/relay/config"
	"github.com/casebot/casebot/internal/relay/search"
	"github.com/casebot/casebot/internal/relay/server"
)

func init() {
	logtrace.InitLogger()
}

type cmdoptions struct {
	configFile string
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		log.Error().Err(err).Msg("server failed")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	slog := log.With().Str("state", "init").Logger()

	opt := parseFlags()

	slog.Info().Str("config_file", opt.configFile).Msg("loading config file")
	if err := config.LoadConfig(opt.configFile); err != nil {
		return fmt.Errorf("loading config file: %w", err)
	}

	serverErrors, shutdownServer, err := createRelayServer(ctx)
	if err != nil {
		return fmt.Errorf("creating relay server: %w", err)
	}

	// Channel to listen for an interrupt or terminate signal from the OS.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		slog.Info().Str("signal", sig.String()).Msg("shutdown signal received")
		shutdownServer()
	}

	slog.Info().Msg("server stopped")
	return nil
}

func createRelayServer(ctx context.Context) (chan error, func(), error) {
	slog := log.With().Str("state", "init").Logger()
	cfg := config.Config()

	svc := assistant.NewOpenAIService(assistant.Options{
		APIKey:         cfg.Upstream.OpenAIAPIKey,
		AssistantID:    cfg.Upstream.AssistantID,
		PollIntervalMs: cfg.Relay.PollIntervalMs,
	})
	searcher := search.NewTavilyClient(cfg.Upstream.TavilyAPIKey)
	relay := chat.NewRelay(svc, searcher, chat.NewModerator(cfg.Relay.BannedPhrases), chat.RelayOptions{
		AssistantID:       cfg.Upstream.AssistantID,
		VectorStoreID:     cfg.Upstream.VectorStoreID,
		RejectionMessage:  cfg.Relay.RejectionMessage,
		NoMessageFallback: cfg.Relay.NoMessageFallback,
		MaxToolRounds:     cfg.Relay.MaxToolRounds,
	})

	s, err := server.CreateNewServer(chat.NewChatAPI(relay))
	if err != nil {
		return nil, nil, fmt.Errorf("creating server: %w", err)
	}
	s.MountHandlers()

	srv := &http.Server{
		Addr:              cfg.Server.HostName + ":" + cfg.Server.Port,
		Handler:           s.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		slog.Info().Str("port", cfg.Server.Port).Msg("server started")
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := func() {
		// Give outstanding requests 5 seconds to complete and initiate the shutdown.
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error().Err(err).Msg("could not stop server gracefully")
			if err := srv.Close(); err != nil {
				slog.Error().Err(err).Msg("could not stop server")
			}
		}
	}

	return serverErrors, shutdown, nil
}

const DefaultConfigFile = "/etc/casebot/casebot.conf"

func parseFlags() cmdoptions {
	var opt cmdoptions
	flag.StringVar(&opt.configFile, "config", DefaultConfigFile, "Path to the config file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [options]\n\n", os.Args[0])
		fmt.Println("Options:")
		flag.PrintDefaults()
	}
	flag.Parse()
	return opt
}
