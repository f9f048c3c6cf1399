// Command casebot-admin provisions the hosted assistant the relay talks to.
// It is a one-time setup step: it creates the assistant with its tools and
// document store binding, caches the identifier, and prints it so it can be
// placed in the service environment as ASSISTANT_ID.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/casebot/casebot/internal/common/logtrace"
	"github.com/casebot/casebot/internal/relay/assistant"
)

func init() {
	logtrace.InitLogger()
}

type cmdoptions struct {
	cacheFile string
}

func main() {
	if err := run(context.Background()); err != nil {
		log.Error().Err(err).Msg("assistant bootstrap failed")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	opt := parseFlags()

	// Missing .env is fine; the environment may carry the values directly.
	_ = godotenv.Load()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}

	id, err := assistant.GetOrCreateAssistant(ctx, assistant.BootstrapOptions{
		APIKey:        apiKey,
		VectorStoreID: os.Getenv("VECTOR_STORE_ID"),
		CacheFile:     opt.cacheFile,
	})
	if err != nil {
		return err
	}

	log.Info().Str("assistant_id", id).Msg("assistant ready")
	fmt.Println(id)
	return nil
}

const DefaultCacheFile = "assistant_id.txt"

func parseFlags() cmdoptions {
	var opt cmdoptions
	flag.StringVar(&opt.cacheFile, "cache-file", DefaultCacheFile, "Path caching the created assistant id")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [options]\n\n", os.Args[0])
		fmt.Println("Options:")
		flag.PrintDefaults()
	}
	flag.Parse()
	return opt
}
