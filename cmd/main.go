// CLI entry point for the assistant.
//
// FILES:
//   - main.go:    Flag parsing, config load, session construction
//   - logging.go: zerolog setup
//   - repl.go:    Interactive loop and command dispatch
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/TalhaRana01/AI-Assistant-Pro-with-CLI/internal/config"
	"github.com/TalhaRana01/AI-Assistant-Pro-with-CLI/internal/session"
)

func main() {
	// Best-effort: a missing .env just means the environment is the
	// only source.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogging(cfg.LogLevel)
	logger.Info().Str("provider", cfg.DefaultProvider).Msg("settings loaded")

	sess := session.New(cfg, logger)
	if err := sess.Switch(cfg.DefaultProvider); err != nil {
		fmt.Fprintf(os.Stderr, "Provider error: %v\n", err)
		os.Exit(1)
	}

	code := runREPL(sess)

	_ = sess.Close()
	if sess.Costs().CallCount() > 0 {
		fmt.Println()
		fmt.Println(sess.Costs().Summary())
	}
	os.Exit(code)
}
