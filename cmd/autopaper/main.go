// Command autopaper is an interactive research assistant. It reads user
// prompts from stdin, drives the reason-act loop against the configured
// model provider, and prints final answers plus references to any artifacts
// (plots, PDFs, dashboards) produced along the way.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/autopaper/autopaper"
	"github.com/autopaper/autopaper/config"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (optional)")
	envFile := flag.String("env", ".env", "path to .env file (ignored if missing)")
	sessionID := flag.String("session", "", "resume an existing session by id")
	flag.Parse()

	if err := loadDotEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := run(*configPath, *sessionID); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadDotEnv loads environment variables from path. If the file does not
// exist it is silently ignored so that .env files remain optional.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func run(configPath, sessionID string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ap, err := autopaper.New(cfg)
	if err != nil {
		return err
	}
	defer ap.Close()

	sess := ap.NewSession(sessionID)
	if sessionID != "" {
		if resumed, err := ap.ResumeSession(sessionID); err == nil && len(resumed.History()) > 0 {
			sess = resumed
			fmt.Printf("resumed session %s with %d turns\n", sessionID, len(resumed.History()))
		}
	}

	fmt.Printf("autopaper ready (session %s). Describe a research topic, or type 'exit'.\n", sess.ID())

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		res, err := sess.Submit(ctx, input)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintf(os.Stderr, "session error: %v\n", err)
			return err
		}

		fmt.Printf("\n%s\n", res.Answer)
		if len(res.ArtifactRefs) > 0 {
			fmt.Println("\nartifacts:")
			for _, ref := range res.ArtifactRefs {
				fmt.Printf("  - %s\n", ref)
			}
		}
		fmt.Println()
	}

	return scanner.Err()
}
