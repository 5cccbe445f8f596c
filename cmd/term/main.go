package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"wintergreet/internal/audio"
	"wintergreet/internal/config"
	"wintergreet/internal/term"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// The screen owns stdout/stderr while running; logs go to a file if asked.
	log.SetOutput(io.Discard)
	if path := os.Getenv("WINTERGREET_LOG"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "terminal: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "terminal init: %v\n", err)
		os.Exit(1)
	}
	screen.EnableMouse()
	screen.HideCursor()
	defer screen.Fini()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("wintergreet: terminal scene, variant=%s", cfg.GiftVariant())
	v := term.New(screen, cfg, audio.NewChime(cfg.Assets.ChimeHz))
	v.Run(ctx)
}
