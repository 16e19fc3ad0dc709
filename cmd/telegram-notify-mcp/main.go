// Command telegram-notify-mcp is an MCP server on stdio exposing a single
// send_notification tool that posts messages to a Telegram chat.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ggoodman/telegram-notify-mcp/internal/config"
	"github.com/ggoodman/telegram-notify-mcp/internal/logctx"
	"github.com/ggoodman/telegram-notify-mcp/mcpservice"
	"github.com/ggoodman/telegram-notify-mcp/stdio"
	"github.com/ggoodman/telegram-notify-mcp/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run wires the process and returns its exit code.
func run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		var missing *config.MissingError
		if errors.As(err, &missing) {
			fmt.Fprintf(stderr, "Error: TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID environment variables are required (%v)\n", err)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}

	// Validate already parsed the level.
	lvl, _ := cfg.Level()
	log := slog.New(logctx.Handler{Handler: slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: lvl})})

	client := telegram.NewClient(cfg.BotToken, cfg.ChatID,
		telegram.WithBaseURL(cfg.APIBaseURL),
		telegram.WithLogger(log),
	)
	srv := mcpservice.NewServer(client, mcpservice.WithLogger(log))
	h := stdio.NewHandler(srv,
		stdio.WithIO(stdin, stdout),
		stdio.WithErrorWriter(stderr),
		stdio.WithLogger(log),
	)

	if err := h.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.ErrorContext(ctx, "main.serve.fail", slog.String("err", err.Error()))
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
