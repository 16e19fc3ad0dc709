package mcpservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/ggoodman/telegram-notify-mcp/mcp"
	"github.com/ggoodman/telegram-notify-mcp/telegram"
)

// SendNotificationTool is the name of the only tool the server exposes.
const SendNotificationTool = "send_notification"

// ErrMessageRequired is returned when send_notification has no message.
var ErrMessageRequired = errors.New("message parameter is required")

// SendNotificationArgs is the input of send_notification.
type SendNotificationArgs struct {
	Message   string `json:"message" jsonschema:"description=The message to send"`
	ParseMode string `json:"parse_mode,omitempty" jsonschema:"enum=MarkdownV2,enum=Markdown,enum=HTML,description=Optional. Formatting style for the message. Use MarkdownV2 for Telegram MarkdownV2 format."`
}

func (s *Server) sendNotificationTool() staticTool {
	return newTool(SendNotificationTool, "Send a notification message to Telegram", s.sendNotification)
}

func (s *Server) sendNotification(ctx context.Context, args SendNotificationArgs) (*mcp.CallToolResult, error) {
	if args.Message == "" {
		return nil, ErrMessageRequired
	}
	mode := telegram.ParseMode(args.ParseMode)
	if mode == "" {
		mode = telegram.ParseModeMarkdownV2
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("invalid parse_mode %q: must be one of %v", args.ParseMode, telegram.ParseModes)
	}
	if s.notifier == nil {
		return nil, errors.New("no notifier configured")
	}

	raw, err := s.notifier.Notify(ctx, args.Message, mode)
	if err != nil {
		return nil, err
	}
	return mcp.TextResult("Notification sent successfully: " + string(raw)), nil
}
