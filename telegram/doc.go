// Package telegram is a minimal client for the Telegram Bot API sendMessage
// method. It exists to back the send_notification tool and deliberately stops
// at one call: no retries, no rate limiting and no client-side timeout. The
// caller's context is the only way to abandon a request in flight.
//
// Example:
//
//	c := telegram.NewClient(token, chatID)
//	raw, err := c.SendMessage(ctx, "*deploy finished*", telegram.ParseModeMarkdownV2)
//
// raw holds the API response body verbatim so callers can surface it.
package telegram
