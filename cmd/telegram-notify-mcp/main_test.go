package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	_ = os.Unsetenv(key)
}

func TestRun_MissingCredentials(t *testing.T) {
	unsetenv(t, "TELEGRAM_BOT_TOKEN")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), strings.NewReader(""), &stdout, &stderr)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.HasPrefix(stderr.String(), "Error: TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID environment variables are required") {
		t.Fatalf("stderr = %q", stderr.String())
	}
	if stdout.Len() != 0 {
		t.Fatalf("stdout = %q, want empty", stdout.String())
	}
}

func TestRun_BadLogLevel(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("TELEGRAM_MCP_LOG_LEVEL", "loud")

	var stderr bytes.Buffer
	if code := run(context.Background(), strings.NewReader(""), &bytes.Buffer{}, &stderr); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "TELEGRAM_MCP_LOG_LEVEL") {
		t.Fatalf("stderr = %q", stderr.String())
	}
}

func TestRun_SendsNotification(t *testing.T) {
	var gotText, gotChat string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bottok/sendMessage" {
			http.NotFound(w, r)
			return
		}
		_ = r.ParseForm()
		gotText, gotChat = r.PostForm.Get("text"), r.PostForm.Get("chat_id")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7}}`))
	}))
	defer api.Close()

	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("TELEGRAM_API_BASE_URL", api.URL)
	unsetenv(t, "TELEGRAM_MCP_LOG_LEVEL")

	in := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"send_notification","arguments":{"message":"build done"}}}` + "\n"
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), strings.NewReader(in), &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d, stderr = %q", code, stderr.String())
	}
	if gotText != "build done" || gotChat != "42" {
		t.Fatalf("telegram got text=%q chat=%q", gotText, gotChat)
	}

	var res struct {
		ID     json.Number `json:"id"`
		Result struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"result"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &res); err != nil {
		t.Fatalf("decode stdout %q: %v", stdout.String(), err)
	}
	want := `Notification sent successfully: {"ok":true,"result":{"message_id":7}}`
	if res.ID != "1" || len(res.Result.Content) != 1 || res.Result.Content[0].Text != want {
		t.Fatalf("reply = %s", stdout.String())
	}
}
