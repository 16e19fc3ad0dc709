package telegram

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

const testToken = "123456:SECRET-TOKEN"

func newTestServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestSendMessage_Success(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Path != "/bot"+testToken+"/sendMessage" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("content-type = %s", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostForm.Get("chat_id"); got != "42" {
			t.Errorf("chat_id = %q", got)
		}
		if got := r.PostForm.Get("text"); got != "hello *world*" {
			t.Errorf("text = %q", got)
		}
		if got := r.PostForm.Get("parse_mode"); got != "HTML" {
			t.Errorf("parse_mode = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok": true, "result": {"message_id": 7}}`)
	})

	c := NewClient(testToken, "42", WithBaseURL(srv.URL+"/"))
	raw, err := c.SendMessage(context.Background(), "hello *world*", ParseModeHTML)
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if string(raw) != `{"ok":true,"result":{"message_id":7}}` {
		t.Fatalf("raw = %s", raw)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestSendMessage_DefaultParseMode(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if got := r.PostForm.Get("parse_mode"); got != "MarkdownV2" {
			t.Errorf("parse_mode = %q, want MarkdownV2", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":true,"result":{}}`)
	})

	c := NewClient(testToken, "42", WithBaseURL(srv.URL))
	if _, err := c.Notify(context.Background(), "hi", ""); err != nil {
		t.Fatalf("Notify: %v", err)
	}
}

func TestSendMessage_Failures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		status  int
		ctype   string
		body    string
		wantMsg string
		check   func(t *testing.T, err error)
	}{
		{
			name:    "api rejects with description",
			status:  http.StatusOK,
			ctype:   "application/json",
			body:    `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`,
			wantMsg: "Bad Request: chat not found",
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				if !errors.As(err, &apiErr) || apiErr.ErrorCode != 400 {
					t.Fatalf("expected APIError with code 400, got %v", err)
				}
			},
		},
		{
			name:    "api rejects without description",
			status:  http.StatusOK,
			ctype:   "application/json",
			body:    `{"ok":false}`,
			wantMsg: "telegram api error",
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrAPI) {
					t.Fatalf("expected ErrAPI, got %v", err)
				}
			},
		},
		{
			name:    "unparseable body",
			status:  http.StatusOK,
			ctype:   "application/json; charset=utf-8",
			body:    `{"ok":`,
			wantMsg: "failed to parse response: ",
		},
		{
			name:    "non json content type",
			status:  http.StatusOK,
			ctype:   "text/html",
			body:    `<html>proxy</html>`,
			wantMsg: `failed to parse response: unexpected content type "text/html"`,
		},
		{
			name:    "http error status",
			status:  http.StatusUnauthorized,
			ctype:   "application/json",
			body:    `{"ok":false,"error_code":401,"description":"Unauthorized"}`,
			wantMsg: `HTTP 401: {"ok":false,"error_code":401,"description":"Unauthorized"}`,
			check: func(t *testing.T, err error) {
				var httpErr *HTTPError
				if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusUnauthorized {
					t.Fatalf("expected HTTPError 401, got %v", err)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tc.ctype)
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})
			c := NewClient(testToken, "42", WithBaseURL(srv.URL))
			_, err := c.SendMessage(context.Background(), "hi", ParseModeMarkdown)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.HasPrefix(err.Error(), tc.wantMsg) {
				t.Fatalf("error = %q, want prefix %q", err.Error(), tc.wantMsg)
			}
			if tc.check != nil {
				tc.check(t, err)
			}
		})
	}
}

func TestSendMessage_TransportErrorHidesToken(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	c := NewClient(testToken, "42", WithBaseURL(base))
	_, err := c.SendMessage(context.Background(), "hi", ParseModeMarkdownV2)
	if err == nil {
		t.Fatalf("expected transport error")
	}
	if strings.Contains(err.Error(), testToken) {
		t.Fatalf("error leaks token: %v", err)
	}
}

func TestSendMessage_ContextCancelled(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(testToken, "42", WithBaseURL(srv.URL))
	_, err := c.SendMessage(ctx, "hi", ParseModeMarkdownV2)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestParseMode_Valid(t *testing.T) {
	t.Parallel()

	for _, m := range ParseModes {
		if !m.Valid() {
			t.Fatalf("%s should be valid", m)
		}
	}
	for _, m := range []ParseMode{"", "markdown", "Plain"} {
		if m.Valid() {
			t.Fatalf("%q should be invalid", m)
		}
	}
}
