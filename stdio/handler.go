package stdio

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ggoodman/telegram-notify-mcp/mcpservice"
)

const defaultReadSize = 32 * 1024

// Handler is a single-connection stdio transport that reads JSON-RPC messages
// from an io.Reader and writes replies to an io.Writer. By default it uses
// os.Stdin, os.Stdout and, for parse-error replies, os.Stderr.
//
// The handler is transport-only; it delegates all MCP semantics to the
// provided mcpservice.Server.
type Handler struct {
	srv      *mcpservice.Server
	r        io.Reader
	w        io.Writer
	errW     io.Writer
	l        *slog.Logger
	readSize int
}

// NewHandler constructs a stdio Handler with defaults and applies options.
func NewHandler(srv *mcpservice.Server, opts ...Option) *Handler {
	h := &Handler{
		srv:      srv,
		r:        os.Stdin,
		w:        os.Stdout,
		errW:     os.Stderr,
		l:        slog.New(slog.DiscardHandler),
		readSize: defaultReadSize,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type readResult struct {
	data []byte
	err  error
}

// Serve runs the stdio event loop until EOF on the reader or the context is
// canceled. It is safe to call at most once per Handler. Serve is responsible
// for:
//   - newline-delimited framing of input of any line length
//   - handing each line to the server, in arrival order
//   - writing replies, one JSON object per line, to the stream each belongs on
//
// Calls that may block on the notification backend run on their own
// goroutine, so their replies can be written after replies to later lines.
// All other replies are written in request order.
//
// On EOF Serve waits for in-flight calls to finish, discards any trailing
// partial line and returns nil. On cancellation it stops reading, waits for
// in-flight calls (which observe the canceled context) and returns ctx.Err().
func (h *Handler) Serve(ctx context.Context) error {
	start := time.Now()
	var mu sync.Mutex
	out := &writeMux{mu: &mu, w: bufio.NewWriter(h.w)}
	errOut := &writeMux{mu: &mu, w: bufio.NewWriter(h.errW)}

	g, gctx := errgroup.WithContext(ctx)
	var buf LineBuffer

	readCtx, stopReading := context.WithCancel(gctx)
	defer stopReading()
	chunks := make(chan readResult)
	go h.readLoop(readCtx, chunks)

	h.l.DebugContext(ctx, "stdio.serve.start")
	var lines int
	for {
		select {
		case <-gctx.Done():
			h.l.InfoContext(ctx, "stdio.serve.stopped", slog.Int("lines", lines), slog.Int64("dur_ms", time.Since(start).Milliseconds()))
			if err := g.Wait(); err != nil {
				return err
			}
			return ctx.Err()
		case rr := <-chunks:
			for line := range buf.Feed(rr.data) {
				lines++
				if err := h.handleLine(gctx, g, line, out, errOut); err != nil {
					_ = g.Wait()
					return err
				}
			}
			if rr.err == nil {
				continue
			}
			if !errors.Is(rr.err, io.EOF) {
				h.l.ErrorContext(ctx, "stdio.read.fail", slog.String("err", rr.err.Error()))
				_ = g.Wait()
				return fmt.Errorf("read input: %w", rr.err)
			}
			if n := buf.Len(); n > 0 {
				h.l.DebugContext(ctx, "stdio.serve.partial_discarded", slog.Int("bytes", n))
				buf.Reset()
			}
			err := g.Wait()
			h.l.InfoContext(ctx, "stdio.serve.eof", slog.Int("lines", lines), slog.Int64("dur_ms", time.Since(start).Milliseconds()))
			return err
		}
	}
}

// handleLine answers cheap calls inline and defers the rest to g.
func (h *Handler) handleLine(ctx context.Context, g *errgroup.Group, line []byte, out, errOut *writeMux) error {
	call, reply := h.srv.Decode(line)
	if reply != nil {
		return h.emit(ctx, reply, out, errOut)
	}
	if !mcpservice.Suspends(call) {
		return h.emit(ctx, h.srv.Handle(ctx, call), out, errOut)
	}
	g.Go(func() error {
		return h.emit(ctx, h.srv.Handle(ctx, call), out, errOut)
	})
	return nil
}

func (h *Handler) emit(ctx context.Context, reply *mcpservice.Reply, out, errOut *writeMux) error {
	if reply == nil {
		return nil
	}
	dst := out
	if reply.Stream == mcpservice.StreamErr {
		dst = errOut
	}
	if err := dst.writeJSONRPC(reply.Response); err != nil {
		h.l.ErrorContext(ctx, "stdio.write.fail", slog.String("stream", reply.Stream.String()), slog.String("err", err.Error()))
		return fmt.Errorf("write %s: %w", reply.Stream, err)
	}
	return nil
}

// readLoop forwards chunks from the reader until it fails or ctx ends. A Read
// blocked on a terminal or pipe cannot be interrupted; in that case the
// goroutine exits after the next Read returns.
func (h *Handler) readLoop(ctx context.Context, out chan<- readResult) {
	for {
		b := make([]byte, h.readSize)
		n, err := h.r.Read(b)
		select {
		case out <- readResult{data: b[:n], err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

// writeMux serializes whole JSON-RPC messages onto a writer. The mutex is
// shared between the output and error streams so that a peer reading both
// from one pipe never sees interleaved messages.
type writeMux struct {
	mu *sync.Mutex
	w  *bufio.Writer
}

func (m *writeMux) writeJSONRPC(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.w.Write(b); err != nil {
		return err
	}
	if err := m.w.WriteByte('\n'); err != nil {
		return err
	}
	return m.w.Flush()
}
