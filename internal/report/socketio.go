package report

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/flightderive/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Event names emitted by the SocketIO sink.
const (
	EventFlight = "flight"
	EventBatch  = "batch"
)

// SocketIO publishes progress to a socket.io server.
type SocketIO struct {
	io *socket.Socket
}

// SocketIOOptions configures DialSocketIO.
type SocketIOOptions struct {
	Namespace          string
	InsecureSkipVerify bool
	Timeout            time.Duration
}

// DialSocketIO connects to rawURL and waits for the connection.
func DialSocketIO(ctx context.Context, rawURL string, o SocketIOOptions) (*SocketIO, error) {
	logger := ctxlog.FromContext(ctx).With("sink", "socketio", "url", rawURL)

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if o.Namespace == "" {
		o.Namespace = "/"
	}
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if o.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(o.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected to progress feed", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connectChan <- err
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &SocketIO{io: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(o.Timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", o.Timeout)
	}
}

// RecordTiming implements Sink.
func (s *SocketIO) RecordTiming(_ context.Context, t Timing) {
	s.io.Emit(EventFlight, timingPayload(t))
}

// RecordBatch implements Sink.
func (s *SocketIO) RecordBatch(_ context.Context, b BatchSummary) {
	s.io.Emit(EventBatch, batchPayload(b))
}

// Close disconnects from the server.
func (s *SocketIO) Close() error {
	s.io.Disconnect()
	return nil
}

func timingPayload(t Timing) map[string]any {
	p := map[string]any{
		"run_id":    t.RunID,
		"timestamp": t.Timestamp.UTC().Format(time.RFC3339),
		"stage":     t.Stage,
		"profile":   t.Profile,
		"path":      t.Path,
		"seconds":   t.Elapsed.Seconds(),
		"status":    string(t.Status),
	}
	if t.Error != "" {
		p["error"] = t.Error
	}
	return p
}

func batchPayload(b BatchSummary) map[string]any {
	return map[string]any{
		"run_id":     b.RunID,
		"timestamp":  b.Timestamp.UTC().Format(time.RFC3339),
		"stage":      b.Stage,
		"profile":    b.Profile,
		"comment":    b.Comment,
		"repository": b.Repository,
		"input_dir":  b.InputDir,
		"output_dir": b.OutputDir,
		"files":      b.FileCount,
		"ok":         b.OK,
		"fail":       b.Fail,
		"seconds":    b.Elapsed.Seconds(),
		"aborted":    b.Aborted,
	}
}
