package handler

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/slogfactory/pkg/formatter"
	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// DefaultSocketTimeout bounds dialing and writing.
const DefaultSocketTimeout = 10 * time.Second

// SocketOption configures a Socket handler.
type SocketOption func(*Socket)

// WithTimeout sets the dial and write timeout.
func WithTimeout(d time.Duration) SocketOption {
	return func(h *Socket) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithPersistent keeps the connection open between records.
func WithPersistent(v bool) SocketOption {
	return func(h *Socket) {
		h.persistent = v
	}
}

// Socket writes formatted records to a tcp, udp or unix socket.
type Socket struct {
	logger.Processing
	conn       net.Conn
	dial       func(ctx context.Context, network, address string) (net.Conn, error)
	connString string
	network    string
	address    string
	timeout    time.Duration
	mu         sync.Mutex
	persistent bool
}

// NewSocket creates a Socket handler for connection strings such as
// "tcp://127.0.0.1:5000", "udp://host:514" or "unix:///var/run/log.sock".
// The connection is opened on the first write.
func NewSocket(connString string, level slog.Level, bubble bool, opts ...SocketOption) (*Socket, error) {
	network, address, err := parseConnectionString(connString)
	if err != nil {
		return nil, err
	}
	h := &Socket{
		Processing: logger.NewProcessing(level, bubble, func() logger.Formatter { return formatter.NewLine() }),
		connString: connString,
		network:    network,
		address:    address,
		timeout:    DefaultSocketTimeout,
		persistent: true,
	}
	for _, opt := range opts {
		opt(h)
	}
	dialer := &net.Dialer{Timeout: h.timeout}
	h.dial = dialer.DialContext
	return h, nil
}

func (h *Socket) ConnectionString() string { return h.connString }
func (h *Socket) Timeout() time.Duration { return h.timeout }
func (h *Socket) IsPersistent() bool { return h.persistent }

func (h *Socket) Handle(ctx context.Context, rec logger.Record) (bool, error) {
	return h.HandleWith(ctx, rec, func(ctx context.Context, _ logger.Record, formatted []byte) error {
		return h.write(ctx, formatted)
	})
}

func (h *Socket) HandleBatch(ctx context.Context, recs []logger.Record) error {
	return logger.HandleEach(ctx, h, recs)
}

// Close closes the open connection, if any.
func (h *Socket) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closeConn()
}

func (h *Socket) write(ctx context.Context, p []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conn == nil {
		conn, err := h.dial(ctx, h.network, h.address)
		if err != nil {
			return err
		}
		h.conn = conn
	}

	_ = h.conn.SetWriteDeadline(time.Now().Add(h.timeout))
	if _, err := h.conn.Write(p); err != nil {
		return errors.Join(err, h.closeConn())
	}
	if !h.persistent {
		return h.closeConn()
	}
	return nil
}

// closeConn must be called with h.mu held.
func (h *Socket) closeConn() error {
	if h.conn == nil {
		return nil
	}
	err := h.conn.Close()
	h.conn = nil
	return err
}

func parseConnectionString(s string) (network, address string, err error) {
	scheme, rest, ok := strings.Cut(s, "://")
	if !ok || rest == "" {
		return "", "", ErrInvalidConnectionString
	}
	switch scheme {
	case "tcp", "tcp4", "tcp6", "udp", "udp4", "udp6", "unix", "unixgram":
		return scheme, rest, nil
	}
	return "", "", ErrInvalidConnectionString
}
