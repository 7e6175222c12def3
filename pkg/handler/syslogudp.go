package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/slogfactory/pkg/formatter"
	"github.com/dmitrymomot/slogfactory/pkg/logger"
)

// Syslog RFC variants.
const (
	RFC3164 = 3164
	RFC5424 = 5424
)

// DefaultSyslogPort is the standard syslog UDP port.
const DefaultSyslogPort = 514

// SyslogFormat is the default body template of syslog datagrams.
const SyslogFormat = "%channel%.%level_name%: %message% %context% %extra%"

const maxDatagramSize = 65023

var facilities = map[string]int{
	"kern": 0, "user": 1, "mail": 2, "daemon": 3, "auth": 4, "syslog": 5,
	"lpr": 6, "news": 7, "uucp": 8, "cron": 9, "authpriv": 10, "ftp": 11,
	"local0": 16, "local1": 17, "local2": 18, "local3": 19,
	"local4": 20, "local5": 21, "local6": 22, "local7": 23,
}

// ParseFacility resolves a facility name such as "user" or "local3".
func ParseFacility(name string) (int, error) {
	f, ok := facilities[strings.TrimPrefix(strings.ToLower(name), "log_")]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownFacility, name)
	}
	return f, nil
}

// SyslogUDPConfig describes the syslog destination.
type SyslogUDPConfig struct {
	Host     string `mapstructure:"host"`
	Facility string `mapstructure:"facility"`
	Ident    string `mapstructure:"ident"`
	Port     int    `mapstructure:"port"`
	RFC      int    `mapstructure:"rfc"`
}

// DefaultSyslogUDPConfig returns the defaults applied by the factory.
func DefaultSyslogUDPConfig() SyslogUDPConfig {
	return SyslogUDPConfig{
		Port:     DefaultSyslogPort,
		Facility: "user",
		Ident:    "go",
		RFC:      RFC5424,
	}
}

// SyslogUDP sends records as syslog datagrams, one per message line.
type SyslogUDP struct {
	logger.Processing
	conn     net.Conn
	dial     func(network, address string) (net.Conn, error)
	now      func() time.Time
	hostname string
	cfg      SyslogUDPConfig
	facility int
	mu       sync.Mutex
}

// NewSyslogUDP creates a SyslogUDP handler.
func NewSyslogUDP(cfg SyslogUDPConfig, level slog.Level, bubble bool) (*SyslogUDP, error) {
	if cfg.Host == "" {
		return nil, ErrInvalidConnectionString
	}
	if cfg.RFC != RFC3164 && cfg.RFC != RFC5424 {
		return nil, ErrInvalidRFC
	}
	facility, err := ParseFacility(cfg.Facility)
	if err != nil {
		return nil, err
	}
	host, _ := os.Hostname()
	if host == "" {
		host = "-"
	}
	return &SyslogUDP{
		Processing: logger.NewProcessing(level, bubble, func() logger.Formatter {
			return formatter.NewLine(formatter.WithFormat(SyslogFormat))
		}),
		cfg:      cfg,
		facility: facility,
		hostname: host,
		dial:     net.Dial,
		now:      time.Now,
	}, nil
}

func (h *SyslogUDP) Config() SyslogUDPConfig { return h.cfg }
func (h *SyslogUDP) Facility() int { return h.facility }

func (h *SyslogUDP) Handle(ctx context.Context, rec logger.Record) (bool, error) {
	return h.HandleWith(ctx, rec, func(_ context.Context, rec logger.Record, formatted []byte) error {
		header := h.header(logger.SyslogSeverity(rec.Level))
		for _, line := range strings.Split(strings.TrimRight(string(formatted), "\n"), "\n") {
			datagram := header + line
			if len(datagram) > maxDatagramSize {
				datagram = datagram[:maxDatagramSize]
			}
			if err := h.send([]byte(datagram)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (h *SyslogUDP) HandleBatch(ctx context.Context, recs []logger.Record) error {
	return logger.HandleEach(ctx, h, recs)
}

func (h *SyslogUDP) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conn == nil {
		return nil
	}
	err := h.conn.Close()
	h.conn = nil
	return err
}

func (h *SyslogUDP) header(severity int) string {
	pri := strconv.Itoa(h.facility*8 + severity)
	now := h.now()
	if h.cfg.RFC == RFC3164 {
		return "<" + pri + ">" + now.Format(time.Stamp) + " " + h.hostname + " " + h.cfg.Ident + "[" + strconv.Itoa(os.Getpid()) + "]: "
	}
	return "<" + pri + ">1 " + now.Format(time.RFC3339) + " " + h.hostname + " " + h.cfg.Ident + " " + strconv.Itoa(os.Getpid()) + " - - "
}

func (h *SyslogUDP) send(p []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conn == nil {
		conn, err := h.dial("udp", net.JoinHostPort(h.cfg.Host, strconv.Itoa(h.cfg.Port)))
		if err != nil {
			return err
		}
		h.conn = conn
	}
	_, err := h.conn.Write(p)
	return err
}
