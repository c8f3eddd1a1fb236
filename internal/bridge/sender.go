package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/nutbridge/nut-udp-bridge/internal/record"
)

// ErrNilConn is returned by UDPSender.Send when the sender has no open
// socket.
var ErrNilConn = errors.New("udp sender: connection is nil")

// RecordSender is the outbound port: best-effort delivery of one record per
// call. Implementations must be safe for concurrent use, since the shutdown
// guard can fire from a signal watcher while the loop is mid-delivery.
type RecordSender interface {
	Send(rec *record.Record) error
	Close() error
}

// Compile-time interface check.
var _ RecordSender = (*UDPSender)(nil)

// UDPSender serializes records as compact single-line JSON and fires them
// at a fixed UDP destination. No retries, no acknowledgment.
type UDPSender struct {
	mu   sync.Mutex
	conn net.Conn
	log  zerolog.Logger
}

// NewUDPSender opens the outbound socket to host:port. The socket stays
// open for the process lifetime; Close is called exactly once by the
// shutdown guard.
func NewUDPSender(host string, port int, log zerolog.Logger) (*UDPSender, error) {
	conn, err := net.Dial("udp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("dial udp receiver: %w", err)
	}
	return &UDPSender{conn: conn, log: log}, nil
}

// Send marshals rec and writes it as one datagram. Safe for concurrent use.
func (s *UDPSender) Send(rec *record.Record) error {
	if s == nil || s.conn == nil {
		return ErrNilConn
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	s.mu.Lock()
	_, err = s.conn.Write(data)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("write datagram: %w", err)
	}

	s.log.Debug().RawJSON("payload", data).Msg("sent datagram")
	return nil
}

// Close releases the outbound socket.
func (s *UDPSender) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
