package bridge

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutbridge/nut-udp-bridge/internal/record"
	"github.com/nutbridge/nut-udp-bridge/internal/status"
)

// startReceiver binds a loopback UDP listener and returns its port plus a
// channel yielding received payloads.
func startReceiver(t *testing.T) (int, <-chan []byte) {
	t.Helper()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	packets := make(chan []byte, 8)
	go func() {
		buf := make([]byte, 64*1024)
		for {
			n, _, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			pkt := make([]byte, n)
			copy(pkt, buf[:n])
			packets <- pkt
		}
	}()

	return conn.LocalAddr().(*net.UDPAddr).Port, packets
}

func TestUDPSender_SendsSingleLineJSON(t *testing.T) {
	port, packets := startReceiver(t)

	sender, err := NewUDPSender("127.0.0.1", port, zerolog.Nop())
	require.NoError(t, err)
	defer sender.Close()

	rec := record.NewBuilder("test-host").Dead(status.Unknown, "unknown")
	require.NoError(t, sender.Send(rec))

	select {
	case pkt := <-packets:
		assert.NotContains(t, string(pkt), "\n", "payload must be a single line")

		var decoded record.Record
		require.NoError(t, json.Unmarshal(pkt, &decoded))
		assert.Equal(t, "test-host", decoded.Host)
		assert.Equal(t, 0, decoded.Alive)
		assert.Equal(t, int(status.Unknown), decoded.ConditionCode)
	case <-time.After(2 * time.Second):
		t.Fatal("no datagram received")
	}
}

func TestUDPSender_OneDatagramPerRecord(t *testing.T) {
	port, packets := startReceiver(t)

	sender, err := NewUDPSender("127.0.0.1", port, zerolog.Nop())
	require.NoError(t, err)
	defer sender.Close()

	builder := record.NewBuilder("test-host")
	require.NoError(t, sender.Send(builder.Dead(status.Online, "online")))
	require.NoError(t, sender.Send(builder.Dead(status.Online, "online")))

	for i := 0; i < 2; i++ {
		select {
		case <-packets:
		case <-time.After(2 * time.Second):
			t.Fatalf("datagram %d not received", i+1)
		}
	}
}

func TestUDPSender_NilConn(t *testing.T) {
	var sender *UDPSender
	err := sender.Send(&record.Record{})
	assert.ErrorIs(t, err, ErrNilConn)
}
