package notifier

import (
	"bufio"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temirlan/finance-dashboard-api/internal/config"
)

func TestBuildMIME(t *testing.T) {
	raw := buildMIME("reports@findash.local", Message{
		Recipients:  []string{"cfo@corp.kz", "treasury@corp.kz"},
		Subject:     "Liquidity report",
		Body:        []byte("<html></html>"),
		ContentType: "text/html; charset=utf-8",
	})

	msg := string(raw)
	assert.Contains(t, msg, "From: reports@findash.local\r\n")
	assert.Contains(t, msg, "To: cfo@corp.kz, treasury@corp.kz\r\n")
	assert.Contains(t, msg, "Content-Type: text/html; charset=utf-8\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\n<html></html>"))
}

// fakeSMTPServer speaks just enough plaintext SMTP to advertise STARTTLS and
// accept the upgrade request, then reports the first byte the client sends
// afterwards. 0x16 is the TLS handshake record type, so seeing it proves the
// client entered the handshake instead of bailing out on its own TLS config.
func fakeSMTPServer(t *testing.T) (port string, firstTLSByte chan byte) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })

	firstTLSByte = make(chan byte, 1)

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		reader := bufio.NewReader(conn)
		conn.Write([]byte("220 test ESMTP\r\n"))

		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				return
			}

			switch {
			case strings.HasPrefix(line, "EHLO"), strings.HasPrefix(line, "HELO"):
				conn.Write([]byte("250-test\r\n250 STARTTLS\r\n"))
			case strings.HasPrefix(line, "STARTTLS"):
				conn.Write([]byte("220 Go ahead\r\n"))
				b, err := reader.ReadByte()
				if err != nil {
					return
				}
				firstTLSByte <- b
				return
			default:
				conn.Write([]byte("250 OK\r\n"))
			}
		}
	}()

	_, port, err = net.SplitHostPort(listener.Addr().String())
	require.NoError(t, err)

	return port, firstTLSByte
}

func TestDeliver_StartsTLSWhenServerAdvertisesIt(t *testing.T) {
	port, firstTLSByte := fakeSMTPServer(t)

	n := NewSMTPNotifier(config.SMTP{
		Host:           "127.0.0.1",
		Port:           port,
		Username:       "reports@findash.local",
		Password:       "secret",
		From:           "reports@findash.local",
		TimeoutSeconds: 2,
	})

	err := n.deliver(Message{
		Recipients: []string{"cfo@corp.kz"},
		Subject:    "Liquidity report",
		Body:       []byte("<html></html>"),
	})

	// The fake server cannot complete a TLS handshake, so delivery fails,
	// but it must fail inside the handshake, not on client-side TLS
	// configuration before any bytes are exchanged.
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "ServerName")

	select {
	case b := <-firstTLSByte:
		assert.Equal(t, byte(0x16), b, "expected a TLS handshake record, got 0x%02x", b)
	case <-time.After(time.Second):
		t.Fatal("client never sent TLS handshake bytes after STARTTLS")
	}
}

func TestSend_NeverBlocksWhenQueueFull(t *testing.T) {
	n := NewSMTPNotifier(config.SMTP{QueueSize: 1})

	n.Send(Message{Recipients: []string{"a@b.kz"}, Subject: "first"})
	// queue is full now; this must return immediately and drop
	n.Send(Message{Recipients: []string{"a@b.kz"}, Subject: "second"})

	assert.Len(t, n.queue, 1)
}

func TestSend_IgnoresEmptyRecipientList(t *testing.T) {
	n := NewSMTPNotifier(config.SMTP{QueueSize: 4})

	n.Send(Message{Subject: "no recipients"})

	assert.Len(t, n.queue, 0)
}
