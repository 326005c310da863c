// Package notifier delivers generated reports to their recipients over SMTP.
// Delivery is fire-and-forget: sends are queued and worked off a background
// goroutine so a slow mail server can never stall a report run or the
// scheduler loop, and a failed send is logged, never propagated.
package notifier

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/temirlan/finance-dashboard-api/internal/config"
)

type Message struct {
	Recipients  []string
	Subject     string
	Body        []byte
	ContentType string
}

type Notifier interface {
	// Send enqueues a message. It never blocks the caller: when the queue
	// is full the message is dropped with a warning.
	Send(msg Message)
}

type smtpNotifier struct {
	cfg   config.SMTP
	queue chan Message
}

func NewSMTPNotifier(cfg config.SMTP) *smtpNotifier {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}

	return &smtpNotifier{
		cfg:   cfg,
		queue: make(chan Message, queueSize),
	}
}

// Start runs the delivery worker until the context is cancelled.
func (n *smtpNotifier) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				logrus.Info("notification worker stopping")
				return
			case msg := <-n.queue:
				if err := n.deliver(msg); err != nil {
					logrus.WithError(err).WithFields(logrus.Fields{
						"recipients": len(msg.Recipients),
						"subject":    msg.Subject,
					}).Error("failed to deliver notification")
				}
			}
		}
	}()
}

func (n *smtpNotifier) Send(msg Message) {
	if len(msg.Recipients) == 0 {
		return
	}

	select {
	case n.queue <- msg:
	default:
		logrus.WithField("subject", msg.Subject).Warn("notification queue full, dropping message")
	}
}

func (n *smtpNotifier) deliver(msg Message) error {
	if n.cfg.Host == "" || n.cfg.Username == "" {
		logrus.Warn("SMTP not configured, skipping notification")
		return nil
	}

	timeout := time.Duration(n.cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	addr := net.JoinHostPort(n.cfg.Host, n.cfg.Port)

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", addr, err)
	}

	// Bound the whole SMTP conversation, not just the dial.
	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		conn.Close()
		return err
	}

	client, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: n.cfg.Host}); err != nil {
			return err
		}
	}

	auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return err
	}

	if err := client.Mail(n.cfg.From); err != nil {
		return err
	}
	for _, rcpt := range msg.Recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}

	if _, err := w.Write(buildMIME(n.cfg.From, msg)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"recipients": len(msg.Recipients),
		"subject":    msg.Subject,
	}).Info("notification delivered")

	return client.Quit()
}

func buildMIME(from string, msg Message) []byte {
	contentType := msg.ContentType
	if contentType == "" {
		contentType = "text/plain; charset=utf-8"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.Recipients, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: %s\r\n", contentType)
	b.WriteString("\r\n")
	b.Write(msg.Body)

	return []byte(b.String())
}
