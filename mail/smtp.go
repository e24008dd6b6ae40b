// Package mail delivers HTML mail over SMTP with implicit TLS, the way
// port-465 providers expect it.
package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
)

// Sender dials the SMTP host per message. It satisfies the engine's
// Mailer contract.
type Sender struct {
	host     string
	port     string
	username string
	password string
}

// NewSender returns a sender authenticating as username/password against
// host:port.
func NewSender(host, port, username, password string) *Sender {
	return &Sender{host: host, port: port, username: username, password: password}
}

// Send delivers one HTML message. The context bounds the TCP dial; SMTP
// conversation errors are returned as-is for the caller to wrap.
func (s *Sender) Send(ctx context.Context, to, subject, html string) error {
	msg := []byte(
		fmt.Sprintf("From: %s\r\n", s.username) +
			fmt.Sprintf("To: %s\r\n", to) +
			fmt.Sprintf("Subject: %s\r\n", subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=\"utf-8\"\r\n" +
			"\r\n" +
			html,
	)

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{},
		Config:    &tls.Config{ServerName: s.host},
	}
	conn, err := dialer.DialContext(ctx, "tcp", s.host+":"+s.port)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return err
	}
	defer client.Quit()

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	if err := client.Auth(auth); err != nil {
		return err
	}

	if err := client.Mail(s.username); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	return w.Close()
}
