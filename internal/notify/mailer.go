package notify

import (
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Config struct {
	Host     string `conf:"host"`
	Port     int    `conf:"port"`
	Sender   string `conf:"sender"`
	Password string `conf:"password"`

	// Receivers get every report mail.
	Receivers []string `conf:"receivers"`
}

type MailerParams struct {
	fx.In

	Config Config

	Log *zap.Logger
}

// Mailer delivers HTML reports to the configured receivers.
type Mailer interface {
	SendReport(subject string, html []byte) error
}

type smtpMailer struct {
	config Config
	log    *zap.Logger
}

func NewMailer(params MailerParams) Mailer {
	return &smtpMailer{
		config: params.Config,
		log:    params.Log.Named("notify"),
	}
}

// SendReport sends the report to every receiver. A failure for one
// receiver does not stop delivery to the rest; all failures are
// returned together.
func (m *smtpMailer) SendReport(subject string, html []byte) error {
	if m.config.Host == "" || m.config.Sender == "" {
		return errors.New("mail relay not configured")
	}
	if len(m.config.Receivers) == 0 {
		return errors.New("no mail receivers configured")
	}

	var result *multierror.Error
	for _, receiver := range m.config.Receivers {
		if err := m.send(receiver, subject, html); err != nil {
			m.log.Error("report mail failed",
				zap.String("receiver", receiver),
				zap.Error(err),
			)
			result = multierror.Append(result, fmt.Errorf("send to %s: %w", receiver, err))
			continue
		}
		m.log.Info("report mail sent", zap.String("receiver", receiver))
	}

	return result.ErrorOrNil()
}

func (m *smtpMailer) send(receiver, subject string, html []byte) error {
	port := m.config.Port
	if port <= 0 {
		port = 587
	}
	addr := fmt.Sprintf("%s:%d", m.config.Host, port)

	var auth smtp.Auth
	if m.config.Password != "" {
		auth = smtp.PlainAuth("", m.config.Sender, m.config.Password, m.config.Host)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.config.Sender)
	fmt.Fprintf(&msg, "To: %s\r\n", receiver)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.Write(html)

	return smtp.SendMail(addr, auth, m.config.Sender, []string{receiver}, []byte(msg.String()))
}
