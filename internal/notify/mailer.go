package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/wneessen/go-mail"
)

// SMTPConfig holds the relay settings for Mailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	Timeout  time.Duration
}

type dialer interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Mailer sends notifications as plain text email.
type Mailer struct {
	client   dialer
	from     string
	fromName string
	domain   string
}

var _ Sender = (*Mailer)(nil)

// NewMailer connects the mailer to an SMTP relay. A config without a host yields an
// uninitialized Mailer whose sends fail with ErrNotInitialized.
func NewMailer(cfg SMTPConfig) (*Mailer, error) {
	if cfg.Host == "" || cfg.From == "" {
		return &Mailer{}, nil
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mail.NewClient: %w", err)
	}
	return newMailer(client, cfg.From, cfg.FromName), nil
}

func newMailer(client dialer, from, fromName string) *Mailer {
	return &Mailer{
		client:   client,
		from:     from,
		fromName: fromName,
		domain:   domainOf(from),
	}
}

func (m *Mailer) Initialized() bool {
	return m != nil && m.client != nil
}

// Send delivers msg. msg.FromName overrides the configured display name.
func (m *Mailer) Send(ctx context.Context, msg Message) (Receipt, error) {
	if !m.Initialized() {
		return Receipt{}, ErrNotInitialized
	}
	if msg.To == "" {
		return Receipt{}, errors.New("notify: recipient is required")
	}

	mailMsg, messageID, err := m.build(msg)
	if err != nil {
		return Receipt{}, err
	}
	if err := m.client.DialAndSendWithContext(ctx, mailMsg); err != nil {
		return Receipt{}, fmt.Errorf("send to %s: %w", msg.To, err)
	}
	return Receipt{MessageID: messageID}, nil
}

func (m *Mailer) build(msg Message) (*mail.Msg, string, error) {
	fromName := m.fromName
	if msg.FromName != "" {
		fromName = msg.FromName
	}

	mailMsg := mail.NewMsg()
	if err := mailMsg.FromFormat(fromName, m.from); err != nil {
		return nil, "", fmt.Errorf("from address: %w", err)
	}
	if err := mailMsg.To(msg.To); err != nil {
		return nil, "", fmt.Errorf("recipient address: %w", err)
	}
	mailMsg.Subject(msg.Subject)
	mailMsg.SetBodyString(mail.TypeTextPlain, msg.Body)

	messageID := uuid.Must(uuid.NewV4()).String() + "@" + m.domain
	mailMsg.SetMessageIDWithValue(messageID)
	return mailMsg, messageID, nil
}

func domainOf(address string) string {
	for i := len(address) - 1; i >= 0; i-- {
		if address[i] == '@' {
			return address[i+1:]
		}
	}
	return "localhost"
}
