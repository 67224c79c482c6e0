package complaint

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"gopkg.in/gomail.v2"
)

type Message struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

// EmailClient abstrae el transporte de salida (SMTP, SendGrid, log).
type EmailClient interface {
	Send(ctx context.Context, msg Message) error
}

type MailOptions struct {
	Transport      string // smtp | sendgrid | log
	SMTPHost       string
	SMTPPort       int
	SMTPUser       string
	SMTPPass       string
	SendGridAPIKey string
}

func NewEmailClient(opts MailOptions) (EmailClient, error) {
	switch opts.Transport {
	case "", "smtp":
		if opts.SMTPUser == "" || opts.SMTPPass == "" {
			log.Warn().Msg("mail: SMTP_USER/SMTP_PASS vacíos, el envío fallará")
		}
		return NewSMTPClient(opts.SMTPHost, opts.SMTPPort, opts.SMTPUser, opts.SMTPPass), nil
	case "sendgrid":
		if opts.SendGridAPIKey == "" {
			log.Warn().Msg("mail: SENDGRID_API_KEY vacío, el envío fallará")
		}
		return NewSendGridClient(opts.SendGridAPIKey), nil
	case "log":
		return LogClient{}, nil
	}
	return nil, fmt.Errorf("mail transport desconocido: %q", opts.Transport)
}

// SMTPClient envía con sesión autenticada: STARTTLS en 587, TLS directo en 465.
type SMTPClient struct {
	dialer *gomail.Dialer
}

func NewSMTPClient(host string, port int, user, pass string) *SMTPClient {
	d := gomail.NewDialer(host, port, user, pass)
	d.TLSConfig = &tls.Config{ServerName: host}
	if port == 465 {
		d.SSL = true
	}
	return &SMTPClient{dialer: d}
}

func (c *SMTPClient) Send(ctx context.Context, msg Message) error {
	if msg.From == "" || msg.To == "" {
		return errors.New("smtp: from/to vacío")
	}
	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetHeader("Subject", msg.Subject)
	if msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	} else {
		m.SetBody("text/html", msg.HTML)
	}
	return c.dialer.DialAndSend(m)
}

const sendGridHost = "https://api.sendgrid.com"

type SendGridClient struct {
	apiKey string
	host   string
}

func NewSendGridClient(apiKey string) *SendGridClient {
	return &SendGridClient{apiKey: apiKey, host: sendGridHost}
}

func (c *SendGridClient) Send(ctx context.Context, msg Message) error {
	if c.apiKey == "" {
		return errors.New("sendgrid api key is empty")
	}
	if msg.From == "" || msg.To == "" {
		return errors.New("sendgrid: from/to vacío")
	}
	m := mail.NewSingleEmail(mail.NewEmail("Ferreri-Work", msg.From), msg.Subject, mail.NewEmail("", msg.To), msg.Text, msg.HTML)
	if msg.ReplyTo != "" {
		m.SetReplyTo(mail.NewEmail("", msg.ReplyTo))
	}

	req := sendgrid.GetRequest(c.apiKey, "/v3/mail/send", c.host)
	req.Method = "POST"
	req.Body = mail.GetRequestBody(m)
	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d, body=%s", resp.StatusCode, resp.Body)
	}
	log.Debug().Int("status", resp.StatusCode).Str("to", msg.To).Msg("sendgrid: mail sent")
	return nil
}

// LogClient solo registra el mensaje; útil en desarrollo.
type LogClient struct{}

func (LogClient) Send(ctx context.Context, msg Message) error {
	log.Info().Str("to", msg.To).Str("reply_to", msg.ReplyTo).Str("subject", msg.Subject).Msg("mail (log transport)")
	return nil
}
