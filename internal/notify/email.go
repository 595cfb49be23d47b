package notify

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/postpilot/postpilot/internal/config"
)

// EmailNotifier sends outcome notifications over SMTP to the configured
// account (sender and recipient are the same address).
type EmailNotifier struct {
	cfg *config.EmailConfig
}

// NewEmailNotifier creates an SMTP-backed notifier.
func NewEmailNotifier(cfg *config.EmailConfig) *EmailNotifier {
	return &EmailNotifier{cfg: cfg}
}

// NotifyOutcome sends one HTML email describing the run outcome.
func (n *EmailNotifier) NotifyOutcome(ctx context.Context, outcome Outcome) error {
	client, err := mail.NewClient(n.cfg.Host,
		mail.WithPort(n.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.cfg.User),
		mail.WithPassword(n.cfg.Password),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	msg := mail.NewMsg()
	if err := msg.From(n.cfg.User); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}
	if err := msg.To(n.cfg.User); err != nil {
		return fmt.Errorf("setting recipient: %w", err)
	}

	msg.Subject(subject(outcome))
	msg.SetBodyString(mail.TypeTextHTML, body(outcome))

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}

	return nil
}

func subject(outcome Outcome) string {
	status := "Published"
	if !outcome.Success {
		status = "Failed"
	}
	return fmt.Sprintf("LinkedIn Post %s - %s", status, outcome.Time.Format("2006-01-02"))
}

func body(outcome Outcome) string {
	var sb strings.Builder

	sb.WriteString("<h2>PostPilot Notification</h2>")
	if outcome.Success {
		sb.WriteString("<p><strong>Status:</strong> Successfully posted</p>")
	} else {
		sb.WriteString("<p><strong>Status:</strong> Failed to post</p>")
	}
	fmt.Fprintf(&sb, "<p><strong>Time:</strong> %s</p>", outcome.Time.Format(time.RFC1123))
	sb.WriteString("<hr>")
	sb.WriteString("<h3>Post Content:</h3>")
	fmt.Fprintf(&sb,
		`<div style="background: #f5f5f5; padding: 15px; border-radius: 5px; white-space: pre-wrap;">%s</div>`,
		html.EscapeString(outcome.Content))
	sb.WriteString("<hr>")
	fmt.Fprintf(&sb, "<p><strong>Word Count:</strong> %d</p>", outcome.WordCount)
	if outcome.Error != "" {
		fmt.Fprintf(&sb, "<p><strong>Error:</strong> %s</p>", html.EscapeString(outcome.Error))
	}

	return sb.String()
}
