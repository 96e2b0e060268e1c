package notification

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/clinic-queue-api/internal/model"
)

// SMTPConfig points at the clinic's outbound mail relay. FrontDeskInbox is
// where staff-facing updates land; patients are reached through the clinic's
// own channels, not from here.
type SMTPConfig struct {
	Host           string
	Port           int
	Username       string
	Password       string
	From           string
	FrontDeskInbox string
}

// EmailNotifier delivers appointment updates to the front desk inbox.
type EmailNotifier struct {
	dialer *gomail.Dialer
	from   string
	inbox  string
}

func NewEmailNotifier(cfg SMTPConfig) *EmailNotifier {
	return &EmailNotifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		inbox:  cfg.FrontDeskInbox,
	}
}

func (n *EmailNotifier) AppointmentRequested(ctx context.Context, apt *model.Appointment) error {
	subject := fmt.Sprintf("New appointment request %s", apt.ID)
	body := fmt.Sprintf("A patient requested an appointment for %s. Review it in the upcoming list.",
		apt.ScheduledDate.Format("2006-01-02"))
	return n.send(ctx, subject, body)
}

func (n *EmailNotifier) AppointmentBooked(ctx context.Context, apt *model.Appointment) error {
	subject := fmt.Sprintf("Appointment booked %s", apt.ID)
	queue := "unassigned"
	if apt.QueueNumber != nil {
		queue = fmt.Sprintf("#%d", *apt.QueueNumber)
	}
	body := fmt.Sprintf("Appointment booked for %s at %s, queue number %s.",
		apt.ScheduledDate.Format("2006-01-02"), apt.ScheduledStartTime, queue)
	return n.send(ctx, subject, body)
}

func (n *EmailNotifier) AppointmentRejected(ctx context.Context, apt *model.Appointment) error {
	subject := fmt.Sprintf("Appointment request rejected %s", apt.ID)
	reason := ""
	if apt.CancellationReason != nil {
		reason = " Reason: " + *apt.CancellationReason
	}
	body := "An appointment request was rejected." + reason
	return n.send(ctx, subject, body)
}

func (n *EmailNotifier) AppointmentCancelled(ctx context.Context, apt *model.Appointment) error {
	subject := fmt.Sprintf("Appointment cancelled %s", apt.ID)
	body := fmt.Sprintf("The appointment scheduled for %s at %s was cancelled.",
		apt.ScheduledDate.Format("2006-01-02"), apt.ScheduledStartTime)
	return n.send(ctx, subject, body)
}

func (n *EmailNotifier) send(ctx context.Context, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", n.from)
	msg.SetHeader("To", n.inbox)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := n.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// NopNotifier is used when no mail relay is configured.
type NopNotifier struct{}

func (NopNotifier) AppointmentRequested(context.Context, *model.Appointment) error { return nil }
func (NopNotifier) AppointmentBooked(context.Context, *model.Appointment) error    { return nil }
func (NopNotifier) AppointmentRejected(context.Context, *model.Appointment) error  { return nil }
func (NopNotifier) AppointmentCancelled(context.Context, *model.Appointment) error { return nil }
