package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"reserver_notifier/internal/domain/mail"
	"reserver_notifier/internal/domain/notification"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Renderer turns a notification's template into an HTML document.
type Renderer interface {
	Render(n *notification.Notification) (string, error)
}

// Alerter notifies an operator about failed dispatches.
type Alerter interface {
	Alert(ctx context.Context, text string) error
}

// NopAlerter discards alerts.
type NopAlerter struct{}

func (NopAlerter) Alert(context.Context, string) error { return nil }

// Channels configures where dispatched mail goes. Record always receives every message;
// Production is only used when Debug is false.
type Channels struct {
	Record     mail.Transport
	Production mail.Transport
	Debug      bool
	From       string
}

// Dispatcher sends a notification to its recipients and marks it sent exactly once.
type Dispatcher struct {
	notifRepo  notification.Repository
	deliveries notification.DeliveryLog
	resolver   *RecipientResolver
	renderer   Renderer
	channels   Channels
	alerter    Alerter
	logger     *logrus.Entry
}

func NewDispatcher(
	nr notification.Repository,
	dl notification.DeliveryLog,
	resolver *RecipientResolver,
	renderer Renderer,
	channels Channels,
	alerter Alerter,
	logger *logrus.Entry,
) *Dispatcher {
	if alerter == nil {
		alerter = NopAlerter{}
	}
	return &Dispatcher{
		notifRepo:  nr,
		deliveries: dl,
		resolver:   resolver,
		renderer:   renderer,
		channels:   channels,
		alerter:    alerter,
		logger:     logger,
	}
}

// Dispatch is the job body for one firing. It reloads the notification, resolves
// recipients, claims the notification and delivers to every recipient not yet served.
// The notification is marked sent only when every delivery succeeded; otherwise the claim
// is released so a later scan retries it.
func (d *Dispatcher) Dispatch(ctx context.Context, id int64) error {
	log := d.logger.WithFields(logrus.Fields{
		"notification_id": id,
		"run_id":          uuid.NewString(),
	})

	n, err := d.notifRepo.GetByID(ctx, id)
	if err != nil {
		recordDispatch("error")
		d.releaseSchedule(ctx, log, id)
		return fmt.Errorf("failed to load notification %d: %w", id, err)
	}
	if n.IsSent {
		recordDispatch("already_sent")
		log.Info("Notification already sent, skipping dispatch")
		return ErrAlreadySent
	}

	kind := notification.Classify(n)
	log = log.WithField("kind", kind.String())

	recipients, err := d.resolver.Resolve(ctx, n)
	if err != nil {
		if IsResolutionError(err) {
			recordDispatch("unresolved")
			log.WithError(err).Warn("Could not resolve recipients, notification not sent")
		} else {
			recordDispatch("error")
			log.WithError(err).Error("Recipient resolution failed")
		}
		d.releaseSchedule(ctx, log, id)
		return err
	}

	claimed, err := d.notifRepo.ClaimForDispatch(ctx, id)
	if err != nil {
		recordDispatch("error")
		d.releaseSchedule(ctx, log, id)
		return fmt.Errorf("failed to claim notification %d: %w", id, err)
	}
	if !claimed {
		recordDispatch("already_sent")
		log.Info("Notification claimed by another job, skipping dispatch")
		return ErrAlreadySent
	}
	log = log.WithField("state", notification.StateDispatching)

	delivered, err := d.deliveries.ListDelivered(ctx, id)
	if err != nil {
		d.release(ctx, log, id)
		recordDispatch("error")
		return fmt.Errorf("failed to read delivery log for notification %d: %w", id, err)
	}

	if len(recipients) == 0 {
		log.Warn("Notification has no recipients")
	}

	var failed []string
	var firstErr error
	for _, rcpt := range recipients {
		if _, ok := delivered[strings.ToLower(rcpt.Address)]; ok {
			log.WithField("recipient", rcpt.Address).Debug("Already delivered, skipping recipient")
			continue
		}
		if err := d.Send(ctx, rcpt, n.Template.Message, n); err != nil {
			log.WithError(err).WithField("recipient", rcpt.Address).Error("Failed to send notification e-mail")
			failed = append(failed, rcpt.Address)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := d.deliveries.RecordDelivery(ctx, id, rcpt.Address); err != nil {
			log.WithError(err).WithField("recipient", rcpt.Address).Error("Failed to record delivery")
		}
	}

	if len(failed) > 0 {
		d.release(ctx, log, id)
		recordDispatch("failed")
		dispatchErr := fmt.Errorf("%w: notification %d, %d of %d recipients failed: %w",
			ErrDeliveryFailed, id, len(failed), len(recipients), firstErr)
		if errAlert := d.alerter.Alert(ctx, fmt.Sprintf("Notification %d (%s) failed for %s: %v",
			id, kind, strings.Join(failed, ", "), firstErr)); errAlert != nil {
			log.WithError(errAlert).Warn("Failed to send operator alert")
		}
		return dispatchErr
	}

	if err := d.notifRepo.MarkSent(ctx, id); err != nil {
		// is_sent is already true from the claim; only is_active may be stale until restart.
		recordDispatch("error")
		return fmt.Errorf("failed to mark notification %d sent: %w", id, err)
	}
	recordDispatch("sent")
	log.WithFields(logrus.Fields{
		"recipients": len(recipients),
		"state":      notification.StateSent,
	}).Info("Notification sent")
	return nil
}

// releaseSchedule clears is_active so a later scan can arm the notification again.
func (d *Dispatcher) releaseSchedule(ctx context.Context, log *logrus.Entry, id int64) {
	if err := d.notifRepo.ReleaseSchedule(ctx, id); err != nil {
		log.WithError(err).Error("Failed to release schedule claim")
	}
}

func (d *Dispatcher) release(ctx context.Context, log *logrus.Entry, id int64) {
	if err := d.notifRepo.ReleaseClaim(ctx, id); err != nil {
		log.WithError(err).Error("Failed to release dispatch claim")
	}
}

// SendOption customizes a single Send.
type SendOption func(*sendOptions)

type sendOptions struct {
	subject string
}

// WithSubject overrides the subject derived from the notification kind.
func WithSubject(subject string) SendOption {
	return func(o *sendOptions) { o.subject = subject }
}

// Send delivers one message to one recipient: first to the record channel, then, outside
// debug mode, to the production channel. Both receive the same subject and HTML body.
func (d *Dispatcher) Send(ctx context.Context, rcpt notification.Recipient, message string, n *notification.Notification, opts ...SendOption) error {
	o := sendOptions{subject: SubjectFor(notification.Classify(n))}
	for _, opt := range opts {
		opt(&o)
	}
	if o.subject == "" {
		o.subject = defaultSubject
	}

	html, err := d.renderer.Render(n)
	if err != nil {
		return fmt.Errorf("failed to render template for notification %d: %w", n.ID, err)
	}

	msg := mail.Message{
		From:    d.channels.From,
		To:      []string{rcpt.Address},
		Subject: o.subject,
		Text:    message,
		HTML:    html,
	}

	if err := d.sendVia(ctx, d.channels.Record, msg); err != nil {
		return err
	}
	if d.channels.Debug {
		return nil
	}
	if d.channels.Production == nil {
		return ErrNoProductionTransport
	}
	return d.sendVia(ctx, d.channels.Production, msg)
}

func (d *Dispatcher) sendVia(ctx context.Context, t mail.Transport, msg mail.Message) error {
	if t == nil {
		return errors.New("mail transport is nil")
	}
	start := time.Now()
	err := t.Send(ctx, msg)
	recordEmailSend(t.Name(), err, time.Since(start))
	if err != nil {
		return fmt.Errorf("%s channel: %w", t.Name(), err)
	}
	return nil
}
