package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"

	"vendas-backend/models"
)

// ErrNoRecipient means the reminder has nobody to deliver to.
var ErrNoRecipient = errors.New("reminder has no recipient")

// Notifier delivers a due reminder. The reminder comes with its event and
// the event's client preloaded.
type Notifier interface {
	Notify(ctx context.Context, r models.Reminder) error
}

// ReminderMessage renders the text sent for a reminder.
func ReminderMessage(r models.Reminder) string {
	if r.Event == nil {
		return "Lembrete de compromisso"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Lembrete: %s", r.Event.Title)
	if r.Event.AllDay {
		fmt.Fprintf(&b, " em %s", r.Event.StartDate.Format("02/01/2006"))
	} else {
		fmt.Fprintf(&b, " em %s", r.Event.StartDate.Format("02/01/2006 15:04"))
	}
	if r.Event.Client != nil {
		fmt.Fprintf(&b, " com %s", r.Event.Client.Name)
	}
	return b.String()
}

// TwilioNotifier texts the event's client.
type TwilioNotifier struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioNotifier(accountSID, authToken, from string) *TwilioNotifier {
	return &TwilioNotifier{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from: from,
	}
}

func (n *TwilioNotifier) Notify(ctx context.Context, r models.Reminder) error {
	if r.Event == nil || r.Event.Client == nil || r.Event.Client.Phone == "" {
		return ErrNoRecipient
	}

	to := r.Event.Client.Phone
	from := n.from
	// E.164 numbers go through WhatsApp
	if strings.HasPrefix(to, "+") && strings.HasPrefix(from, "whatsapp:") {
		to = "whatsapp:" + to
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(ReminderMessage(r))

	resp, err := n.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio: %w", err)
	}
	if resp.Sid != nil {
		slog.InfoContext(ctx, "reminder sent", "reminder_id", r.ID, "sid", *resp.Sid)
	}
	return nil
}

// LogNotifier only writes the reminder to the log.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, r models.Reminder) error {
	log := n.Logger
	if log == nil {
		log = slog.Default()
	}
	log.InfoContext(ctx, "reminder due", "reminder_id", r.ID, "event_id", r.EventID, "message", ReminderMessage(r))
	return nil
}

type DispatchResult struct {
	Sent    int
	Skipped int
	Failed  int
}

// ReminderService periodically delivers unsent reminders whose time has come.
type ReminderService struct {
	db       *gorm.DB
	notifier Notifier
	log      *slog.Logger
	cron     *cron.Cron
	now      func() time.Time

	// OnResult is called after every dispatch, e.g. to record metrics.
	OnResult func(DispatchResult)
}

func NewReminderService(db *gorm.DB, notifier Notifier, log *slog.Logger) *ReminderService {
	if log == nil {
		log = slog.Default()
	}
	return &ReminderService{
		db:       db,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// StartScheduler runs DispatchDue on the cron schedule until Stop.
func (s *ReminderService) StartScheduler(schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if _, err := s.DispatchDue(context.Background(), s.now()); err != nil {
			s.log.Error("reminder dispatch failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", schedule, err)
	}
	c.Start()
	s.cron = c
	s.log.Info("reminder scheduler started", "schedule", schedule)
	return nil
}

// Stop waits for a running dispatch to finish or ctx to end.
func (s *ReminderService) Stop(ctx context.Context) {
	if s.cron == nil {
		return
	}
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// DispatchDue notifies every unsent reminder due at now and marks the
// delivered ones as sent. Failed deliveries stay unsent for the next run.
func (s *ReminderService) DispatchDue(ctx context.Context, now time.Time) (DispatchResult, error) {
	var res DispatchResult

	var due []models.Reminder
	err := s.db.WithContext(ctx).
		Preload("Event").
		Preload("Event.Client").
		Where("sent = ? AND remind_at <= ?", false, now).
		Order("remind_at").
		Find(&due).Error
	if err != nil {
		return res, fmt.Errorf("loading due reminders: %w", err)
	}

	for _, r := range due {
		err := s.notifier.Notify(ctx, r)
		switch {
		case errors.Is(err, ErrNoRecipient):
			s.log.Warn("reminder has no recipient", "reminder_id", r.ID, "event_id", r.EventID)
			res.Skipped++
		case err != nil:
			s.log.Error("reminder delivery failed", "reminder_id", r.ID, "error", err)
			res.Failed++
			continue
		default:
			res.Sent++
		}

		if err := s.db.WithContext(ctx).Model(&models.Reminder{}).Where("id = ?", r.ID).Update("sent", true).Error; err != nil {
			s.log.Error("failed to mark reminder as sent", "reminder_id", r.ID, "error", err)
		}
	}

	if len(due) > 0 {
		s.log.Info("reminders processed", "sent", res.Sent, "skipped", res.Skipped, "failed", res.Failed)
	}
	if s.OnResult != nil {
		s.OnResult(res)
	}
	return res, nil
}
