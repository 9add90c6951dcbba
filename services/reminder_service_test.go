package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vendas-backend/models"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, r models.Reminder) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func forEvent(title string) interface{} {
	return mock.MatchedBy(func(r models.Reminder) bool {
		return r.Event != nil && r.Event.Title == title
	})
}

func TestDispatchDue(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "ana")
	client := createClient(t, db, owner, "Alfa", "+5511987654321")
	now := time.Date(2030, 5, 10, 12, 0, 0, 0, time.UTC)

	newEvent := func(title string, clientRef bool, remindAt time.Time) models.Event {
		e := models.Event{
			Title:       title,
			StartDate:   now.Add(2 * time.Hour),
			EndDate:     now.Add(3 * time.Hour),
			CreatedByID: owner.ID,
			Reminders:   []models.Reminder{{RemindAt: remindAt}},
		}
		if clientRef {
			e.ClientID = &client.ID
		}
		require.NoError(t, db.Create(&e).Error)
		return e
	}

	delivered := newEvent("Entrega", true, now.Add(-time.Minute))
	orphan := newEvent("Interno", false, now.Add(-time.Hour))
	failing := newEvent("Falha", true, now.Add(-2*time.Hour))
	future := newEvent("Futuro", true, now.Add(time.Hour))

	notifier := &mockNotifier{}
	notifier.On("Notify", mock.Anything, mock.MatchedBy(func(r models.Reminder) bool {
		return r.Event != nil && r.Event.Client != nil && r.Event.Client.Phone == "+5511987654321" && r.Event.Title == "Entrega"
	})).Return(nil).Once()
	notifier.On("Notify", mock.Anything, forEvent("Interno")).Return(ErrNoRecipient).Once()
	notifier.On("Notify", mock.Anything, forEvent("Falha")).Return(errors.New("twilio down")).Once()

	svc := NewReminderService(db, notifier, discardLogger())
	var reported DispatchResult
	svc.OnResult = func(r DispatchResult) { reported = r }

	res, err := svc.DispatchDue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, DispatchResult{Sent: 1, Skipped: 1, Failed: 1}, res)
	assert.Equal(t, res, reported)
	notifier.AssertExpectations(t)

	sent := func(e models.Event) bool {
		var r models.Reminder
		require.NoError(t, db.First(&r, "event_id = ?", e.ID).Error)
		return r.Sent
	}
	assert.True(t, sent(delivered))
	assert.True(t, sent(orphan))
	assert.False(t, sent(failing))
	assert.False(t, sent(future))

	// only the failed reminder is retried
	retry := &mockNotifier{}
	retry.On("Notify", mock.Anything, forEvent("Falha")).Return(nil).Once()
	svc = NewReminderService(db, retry, discardLogger())

	res, err = svc.DispatchDue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, DispatchResult{Sent: 1}, res)
	retry.AssertExpectations(t)
	assert.True(t, sent(failing))
}

func TestReminderMessage(t *testing.T) {
	start := time.Date(2030, 5, 10, 14, 30, 0, 0, time.UTC)

	assert.Equal(t, "Lembrete de compromisso", ReminderMessage(models.Reminder{}))

	r := models.Reminder{Event: &models.Event{
		Title:     "Demonstração",
		StartDate: start,
		Client:    &models.Client{Name: "Alfa"},
	}}
	assert.Equal(t, "Lembrete: Demonstração em 10/05/2030 14:30 com Alfa", ReminderMessage(r))

	r.Event.AllDay = true
	r.Event.Client = nil
	assert.Equal(t, "Lembrete: Demonstração em 10/05/2030", ReminderMessage(r))
}

func TestTwilioNotifierRequiresPhone(t *testing.T) {
	n := NewTwilioNotifier("AC123", "token", "whatsapp:+14155238886")
	err := n.Notify(context.Background(), models.Reminder{Event: &models.Event{Client: &models.Client{Name: "Alfa"}}})
	assert.ErrorIs(t, err, ErrNoRecipient)
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	svc := NewReminderService(nil, LogNotifier{Logger: discardLogger()}, discardLogger())
	assert.Error(t, svc.StartScheduler("every now and then"))

	require.NoError(t, svc.StartScheduler("@every 1h"))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	svc.Stop(ctx)
}
