package routes

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendas-backend/models"
	"vendas-backend/services"
)

func TestCreateEventWithReminders(t *testing.T) {
	s := newTestServer(t, false)
	token := s.register("ana").Access

	event := create[models.Event](s, "/api/events", map[string]interface{}{
		"title":      "Demonstração VK-85",
		"start_date": "2030-05-10T14:00:00Z",
		"end_date":   "2030-05-10T16:00:00Z",
		"reminders":  []string{"2030-05-10T13:00:00Z", "2030-05-09T14:00:00Z"},
	}, token)
	require.Len(t, event.Reminders, 2)
	assert.Nil(t, event.ClientID)

	w := s.do(http.MethodGet, "/api/events/"+event.ID.String(), nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	loaded := decode[models.Event](t, w)
	require.Len(t, loaded.Reminders, 2)
	assert.True(t, loaded.Reminders[0].RemindAt.Before(loaded.Reminders[1].RemindAt))
	for _, r := range loaded.Reminders {
		assert.False(t, r.Sent)
		assert.Equal(t, event.ID, r.EventID)
	}
}

func TestEventEndBeforeStart(t *testing.T) {
	s := newTestServer(t, false)
	token := s.register("ana").Access

	w := s.do(http.MethodPost, "/api/events", map[string]interface{}{
		"title":      "Visita",
		"start_date": "2030-05-10T14:00:00Z",
		"end_date":   "2030-05-10T13:00:00Z",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	event := create[models.Event](s, "/api/events", map[string]interface{}{
		"title":      "Visita",
		"start_date": "2030-05-10T14:00:00Z",
		"end_date":   "2030-05-10T15:00:00Z",
	}, token)

	w = s.do(http.MethodPatch, "/api/events/"+event.ID.String(), map[string]string{
		"end_date": "2030-05-09T15:00:00Z",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPatch, "/api/events/"+event.ID.String(), map[string]string{
		"start_date": "2030-05-10T15:00:00Z",
	}, token)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestUpdateEventClient(t *testing.T) {
	s := newTestServer(t, false)
	token := s.register("ana").Access
	client := create[models.Client](s, "/api/clients", map[string]string{"name": "Alfa"}, token)
	event := create[models.Event](s, "/api/events", map[string]interface{}{
		"title":      "Visita",
		"start_date": "2030-05-10T14:00:00Z",
		"end_date":   "2030-05-10T15:00:00Z",
	}, token)

	w := s.do(http.MethodPatch, "/api/events/"+event.ID.String(), map[string]interface{}{"client": client.ID}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.Event](t, w)
	require.NotNil(t, updated.ClientID)
	assert.Equal(t, client.ID, *updated.ClientID)

	w = s.do(http.MethodPatch, "/api/events/"+event.ID.String(), map[string]interface{}{"clear_client": true}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Nil(t, decode[models.Event](t, w).ClientID)

	w = s.do(http.MethodPatch, "/api/events/"+event.ID.String(), map[string]interface{}{
		"client": "7f1d4c8e-0000-4000-8000-000000000000",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListEventsDateRange(t *testing.T) {
	s := newTestServer(t, false)
	token := s.register("ana").Access

	for _, day := range []string{"2030-05-01", "2030-05-15", "2030-06-01"} {
		create[models.Event](s, "/api/events", map[string]interface{}{
			"title":      "Visita " + day,
			"start_date": day + "T10:00:00Z",
			"end_date":   day + "T11:00:00Z",
		}, token)
	}

	w := s.do(http.MethodGet, "/api/events?start_after=2030-05-10&start_before=2030-05-31", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	events := decode[[]models.Event](t, w)
	require.Len(t, events, 1)
	assert.Equal(t, "Visita 2030-05-15", events[0].Title)

	w = s.do(http.MethodGet, "/api/events?ordering=-start_date", nil, token)
	events = decode[[]models.Event](t, w)
	require.Len(t, events, 3)
	assert.Equal(t, "Visita 2030-06-01", events[0].Title)

	w = s.do(http.MethodGet, "/api/events?start_after=yesterday", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteEventCascadesReminders(t *testing.T) {
	s := newTestServer(t, false)
	token := s.register("ana").Access
	event := create[models.Event](s, "/api/events", map[string]interface{}{
		"title":      "Visita",
		"start_date": "2030-05-10T14:00:00Z",
		"end_date":   "2030-05-10T15:00:00Z",
		"reminders":  []string{"2030-05-10T13:00:00Z"},
	}, token)

	w := s.do(http.MethodDelete, "/api/events/"+event.ID.String(), nil, token)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	var reminders int64
	s.db.Model(&models.Reminder{}).Count(&reminders)
	assert.Zero(t, reminders)
}

func TestRemindersDueFilter(t *testing.T) {
	s := newTestServer(t, false)
	token := s.register("ana").Access
	event := create[models.Event](s, "/api/events", map[string]interface{}{
		"title":      "Visita",
		"start_date": "2030-05-10T14:00:00Z",
		"end_date":   "2030-05-10T15:00:00Z",
	}, token)

	past := create[models.Reminder](s, "/api/reminders", map[string]interface{}{
		"event": event.ID, "remind_at": "2001-01-01T09:00:00Z",
	}, token)
	sentPast := create[models.Reminder](s, "/api/reminders", map[string]interface{}{
		"event": event.ID, "remind_at": "2001-01-02T09:00:00Z",
	}, token)
	create[models.Reminder](s, "/api/reminders", map[string]interface{}{
		"event": event.ID, "remind_at": "2099-01-01T09:00:00Z",
	}, token)
	require.NoError(t, s.db.Model(&models.Reminder{}).Where("id = ?", sentPast.ID).Update("sent", true).Error)

	w := s.do(http.MethodGet, "/api/reminders?due=true", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	due := decode[[]models.Reminder](t, w)
	require.Len(t, due, 1)
	assert.Equal(t, past.ID, due[0].ID)

	w = s.do(http.MethodGet, "/api/reminders?event="+event.ID.String(), nil, token)
	assert.Len(t, decode[[]models.Reminder](t, w), 3)

	w = s.do(http.MethodGet, "/api/reminders?due=soon", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/reminders", map[string]interface{}{
		"event": "7f1d4c8e-0000-4000-8000-000000000000", "remind_at": "2030-01-01T09:00:00Z",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDashboardOverview(t *testing.T) {
	s := newTestServer(t, false)
	token := s.register("ana").Access
	client := create[models.Client](s, "/api/clients", map[string]string{"name": "Alfa"}, token)
	create[models.Quote](s, "/api/quotes", map[string]interface{}{
		"client": client.ID,
		"items":  []map[string]interface{}{{"description": "Locação", "quantity": 2, "price": "100"}},
	}, token)

	w := s.do(http.MethodGet, "/api/dashboard", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	overview := decode[map[string]interface{}](t, w)
	assert.EqualValues(t, 1, overview["totalClients"])
	assert.EqualValues(t, 0, overview["totalProducts"])
	assert.Equal(t, "200", overview["openQuotesValue"])
}

func TestRescheduledReminderIsDeliveredAgain(t *testing.T) {
	s := newTestServer(t, false)
	token := s.register("ana").Access
	now := time.Now().UTC().Truncate(time.Second)

	event := create[models.Event](s, "/api/events", map[string]interface{}{
		"title":      "Visita",
		"start_date": now.Add(time.Hour),
		"end_date":   now.Add(2 * time.Hour),
	}, token)
	reminder := create[models.Reminder](s, "/api/reminders", map[string]interface{}{
		"event": event.ID, "remind_at": now.Add(-time.Minute),
	}, token)

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := services.NewReminderService(s.db, services.LogNotifier{Logger: discard}, discard)

	res, err := svc.DispatchDue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)

	path := "/api/reminders/" + reminder.ID.String()
	w := s.do(http.MethodPatch, path, map[string]interface{}{"remind_at": now.Add(time.Minute)}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.False(t, decode[models.Reminder](t, w).Sent)

	res, err = svc.DispatchDue(context.Background(), now.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)

	// same time again keeps the delivered state
	w = s.do(http.MethodPatch, path, map[string]interface{}{"remind_at": now.Add(time.Minute)}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[models.Reminder](t, w).Sent)
}
