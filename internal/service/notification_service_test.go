package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/console-client/internal/events"
	"github.com/spec-kit/console-client/internal/notify"
	"github.com/spec-kit/console-client/internal/service"
	"github.com/spec-kit/console-client/internal/worker"
)

func setup(t *testing.T) (events.Dispatcher, *notify.Queue) {
	t.Helper()
	d := events.NewInMemoryDispatcher()
	q := notify.NewQueue(8)
	worker.StartNotificationWorker(service.NewNotificationService(d, q, nil))
	return d, q
}

func TestAccessDeniedBecomesErrorNotification(t *testing.T) {
	d, q := setup(t)

	err := d.Publish(context.Background(), events.New(events.EventAccessDenied, events.AccessDeniedPayload{
		Route: "Admin", Path: "/admin", Message: "Access denied: Admin privileges required",
	}))
	require.NoError(t, err)

	got := q.Drain()
	require.Len(t, got, 1)
	require.Equal(t, notify.LevelError, got[0].Level)
	require.Equal(t, "Access denied: Admin privileges required", got[0].Message)
}

func TestAdminPromptCarriesChoices(t *testing.T) {
	d, q := setup(t)

	require.NoError(t, d.Publish(context.Background(), events.New(events.EventAdminPrompt, events.AdminPromptPayload{
		PromptID: "p1", Path: "/api/admin/users", Message: "need admin", Choices: []string{"logout", "continue"},
	})))

	got := q.Drain()
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Prompt)
	require.Equal(t, "p1", got[0].Prompt.ID)
	require.Equal(t, []string{"logout", "continue"}, got[0].Prompt.Choices)
}

func TestBadPayloadIsReported(t *testing.T) {
	d, q := setup(t)

	err := d.Publish(context.Background(), events.New(events.EventAccessDenied, "nope"))
	require.Error(t, err)
	require.Zero(t, q.Len())
}

func TestRedirectIsNotQueued(t *testing.T) {
	d, q := setup(t)

	require.NoError(t, d.Publish(context.Background(), events.New(events.EventRedirected, events.RedirectedPayload{From: "/a", To: "/login"})))
	require.Zero(t, q.Len())
}

func TestOnlyUserLogoutIsQueued(t *testing.T) {
	d, q := setup(t)
	ctx := context.Background()

	require.NoError(t, d.Publish(ctx, events.New(events.EventLoggedOut, events.LoggedOutPayload{Reason: events.LogoutReasonExpired})))
	require.Zero(t, q.Len())

	require.NoError(t, d.Publish(ctx, events.New(events.EventLoggedOut, events.LoggedOutPayload{Reason: events.LogoutReasonUser})))
	got := q.Drain()
	require.Len(t, got, 1)
	require.Equal(t, "Signed out", got[0].Message)
}
