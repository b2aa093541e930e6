package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/streetlight-service/internal/config"
	"github.com/spec-kit/streetlight-service/internal/domain"
)

func TestRenderStatusTemplate(t *testing.T) {
	body := RenderStatusTemplate("Dear {{user}}, #{{complaintId}} is {{status}} at {{address}}.", "Jane", "3", "resolved", "789 Oak Rd")
	assert.Equal(t, "Dear Jane, #3 is resolved at 789 Oak Rd.", body)
}

func TestNotificationOnStatusChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	notifier := NewNotificationService(f.dispatcher, f.users, nil, config.NotificationConfig{
		EmailFrom:      "support@streetlight.com",
		StatusTemplate: "{{user}}|{{complaintId}}|{{status}}|{{address}}",
	})
	var sent []StatusNotification
	notifier.sent = func(msg StatusNotification) { sent = append(sent, msg) }
	notifier.RegisterHandlers()

	c := f.file(t, f.user, "123 Main St", "flickering")
	assert.Empty(t, sent)

	_, err := f.registry.UpdateStatus(ctx, f.admin, c.ID, domain.ComplaintStatusInProgress, nil)
	require.NoError(t, err)

	require.Len(t, sent, 1)
	assert.Equal(t, "user@example.com", sent[0].To)
	assert.Equal(t, "support@streetlight.com", sent[0].From)
	assert.Equal(t, "Regular User|"+c.ID+"|in-progress|123 Main St", sent[0].Body)
}

func TestNotificationDefaultsTemplate(t *testing.T) {
	n := NewNotificationService(nil, nil, nil, config.NotificationConfig{})
	assert.Equal(t, config.DefaultStatusTemplate, n.cfg.StatusTemplate)
	n.RegisterHandlers()
}
