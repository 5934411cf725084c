package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"notifyd/internal/models"
)

func TestMemoryDirectory(t *testing.T) {
	dir := NewMemoryDirectory()
	ctx := context.Background()

	dir.PutApplication(models.Application{AppID: "app-1", Name: "Acme", Enabled: true})
	dir.PutUser(models.User{UserID: "user-1", AppID: "app-1", ExternalID: "ext-1"})
	dir.PutTemplate(models.Template{TemplateID: "tpl-1", AppID: "app-1", Name: "welcome", Channel: models.ChannelEmail})

	app, err := dir.Application(ctx, "app-1")
	assert.NoError(t, err)
	assert.True(t, app.Enabled)

	_, err = dir.Application(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	user, err := dir.User(ctx, "app-1", "user-1")
	assert.NoError(t, err)
	assert.Equal(t, "ext-1", user.ExternalID)

	// users are scoped to their application
	_, err = dir.User(ctx, "app-2", "user-1")
	assert.ErrorIs(t, err, ErrNotFound)

	tmpl, err := dir.Template(ctx, "app-1", "tpl-1")
	assert.NoError(t, err)
	assert.Equal(t, "welcome", tmpl.Name)
}

func TestMemoryDirectorySetApplicationEnabled(t *testing.T) {
	dir := NewMemoryDirectory()
	dir.PutApplication(models.Application{AppID: "app-1", Enabled: true})

	dir.SetApplicationEnabled("app-1", false)

	app, err := dir.Application(context.Background(), "app-1")
	assert.NoError(t, err)
	assert.False(t, app.Enabled)
}
