// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"notifyd/internal/common/database"
	commonerrors "notifyd/internal/common/errors"
	"notifyd/internal/models"

	"github.com/lib/pq"
)

// PostgresDirectory reads tenant records from the management database.
// Preferences are stored as a JSONB column on users.
type PostgresDirectory struct {
	db *database.PostgresClient
}

func NewPostgresDirectory(db *database.PostgresClient) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

func (d *PostgresDirectory) Application(ctx context.Context, appID string) (*models.Application, error) {
	const query = `SELECT app_id, name, api_key_hash, COALESCE(webhook_url, ''), enabled, created_at, updated_at
		FROM applications WHERE app_id = $1`

	var app models.Application
	err := d.db.QueryRow(ctx, query, appID).Scan(
		&app.AppID, &app.Name, &app.APIKeyHash, &app.WebhookURL,
		&app.Enabled, &app.CreatedAt, &app.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError("application lookup", err)
	}
	return &app, nil
}

func (d *PostgresDirectory) User(ctx context.Context, appID, userID string) (*models.User, error) {
	const query = `SELECT user_id, app_id, external_id, COALESCE(email, ''), COALESCE(phone, ''),
		COALESCE(timezone, ''), COALESCE(locale, ''), preferences, created_at, updated_at
		FROM users WHERE app_id = $1 AND user_id = $2`

	var user models.User
	var prefsRaw []byte
	err := d.db.QueryRow(ctx, query, appID, userID).Scan(
		&user.UserID, &user.AppID, &user.ExternalID, &user.Email, &user.Phone,
		&user.Timezone, &user.Locale, &prefsRaw, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError("user lookup", err)
	}

	if len(prefsRaw) > 0 {
		var prefs models.Preferences
		if err := json.Unmarshal(prefsRaw, &prefs); err != nil {
			return nil, commonerrors.NewQueryExecutionFailedError("user preferences decode", err)
		}
		user.Preferences = &prefs
	}

	return &user, nil
}

func (d *PostgresDirectory) Template(ctx context.Context, appID, templateID string) (*models.Template, error) {
	const query = `SELECT template_id, app_id, name, channel, COALESCE(subject, ''), body,
		variables, COALESCE(locale, ''), created_at, updated_at
		FROM templates WHERE app_id = $1 AND template_id = $2`

	var tmpl models.Template
	err := d.db.QueryRow(ctx, query, appID, templateID).Scan(
		&tmpl.TemplateID, &tmpl.AppID, &tmpl.Name, &tmpl.Channel, &tmpl.Subject,
		&tmpl.Body, pq.Array(&tmpl.Variables), &tmpl.Locale, &tmpl.CreatedAt, &tmpl.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError("template lookup", err)
	}
	return &tmpl, nil
}
