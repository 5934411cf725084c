// internal/store/memory.go
package store

import (
	"context"
	"fmt"
	"sync"

	"notifyd/internal/models"
)

// MemoryDirectory is an in-memory Directory for tests and single-binary
// demos. Writes happen through the Put methods; reads return copies.
type MemoryDirectory struct {
	mu        sync.RWMutex
	apps      map[string]models.Application
	users     map[string]models.User
	templates map[string]models.Template
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		apps:      make(map[string]models.Application),
		users:     make(map[string]models.User),
		templates: make(map[string]models.Template),
	}
}

func scopedKey(appID, id string) string {
	return fmt.Sprintf("%s/%s", appID, id)
}

func (d *MemoryDirectory) PutApplication(app models.Application) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.apps[app.AppID] = app
}

func (d *MemoryDirectory) PutUser(user models.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[scopedKey(user.AppID, user.UserID)] = user
}

func (d *MemoryDirectory) PutTemplate(tmpl models.Template) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.templates[scopedKey(tmpl.AppID, tmpl.TemplateID)] = tmpl
}

// SetApplicationEnabled flips the tenant's enabled flag in place.
func (d *MemoryDirectory) SetApplicationEnabled(appID string, enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if app, ok := d.apps[appID]; ok {
		app.Enabled = enabled
		d.apps[appID] = app
	}
}

func (d *MemoryDirectory) Application(_ context.Context, appID string) (*models.Application, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	app, ok := d.apps[appID]
	if !ok {
		return nil, ErrNotFound
	}
	out := app
	return &out, nil
}

func (d *MemoryDirectory) User(_ context.Context, appID, userID string) (*models.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	user, ok := d.users[scopedKey(appID, userID)]
	if !ok {
		return nil, ErrNotFound
	}
	out := user
	return &out, nil
}

func (d *MemoryDirectory) Template(_ context.Context, appID, templateID string) (*models.Template, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	tmpl, ok := d.templates[scopedKey(appID, templateID)]
	if !ok {
		return nil, ErrNotFound
	}
	out := tmpl
	return &out, nil
}

// MemoryIdempotencyStore is the in-process IdempotencyStore used in tests.
type MemoryIdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]string
}

func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{keys: make(map[string]string)}
}

func (s *MemoryIdempotencyStore) Reserve(_ context.Context, appID, key, notificationID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := scopedKey(appID, key)
	if existing, ok := s.keys[k]; ok {
		return existing, false, nil
	}
	s.keys[k] = notificationID
	return notificationID, true, nil
}
