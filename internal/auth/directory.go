package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// StaticDirectory is an in-memory Directory implementation. It stands in for
// the external user store and backs local deployments and tests.
type StaticDirectory struct {
	mu    sync.RWMutex
	users map[string]Identity
}

// NewStaticDirectory creates a directory seeded with the given identities.
func NewStaticDirectory(users ...Identity) *StaticDirectory {
	d := &StaticDirectory{users: make(map[string]Identity, len(users))}
	for _, user := range users {
		d.users[user.ID] = user
	}
	return d
}

// Add inserts or replaces a user.
func (d *StaticDirectory) Add(user Identity) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[user.ID] = user
}

// Remove deletes a user by ID.
func (d *StaticDirectory) Remove(userID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.users, userID)
}

// Lookup implements Directory.
func (d *StaticDirectory) Lookup(_ context.Context, userID string) (Identity, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	user, ok := d.users[userID]
	return user, ok, nil
}

// LoadUsersFile reads a JSON array of identities, used to seed a
// StaticDirectory from the USERS_FILE setting.
func LoadUsersFile(path string) ([]Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("auth: reading users file: %w", err)
	}
	var users []Identity
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("auth: parsing users file %s: %w", path, err)
	}
	return users, nil
}
