package app

import (
	"strings"

	"quizmaster/internal/domain"
)

// UserNameKey is the single persisted key the quiz flow relies on.
const UserNameKey = "userName"

// DefaultPassThreshold is the percentage a result needs to count as passed.
const DefaultPassThreshold = 70

// KeyValueStore is the client-side persistent store (browser storage, cookie, file).
type KeyValueStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// SaveUserName trims and stores the display name; blank names are rejected.
func SaveUserName(store KeyValueStore, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &domain.ValidationError{Op: "save user name", Err: domain.ErrEmptyUserName}
	}
	if err := store.Set(UserNameKey, name); err != nil {
		return "", err
	}
	return name, nil
}

// LoadUserName reads the stored display name, if any.
func LoadUserName(store KeyValueStore) (string, bool, error) {
	name, ok, err := store.Get(UserNameKey)
	if err != nil || !ok {
		return "", false, err
	}
	name = strings.TrimSpace(name)
	return name, name != "", nil
}

// Passed applies the results-view cutoff to a score.
func Passed(result domain.SessionResult, threshold int) bool {
	return result.ScorePercent >= threshold
}
