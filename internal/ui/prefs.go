package ui

import (
	"fyne.io/fyne/v2"

	"ColoringBoard/internal/state"
)

// favoritesKey is the preferences key holding the favorite page ids.
const favoritesKey = "favorites"

// PreferencesStore keeps favorites in the fyne application preferences.
type PreferencesStore struct {
	Prefs fyne.Preferences
}

var _ state.Store = PreferencesStore{}

func (s PreferencesStore) Load() ([]string, error) {
	return s.Prefs.StringList(favoritesKey), nil
}

func (s PreferencesStore) Save(ids []string) error {
	s.Prefs.SetStringList(favoritesKey, ids)
	return nil
}
