package state

import "strings"

// Status is the liveness of an API as shown to the user.
type Status string

const (
	StatusOnline      Status = "online"
	StatusOffline     Status = "offline"
	StatusMaintenance Status = "maintenance"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOnline, StatusOffline, StatusMaintenance:
		return true
	}
	return false
}

// Theme is the UI color scheme.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ParseTheme normalizes value into a Theme.
func ParseTheme(value string) (Theme, bool) {
	switch Theme(strings.ToLower(strings.TrimSpace(value))) {
	case ThemeDark:
		return ThemeDark, true
	case ThemeLight:
		return ThemeLight, true
	}
	return "", false
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// APIDescriptor is one known API project.
type APIDescriptor struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Status         Status  `json:"status"`
	ResponseTimeMs int64   `json:"responseTime"`
	UptimePercent  float64 `json:"uptime"`
}

// State is the process-wide application state.
type State struct {
	IsLoading   bool            `json:"isLoading"`
	Error       *string         `json:"error"`
	Theme       Theme           `json:"theme"`
	APIs        []APIDescriptor `json:"apis"`
	SelectedAPI *string         `json:"selectedAPI"`
}

// Defaults returns the state every process starts from before rehydration.
func Defaults() State {
	return State{Theme: ThemeDark}
}

// API returns the descriptor with the given id.
func (s State) API(id string) (APIDescriptor, bool) {
	for _, api := range s.APIs {
		if api.ID == id {
			return api, true
		}
	}
	return APIDescriptor{}, false
}

// Selected returns the selected descriptor, if any.
func (s State) Selected() (APIDescriptor, bool) {
	if s.SelectedAPI == nil {
		return APIDescriptor{}, false
	}
	return s.API(*s.SelectedAPI)
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	dup := s
	dup.APIs = cloneAPIs(s.APIs)
	dup.Error = cloneString(s.Error)
	dup.SelectedAPI = cloneString(s.SelectedAPI)
	return dup
}

func cloneAPIs(apis []APIDescriptor) []APIDescriptor {
	if apis == nil {
		return nil
	}
	dup := make([]APIDescriptor, len(apis))
	copy(dup, apis)
	return dup
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
