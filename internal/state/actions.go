package state

// Action is a named state transition.
type Action interface {
	Name() string
}

type SetLoading struct {
	Loading bool `json:"loading"`
}

type SetError struct {
	Message *string `json:"message"`
}

type SetTheme struct {
	Theme Theme `json:"theme"`
}

type SetAPIs struct {
	APIs []APIDescriptor `json:"apis"`
}

type SetSelectedAPI struct {
	ID *string `json:"id"`
}

// UpdateAPIStatus replaces the status of a single descriptor.
type UpdateAPIStatus struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
}

func (SetLoading) Name() string      { return "setLoading" }
func (SetError) Name() string        { return "setError" }
func (SetTheme) Name() string        { return "setTheme" }
func (SetAPIs) Name() string         { return "setApis" }
func (SetSelectedAPI) Name() string  { return "setSelectedAPI" }
func (UpdateAPIStatus) Name() string { return "updateAPIStatus" }

// Reduce applies a to s and returns the next state. It never mutates s.
// Unknown actions return s unchanged.
func Reduce(s State, a Action) State {
	next := s.Clone()
	switch a := a.(type) {
	case SetLoading:
		next.IsLoading = a.Loading
	case SetError:
		next.Error = cloneString(a.Message)
	case SetTheme:
		next.Theme = a.Theme
	case SetAPIs:
		next.APIs = cloneAPIs(a.APIs)
	case SetSelectedAPI:
		next.SelectedAPI = cloneString(a.ID)
	case UpdateAPIStatus:
		for i := range next.APIs {
			if next.APIs[i].ID == a.ID {
				next.APIs[i].Status = a.Status
			}
		}
	}
	return next
}
