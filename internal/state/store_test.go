package state

import (
	"reflect"
	"sync"
	"testing"
)

func sampleAPIs() []APIDescriptor {
	return []APIDescriptor{
		{ID: "1", Name: "E-commerce API", Status: StatusOnline, ResponseTimeMs: 120},
		{ID: "2", Name: "Social Media GraphQL", Status: StatusMaintenance, ResponseTimeMs: 80},
	}
}

func TestReduce_OverwritesFields(t *testing.T) {
	msg := "boom"
	id := "2"

	s := Defaults()
	s = Reduce(s, SetLoading{Loading: true})
	s = Reduce(s, SetError{Message: &msg})
	s = Reduce(s, SetTheme{Theme: ThemeLight})
	s = Reduce(s, SetAPIs{APIs: sampleAPIs()})
	s = Reduce(s, SetSelectedAPI{ID: &id})

	if !s.IsLoading {
		t.Fatal("IsLoading = false, want true")
	}
	if s.Error == nil || *s.Error != "boom" {
		t.Fatalf("Error = %v, want boom", s.Error)
	}
	if s.Theme != ThemeLight {
		t.Fatalf("Theme = %q, want light", s.Theme)
	}
	if len(s.APIs) != 2 {
		t.Fatalf("APIs = %d, want 2", len(s.APIs))
	}
	if sel, ok := s.Selected(); !ok || sel.Name != "Social Media GraphQL" {
		t.Fatalf("Selected = %#v, %v", sel, ok)
	}

	s = Reduce(s, SetError{})
	s = Reduce(s, SetSelectedAPI{})
	if s.Error != nil || s.SelectedAPI != nil {
		t.Fatalf("clear actions left error=%v selected=%v", s.Error, s.SelectedAPI)
	}
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	prev := Reduce(Defaults(), SetAPIs{APIs: sampleAPIs()})
	before := prev.Clone()

	_ = Reduce(prev, UpdateAPIStatus{ID: "1", Status: StatusOffline})

	if !reflect.DeepEqual(prev, before) {
		t.Fatalf("Reduce mutated its input: got %#v want %#v", prev, before)
	}
}

func TestReduce_UpdateAPIStatusTouchesOnlyMatch(t *testing.T) {
	s := Reduce(Defaults(), SetAPIs{APIs: sampleAPIs()})
	s = Reduce(s, UpdateAPIStatus{ID: "1", Status: StatusOffline})

	first, _ := s.API("1")
	if first.Status != StatusOffline || first.ResponseTimeMs != 120 || first.Name != "E-commerce API" {
		t.Fatalf("descriptor 1 = %#v, want only status changed", first)
	}
	second, _ := s.API("2")
	if second.Status != StatusMaintenance {
		t.Fatalf("descriptor 2 status = %q, want untouched", second.Status)
	}
}

func TestReduce_UpdateAPIStatusUnknownIDIsNoop(t *testing.T) {
	s := Reduce(Defaults(), SetAPIs{APIs: sampleAPIs()})
	next := Reduce(s, UpdateAPIStatus{ID: "x", Status: StatusMaintenance})

	if !reflect.DeepEqual(next.APIs, s.APIs) {
		t.Fatalf("APIs changed for unknown id: got %#v want %#v", next.APIs, s.APIs)
	}
}

func TestStore_SnapshotIsIndependent(t *testing.T) {
	store := NewStore(Defaults())
	store.SetAPIs(sampleAPIs())

	snap := store.Snapshot()
	snap.APIs[0].Name = "mutated"

	if got := store.Snapshot().APIs[0].Name; got != "E-commerce API" {
		t.Fatalf("Snapshot should clone APIs; got name %q", got)
	}
}

func TestStore_ObserversSeeEveryTransitionInOrder(t *testing.T) {
	store := NewStore(Defaults())

	var names []string
	unsubscribe := store.Subscribe(func(a Action, s State) {
		names = append(names, a.Name())
	})

	store.SetTheme(ThemeLight)
	store.SetSelectedAPI("1")
	store.UpdateAPIStatus("1", StatusOffline)
	store.ReportError("oops")

	want := []string{"setTheme", "setSelectedAPI", "updateAPIStatus", "setError"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("observed = %v, want %v", names, want)
	}

	unsubscribe()
	store.SetLoading(true)
	if len(names) != len(want) {
		t.Fatalf("observer called after unsubscribe: %v", names)
	}
	if got := store.Snapshot(); got.Error == nil || *got.Error != "oops" || !got.IsLoading {
		t.Fatalf("state = %#v, want error oops and loading", got)
	}
}

func TestStore_ZeroValueUsable(t *testing.T) {
	var store Store
	called := false
	store.Subscribe(func(Action, State) { called = true })
	store.SetTheme(ThemeLight)
	if !called || store.Snapshot().Theme != ThemeLight {
		t.Fatal("zero Store should accept subscribers and dispatches")
	}
}

func TestStore_ConcurrentDispatch(t *testing.T) {
	store := NewStore(Defaults())
	store.SetAPIs(sampleAPIs())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				store.UpdateAPIStatus("1", StatusOffline)
			} else {
				_ = store.Snapshot()
			}
		}(i)
	}
	wg.Wait()

	if api, _ := store.Snapshot().API("1"); api.Status != StatusOffline {
		t.Fatalf("status = %q, want offline", api.Status)
	}
}

func TestParseTheme(t *testing.T) {
	tests := []struct {
		in   string
		want Theme
		ok   bool
	}{
		{"dark", ThemeDark, true},
		{" Light ", ThemeLight, true},
		{"Dracula", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseTheme(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseTheme(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
	if ThemeDark.Toggle() != ThemeLight || ThemeLight.Toggle() != ThemeDark {
		t.Fatal("Toggle should flip between dark and light")
	}
}
