package tui

import (
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MaximVirta/trento/internal/storage"
)

func openTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBrowserTinyTerminal(t *testing.T) {
	store := openTestStore(t)

	// Terminals shorter than the chrome must still get a usable table.
	m := NewBrowserModel(store, 40, 5)
	if h := m.table.Height(); h < 1 {
		t.Errorf("table height = %d on a 5-row terminal, want >= 1", h)
	}
	if m.View() == "" {
		t.Error("View() empty for a live browser")
	}
}

func TestBrowserResizeClampsTable(t *testing.T) {
	store := openTestStore(t)
	m := NewBrowserModel(store, 100, 30)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 30, Height: 3})
	resized, ok := updated.(BrowserModel)
	if !ok {
		t.Fatalf("Update() returned %T, want BrowserModel", updated)
	}
	if h := resized.table.Height(); h < 1 {
		t.Errorf("table height = %d after shrinking to 3 rows, want >= 1", h)
	}
	if resized.showSidebar {
		t.Error("sidebar shown on a 30-column terminal")
	}
}
