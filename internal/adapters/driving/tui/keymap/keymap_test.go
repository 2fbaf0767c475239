package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyMap_Matches(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name    string
		msg     tea.KeyMsg
		binding key.Binding
	}{
		{"j moves down", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")}, km.Down},
		{"arrow moves up", tea.KeyMsg{Type: tea.KeyUp}, km.Up},
		{"enter selects", tea.KeyMsg{Type: tea.KeyEnter}, km.Select},
		{"esc goes back", tea.KeyMsg{Type: tea.KeyEsc}, km.Back},
		{"q quits", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}, km.Quit},
		{"ctrl+c quits", tea.KeyMsg{Type: tea.KeyCtrlC}, km.Quit},
		{"r reloads", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")}, km.Reload},
		{"pgdown pages", tea.KeyMsg{Type: tea.KeyPgDown}, km.PageDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, key.Matches(tt.msg, tt.binding))
		})
	}
}

func TestDefaultKeyMap_NoCrossMatch(t *testing.T) {
	km := DefaultKeyMap()
	assert.False(t, key.Matches(tea.KeyMsg{Type: tea.KeyEnter}, km.Back))
	assert.False(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")}, km.Down))
}

func TestHelp(t *testing.T) {
	km := DefaultKeyMap()
	assert.Equal(t, "[enter] select  [esc] back", Help(km.Select, km.Back))
	assert.Empty(t, Help())
	assert.Len(t, km.ListHelp(), 5)
}
