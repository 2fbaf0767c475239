// Package settings provides the settings view for the TUI.
package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/veritas-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/veritas-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/veritas-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/veritas-cli/internal/core/domain"
	"github.com/custodia-labs/veritas-cli/internal/core/ports/driving"
	"github.com/custodia-labs/veritas-cli/internal/core/services"
)

const secretMask = "********"

var errNoService = errors.New("settings service not available")

// View lists every setting and edits one at a time.
type View struct {
	styles  *styles.Styles
	keys    *keymap.KeyMap
	service driving.SettingsService

	settingKeys []string
	settings    *domain.AppSettings
	err         error
	status      string

	selected     int
	scrollOffset int
	editing      bool
	input        textinput.Model

	width  int
	height int
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, service driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	input := textinput.New()
	input.CharLimit = 256

	return &View{
		styles:      s,
		keys:        keymap.DefaultKeyMap(),
		service:     service,
		settingKeys: services.SettingKeys(),
		input:       input,
		width:       80,
		height:      24,
	}
}

// Init loads the current settings.
func (v *View) Init() tea.Cmd {
	service := v.service
	return func() tea.Msg {
		if service == nil {
			return messages.SettingsLoaded{Err: errNoService}
		}
		st, err := service.Get()
		return messages.SettingsLoaded{Settings: st, Err: err}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.SettingsLoaded:
		v.err = msg.Err
		if msg.Err == nil {
			v.settings = msg.Settings
		}
		return v, nil

	case messages.SettingSaved:
		if msg.Err != nil {
			v.err = msg.Err
			v.status = ""
			return v, nil
		}
		v.err = nil
		v.status = "Saved " + msg.Key
		return v, v.Init()

	case tea.KeyMsg:
		if v.editing {
			return v.handleEditKey(msg)
		}
		return v.handleKey(msg)
	}

	if v.editing {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Up):
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case key.Matches(msg, v.keys.Down):
		if v.selected < len(v.settingKeys)-1 {
			v.selected++
			v.adjustScroll()
		}
	case key.Matches(msg, v.keys.Select):
		return v, v.startEdit()
	case key.Matches(msg, v.keys.Reload):
		v.status = ""
		return v, v.Init()
	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
	return v, nil
}

func (v *View) startEdit() tea.Cmd {
	if v.settings == nil || v.selected >= len(v.settingKeys) {
		return nil
	}
	k := v.settingKeys[v.selected]
	current, err := services.SettingValue(v.settings, k)
	if err != nil {
		v.err = err
		return nil
	}

	v.editing = true
	v.status = ""
	v.err = nil
	if services.IsSecretSetting(k) {
		v.input.EchoMode = textinput.EchoPassword
		v.input.Placeholder = "Enter API key"
		v.input.SetValue("")
	} else {
		v.input.EchoMode = textinput.EchoNormal
		v.input.Placeholder = ""
		v.input.SetValue(current)
	}
	v.input.CursorEnd()
	return v.input.Focus()
}

func (v *View) handleEditKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		v.stopEdit()
		return v, nil
	case tea.KeyEnter:
		k := v.settingKeys[v.selected]
		value := strings.TrimSpace(v.input.Value())
		v.stopEdit()
		service := v.service
		return v, func() tea.Msg {
			if service == nil {
				return messages.SettingSaved{Key: k, Err: errNoService}
			}
			return messages.SettingSaved{Key: k, Err: service.Set(k, value)}
		}
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) stopEdit() {
	v.editing = false
	v.input.Blur()
	v.input.SetValue("")
}

func (v *View) adjustScroll() {
	visible := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visible {
		v.scrollOffset = v.selected - visible + 1
	}
}

func (v *View) visibleItemCount() int {
	return max(v.height-10, 1)
}

// View renders the settings list.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n")

	if v.settings == nil {
		if v.err != nil {
			b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		} else {
			b.WriteString(v.styles.Muted.Render("Loading settings..."))
		}
		b.WriteString("\n\n")
		b.WriteString(v.styles.Help.Render(keymap.Help(v.keys.Reload, v.keys.Back)))
		return b.String()
	}

	visible := v.visibleItemCount()
	end := min(v.scrollOffset+visible, len(v.settingKeys))
	for i := v.scrollOffset; i < end; i++ {
		b.WriteString(v.renderRow(i))
		b.WriteString("\n")
	}
	if len(v.settingKeys) > visible {
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]",
			v.scrollOffset+1, end, len(v.settingKeys))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if v.editing {
		b.WriteString(v.styles.Subtitle.Render(v.settingKeys[v.selected]))
		b.WriteString("\n")
		b.WriteString(v.input.View())
		b.WriteString("\n")
	}
	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	} else if v.status != "" {
		b.WriteString(v.styles.Muted.Render(v.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if v.editing {
		b.WriteString(v.styles.Help.Render("[enter] save  [esc] cancel"))
	} else {
		b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] edit  [r] reload  [esc] back"))
	}
	return b.String()
}

func (v *View) renderRow(i int) string {
	k := v.settingKeys[i]
	value, err := services.SettingValue(v.settings, k)
	switch {
	case err != nil:
		value = "?"
	case services.IsSecretSetting(k) && value != "":
		value = secretMask
	case value == "":
		value = "(not set)"
	}
	line := fmt.Sprintf("%-32s %s", k, value)
	if i == v.selected {
		return v.styles.Selected.Render("> " + line)
	}
	return v.styles.Normal.Render("  " + line)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.Width = max(width-4, 10)
	v.adjustScroll()
}

// Editing reports whether a value is being typed.
func (v *View) Editing() bool {
	return v.editing
}

// Settings returns the loaded settings.
func (v *View) Settings() *domain.AppSettings {
	return v.settings
}

// SelectedKey returns the key under the cursor.
func (v *View) SelectedKey() string {
	if v.selected < len(v.settingKeys) {
		return v.settingKeys[v.selected]
	}
	return ""
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
