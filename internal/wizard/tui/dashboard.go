package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tempsense/tempsense/internal/device"
	"github.com/tempsense/tempsense/internal/discovery"
	"github.com/tempsense/tempsense/internal/session"
	"github.com/tempsense/tempsense/internal/settings"
	"github.com/tempsense/tempsense/internal/ui"
)

// Persister records the last configuration read from a device, typically
// in the on-disk registry. It runs off the event loop.
type Persister func(dev *discovery.Device, rec settings.Record) error

type persistedMsg struct {
	err error
}

// BackMsg asks the app to return to the discovery screen.
type BackMsg struct{}

// dashboardKeyMap defines key bindings for the dashboard
type dashboardKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Coarse key.Binding
	Enter  key.Binding
	Cancel key.Binding
	Reload key.Binding
	Back   key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k dashboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Left, k.Enter, k.Reload, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k dashboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Coarse},
		{k.Enter, k.Cancel, k.Reload},
		{k.Back, k.Help, k.Quit},
	}
}

// editingKeyMap is shown while a text input is open
type editingKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

func (k editingKeyMap) ShortHelp() []key.Binding  { return []key.Binding{k.Confirm, k.Cancel} }
func (k editingKeyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

// DashboardModel edits one device's configuration. Every device
// interaction goes through the embedded session controller, which owns
// the record, the preview and the polling schedule.
type DashboardModel struct {
	Device  *discovery.Device
	Session *session.Controller

	Cursor int

	// Editing is set while the text input for the selected field is open
	Editing bool
	Input   textinput.Model

	// original holds the pushed value of the field being cycled with
	// ←/→ or typed into so esc can put it back
	original     any
	originalFrom settings.Field

	notice    string
	noticeErr bool

	persist Persister

	Width       int
	Height      int
	Spinner     spinner.Model
	Slider      progress.Model
	Help        help.Model
	Keys        dashboardKeyMap
	EditKeys    editingKeyMap
	ShowingHelp bool
}

// NewDashboardModel creates a dashboard for dev. persist may be nil.
func NewDashboardModel(dev *discovery.Device, ctrl *session.Controller, persist Persister) DashboardModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	input := textinput.New()
	input.CharLimit = settings.MaxScrollingTextLen
	input.Width = 32
	input.PromptStyle = FocusedInputStyle

	slider := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	slider.Width = sliderWidth

	return DashboardModel{
		Device:  dev,
		Session: ctrl,
		Input:   input,
		persist: persist,
		Spinner: s,
		Slider:  slider,
		Help:    help.New(),
		Keys: dashboardKeyMap{
			Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
			Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
			Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "change")),
			Right:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "increase")),
			Coarse: key.NewBinding(key.WithKeys("shift+left", "shift+right"), key.WithHelp("shift+←/→", "step ×10")),
			Enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit/apply")),
			Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "discard")),
			Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
			Back:   key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "devices")),
			Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
			Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		},
		EditKeys: editingKeyMap{
			Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
			Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		},
	}
}

// Init starts the configuration load and the spinner
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.Session.Init(), m.Spinner.Tick)
}

// Selected returns the spec of the field under the cursor
func (m DashboardModel) Selected() settings.FieldSpec {
	return settings.Catalogue[m.Cursor]
}

// Update routes session messages to the controller and handles keys
func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case session.ConfigLoadedMsg:
		cmd := m.Session.Update(msg)
		if msg.Err == nil {
			m.original = nil
			m.setNotice("Configuration loaded", false)
			return m, tea.Batch(cmd, m.persistCmd())
		}
		return m, cmd

	case session.PollTickMsg, session.TelemetryMsg:
		return m, m.Session.Update(msg)

	case session.PushResultMsg:
		cmd := m.Session.Update(msg)
		if msg.Err != nil {
			m.setNotice(fmt.Sprintf("%s not saved: %s", msg.Trigger, device.GetShortErrorMessage(msg.Err)), true)
		}
		return m, cmd

	case persistedMsg:
		if msg.err != nil {
			m.setNotice("Could not update device registry: "+msg.err.Error(), true)
		}
		return m, nil

	case spinner.TickMsg:
		if m.Session.State() == session.StateReady {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Help.Width = msg.Width - 4
		return m, nil

	case tea.KeyMsg:
		if m.Editing {
			return m.updateEditing(msg)
		}
		return m.updateNormal(msg)
	}

	return m, nil
}

func (m DashboardModel) updateNormal(msg tea.KeyMsg) (DashboardModel, tea.Cmd) {
	if m.ShowingHelp {
		m.ShowingHelp = false
		return m, nil
	}

	spec := m.Selected()

	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Help):
		m.ShowingHelp = true
		return m, nil

	case key.Matches(msg, m.Keys.Up):
		cmd := m.leaveField()
		if m.Cursor > 0 {
			m.Cursor--
		}
		return m, cmd

	case key.Matches(msg, m.Keys.Down):
		cmd := m.leaveField()
		if m.Cursor < len(settings.Catalogue)-1 {
			m.Cursor++
		}
		return m, cmd

	case msg.String() == "shift+left":
		return m.adjust(spec, -10)
	case msg.String() == "shift+right":
		return m.adjust(spec, 10)
	case key.Matches(msg, m.Keys.Left):
		return m.adjust(spec, -1)
	case key.Matches(msg, m.Keys.Right):
		return m.adjust(spec, 1)

	case key.Matches(msg, m.Keys.Enter):
		if m.Session.Pending(spec.Field) {
			return m, m.commitPending()
		}
		switch spec.Kind {
		case settings.KindBool:
			v, _ := m.Session.Record().Value(spec.Field)
			b, _ := v.(bool)
			return m, m.commit(spec.Field, !b)
		case settings.KindText, settings.KindInt, settings.KindFloat:
			return m.openEditor(spec)
		}
		return m, nil

	case key.Matches(msg, m.Keys.Cancel):
		if m.Session.Pending(spec.Field) {
			m.revert()
			return m, nil
		}
		return m, func() tea.Msg { return BackMsg{} }

	case key.Matches(msg, m.Keys.Reload):
		m.setNotice("Reloading configuration...", false)
		return m, tea.Batch(m.Session.Reload(), m.Spinner.Tick)

	case key.Matches(msg, m.Keys.Back):
		cmd := m.leaveField()
		return m, tea.Batch(cmd, func() tea.Msg { return BackMsg{} })
	}

	return m, nil
}

// adjust moves the selected field by steps. Enums cycle, booleans toggle,
// numbers move by their step and are clamped by the model.
func (m DashboardModel) adjust(spec settings.FieldSpec, steps int) (DashboardModel, tea.Cmd) {
	current, _ := m.Session.Record().Value(spec.Field)

	var next any
	switch spec.Kind {
	case settings.KindEnum:
		next = cycleOption(spec.Options, current.(string), steps)
	case settings.KindBool:
		next = !current.(bool)
	case settings.KindInt:
		next = current.(int) + int(spec.Step)*steps
	case settings.KindFloat:
		v := current.(float64) + spec.Step*float64(steps)
		next = math.Round(v*10) / 10
	default:
		return m, nil
	}

	if spec.Class == settings.Discrete && !m.Session.Pending(spec.Field) {
		m.original = current
		m.originalFrom = spec.Field
	}

	cmd, err := m.Session.Drag(spec.Field, next)
	if err != nil {
		m.setNotice(err.Error(), true)
		return m, nil
	}
	return m, cmd
}

func cycleOption(options []string, current string, steps int) string {
	if len(options) == 0 {
		return current
	}
	idx := 0
	for i, opt := range options {
		if opt == current {
			idx = i
			break
		}
	}
	n := len(options)
	if steps < 0 {
		idx = (idx - 1 + n) % n
	} else {
		idx = (idx + 1) % n
	}
	return options[idx]
}

// leaveField commits a pending discrete edit when the cursor moves away.
func (m *DashboardModel) leaveField() tea.Cmd {
	if m.Session.Pending(m.Selected().Field) {
		return m.commitPending()
	}
	return nil
}

func (m *DashboardModel) commitPending() tea.Cmd {
	f := m.Selected().Field
	v, _ := m.Session.Record().Value(f)
	m.original = nil
	return m.commit(f, v)
}

func (m *DashboardModel) commit(f settings.Field, v any) tea.Cmd {
	cmd, err := m.Session.Commit(f, v)
	if err != nil {
		m.setNotice(err.Error(), true)
		return nil
	}
	m.setNotice(fmt.Sprintf("%s → %s", f, m.Session.Readout(f)), false)
	return cmd
}

func (m *DashboardModel) revert() {
	f := m.Selected().Field
	if m.original != nil && m.originalFrom == f {
		if err := m.Session.Revert(f, m.original); err != nil {
			m.setNotice(err.Error(), true)
			return
		}
	}
	m.original = nil
	m.setNotice(fmt.Sprintf("%s change discarded", f), false)
}

func (m DashboardModel) openEditor(spec settings.FieldSpec) (DashboardModel, tea.Cmd) {
	v, _ := m.Session.Record().Value(spec.Field)
	switch val := v.(type) {
	case string:
		m.Input.SetValue(val)
	case int:
		m.Input.SetValue(strconv.Itoa(val))
	case float64:
		m.Input.SetValue(strconv.FormatFloat(val, 'f', -1, 64))
	}
	m.Input.CursorEnd()
	m.Editing = true
	if spec.Field == settings.FieldScrollingText {
		m.original = v
		m.originalFrom = spec.Field
	}
	return m, m.Input.Focus()
}

func (m DashboardModel) updateEditing(msg tea.KeyMsg) (DashboardModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Editing = false
		m.Input.Blur()
		if m.Session.Pending(m.Selected().Field) {
			m.revert()
		}
		return m, nil

	case "enter":
		spec := m.Selected()
		f, v, err := settings.ParseValue(string(spec.Field), m.Input.Value())
		if err != nil {
			m.setNotice(err.Error(), true)
			return m, nil
		}
		m.Editing = false
		m.Input.Blur()
		m.original = nil
		return m, m.commit(f, v)

	case "ctrl+c":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)

	// the marquee preview follows typing; the push waits for enter
	if f := m.Selected().Field; f == settings.FieldScrollingText {
		if _, err := m.Session.Drag(f, m.Input.Value()); err != nil {
			m.setNotice(err.Error(), true)
		}
	}
	return m, cmd
}

func (m *DashboardModel) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
}

func (m DashboardModel) persistCmd() tea.Cmd {
	if m.persist == nil {
		return nil
	}
	persist, dev, rec := m.persist, m.Device, m.Session.Record()
	return func() tea.Msg {
		return persistedMsg{err: persist(dev, rec)}
	}
}

// View renders the dashboard
func (m DashboardModel) View() string {
	helpText := m.Help.View(m.Keys)
	if m.Editing {
		helpText = m.Help.View(m.EditKeys)
	}

	if m.ShowingHelp {
		box := PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			SectionStyle.UnsetMarginTop().Render("Keys"),
			"",
			m.Help.FullHelpView(m.Keys.FullHelp()),
			"",
			SubtitleStyle.Render("LED intensity and animation speed are sent while you move them."),
			SubtitleStyle.Render("Other fields are sent when you press enter or leave the row."),
		))
		return RenderModal(box, max(m.Width, MinTerminalWidth), max(m.Height, 10))
	}

	fields := m.renderFields()
	side := lipgloss.JoinVertical(lipgloss.Left,
		SectionStyle.Render("Screen"),
		ui.RenderPreview(m.Session.Preview()),
		"",
		m.renderReading(),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top, fields, "   ", side)
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitle(),
		body,
		"",
		m.renderStatus(),
	)
	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

func (m DashboardModel) renderTitle() string {
	name := m.Device.IP
	if m.Device.ID != "" {
		name = "tempsense-" + m.Device.ID
	}
	return lipgloss.NewStyle().Padding(1, 1, 0, 1).Render(
		lipgloss.NewStyle().Foreground(TextColor).Bold(true).Render(name) + "  " +
			SubtitleStyle.Render(fmt.Sprintf("%s:%d", m.Device.IP, m.Device.Port)))
}

func (m DashboardModel) renderFields() string {
	var b strings.Builder
	b.WriteString(SectionStyle.Render("Settings"))
	b.WriteString("\n")
	for i, spec := range settings.Catalogue {
		b.WriteString(m.renderField(spec, i == m.Cursor))
		b.WriteString("\n")
	}
	return lipgloss.NewStyle().PaddingLeft(1).Render(b.String())
}

func (m DashboardModel) renderField(spec settings.FieldSpec, selected bool) string {
	prefix := "  "
	label := FieldLabelStyle.Render(spec.Label)
	if selected {
		prefix = "→ "
		label = SelectedLabelStyle.Render(spec.Label)
	}

	if selected && m.Editing {
		return prefix + label + InlineEditorStyle().Render(m.Input.View())
	}

	value := m.Session.Readout(spec.Field)
	if spec.Unit != "" {
		value += " " + spec.Unit
	}
	if spec.Kind == settings.KindText {
		value = fmt.Sprintf("%q", truncateRunes(value, 24))
	}

	var rendered string
	switch {
	case spec.Class == settings.Continuous:
		v, _ := m.Session.Record().Value(spec.Field)
		fraction := (float64(v.(int)) - spec.Min) / (spec.Max - spec.Min)
		rendered = m.Slider.ViewAs(fraction) + " " + FieldValueStyle.Render(value)
	case spec.Kind == settings.KindEnum && selected:
		rendered = FieldValueStyle.Render("‹ " + value + " ›")
	default:
		rendered = FieldValueStyle.Render(value)
	}

	if m.Session.Pending(spec.Field) {
		rendered += " " + PendingStyle.Render("● enter to apply")
	}
	return prefix + label + rendered
}

func (m DashboardModel) renderReading() string {
	sample, at, ok := m.Session.Sample()
	if !ok {
		return SubtitleStyle.Render("No sensor reading yet")
	}
	age := time.Since(at).Round(time.Second)
	return lipgloss.JoinVertical(lipgloss.Left,
		FieldValueStyle.Render(fmt.Sprintf("%.1f°C  %.1f%%", sample.Temperature, sample.Humidity)),
		SubtitleStyle.Render(fmt.Sprintf("updated %s ago", age)),
	)
}

func (m DashboardModel) renderStatus() string {
	stats := m.Session.Stats()

	var state string
	if m.Session.State() == session.StateReady {
		state = OKTextStyle.Render("● Ready")
	} else if err := m.Session.LoadErr(); err != nil {
		state = ErrorTextStyle.Render("✗ Load failed: " + device.GetShortErrorMessage(err) + " (r to retry)")
	} else {
		state = SpinnerStyle.Render(m.Spinner.View() + " Loading configuration")
	}

	parts := []string{state, fmt.Sprintf("pushes %d ok", stats.PushesOK)}
	if stats.InFlight > 0 {
		parts = append(parts, fmt.Sprintf("%d in flight", stats.InFlight))
	}
	if stats.PushesFailed > 0 {
		parts = append(parts, ErrorTextStyle.Render(fmt.Sprintf("%d failed", stats.PushesFailed)))
	}
	if stats.LastTelemetryErr != nil {
		parts = append(parts, ErrorTextStyle.Render("sensor: "+device.GetShortErrorMessage(stats.LastTelemetryErr)))
	}

	lines := []string{StatusBarStyle.Render(strings.Join(parts, "  •  "))}
	if m.notice != "" {
		style := SubtitleStyle
		if m.noticeErr {
			style = ErrorTextStyle
		}
		lines = append(lines, StatusBarStyle.Render(style.Render(m.notice)))
	}
	return strings.Join(lines, "\n")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
