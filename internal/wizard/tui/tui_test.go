package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tempsense/tempsense/internal/display"
	"github.com/tempsense/tempsense/internal/discovery"
	"github.com/tempsense/tempsense/internal/session"
	"github.com/tempsense/tempsense/internal/settings"
)

type fakeTransport struct {
	mu     sync.Mutex
	pushes []settings.Record
}

func (f *fakeTransport) GetConfig(ctx context.Context) (settings.Partial, error) {
	return settings.Defaults().Partial(), nil
}

func (f *fakeTransport) SetConfig(ctx context.Context, r settings.Record) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes = append(f.pushes, r)
	return "Config updated", nil
}

func (f *fakeTransport) GetTelemetry(ctx context.Context) (display.Sample, error) {
	return display.Sample{Temperature: 24.5, Humidity: 45.2}, nil
}

var testDevice = &discovery.Device{ID: "a1b2c3", IP: "192.168.1.40", Port: 80}

func keyMsg(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func runeMsg(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func fieldIndex(t *testing.T, f settings.Field) int {
	t.Helper()
	for i, spec := range settings.Catalogue {
		if spec.Field == f {
			return i
		}
	}
	t.Fatalf("field %s not in catalogue", f)
	return 0
}

func newReadyDashboard(t *testing.T) DashboardModel {
	t.Helper()
	ctrl := session.New(&fakeTransport{}, session.Options{PollInterval: time.Hour, RequestTimeout: time.Second})
	m := NewDashboardModel(testDevice, ctrl, nil)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = m.Update(session.ConfigLoadedMsg{Seq: 1, Partial: settings.Defaults().Partial()})
	if m.Session.State() != session.StateReady {
		t.Fatal("dashboard did not become ready")
	}
	return m
}

func TestCycleOption(t *testing.T) {
	opts := []string{"a", "b", "c"}
	tests := []struct {
		current string
		steps   int
		want    string
	}{
		{"a", 1, "b"},
		{"c", 1, "a"},
		{"a", -1, "c"},
		{"b", -10, "a"},
		{"unknown", 1, "b"},
	}
	for _, tt := range tests {
		if got := cycleOption(opts, tt.current, tt.steps); got != tt.want {
			t.Errorf("cycleOption(%q, %d) = %q, want %q", tt.current, tt.steps, got, tt.want)
		}
	}
}

func TestParseManualAddress(t *testing.T) {
	tests := []struct {
		input    string
		wantIP   string
		wantPort int
		wantErr  bool
	}{
		{input: "192.168.4.1", wantIP: "192.168.4.1", wantPort: 80},
		{input: " 10.0.0.7:8080 ", wantIP: "10.0.0.7", wantPort: 8080},
		{input: "[fe80::1]:81", wantIP: "fe80::1", wantPort: 81},
		{input: "tempsense-a1b2c3.local", wantIP: "tempsense-a1b2c3.local", wantPort: 80},
		{input: "", wantErr: true},
		{input: "10.0.0.7:99999", wantErr: true},
		{input: "http://x/y", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			dev, err := parseManualAddress(tt.input, 80)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if dev.IP != tt.wantIP || dev.Port != tt.wantPort {
				t.Errorf("got %s:%d, want %s:%d", dev.IP, dev.Port, tt.wantIP, tt.wantPort)
			}
			if dev.ID != "" {
				t.Errorf("manual device should have no ID, got %q", dev.ID)
			}
		})
	}
}

func TestDashboardSliderPushesEveryStep(t *testing.T) {
	m := newReadyDashboard(t)
	m.Cursor = fieldIndex(t, settings.FieldLEDIntensity)
	start := m.Session.Record().LEDIntensity

	var cmd tea.Cmd
	m, cmd = m.Update(keyMsg(tea.KeyRight))
	if cmd == nil {
		t.Fatal("slider step produced no push")
	}
	m, _ = m.Update(keyMsg(tea.KeyShiftLeft))

	if got := m.Session.Stats().PushesSent; got != 2 {
		t.Errorf("PushesSent = %d, want 2", got)
	}
	if got := m.Session.Record().LEDIntensity; got != start+1-10 {
		t.Errorf("LEDIntensity = %d, want %d", got, start-9)
	}
	if m.Session.Pending(settings.FieldLEDIntensity) {
		t.Error("slider field should never be pending")
	}
}

func TestDashboardDiscreteEditAppliesOnEnter(t *testing.T) {
	m := newReadyDashboard(t)
	m.Cursor = fieldIndex(t, settings.FieldTopPosition)
	before := m.Session.Record().TopPosition

	m, cmd := m.Update(keyMsg(tea.KeyRight))
	if cmd != nil {
		t.Error("cycling an enum should not push")
	}
	if !m.Session.Pending(settings.FieldTopPosition) {
		t.Fatal("cycled enum should be pending")
	}
	if m.Session.Record().TopPosition == before {
		t.Fatal("enum did not change")
	}
	if !strings.Contains(m.View(), "enter to apply") {
		t.Error("pending marker not rendered")
	}

	m, cmd = m.Update(keyMsg(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("enter did not push the pending edit")
	}
	if m.Session.Pending(settings.FieldTopPosition) {
		t.Error("field still pending after apply")
	}
	if got := m.Session.Stats().PushesSent; got != 1 {
		t.Errorf("PushesSent = %d, want 1", got)
	}
}

func TestDashboardEscRevertsPendingEdit(t *testing.T) {
	m := newReadyDashboard(t)
	m.Cursor = fieldIndex(t, settings.FieldLEDColorScheme)
	before := m.Session.Record().LEDColorScheme

	m, _ = m.Update(keyMsg(tea.KeyRight))
	m, _ = m.Update(keyMsg(tea.KeyRight))
	m, cmd := m.Update(keyMsg(tea.KeyEsc))
	if cmd != nil {
		t.Error("esc with a pending edit should not leave the dashboard")
	}
	if got := m.Session.Record().LEDColorScheme; got != before {
		t.Errorf("LEDColorScheme = %q, want %q", got, before)
	}
	if m.Session.Pending(settings.FieldLEDColorScheme) {
		t.Error("field still pending after esc")
	}
	if m.Session.Stats().PushesSent != 0 {
		t.Error("revert pushed")
	}
}

func TestDashboardLeavingRowAppliesEdit(t *testing.T) {
	m := newReadyDashboard(t)
	m.Cursor = fieldIndex(t, settings.FieldMarqueeEnabled)

	m, _ = m.Update(keyMsg(tea.KeyLeft))
	m, cmd := m.Update(keyMsg(tea.KeyDown))
	if cmd == nil {
		t.Fatal("moving away did not push")
	}
	if m.Cursor != fieldIndex(t, settings.FieldMarqueeEnabled)+1 {
		t.Errorf("cursor = %d", m.Cursor)
	}
	if m.Session.Pending(settings.FieldMarqueeEnabled) {
		t.Error("field still pending")
	}
}

func TestDashboardTextEditor(t *testing.T) {
	m := newReadyDashboard(t)
	m.Cursor = fieldIndex(t, settings.FieldScrollingText)

	m, _ = m.Update(keyMsg(tea.KeyEnter))
	if !m.Editing {
		t.Fatal("enter did not open the editor")
	}
	m.Input.SetValue("HELLO WORLD")

	m, cmd := m.Update(keyMsg(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("applying text did not push")
	}
	if m.Editing {
		t.Error("editor still open")
	}
	if got := m.Session.Record().ScrollingText; got != "HELLO WORLD" {
		t.Errorf("ScrollingText = %q", got)
	}
	if got := m.Session.Preview().MarqueeText; got != "HELLO WORLD" {
		t.Errorf("preview marquee = %q", got)
	}
}

func TestDashboardTextPreviewFollowsTyping(t *testing.T) {
	tr := &fakeTransport{}
	ctrl := session.New(tr, session.Options{PollInterval: time.Hour, RequestTimeout: time.Second})
	m := NewDashboardModel(testDevice, ctrl, nil)
	m, _ = m.Update(session.ConfigLoadedMsg{Seq: 1, Partial: settings.Defaults().Partial()})
	m.Cursor = fieldIndex(t, settings.FieldScrollingText)
	before := m.Session.Record().ScrollingText

	m, _ = m.Update(keyMsg(tea.KeyEnter))
	m.Input.SetValue("")
	for _, r := range "HI" {
		m, _ = m.Update(runeMsg(string(r)))
	}

	if got := m.Session.Preview().MarqueeText; got != "HI" {
		t.Errorf("preview marquee = %q, want %q", got, "HI")
	}
	if got := m.Session.Stats().PushesSent; got != 0 {
		t.Errorf("PushesSent = %d before enter, want 0", got)
	}
	if !m.Session.Pending(settings.FieldScrollingText) {
		t.Error("typed text should be pending")
	}

	m, _ = m.Update(keyMsg(tea.KeyEsc))
	if m.Editing {
		t.Error("esc did not close the editor")
	}
	if got := m.Session.Record().ScrollingText; got != before {
		t.Errorf("ScrollingText after esc = %q, want %q", got, before)
	}
	if got := m.Session.Preview().MarqueeText; got != before {
		t.Errorf("preview marquee after esc = %q, want %q", got, before)
	}
	if m.Session.Stats().PushesSent != 0 || len(tr.pushes) != 0 {
		t.Error("discarded text was pushed")
	}
}

func TestDashboardRejectsBadNumber(t *testing.T) {
	m := newReadyDashboard(t)
	m.Cursor = fieldIndex(t, settings.FieldUpdateInterval)
	before := m.Session.Record().UpdateInterval

	m, _ = m.Update(keyMsg(tea.KeyEnter))
	m.Input.SetValue("fast")
	m, cmd := m.Update(keyMsg(tea.KeyEnter))
	if cmd != nil {
		t.Error("invalid number pushed")
	}
	if !m.Editing {
		t.Error("editor should stay open after a parse error")
	}
	if !m.noticeErr || !strings.Contains(m.notice, "not a number") {
		t.Errorf("notice = %q", m.notice)
	}
	if m.Session.Record().UpdateInterval != before {
		t.Error("value changed")
	}
}

func TestDashboardBoolEnterToggles(t *testing.T) {
	m := newReadyDashboard(t)
	m.Cursor = fieldIndex(t, settings.FieldLEDEnabled)
	before := m.Session.Record().LEDEnabled

	m, cmd := m.Update(keyMsg(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("toggle did not push")
	}
	if m.Session.Record().LEDEnabled == before {
		t.Error("LEDEnabled not toggled")
	}
}

func TestDashboardPushFailureNotice(t *testing.T) {
	m := newReadyDashboard(t)
	m, _ = m.Update(session.PushResultMsg{Seq: 1, Trigger: settings.FieldLEDIntensity, Err: errors.New("HTTP 500")})
	if !m.noticeErr || !strings.Contains(m.notice, "ledIntensity") {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestDashboardPersistsAfterLoad(t *testing.T) {
	var got settings.Record
	persist := func(dev *discovery.Device, rec settings.Record) error {
		got = rec
		return nil
	}
	ctrl := session.New(&fakeTransport{}, session.Options{PollInterval: time.Hour})
	m := NewDashboardModel(testDevice, ctrl, persist)

	p := settings.Defaults().Partial()
	text := "STORED"
	p.ScrollingText = &text
	m, _ = m.Update(session.ConfigLoadedMsg{Seq: 1, Partial: p})

	if msg, ok := m.persistCmd()().(persistedMsg); !ok || msg.err != nil {
		t.Fatalf("persist returned %#v", msg)
	}
	if got.ScrollingText != "STORED" {
		t.Errorf("persisted record = %+v", got)
	}
}

func TestDashboardViewLoading(t *testing.T) {
	ctrl := session.New(&fakeTransport{}, session.Options{})
	m := NewDashboardModel(testDevice, ctrl, nil)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = m.Update(session.ConfigLoadedMsg{Seq: 1, Err: errors.New("connection refused")})

	view := m.View()
	for _, want := range []string{"tempsense-a1b2c3", "LED Intensity", "Load failed", "r to retry"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestDiscoverySelectsDevice(t *testing.T) {
	m := NewDiscoveryModel(time.Second, 80)
	m.Scan = func(ctx context.Context, timeout time.Duration) ([]*discovery.Device, error) {
		return []*discovery.Device{testDevice}, nil
	}
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m, _ = m.Update(scanCompleteMsg{devices: []*discovery.Device{testDevice}})

	_, cmd := m.Update(keyMsg(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("enter produced no command")
	}
	sel, ok := cmd().(DeviceSelectedMsg)
	if !ok || sel.Device != testDevice {
		t.Errorf("got %#v", sel)
	}
}

func TestDiscoveryManualEntry(t *testing.T) {
	m := NewDiscoveryModel(time.Second, 80)
	m, _ = m.Update(runeMsg("m"))
	if !m.ManualMode {
		t.Fatal("m did not open manual entry")
	}
	m.AddrInput.SetValue("10.0.0.9:8080")
	m, cmd := m.Update(keyMsg(tea.KeyEnter))
	if cmd == nil || m.ManualMode {
		t.Fatal("manual entry not accepted")
	}

	items := m.DeviceList.Items()
	if len(items) != 1 {
		t.Fatalf("items = %d", len(items))
	}
	dev := items[0].(deviceItem).device
	if dev.IP != "10.0.0.9" || dev.Port != 8080 {
		t.Errorf("device = %s:%d", dev.IP, dev.Port)
	}

	// manual entries survive a rescan
	m, _ = m.Update(scanCompleteMsg{devices: []*discovery.Device{testDevice}})
	if len(m.DeviceList.Items()) != 2 {
		t.Errorf("items after rescan = %d", len(m.DeviceList.Items()))
	}
}

func TestAppDropsStaleDashboardMessages(t *testing.T) {
	opts := Options{
		Connect: func(*discovery.Device) session.Transport { return &fakeTransport{} },
		Scan: func(context.Context, time.Duration) ([]*discovery.Device, error) {
			return nil, nil
		},
		PollInterval: time.Hour,
	}
	app := NewAppModel(testDevice, opts)
	if app.CurrentScreen != ScreenDashboard {
		t.Fatalf("screen = %s", app.CurrentScreen)
	}
	stale := app.generation - 1

	model, _ := app.Update(dashboardMsg{gen: stale, msg: session.ConfigLoadedMsg{Partial: settings.Defaults().Partial()}})
	app = model.(AppModel)
	if app.DashboardModel.Session.State() != session.StateLoading {
		t.Error("stale message was applied")
	}

	model, _ = app.Update(dashboardMsg{gen: app.generation, msg: session.ConfigLoadedMsg{Partial: settings.Defaults().Partial()}})
	app = model.(AppModel)
	if app.DashboardModel.Session.State() != session.StateReady {
		t.Error("current message was not applied")
	}

	model, _ = app.Update(dashboardMsg{gen: app.generation, msg: BackMsg{}})
	app = model.(AppModel)
	if app.CurrentScreen != ScreenDiscovery {
		t.Errorf("screen after back = %s", app.CurrentScreen)
	}
}

func TestTagCmdUnpacksBatch(t *testing.T) {
	inner := tea.Batch(
		func() tea.Msg { return session.PollTickMsg{} },
		func() tea.Msg { return session.PollTickMsg{} },
	)
	msg := tagCmd(7, inner)()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		t.Fatalf("got %T, want tea.BatchMsg", msg)
	}
	for _, c := range batch {
		tagged, ok := c().(dashboardMsg)
		if !ok || tagged.gen != 7 {
			t.Errorf("got %#v", tagged)
		}
	}

	if _, ok := tagCmd(1, tea.Quit)().(tea.QuitMsg); !ok {
		t.Error("quit should pass through untagged")
	}
	if tagCmd(1, nil) != nil {
		t.Error("nil command should stay nil")
	}
}
