package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tempsense/tempsense/internal/display"
	"github.com/tempsense/tempsense/internal/settings"
)

// fakeTransport records pushes and serves canned responses.
type fakeTransport struct {
	mu sync.Mutex

	config    settings.Partial
	configErr error

	sample       display.Sample
	telemetryErr error

	pushErr error
	pushes  []settings.Record

	// gate, when set, blocks SetConfig until it is closed.
	gate chan struct{}
}

func (f *fakeTransport) GetConfig(ctx context.Context) (settings.Partial, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.config, f.configErr
}

func (f *fakeTransport) SetConfig(ctx context.Context, r settings.Record) (string, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes = append(f.pushes, r)
	return "Config updated", f.pushErr
}

func (f *fakeTransport) GetTelemetry(ctx context.Context) (display.Sample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sample, f.telemetryErr
}

func (f *fakeTransport) pushCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pushes)
}

// collect runs a command and returns the messages it produces, flattening
// batches. Tick commands are returned as their PollTickMsg after the
// (short) test interval elapses.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func testOptions() Options {
	return Options{PollInterval: time.Millisecond, RequestTimeout: time.Second}
}

func partialOf(t *testing.T, js string) settings.Partial {
	t.Helper()
	p, err := settings.DecodePartial([]byte(js))
	if err != nil {
		t.Fatalf("DecodePartial() error = %v", err)
	}
	return p
}

// startReady drives a controller through a successful load and returns
// the messages produced after it (first telemetry result and first tick).
func startReady(t *testing.T, c *Controller) []tea.Msg {
	t.Helper()
	var after []tea.Msg
	for _, msg := range collect(c.Init()) {
		after = append(after, collect(c.Update(msg))...)
	}
	if c.State() != StateReady {
		t.Fatalf("State() = %v, want Ready (LoadErr = %v)", c.State(), c.LoadErr())
	}
	return after
}

func TestStartupLoadAppliesConfig(t *testing.T) {
	ft := &fakeTransport{
		config: partialOf(t, `{"topPosition":"humidity","scrollingEnabled":0}`),
		sample: display.Sample{Temperature: 24.5, Humidity: 45.2},
	}
	c := New(ft, testOptions())

	if c.State() != StateLoading {
		t.Fatalf("new controller state = %v, want Loading", c.State())
	}

	after := startReady(t, c)

	rec := c.Record()
	if rec.TopPosition != settings.TopHumidity || rec.ScrollingEnabled {
		t.Errorf("record not loaded: %+v", rec)
	}
	if rec.LEDIntensity != settings.DefaultLEDIntensity {
		t.Errorf("missing field not defaulted: LEDIntensity = %d", rec.LEDIntensity)
	}

	var sawTelemetry, sawTick bool
	for _, msg := range after {
		switch msg.(type) {
		case TelemetryMsg:
			sawTelemetry = true
			c.Update(msg)
		case PollTickMsg:
			sawTick = true
		}
	}
	if !sawTelemetry || !sawTick {
		t.Fatalf("Ready transition should poll now and schedule a tick, got %v", after)
	}

	p := c.Preview()
	if p.TopText != "45.2%" {
		t.Errorf("TopText = %q, want 45.2%%", p.TopText)
	}
	if p.MarqueeVisible || p.MarqueeText != "" {
		t.Errorf("marquee shown with scrolling disabled: %+v", p)
	}
}

func TestStartupLoadFailureStaysLoading(t *testing.T) {
	ft := &fakeTransport{configErr: errors.New("connection refused")}
	c := New(ft, testOptions())

	var follow []tea.Msg
	for _, msg := range collect(c.Init()) {
		follow = append(follow, collect(c.Update(msg))...)
	}

	if c.State() != StateLoading {
		t.Errorf("State() = %v, want Loading", c.State())
	}
	if c.LoadErr() == nil {
		t.Error("LoadErr() = nil after failed load")
	}
	if len(follow) != 0 {
		t.Errorf("failed load should not retry or poll, got %v", follow)
	}
	if c.Record() != settings.Defaults() {
		t.Error("model should keep defaults after failed load")
	}

	// manual reload recovers
	ft.mu.Lock()
	ft.configErr = nil
	ft.config = partialOf(t, `{"ledIntensity":9}`)
	ft.mu.Unlock()

	for _, msg := range collect(c.Reload()) {
		c.Update(msg)
	}
	if c.State() != StateReady || c.LoadErr() != nil {
		t.Errorf("after Reload: state = %v, err = %v", c.State(), c.LoadErr())
	}
	if c.Record().LEDIntensity != 9 {
		t.Errorf("LEDIntensity = %d, want 9", c.Record().LEDIntensity)
	}
}

func TestTickSchedulesNextTickAndPoll(t *testing.T) {
	ft := &fakeTransport{sample: display.Sample{Temperature: 20}}
	c := New(ft, testOptions())
	startReady(t, c)

	msgs := collect(c.Update(PollTickMsg{At: time.Now()}))

	var telemetry, ticks int
	for _, msg := range msgs {
		switch msg.(type) {
		case TelemetryMsg:
			telemetry++
		case PollTickMsg:
			ticks++
		}
	}
	if telemetry != 1 || ticks != 1 {
		t.Errorf("tick produced %d telemetry and %d ticks, want 1 and 1", telemetry, ticks)
	}
}

func TestTelemetryFailureLeavesPreviewUnchanged(t *testing.T) {
	ft := &fakeTransport{sample: display.Sample{Temperature: 24.5, Humidity: 45.2}}
	c := New(ft, testOptions())
	for _, msg := range startReady(t, c) {
		if _, ok := msg.(TelemetryMsg); ok {
			c.Update(msg)
		}
	}
	before := c.Preview()

	ft.mu.Lock()
	ft.telemetryErr = errors.New("timeout")
	ft.sample = display.Sample{Temperature: 99, Humidity: 99}
	ft.mu.Unlock()

	for _, msg := range collect(c.Update(PollTickMsg{})) {
		if _, ok := msg.(TelemetryMsg); ok {
			if cmd := c.Update(msg); cmd != nil {
				t.Error("failed telemetry should not schedule a retry")
			}
		}
	}

	if after := c.Preview(); after != before {
		t.Errorf("preview changed after failed poll: %+v -> %+v", before, after)
	}
	if st := c.Stats(); st.TelemetryFailed != 1 || st.LastTelemetryErr == nil {
		t.Errorf("Stats() = %+v", st)
	}
	if c.State() != StateReady {
		t.Error("telemetry failure changed the session state")
	}
}

func TestTelemetryAppliedInCompletionOrder(t *testing.T) {
	c := New(&fakeTransport{}, testOptions())

	c.Update(TelemetryMsg{Seq: 5, Sample: display.Sample{Temperature: 30}})
	c.Update(TelemetryMsg{Seq: 4, Sample: display.Sample{Temperature: 10}})

	s, _, ok := c.Sample()
	if !ok || s.Temperature != 10 {
		t.Errorf("Sample() = %+v, want the last completed response (10)", s)
	}
	if c.Stats().OutOfOrder != 1 {
		t.Errorf("OutOfOrder = %d, want 1", c.Stats().OutOfOrder)
	}
}

func TestContinuousDragPushesEveryMove(t *testing.T) {
	ft := &fakeTransport{gate: make(chan struct{})}
	c := New(ft, testOptions())
	startReady(t, c)

	var cmds []tea.Cmd
	for i := 1; i <= 10; i++ {
		cmd, err := c.Drag(settings.FieldLEDIntensity, i*10)
		if err != nil {
			t.Fatalf("Drag() error = %v", err)
		}
		if cmd == nil {
			t.Fatalf("Drag %d returned no push", i)
		}
		// readout follows the slider without waiting for any push
		if got, want := c.Readout(settings.FieldLEDIntensity), itoa(i*10); got != want {
			t.Errorf("Readout after drag %d = %q, want %q", i, got, want)
		}
		cmds = append(cmds, cmd)
	}

	if st := c.Stats(); st.PushesSent != 10 || st.InFlight != 10 {
		t.Errorf("Stats() = %+v, want 10 sent and in flight", st)
	}

	// All ten run concurrently; none waits for another.
	results := make(chan tea.Msg, len(cmds))
	for _, cmd := range cmds {
		go func(cmd tea.Cmd) { results <- cmd() }(cmd)
	}
	close(ft.gate)

	seen := map[int]bool{}
	for range cmds {
		msg := (<-results).(PushResultMsg)
		c.Update(msg)
		if msg.Record.LEDIntensity != int(msg.Seq)*10 {
			t.Errorf("push %d carried intensity %d", msg.Seq, msg.Record.LEDIntensity)
		}
		seen[msg.Record.LEDIntensity] = true
	}

	if ft.pushCount() != 10 || len(seen) != 10 {
		t.Errorf("device saw %d pushes with %d distinct values, want 10", ft.pushCount(), len(seen))
	}
	if st := c.Stats(); st.PushesOK != 10 || st.InFlight != 0 {
		t.Errorf("Stats() after completion = %+v", st)
	}
}

func TestDiscreteDragDoesNotPush(t *testing.T) {
	ft := &fakeTransport{}
	c := New(ft, testOptions())
	startReady(t, c)

	cmd, err := c.Drag(settings.FieldScrollingText, "HEL")
	if err != nil || cmd != nil {
		t.Fatalf("Drag(discrete) = %v, %v; want no push", cmd, err)
	}
	if !c.Pending(settings.FieldScrollingText) {
		t.Error("uncommitted edit should be pending")
	}
	if c.Preview().MarqueeText != "HEL" {
		t.Errorf("preview should follow the edit, got %q", c.Preview().MarqueeText)
	}

	cmd, err = c.Commit(settings.FieldScrollingText, "HELLO")
	if err != nil || cmd == nil {
		t.Fatalf("Commit() = %v, %v", cmd, err)
	}
	msg := cmd().(PushResultMsg)
	if msg.Record.ScrollingText != "HELLO" || msg.Trigger != settings.FieldScrollingText {
		t.Errorf("push = %+v", msg)
	}
	if c.Pending(settings.FieldScrollingText) {
		t.Error("commit should clear pending state")
	}
	if ft.pushCount() != 1 {
		t.Errorf("device saw %d pushes, want 1", ft.pushCount())
	}
}

func TestCommitPushesFullSnapshot(t *testing.T) {
	ft := &fakeTransport{}
	c := New(ft, testOptions())
	startReady(t, c)

	if _, err := c.Commit(settings.FieldHumidityThresholdLow, 80.0); err != nil {
		t.Fatal(err)
	}
	cmd, err := c.Commit(settings.FieldHumidityThresholdHigh, 20.0)
	if err != nil {
		t.Fatal(err)
	}

	msg := cmd().(PushResultMsg)
	want := settings.Defaults()
	want.HumidityThresholdLow = 80
	want.HumidityThresholdHigh = 20
	if msg.Record != want {
		t.Errorf("pushed %+v, want %+v", msg.Record, want)
	}
}

func TestCommitClampsAndRejectsBadTypes(t *testing.T) {
	c := New(&fakeTransport{}, testOptions())

	if _, err := c.Commit(settings.FieldLEDIntensity, 999); err != nil {
		t.Fatalf("Commit(999) error = %v", err)
	}
	if got := c.Readout(settings.FieldLEDIntensity); got != "255" {
		t.Errorf("Readout = %q, want 255", got)
	}

	before := c.Stats().PushesSent
	cmd, err := c.Commit(settings.FieldLEDEnabled, "perhaps")
	if err == nil || cmd != nil {
		t.Errorf("Commit(bad bool) = %v, %v; want error and no push", cmd, err)
	}
	if c.Stats().PushesSent != before {
		t.Error("rejected edit was pushed")
	}
}

func TestPushFailureIsDroppedNotRetried(t *testing.T) {
	ft := &fakeTransport{pushErr: errors.New("HTTP 500")}
	c := New(ft, testOptions())

	cmd, _ := c.Commit(settings.FieldLEDEnabled, false)
	if follow := c.Update(cmd()); follow != nil {
		t.Error("failed push should not produce a follow-up command")
	}
	st := c.Stats()
	if st.PushesFailed != 1 || st.LastPushErr == nil || st.InFlight != 0 {
		t.Errorf("Stats() = %+v", st)
	}
	if c.Record().LEDEnabled {
		t.Error("local edit should stand after a failed push")
	}
	if ft.pushCount() != 1 {
		t.Errorf("device saw %d pushes, want 1", ft.pushCount())
	}
}

func TestEditWhileLoadingIsPushed(t *testing.T) {
	ft := &fakeTransport{}
	c := New(ft, testOptions())

	cmd, err := c.Commit(settings.FieldTopPosition, "tempF")
	if err != nil || cmd == nil {
		t.Fatalf("Commit() while Loading = %v, %v", cmd, err)
	}
	if c.State() != StateLoading {
		t.Error("edit changed the session state")
	}
}

func TestUnknownMessageIgnored(t *testing.T) {
	c := New(&fakeTransport{}, testOptions())
	if cmd := c.Update(tea.KeyMsg{}); cmd != nil {
		t.Error("unrelated message produced a command")
	}
}

func itoa(n int) string {
	return settings.Record{LEDIntensity: n}.FormatValue(settings.FieldLEDIntensity)
}
