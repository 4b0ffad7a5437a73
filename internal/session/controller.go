package session

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/tempsense/tempsense/internal/display"
	"github.com/tempsense/tempsense/internal/logging"
	"github.com/tempsense/tempsense/internal/settings"
)

// TelemetryInterval is how often the sensor reading is polled.
const TelemetryInterval = 2000 * time.Millisecond

// DefaultRequestTimeout bounds each request issued by the session.
const DefaultRequestTimeout = 1500 * time.Millisecond

// Transport is the device API the session drives. *device.Client
// implements it.
type Transport interface {
	GetConfig(ctx context.Context) (settings.Partial, error)
	SetConfig(ctx context.Context, r settings.Record) (string, error)
	GetTelemetry(ctx context.Context) (display.Sample, error)
}

// State is the session's connection state.
type State int

const (
	// StateLoading means no configuration has been loaded from the device
	// yet. The model holds defaults.
	StateLoading State = iota
	// StateReady means the configuration was loaded and telemetry is polled.
	StateReady
)

func (s State) String() string {
	if s == StateReady {
		return "Ready"
	}
	return "Loading"
}

// Options tunes a Controller. Zero values select the defaults.
type Options struct {
	PollInterval   time.Duration
	RequestTimeout time.Duration
}

// Controller keeps the configuration model and the preview in sync with
// one device. It is driven entirely by Bubble Tea messages: Update and the
// edit methods must be called from the program's event loop, and every
// network operation runs as a tea.Cmd whose result comes back as a message.
// No locking is needed because only that loop touches the state.
type Controller struct {
	transport Transport
	model     *settings.Model
	renderer  *display.Renderer

	pollInterval   time.Duration
	requestTimeout time.Duration

	state   State
	loadErr error
	polling bool

	loadSeq      uint64
	pollSeq      uint64
	pushSeq      uint64
	dirty        map[settings.Field]bool
	lastApplied  uint64
	stats        Stats
	lastSampleAt time.Time
}

// New creates a controller in the Loading state with a default record.
func New(t Transport, opts Options) *Controller {
	if opts.PollInterval <= 0 {
		opts.PollInterval = TelemetryInterval
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}

	model := settings.NewModel()
	return &Controller{
		transport:      t,
		model:          model,
		renderer:       display.NewRenderer(display.SelectionOf(model.Snapshot())),
		pollInterval:   opts.PollInterval,
		requestTimeout: opts.RequestTimeout,
		state:          StateLoading,
		dirty:          make(map[settings.Field]bool),
	}
}

// Init issues the startup configuration load.
func (c *Controller) Init() tea.Cmd {
	return c.loadCmd()
}

// Update applies a session message and returns any follow-up command.
// Messages that do not belong to the session are ignored.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case ConfigLoadedMsg:
		return c.handleLoaded(msg)
	case PollTickMsg:
		return c.handleTick()
	case TelemetryMsg:
		c.handleTelemetry(msg)
	case PushResultMsg:
		c.handlePushResult(msg)
	}
	return nil
}

// Commit stores a finalized edit and pushes the full record once.
// Out-of-range numbers are clamped; the returned error only reports a value
// of the wrong type or an unknown field, in which case nothing changes.
func (c *Controller) Commit(f settings.Field, value any) (tea.Cmd, error) {
	if err := c.model.Set(f, value); err != nil {
		return nil, err
	}
	delete(c.dirty, f)
	c.syncSelection()
	return c.pushCmd(f), nil
}

// Drag stores an intermediate value from a control that is still moving.
// Continuous fields are pushed on every call. Discrete fields are stored
// and previewed locally but only pushed by the next Commit.
func (c *Controller) Drag(f settings.Field, value any) (tea.Cmd, error) {
	if err := c.model.Set(f, value); err != nil {
		return nil, err
	}
	c.syncSelection()
	if settings.ClassOf(f) == settings.Continuous {
		return c.pushCmd(f), nil
	}
	c.dirty[f] = true
	return nil, nil
}

// Revert puts back the value a discrete field had before an abandoned
// edit and clears its pending mark. Nothing is pushed.
func (c *Controller) Revert(f settings.Field, value any) error {
	if err := c.model.Set(f, value); err != nil {
		return err
	}
	delete(c.dirty, f)
	c.syncSelection()
	return nil
}

// Reload re-reads the configuration from the device. It is the only way
// out of a failed startup load.
func (c *Controller) Reload() tea.Cmd {
	return c.loadCmd()
}

// Record returns the current configuration record.
func (c *Controller) Record() settings.Record {
	return c.model.Snapshot()
}

// Preview returns the current rendered preview.
func (c *Controller) Preview() display.Preview {
	return c.renderer.Current()
}

// Readout returns the displayed value of a field. For sliders it changes
// as soon as Drag is called, independent of any push completing.
func (c *Controller) Readout(f settings.Field) string {
	return c.model.Snapshot().FormatValue(f)
}

// Pending reports whether a discrete field has an uncommitted edit.
func (c *Controller) Pending(f settings.Field) bool {
	return c.dirty[f]
}

// State returns the connection state.
func (c *Controller) State() State {
	return c.state
}

// LoadErr returns the error from the most recent failed load, or nil.
func (c *Controller) LoadErr() error {
	return c.loadErr
}

// Sample returns the last applied telemetry sample and when it arrived.
func (c *Controller) Sample() (display.Sample, time.Time, bool) {
	s, ok := c.renderer.Sample()
	return s, c.lastSampleAt, ok
}

// Stats returns push and telemetry counters.
func (c *Controller) Stats() Stats {
	return c.stats
}

func (c *Controller) syncSelection() {
	c.renderer.SetSelection(display.SelectionOf(c.model.Snapshot()))
}

func (c *Controller) handleLoaded(msg ConfigLoadedMsg) tea.Cmd {
	if msg.Err != nil {
		c.loadErr = msg.Err
		logging.Warn("Configuration load failed",
			zap.Uint64("seq", msg.Seq),
			zap.Stringer("state", c.state),
			zap.Error(msg.Err),
		)
		return nil
	}

	c.model.LoadFrom(msg.Partial)
	c.dirty = make(map[settings.Field]bool)
	c.syncSelection()
	c.loadErr = nil
	c.state = StateReady
	logging.Info("Configuration loaded",
		zap.Uint64("seq", msg.Seq),
		zap.Int("fields", len(msg.Partial.Present())),
	)

	if c.polling {
		return nil
	}
	c.polling = true
	// first sample right away, then on every tick
	return tea.Batch(c.telemetryCmd(), c.tick())
}

func (c *Controller) handleTick() tea.Cmd {
	// The next tick is scheduled before the request completes so a slow
	// device never stretches the interval.
	return tea.Batch(c.telemetryCmd(), c.tick())
}

func (c *Controller) handleTelemetry(msg TelemetryMsg) {
	logging.LogTelemetry(msg.Seq, msg.Sample.Temperature, msg.Sample.Humidity, msg.Err)
	if msg.Err != nil {
		c.stats.TelemetryFailed++
		c.stats.LastTelemetryErr = msg.Err
		return
	}

	// Results are applied in completion order, even when an older request
	// finishes after a newer one.
	if msg.Seq < c.lastApplied {
		c.stats.OutOfOrder++
	}
	c.lastApplied = msg.Seq
	c.stats.TelemetryOK++
	c.stats.LastTelemetryErr = nil
	c.lastSampleAt = msg.At
	c.renderer.SetSample(msg.Sample)
}

func (c *Controller) handlePushResult(msg PushResultMsg) {
	c.stats.InFlight--
	logging.LogPush(msg.Seq, string(msg.Trigger), msg.Err)
	if msg.Err != nil {
		c.stats.PushesFailed++
		c.stats.LastPushErr = msg.Err
		return
	}
	c.stats.PushesOK++
}

func (c *Controller) tick() tea.Cmd {
	return tea.Tick(c.pollInterval, func(t time.Time) tea.Msg {
		return PollTickMsg{At: t}
	})
}

func (c *Controller) loadCmd() tea.Cmd {
	c.loadSeq++
	seq := c.loadSeq
	t, timeout := c.transport, c.requestTimeout

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		p, err := t.GetConfig(ctx)
		return ConfigLoadedMsg{Seq: seq, Partial: p, Err: err}
	}
}

func (c *Controller) telemetryCmd() tea.Cmd {
	c.pollSeq++
	seq := c.pollSeq
	t, timeout := c.transport, c.requestTimeout

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s, err := t.GetTelemetry(ctx)
		return TelemetryMsg{Seq: seq, Sample: s, Err: err, At: time.Now()}
	}
}

// pushCmd captures the full record now and sends it later. Pushes are
// fire-and-forget: nothing waits on one and a failure is not retried.
func (c *Controller) pushCmd(trigger settings.Field) tea.Cmd {
	c.pushSeq++
	seq := c.pushSeq
	snapshot := c.model.Snapshot()
	c.stats.PushesSent++
	c.stats.InFlight++
	t, timeout := c.transport, c.requestTimeout

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		reply, err := t.SetConfig(ctx, snapshot)
		return PushResultMsg{Seq: seq, Trigger: trigger, Record: snapshot, Reply: reply, Err: err}
	}
}
