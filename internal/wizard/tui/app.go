package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tempsense/tempsense/internal/device"
	"github.com/tempsense/tempsense/internal/discovery"
	"github.com/tempsense/tempsense/internal/session"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenDiscovery Screen = "discovery"
	ScreenDashboard Screen = "dashboard"
)

// Options configures the application. Zero values select the defaults.
type Options struct {
	ScanTimeout    time.Duration
	DefaultPort    int
	RequestTimeout time.Duration
	PollInterval   time.Duration

	// Persist is called after each successful configuration load
	Persist Persister

	// Connect builds the transport for a device. The default is an HTTP
	// client with RequestTimeout.
	Connect func(dev *discovery.Device) session.Transport

	// Scan replaces mDNS discovery
	Scan ScanFunc
}

// dashboardMsg carries a message produced by a specific dashboard
// instance. Results from a dashboard that has been closed are dropped so
// they cannot drive its successor.
type dashboardMsg struct {
	gen uint64
	msg tea.Msg
}

// AppModel is the top-level model that switches between screens
type AppModel struct {
	CurrentScreen Screen

	DiscoveryModel DiscoveryModel
	DashboardModel DashboardModel

	SelectedDevice *discovery.Device
	generation     uint64

	opts Options

	Width  int
	Height int
}

// NewAppModel creates the application. When dev is non-nil it opens the
// dashboard for it directly, otherwise it starts with a network scan.
func NewAppModel(dev *discovery.Device, opts Options) AppModel {
	if opts.Connect == nil {
		timeout := opts.RequestTimeout
		opts.Connect = func(d *discovery.Device) session.Transport {
			c := device.NewClient(d.IP, d.Port)
			if timeout > 0 {
				c.SetTimeout(timeout)
			}
			return c
		}
	}

	m := AppModel{
		CurrentScreen:  ScreenDiscovery,
		SelectedDevice: dev,
		opts:           opts,
	}
	m.DiscoveryModel = m.newDiscovery()
	if dev != nil {
		m.CurrentScreen = ScreenDashboard
		m.openDashboard(dev)
	}
	return m
}

func (m AppModel) newDiscovery() DiscoveryModel {
	d := NewDiscoveryModel(m.opts.ScanTimeout, m.opts.DefaultPort)
	if m.opts.Scan != nil {
		d.Scan = m.opts.Scan
	}
	d.Width, d.Height = m.Width, m.Height
	return d
}

func (m *AppModel) openDashboard(dev *discovery.Device) {
	m.generation++
	ctrl := session.New(m.opts.Connect(dev), session.Options{
		PollInterval:   m.opts.PollInterval,
		RequestTimeout: m.opts.RequestTimeout,
	})
	m.DashboardModel = NewDashboardModel(dev, ctrl, m.opts.Persist)
	m.DashboardModel.Width = m.Width
	m.DashboardModel.Height = m.Height
}

// Init initializes the application
func (m AppModel) Init() tea.Cmd {
	if m.CurrentScreen == ScreenDashboard {
		return m.tag(m.DashboardModel.Init())
	}
	return m.DiscoveryModel.Init()
}

// Update handles all messages and routes them to the appropriate screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		var cmd tea.Cmd
		m.DiscoveryModel, cmd = m.DiscoveryModel.Update(msg)
		m.DashboardModel, _ = m.DashboardModel.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case DeviceSelectedMsg:
		return m.transitionTo(ScreenDashboard, msg.Device)

	case dashboardMsg:
		if msg.gen != m.generation || m.CurrentScreen != ScreenDashboard {
			return m, nil
		}
		if _, ok := msg.msg.(BackMsg); ok {
			return m.transitionTo(ScreenDiscovery, nil)
		}
		var cmd tea.Cmd
		m.DashboardModel, cmd = m.DashboardModel.Update(msg.msg)
		return m, m.tag(cmd)
	}

	return m.updateCurrentScreen(msg)
}

func (m AppModel) updateCurrentScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.CurrentScreen {
	case ScreenDiscovery:
		m.DiscoveryModel, cmd = m.DiscoveryModel.Update(msg)
	case ScreenDashboard:
		m.DashboardModel, cmd = m.DashboardModel.Update(msg)
		cmd = m.tag(cmd)
	}
	return m, cmd
}

// transitionTo transitions to a new screen
func (m AppModel) transitionTo(screen Screen, dev *discovery.Device) (tea.Model, tea.Cmd) {
	m.CurrentScreen = screen

	switch screen {
	case ScreenDiscovery:
		// closing the dashboard orphans its pending results
		m.generation++
		if len(m.DiscoveryModel.DeviceList.Items()) == 0 {
			m.DiscoveryModel = m.newDiscovery()
			return m, m.DiscoveryModel.Init()
		}
		return m, nil

	case ScreenDashboard:
		m.SelectedDevice = dev
		m.openDashboard(dev)
		return m, m.tag(m.DashboardModel.Init())
	}
	return m, nil
}

// tag wraps the messages a dashboard command produces with the current
// dashboard generation. Batches are unpacked so the runtime still runs
// their commands concurrently.
func (m AppModel) tag(cmd tea.Cmd) tea.Cmd {
	return tagCmd(m.generation, cmd)
}

func tagCmd(gen uint64, cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() tea.Msg {
		switch msg := cmd().(type) {
		case nil:
			return nil
		case tea.QuitMsg:
			return msg
		case tea.BatchMsg:
			cmds := make([]tea.Cmd, len(msg))
			for i, c := range msg {
				cmds[i] = tagCmd(gen, c)
			}
			return tea.BatchMsg(cmds)
		default:
			return dashboardMsg{gen: gen, msg: msg}
		}
	}
}

// View renders the current screen
func (m AppModel) View() string {
	if m.CurrentScreen == ScreenDashboard {
		return m.DashboardModel.View()
	}
	return m.DiscoveryModel.View()
}
