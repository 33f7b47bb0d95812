package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pentacore/bridge/internal/changeengine"
	"github.com/pentacore/bridge/internal/model"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(monitorCmd)
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Terminal dashboard of circuit state",
	Long: `monitor opens the bridge's persisted state directory with its own Change
Engine and renders each configured circuit's on/off state, alongside a
log of the most recent circuit events that Change Engine publishes.

The persisted snapshots "bridge serve" writes are read once at startup;
changes a separately running "bridge serve" makes afterwards are not
shown. monitor does not open the RS-485 line itself.`,
	RunE: runMonitor,
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	change, err := changeengine.New(changeengine.DefaultConfig(cfg.DataDir))
	if err != nil {
		return err
	}
	defer change.Shutdown()

	m := newMonitorModel(change)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

type monitorTickMsg time.Time

type equipmentItem struct {
	title, desc string
}

func (i equipmentItem) Title() string       { return i.title }
func (i equipmentItem) Description() string { return i.desc }
func (i equipmentItem) FilterValue() string { return i.title }

type monitorModel struct {
	change *changeengine.Engine
	sink   *changeengine.Sink

	circuitList list.Model
	eventLog    []string

	width, height int
	quitting      bool
}

func newMonitorModel(change *changeengine.Engine) monitorModel {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Circuits"
	return monitorModel{
		change:      change,
		sink:        change.Subscribe(changeengine.KindCircuit),
		circuitList: l,
	}
}

func monitorTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return monitorTickMsg(t)
	})
}

func (m monitorModel) Init() tea.Cmd {
	return monitorTickCmd()
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.circuitList.SetSize(msg.Width, msg.Height-8)

	case monitorTickMsg:
		m.drainEvents()
		m.refreshCircuits()
		return m, monitorTickCmd()
	}

	var cmd tea.Cmd
	m.circuitList, cmd = m.circuitList.Update(msg)
	return m, cmd
}

func (m *monitorModel) drainEvents() {
	for {
		select {
		case ev := <-m.sink.Events():
			m.eventLog = append(m.eventLog, formatEvent(ev))
			if len(m.eventLog) > 50 {
				m.eventLog = m.eventLog[len(m.eventLog)-50:]
			}
		default:
			return
		}
	}
}

func formatEvent(ev changeengine.Event) string {
	return fmt.Sprintf("[%s] %s #%d", ev.At.Format("15:04:05"), ev.Kind, ev.ID)
}

func (m *monitorModel) refreshCircuits() {
	cfg := m.change.SnapshotConfig()
	st := m.change.SnapshotState()

	items := make([]list.Item, 0, len(cfg.Circuits.All()))
	for _, c := range cfg.Circuits.All() {
		state, _ := st.Circuits.Get(c.ID)
		items = append(items, equipmentItem{title: c.Name, desc: stateDesc(state)})
	}
	m.circuitList.SetItems(items)
}

func stateDesc(s model.CircuitState) string {
	if s.IsOn {
		return "on"
	}
	return "off"
}

var (
	monitorTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	monitorBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func (m monitorModel) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(monitorTitleStyle.Render("Pool Bridge Monitor") + "\n\n")
	b.WriteString(m.circuitList.View())
	b.WriteString("\n" + monitorBoxStyle.Render("Recent events:\n"+strings.Join(tail(m.eventLog, 10), "\n")))
	b.WriteString("\n\nq to quit\n")
	return b.String()
}

func tail(lines []string, n int) []string {
	if len(lines) <= n {
		return lines
	}
	return lines[len(lines)-n:]
}
