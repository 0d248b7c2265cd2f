package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/on-the-ground/composable_go/casestudies/counter"
	"github.com/on-the-ground/composable_go/casestudies/shares"
	"github.com/on-the-ground/composable_go/internal/storage"
	"github.com/on-the-ground/composable_go/store"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	activeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Padding(0, 2)
)

func tuiCmd(a *app) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Counter and shared stats in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := a.openStats(storage.Kind(kind))
			if err != nil {
				return err
			}
			defer stats.Release()

			counterStore := store.New(counter.State{}, traced(a, counter.Reducer()), a.storeOptions("counter")...)
			defer counterStore.Close()
			statsStore := store.New(shares.State{}, traced(a, shares.Reducer(stats)), a.storeOptions("stats")...)
			defer statsStore.Close()

			observing := statsStore.Send(shares.Appeared{})
			defer observing.Cancel()

			p := tea.NewProgram(newTUIModel(counterStore, statsStore), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			defer counterStore.Subscribe(func(s counter.State) { p.Send(s) })()
			defer statsStore.Subscribe(func(s shares.State) { p.Send(s) })()

			_, err = p.Run()
			return err
		},
	}
	cmd.Flags().StringVar(&kind, "storage", string(storage.Memory), fmt.Sprintf("where stats live: %v", storage.Kinds))
	return cmd
}

type screen int

const (
	counterScreen screen = iota
	statsScreen
)

type tuiModel struct {
	counter *store.Store[counter.State, counter.Action]
	stats   *store.Store[shares.State, shares.Action]

	screen       screen
	counterState counter.State
	statsState   shares.State
}

func newTUIModel(c *store.Store[counter.State, counter.Action], s *store.Store[shares.State, shares.Action]) tuiModel {
	return tuiModel{
		counter:      c,
		stats:        s,
		counterState: c.State(),
		statsState:   s.State(),
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case counter.State:
		m.counterState = msg
	case shares.State:
		m.statsState = msg
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.screen = (m.screen + 1) % 2
		default:
			if m.screen == counterScreen {
				m.counterKey(msg.String())
			} else {
				m.statsKey(msg.String())
			}
		}
	}
	return m, nil
}

func (m tuiModel) counterKey(key string) {
	switch key {
	case "+", "k", "up":
		m.counter.Send(counter.IncrementTapped{})
	case "-", "j", "down":
		m.counter.Send(counter.DecrementTapped{})
	case "f":
		m.counter.Send(counter.FactTapped{})
	case "t":
		m.counter.Send(counter.ToggleTimerTapped{})
	}
}

func (m tuiModel) statsKey(key string) {
	send := func(a shares.CounterTabAction) { m.stats.Send(shares.CounterAction{Action: a}) }
	switch key {
	case "+", "k", "up":
		send(shares.IncrementTapped{})
	case "-", "j", "down":
		send(shares.DecrementTapped{})
	case "p":
		send(shares.IsPrimeTapped{})
	case "esc":
		send(shares.AlertDismissed{})
	case "r":
		m.stats.Send(shares.ProfileAction{Action: shares.ResetStatsTapped{}})
	}
}

func (m tuiModel) View() string {
	tabs := []string{"Counter", "Stats"}
	for i, t := range tabs {
		if screen(i) == m.screen {
			tabs[i] = activeStyle.Render(t)
		} else {
			tabs[i] = mutedStyle.Render(t)
		}
	}

	var body, keys string
	switch m.screen {
	case counterScreen:
		body, keys = m.counterView(), "+/- count  f fact  t timer"
	case statsScreen:
		body, keys = m.statsView(), "+/- count  p prime?  esc dismiss  r reset"
	}

	return strings.Join([]string{
		strings.Join(tabs, "  "),
		boxStyle.Render(body),
		footerStyle.Render(keys + "  tab switch  q quit"),
	}, "\n")
}

func (m tuiModel) counterView() string {
	s := m.counterState
	lines := []string{titleStyle.Render(fmt.Sprintf("Count: %d", s.Count))}
	if s.IsTimerRunning {
		lines = append(lines, mutedStyle.Render("timer running"))
	}
	switch {
	case s.IsLoading:
		lines = append(lines, mutedStyle.Render("loading fact..."))
	case s.Fact != "":
		lines = append(lines, s.Fact)
	}
	return strings.Join(lines, "\n")
}

func (m tuiModel) statsView() string {
	s := m.statsState.Counter.Stats
	lines := []string{
		titleStyle.Render(fmt.Sprintf("Count: %d", s.Count)),
		fmt.Sprintf("Max: %d  Min: %d  Counts: %d", s.MaxCount, s.MinCount, s.NumberOfCounts),
	}
	if alert := m.statsState.Counter.Alert; alert != "" {
		lines = append(lines, activeStyle.Render(alert))
	}
	return strings.Join(lines, "\n")
}
