// Package tui renders a board in the terminal and turns key presses into
// board commands.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"kitchen-display/internal/domain"
)

const (
	gridColumns    = 3
	sidebarWidth   = 34
	minCardWidth   = 20
	commandTimeout = 2 * time.Second
)

// Sender delivers a command to the board.
type Sender func(ctx context.Context, cmd domain.Command) error

type boardMsg struct{ board *domain.Board }

type clockMsg time.Time

type commandErrMsg struct{ err error }

// Model is the bubbletea model of the terminal board.
type Model struct {
	boards <-chan *domain.Board
	send   Sender
	keys   KeyMap
	theme  Theme
	help   help.Model

	board  *domain.Board
	now    time.Time
	width  int
	height int
	err    error
}

func NewModel(boards <-chan *domain.Board, send Sender) Model {
	return Model{
		boards: boards,
		send:   send,
		keys:   DefaultKeyMap,
		theme:  DefaultTheme,
		help:   help.New(),
		now:    time.Now(),
		width:  120,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(listenForBoard(m.boards), tickClock())
}

// listenForBoard blocks until the next board arrives. A closed feed ends
// the program.
func listenForBoard(ch <-chan *domain.Board) tea.Cmd {
	return func() tea.Msg {
		b, ok := <-ch
		if !ok {
			return tea.QuitMsg{}
		}
		return boardMsg{board: b}
	}
}

func tickClock() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return clockMsg(t) })
}

func (m Model) sendCommand(cmd domain.Command) tea.Cmd {
	send := m.send
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		if err := send(ctx, cmd); err != nil {
			return commandErrMsg{err: fmt.Errorf("%s: %w", cmd, err)}
		}
		return nil
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Previous):
			return m, m.sendCommand(domain.CommandPrevious)
		case key.Matches(msg, m.keys.Next):
			return m, m.sendCommand(domain.CommandNext)
		case key.Matches(msg, m.keys.Activate):
			return m, m.sendCommand(domain.CommandActivate)
		case key.Matches(msg, m.keys.Reset):
			return m, m.sendCommand(domain.CommandReset)
		}
	case boardMsg:
		m.board = msg.board
		m.err = nil
		return m, listenForBoard(m.boards)
	case clockMsg:
		m.now = time.Time(msg)
		return m, tickClock()
	case commandErrMsg:
		m.err = msg.err
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
	}
	return m, nil
}

func (m Model) View() string {
	sections := []string{m.viewHeader()}
	if m.board == nil || m.board.Total == 0 {
		sections = append(sections, lipgloss.NewStyle().Foreground(m.theme.FaintText).Padding(1, 2).Render("No orders on the board"))
	} else {
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, m.viewGrid(), m.viewQueue()))
	}
	if m.err != nil {
		sections = append(sections, lipgloss.NewStyle().Foreground(m.theme.Overdue).Render("! "+m.err.Error()))
	}
	sections = append(sections, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewHeader() string {
	display, total := "kitchen", 0
	if m.board != nil {
		display, total = m.board.Display, m.board.Total
	}
	left := lipgloss.NewStyle().Bold(true).Foreground(m.theme.Header).Render("KITCHEN DISPLAY · " + strings.ToUpper(display))
	right := lipgloss.NewStyle().Foreground(m.theme.NormalText).Render(fmt.Sprintf("%d orders   %s", total, m.now.Format("15:04:05")))
	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) cardWidth() int {
	return max(minCardWidth, (m.width-sidebarWidth)/gridColumns-2)
}

func (m Model) viewGrid() string {
	var rows []string
	for start := 0; start < len(m.board.Slots); start += gridColumns {
		var cards []string
		for i := start; i < min(start+gridColumns, len(m.board.Slots)); i++ {
			cards = append(cards, m.viewCard(m.board.Slots[i]))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) viewCard(card *domain.OrderCard) string {
	width := m.cardWidth()
	style := lipgloss.NewStyle().Width(width).Height(5).Padding(0, 1).Border(lipgloss.RoundedBorder()).BorderForeground(m.theme.Border)
	if card == nil {
		return style.Foreground(m.theme.FaintText).Render("")
	}
	color := m.theme.StatusColor(card.Status)
	style = style.BorderForeground(color)
	if card.Selected {
		style = style.Border(lipgloss.ThickBorder()).BorderForeground(m.theme.Selected)
	}

	inner := width - 2
	title := lipgloss.NewStyle().Bold(true).Render("#" + card.Table)
	status := lipgloss.NewStyle().Foreground(color).Bold(true).Render(card.StatusText)
	top := title + strings.Repeat(" ", max(1, inner-lipgloss.Width(title)-lipgloss.Width(status))) + status
	timer := lipgloss.NewStyle().Foreground(color).Bold(true).Render(card.TimeDisplay)

	lines := []string{top, timer, progressBar(card.Progress, inner, color, m.theme.Border)}
	if card.StartedAtLabel != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(m.theme.FaintText).Render("started "+card.StartedAtLabel))
	}
	return style.Render(strings.Join(lines, "\n"))
}

func progressBar(fraction float64, width int, fill, empty lipgloss.Color) string {
	width = max(width, 1)
	filled := int(fraction*float64(width) + 0.5)
	filled = min(max(filled, 0), width)
	return lipgloss.NewStyle().Foreground(fill).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(empty).Render(strings.Repeat("░", width-filled))
}

func (m Model) viewQueue() string {
	lines := []string{lipgloss.NewStyle().Bold(true).Foreground(m.theme.Header).Render("QUEUE")}
	for _, card := range m.board.Queue {
		line := fmt.Sprintf("QUEUE #%-2d T%-4s %s", card.QueueNumber, card.Table, card.TimeDisplay)
		style := lipgloss.NewStyle().Foreground(m.theme.StatusColor(card.Status))
		if !card.InGrid {
			style = style.Faint(true)
		}
		if card.Selected {
			line += " ACTIVE"
			style = style.Bold(true).Foreground(m.theme.Selected)
		}
		lines = append(lines, style.Render(line))
	}
	return lipgloss.NewStyle().Width(sidebarWidth).PaddingLeft(1).Render(strings.Join(lines, "\n"))
}
