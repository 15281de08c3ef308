package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"prio/internal/app"
	"prio/internal/progress"
	"prio/internal/task"
	"prio/internal/ui"
)

type boardModel struct {
	ctx context.Context
	app *app.App

	width  int
	height int

	filter   task.StatusFilter
	view     []task.Task
	selected int

	input  textinput.Model
	adding bool

	lastLog string
}

func newBoardModel(ctx context.Context, a *app.App) boardModel {
	input := textinput.New()
	input.Placeholder = "New strategic goal…"
	input.CharLimit = 200

	m := boardModel{
		ctx:     ctx,
		app:     a,
		filter:  task.StatusAll,
		input:   input,
		lastLog: "Loaded.",
	}
	m.refresh()
	return m
}

func (m *boardModel) refresh() {
	m.view = m.app.Tasks.Filter(task.Query{Status: m.filter})
	if m.selected >= len(m.view) {
		m.selected = len(m.view) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m boardModel) Init() tea.Cmd {
	return nil
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if m.adding {
			return m.updateAdding(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m boardModel) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.adding = false
		m.input.Blur()
		m.input.SetValue("")
		m.lastLog = "Add cancelled."
		return m, nil
	case "enter":
		text := m.input.Value()
		m.adding = false
		m.input.Blur()
		m.input.SetValue("")

		t, err := m.app.Tasks.Create(m.ctx, task.CreateInput{Text: text})
		switch {
		case err == task.ErrEmptyText:
			m.lastLog = "Text cannot be empty."
		case err != nil:
			m.lastLog = "Add failed: " + err.Error()
		default:
			m.lastLog = fmt.Sprintf("Added #%d (+%d XP)", t.ID, progress.XPTaskCreated)
		}
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m boardModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case "down", "j":
		if m.selected < len(m.view)-1 {
			m.selected++
		}
		return m, nil
	case "a":
		m.adding = true
		m.input.Focus()
		return m, textinput.Blink
	case "f":
		switch m.filter {
		case task.StatusAll:
			m.filter = task.StatusActive
		case task.StatusActive:
			m.filter = task.StatusCompleted
		default:
			m.filter = task.StatusAll
		}
		m.selected = 0
		m.refresh()
		m.lastLog = "Filter: " + string(m.filter)
		return m, nil
	case "enter", " ":
		if m.selected < 0 || m.selected >= len(m.view) {
			return m, nil
		}
		id := m.view[m.selected].ID
		t, err := m.app.Tasks.Toggle(m.ctx, id)
		switch {
		case err != nil:
			m.lastLog = "Toggle failed: " + err.Error()
		case t == nil:
			m.lastLog = "Task not found."
		case t.Completed:
			m.lastLog = fmt.Sprintf("Victory confirmed! (+%d XP)", progress.XPTaskCompleted)
		default:
			m.lastLog = "Back to pending."
		}
		m.refresh()
		return m, nil
	case "x":
		if m.selected < 0 || m.selected >= len(m.view) {
			return m, nil
		}
		id := m.view[m.selected].ID
		removed, err := m.app.Tasks.Delete(m.ctx, id)
		switch {
		case err != nil:
			m.lastLog = "Delete failed: " + err.Error()
		case removed:
			m.lastLog = fmt.Sprintf("Removed #%d", id)
		default:
			m.lastLog = "Task not found."
		}
		m.refresh()
		return m, nil
	case "r":
		m.refresh()
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		return m, nil
	}
	return m, nil
}

func (m boardModel) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if len(m.view) == 0 {
		b.WriteString(ui.Muted.Render("No tasks match these parameters."))
		b.WriteString("\n")
	}
	now := time.Now()
	for i, t := range m.view {
		b.WriteString(m.renderRow(i, t, now))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.adding {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m boardModel) renderHeader() string {
	u := m.app.User
	rank := progress.RankForLevel(u.Level)
	into, span := progress.LevelProgress(u.XP, u.Level)
	return fmt.Sprintf("%s  %s  %s %d  %s %s  %s %d day(s)",
		ui.Title.Render("prio"),
		ui.Gold.Render(rank.Name),
		ui.Key.Render("LVL."),
		u.Level,
		ui.ProgressBar(into, span, 24),
		ui.Muted.Render(fmt.Sprintf("%d XP", u.XP)),
		ui.IconFlame,
		u.Streak,
	)
}

func (m boardModel) renderRow(i int, t task.Task, now time.Time) string {
	line := fmt.Sprintf("%s #%d %s  %s", ui.Checkbox(t.Completed), t.ID, t.Text, ui.PriorityText(string(t.Priority)))
	if t.DueDate != nil {
		if !t.Completed && t.DueDate.Before(now) {
			line += "  " + ui.Bad.Render("overdue")
		} else {
			line += "  " + ui.Muted.Render("due "+t.DueDate.Format("Jan 2 15:04"))
		}
	}
	if n := len(t.Subtasks); n > 0 {
		done := 0
		for _, sub := range t.Subtasks {
			if sub.Completed {
				done++
			}
		}
		line += "  " + ui.Muted.Render(fmt.Sprintf("[%d/%d]", done, n))
	}
	if i == m.selected && !m.adding {
		return ui.SelectedRow.Render("› ") + line
	}
	return "  " + line
}

func (m boardModel) renderFooter() string {
	keys := "a add · space toggle · x delete · f filter · j/k move · q quit"
	return ui.Muted.Render(keys) + "\n" + ui.Key.Render("» ") + m.lastLog
}
