package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"chronos/internal/calendar"
	"chronos/internal/config"
	"chronos/internal/store"
	"chronos/internal/task"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
	modeAsk
	modeSubtasks
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	todayStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	doneStyle     = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("243"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// formField is one line of the add/edit editor. subID is set for lines that
// represent an existing subtask; clearing such a line deletes the subtask on
// save.
type formField struct {
	label string
	value string
	subID string
}

type formState struct {
	taskID string // empty while adding
	fields []formField
	index  int
}

type Model struct {
	store *store.Store
	cfg   config.Config
	email string
	ctx   context.Context

	gridYear  int
	gridMonth int // zero-based
	grid      []calendar.Day

	cursor     int
	subCursor  int
	mode       mode
	input      textinput.Model
	form       *formState
	status     string
	confirmDel bool
	pendingDel *task.Task
}

// Run fetches the initial day and month, then drives the interface. Every
// store mutation happens synchronously inside Update, so the event loop
// serializes all access to the store.
func Run(st *store.Store, cfg config.Config, email string) error {
	ctx := context.Background()
	now := time.Now()
	today := now.Format("2006-01-02")

	m := Model{
		store:     st,
		cfg:       cfg,
		email:     email,
		ctx:       ctx,
		gridYear:  now.Year(),
		gridMonth: int(now.Month()) - 1,
		status:    "Loading…",
	}
	m.grid = calendar.Generate(m.gridYear, m.gridMonth)

	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 48
	m.input = ti

	if err := st.SelectDate(ctx, today); err != nil {
		m.status = errorStyle.Render(err.Error())
	} else if err := st.SelectMonth(ctx, today[:7]); err != nil {
		m.status = errorStyle.Render(err.Error())
	} else {
		m.status = "Press 'a' to add, 'i' to ask, space to toggle."
	}

	program := tea.NewProgram(m)
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		switch m.mode {
		case modeAdd, modeEdit:
			return m.updateFormMode(msg.String(), msg)
		case modeAsk:
			return m.updateAskMode(msg.String(), msg)
		case modeSubtasks:
			return m.updateSubtaskMode(msg.String(), msg)
		default:
			return m.updateListMode(msg.String())
		}
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
	}
	return m, nil
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	tasks := m.store.DayTasks()
	switch key {
	case "ctrl+c", k.Quit:
		return m, tea.Quit
	case k.Down, "down":
		m.cursor = clampCursor(m.cursor+1, len(tasks))
	case k.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(tasks))
		}
	case k.PrevDay, "left":
		return m.selectDate(shiftDate(m.store.SelectedDate(), -1))
	case k.NextDay, "right":
		return m.selectDate(shiftDate(m.store.SelectedDate(), 1))
	case k.Today:
		return m.selectDate(time.Now().Format("2006-01-02"))
	case k.PrevMonth:
		return m.shiftMonth(-1)
	case k.NextMonth:
		return m.shiftMonth(1)
	case k.Refresh:
		if err := m.store.Refresh(m.ctx); err != nil {
			m.status = errorStyle.Render(err.Error())
		} else {
			m.status = "Refreshed"
		}
		m.cursor = clampCursor(m.cursor, len(m.store.DayTasks()))
	case k.Add:
		m.form = newAddForm()
		m.mode = modeAdd
		m.focusFormField()
	case k.Ask:
		m.mode = modeAsk
		m.input.Placeholder = "Describe the task in plain words"
		m.input.SetValue("")
		m.input.Focus()
		m.status = "Ask mode: describe a task and press Enter"
	case k.Toggle:
		if len(tasks) == 0 {
			return m, nil
		}
		t := tasks[m.cursor]
		if err := m.store.ToggleTask(m.ctx, t.ID); err != nil {
			m.status = errorStyle.Render("toggle failed: " + err.Error())
			return m, nil
		}
		m.status = "Toggled task"
	case k.Delete:
		if len(tasks) == 0 {
			return m, nil
		}
		t := tasks[m.cursor]
		m.confirmDel = true
		m.pendingDel = &t
		m.status = fmt.Sprintf("Delete %q? y/n", t.Title)
	case k.Edit:
		if len(tasks) == 0 {
			m.status = "No tasks to edit"
			return m, nil
		}
		m.form = newEditForm(tasks[m.cursor])
		m.mode = modeEdit
		m.focusFormField()
	case k.Subtasks:
		if len(tasks) == 0 {
			return m, nil
		}
		m.mode = modeSubtasks
		m.subCursor = 0
		m.status = "Subtasks: space toggle, 'a' add, esc back"
	}
	return m, nil
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		if m.pendingDel != nil {
			if err := m.store.DeleteTask(m.ctx, m.pendingDel.ID); err != nil {
				m.status = errorStyle.Render("delete failed: " + err.Error())
			} else {
				m.status = "Deleted task"
				m.cursor = clampCursor(m.cursor, len(m.store.DayTasks()))
			}
		}
		m.confirmDel = false
		m.pendingDel = nil
	case "n", "N", "esc":
		m.status = "Delete cancelled"
		m.confirmDel = false
		m.pendingDel = nil
	}
	return m, nil
}

func (m Model) updateAskMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		m.mode = modeList
		m.input.Blur()
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.Confirm:
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			m.status = "Nothing to ask"
			return m, nil
		}
		created, err := m.store.CreateFromPrompt(m.ctx, text)
		if err != nil {
			m.status = errorStyle.Render("ask failed: " + err.Error())
			return m, nil
		}
		m.status = fmt.Sprintf("Added %q on %s", created.Title, created.Date)
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateSubtaskMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tasks := m.store.DayTasks()
	if len(tasks) == 0 {
		m.mode = modeList
		return m, nil
	}
	t := tasks[clampCursor(m.cursor, len(tasks))]

	if m.input.Focused() {
		switch key {
		case m.cfg.Keys.Cancel:
			m.input.Blur()
			m.input.SetValue("")
			m.status = "Cancelled"
		case m.cfg.Keys.Confirm:
			title := strings.TrimSpace(m.input.Value())
			if title == "" {
				m.status = "Subtask title cannot be empty"
				return m, nil
			}
			if err := m.store.AddSubtask(m.ctx, t.ID, title); err != nil {
				m.status = errorStyle.Render("add failed: " + err.Error())
				return m, nil
			}
			m.input.Blur()
			m.input.SetValue("")
			m.status = "Added subtask"
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	switch key {
	case m.cfg.Keys.Cancel, m.cfg.Keys.Subtasks:
		m.mode = modeList
	case m.cfg.Keys.Down, "down":
		m.subCursor = clampCursor(m.subCursor+1, len(t.Subtasks))
	case m.cfg.Keys.Up, "up":
		if m.subCursor > 0 {
			m.subCursor = clampCursor(m.subCursor-1, len(t.Subtasks))
		}
	case m.cfg.Keys.Toggle:
		if len(t.Subtasks) == 0 {
			return m, nil
		}
		st := t.Subtasks[clampCursor(m.subCursor, len(t.Subtasks))]
		if err := m.store.ToggleSubtask(m.ctx, t.ID, st.ID); err != nil {
			m.status = errorStyle.Render("toggle failed: " + err.Error())
			return m, nil
		}
		m.status = "Toggled subtask"
	case m.cfg.Keys.Add:
		m.input.Placeholder = "Subtask title"
		m.input.SetValue("")
		m.input.Focus()
		m.status = "Add subtask: type a title and press Enter"
	}
	return m, nil
}

func (m Model) updateFormMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form == nil {
		m.mode = modeList
		return m, nil
	}
	switch key {
	case m.cfg.Keys.Cancel:
		m.form = nil
		m.mode = modeList
		m.input.Blur()
		m.status = "Cancelled"
		return m, nil
	case "tab", "shift+tab":
		m.form.fields[m.form.index].value = m.input.Value()
		step := 1
		if key == "shift+tab" {
			step = len(m.form.fields) - 1
		}
		m.form.index = (m.form.index + step) % len(m.form.fields)
		m.focusFormField()
		return m, nil
	case m.cfg.Keys.Confirm:
		m.form.fields[m.form.index].value = m.input.Value()
		if m.form.index < len(m.form.fields)-1 {
			m.form.index++
			m.focusFormField()
			return m, nil
		}
		if m.mode == modeAdd {
			return m.saveAddForm()
		}
		return m.saveEditForm()
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func newAddForm() *formState {
	return &formState{
		fields: []formField{
			{label: "title"},
			{label: "description"},
			{label: "time (HH:MM, optional)"},
			{label: "group (personal/work/learning/health)", value: task.DefaultGroupID},
			{label: "subtasks (comma separated, optional)"},
		},
	}
}

func newEditForm(t task.Task) *formState {
	f := &formState{
		taskID: t.ID,
		fields: []formField{
			{label: "title", value: t.Title},
			{label: "description", value: t.Description},
			{label: "time (HH:MM, optional)", value: t.Time},
			{label: "group (personal/work/learning/health)", value: t.GroupID},
		},
	}
	for _, st := range t.Subtasks {
		f.fields = append(f.fields, formField{
			label: "subtask (clear to delete)",
			value: st.Title,
			subID: st.ID,
		})
	}
	return f
}

func (m *Model) focusFormField() {
	field := m.form.fields[m.form.index]
	m.input.Placeholder = field.label
	m.input.SetValue(field.value)
	m.input.Focus()
	m.status = fmt.Sprintf("Editing %s (field %d of %d)", field.label, m.form.index+1, len(m.form.fields))
}

func (m Model) saveAddForm() (tea.Model, tea.Cmd) {
	f := m.form
	params := store.CreateParams{
		Title:       f.fields[0].value,
		Description: f.fields[1].value,
		Time:        strings.TrimSpace(f.fields[2].value),
		GroupID:     strings.TrimSpace(f.fields[3].value),
	}
	for _, st := range strings.Split(f.fields[4].value, ",") {
		if strings.TrimSpace(st) != "" {
			params.Subtasks = append(params.Subtasks, strings.TrimSpace(st))
		}
	}
	created, err := m.store.CreateTask(m.ctx, params)
	if err != nil {
		m.status = errorStyle.Render("save failed: " + err.Error())
		return m, nil
	}
	m.form = nil
	m.mode = modeList
	m.input.Blur()
	m.status = fmt.Sprintf("Added %q", created.Title)
	m.cursor = cursorFor(m.store.DayTasks(), created.ID)
	return m, nil
}

func (m Model) saveEditForm() (tea.Model, tea.Cmd) {
	f := m.form
	title := f.fields[0].value
	desc := f.fields[1].value
	tm := strings.TrimSpace(f.fields[2].value)
	group := strings.TrimSpace(f.fields[3].value)
	err := m.store.UpdateTask(m.ctx, f.taskID, store.UpdateFields{
		Title:       &title,
		Description: &desc,
		Time:        &tm,
		GroupID:     &group,
	})
	if err != nil {
		m.status = errorStyle.Render("save failed: " + err.Error())
		return m, nil
	}

	var edited []task.SubTask
	for _, field := range f.fields[4:] {
		if strings.TrimSpace(field.value) == "" {
			continue // cleared line = delete
		}
		edited = append(edited, task.SubTask{ID: field.subID, Title: strings.TrimSpace(field.value)})
	}
	failures := 0
	for _, outcome := range m.store.ReconcileSubtasks(m.ctx, f.taskID, edited) {
		if outcome.Err != nil {
			failures++
		}
	}

	m.form = nil
	m.mode = modeList
	m.input.Blur()
	if failures > 0 {
		m.status = errorStyle.Render(fmt.Sprintf("Saved, but %d subtask change(s) failed", failures))
	} else {
		m.status = "Saved task"
	}
	return m, nil
}

// selectDate moves the selection, refreshing the month summary and grid when
// the selection crosses a month boundary.
func (m Model) selectDate(date string) (tea.Model, tea.Cmd) {
	prevMonth := m.store.SelectedDate()
	if len(prevMonth) >= 7 {
		prevMonth = prevMonth[:7]
	}
	if err := m.store.SelectDate(m.ctx, date); err != nil {
		m.status = errorStyle.Render(err.Error())
		return m, nil
	}
	m.cursor = 0
	if date[:7] != prevMonth {
		if err := m.store.SelectMonth(m.ctx, date[:7]); err != nil {
			m.status = errorStyle.Render(err.Error())
		}
		m.gridYear, m.gridMonth = yearMonth(date)
		m.grid = calendar.Generate(m.gridYear, m.gridMonth)
	}
	m.status = "Selected " + date
	return m, nil
}

// shiftMonth navigates the calendar pane without changing the selected date.
func (m Model) shiftMonth(delta int) (tea.Model, tea.Cmd) {
	first := time.Date(m.gridYear, time.Month(m.gridMonth+1), 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, delta, 0)
	m.gridYear, m.gridMonth = next.Year(), int(next.Month())-1
	m.grid = calendar.Generate(m.gridYear, m.gridMonth)
	if err := m.store.SelectMonth(m.ctx, next.Format("2006-01")); err != nil {
		m.status = errorStyle.Render(err.Error())
	} else {
		m.status = next.Format("January 2006")
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	title := "Chronos"
	if m.email != "" {
		title += " · " + m.email
	}
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n\n")

	left := m.renderCalendar()
	right := m.renderDayPane()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "   ", right))

	b.WriteString("\n")
	if m.mode == modeAdd || m.mode == modeEdit {
		b.WriteString(m.renderForm())
	} else if m.input.Focused() {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(renderHelp(m.cfg.Keys)))
	return b.String()
}

func (m Model) renderCalendar() string {
	var b strings.Builder
	first := time.Date(m.gridYear, time.Month(m.gridMonth+1), 1, 0, 0, 0, 0, time.UTC)
	b.WriteString(headerStyle.Render(first.Format("January 2006")))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(" Su Mo Tu We Th Fr Sa"))
	b.WriteString("\n")

	selected := m.store.SelectedDate()
	for i, day := range m.grid {
		cell := fmt.Sprintf("%2d", day.DayOfMonth)
		switch {
		case day.Date == selected:
			cell = selectedStyle.Render(cell)
		case day.IsToday:
			cell = todayStyle.Render(cell)
		case !day.IsCurrentMonth:
			cell = dimStyle.Render(cell)
		}
		b.WriteString(" ")
		b.WriteString(cell)
		if (i+1)%7 == 0 {
			b.WriteString(m.renderDotsForRow(i))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderDotsForRow marks the week's days that still have pending work.
func (m Model) renderDotsForRow(last int) string {
	var dots []string
	for i := last - 6; i <= last; i++ {
		if m.store.HasActivity(m.grid[i].Date) {
			dots = append(dots, m.grid[i].Date[8:])
		}
	}
	if len(dots) == 0 {
		return ""
	}
	return dimStyle.Render("  •" + strings.Join(dots, ","))
}

func (m Model) renderDayPane() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(formatDate(m.store.SelectedDate())))
	b.WriteString("\n")

	completed, total := m.store.Progress()
	if total > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("%d of %d done (%d%%)", completed, total, completed*100/total)))
	} else {
		b.WriteString(dimStyle.Render("No tasks scheduled."))
	}
	b.WriteString("\n\n")

	tasks := m.store.DayTasks()
	if len(tasks) == 0 {
		b.WriteString(dimStyle.Render("Nothing here. Press 'a' to add a task."))
		b.WriteString("\n")
		return b.String()
	}
	for i, t := range tasks {
		cursor := " "
		if m.cursor == i && (m.mode == modeList || m.mode == modeSubtasks) {
			cursor = ">"
		}
		checkbox := "[ ]"
		if t.Completed {
			checkbox = "[x]"
		}
		line := t.Title
		if t.Completed {
			line = doneStyle.Render(line)
		}
		if t.Time != "" {
			line += dimStyle.Render(" @" + t.Time)
		}
		group := task.GroupByID(t.GroupID)
		line += " " + lipgloss.NewStyle().Foreground(group.Color).Render("#"+group.Name)
		if n := len(t.Subtasks); n > 0 {
			done := 0
			for _, st := range t.Subtasks {
				if st.Completed {
					done++
				}
			}
			line += dimStyle.Render(fmt.Sprintf(" %d/%d", done, n))
		}
		fmt.Fprintf(&b, "%s %s %s\n", cursor, checkbox, line)

		if m.mode == modeSubtasks && m.cursor == i {
			for j, st := range t.Subtasks {
				sc := " "
				if m.subCursor == j {
					sc = ">"
				}
				sb := "[ ]"
				if st.Completed {
					sb = "[x]"
				}
				stitle := st.Title
				if st.Completed {
					stitle = doneStyle.Render(stitle)
				}
				fmt.Fprintf(&b, "    %s %s %s\n", sc, sb, stitle)
			}
			if len(t.Subtasks) == 0 {
				b.WriteString(dimStyle.Render("    no subtasks, press 'a' to add one"))
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

func (m Model) renderForm() string {
	var b strings.Builder
	name := "Add task"
	if m.mode == modeEdit {
		name = "Edit task"
	}
	b.WriteString(headerStyle.Render(name))
	b.WriteString(dimStyle.Render("  (tab to move, enter to advance/save, esc to cancel)"))
	b.WriteString("\n")
	for i, field := range m.form.fields {
		prefix := " "
		value := field.value
		if i == m.form.index {
			prefix = ">"
			value = m.input.Value()
		}
		if strings.TrimSpace(value) == "" {
			value = dimStyle.Render("(empty)")
		}
		fmt.Fprintf(&b, "%s %-38s : %s\n", prefix, field.label, value)
	}
	b.WriteString(m.input.View())
	b.WriteString("\n")
	return b.String()
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move · %s/%s day · %s/%s month · %s today · %s add · %s ask · %s toggle · %s edit · %s subtasks · %s delete · %s refresh · %s quit",
		k.Up, k.Down, k.PrevDay, k.NextDay, k.PrevMonth, k.NextMonth, k.Today,
		k.Add, k.Ask, k.Toggle, k.Edit, k.Subtasks, k.Delete, k.Refresh, k.Quit)
}

func formatDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Monday, January 2, 2006")
}

func shiftDate(date string, days int) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, days).Format("2006-01-02")
}

func yearMonth(date string) (int, int) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		now := time.Now()
		return now.Year(), int(now.Month()) - 1
	}
	return t.Year(), int(t.Month()) - 1
}

func cursorFor(tasks []task.Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return clampCursor(0, len(tasks))
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
