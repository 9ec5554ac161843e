// Package store owns the authoritative in-memory task state: the selected
// date's tasks and the current month's activity placeholders. Every mutation
// goes to the remote service first and is applied locally only after the
// remote confirms it, so a failed call leaves state untouched and there is
// no rollback path.
//
// A Store belongs to a single event loop and is not safe for concurrent use.
// Each day/month fetch carries a generation counter; a response whose
// generation no longer matches the current selection is discarded instead of
// overwriting newer data.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chronos/internal/ai"
	"chronos/internal/api"
	"chronos/internal/task"
)

// Remote is the persistence service surface the store mutates through.
// *api.Client implements it.
type Remote interface {
	ListDay(ctx context.Context, date string) ([]api.TaskRecord, error)
	CreateTask(ctx context.Context, payload api.CreateTask) (api.TaskRecord, error)
	ToggleTask(ctx context.Context, id string) error
	UpdateTask(ctx context.Context, payload api.UpdateTask) error
	DeleteTask(ctx context.Context, id string) error
	MonthSummary(ctx context.Context, month string) ([]api.DaySummary, error)
	AddSubtask(ctx context.Context, todoID, title string) (api.SubtaskRecord, error)
	ToggleSubtask(ctx context.Context, id string) error
	UpdateSubtask(ctx context.Context, id, title string) error
	DeleteSubtask(ctx context.Context, id string) error
}

// Drafter turns free text into a task draft. *ai.Client implements it.
type Drafter interface {
	ParseTask(ctx context.Context, text, refDate string) (ai.Draft, error)
}

type Store struct {
	remote  Remote
	drafter Drafter

	selectedDate string
	month        string // YYYY-MM

	dayTasks   []task.Task
	monthTasks []task.Task // placeholders from the summary plus confirmed CRUD results

	dayGen   uint64
	monthGen uint64

	sortedDay []task.Task
	dayDirty  bool
}

func New(remote Remote, drafter Drafter) *Store {
	return &Store{remote: remote, drafter: drafter, dayDirty: true}
}

func (s *Store) SelectedDate() string { return s.selectedDate }
func (s *Store) Month() string        { return s.month }

// SelectDate makes date the current selection and re-fetches its tasks. The
// store keeps no cross-date cache; returning to a previous date fetches
// again. A fetch that resolves after a newer selection is dropped.
func (s *Store) SelectDate(ctx context.Context, date string) error {
	if !task.ValidDate(date) {
		return fmt.Errorf("invalid date %q", date)
	}
	s.selectedDate = date
	s.dayDirty = true
	s.dayGen++
	gen := s.dayGen

	records, err := s.remote.ListDay(ctx, date)
	if err != nil {
		return err
	}
	if gen != s.dayGen {
		// superseded by a newer selection
		return nil
	}
	s.dayTasks = tasksFromRecords(records)
	s.dayDirty = true
	return nil
}

// SelectMonth re-fetches the month activity summary (month is YYYY-MM). The
// placeholder collection is replaced wholesale, never patched in place.
func (s *Store) SelectMonth(ctx context.Context, month string) error {
	if len(month) != 7 || month[4] != '-' {
		return fmt.Errorf("invalid month %q", month)
	}
	s.month = month
	s.monthGen++
	gen := s.monthGen

	days, err := s.remote.MonthSummary(ctx, month)
	if err != nil {
		return err
	}
	if gen != s.monthGen {
		return nil
	}
	placeholders := make([]task.Task, 0, len(days))
	for _, d := range days {
		if d.HasTasks {
			placeholders = append(placeholders, task.Placeholder(d.Date, d.Pending, d.Completed))
		}
	}
	s.monthTasks = placeholders
	return nil
}

// Refresh re-fetches both the selected date and the current month.
func (s *Store) Refresh(ctx context.Context) error {
	if err := s.SelectDate(ctx, s.selectedDate); err != nil {
		return err
	}
	if s.month == "" {
		return nil
	}
	return s.SelectMonth(ctx, s.month)
}

// CreateParams are the fields of a new task. An empty Date means the
// selected date.
type CreateParams struct {
	Title       string
	Description string
	Date        string
	Time        string
	GroupID     string
	Subtasks    []string
}

// CreateTask asks the remote to create a task and, once confirmed, inserts
// the returned record into the day and month collections.
func (s *Store) CreateTask(ctx context.Context, p CreateParams) (task.Task, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return task.Task{}, errors.New("title cannot be empty")
	}
	date := p.Date
	if date == "" {
		date = s.selectedDate
	}
	if !task.ValidDate(date) {
		return task.Task{}, fmt.Errorf("invalid date %q", date)
	}
	if !task.ValidTime(p.Time) {
		return task.Task{}, fmt.Errorf("invalid time %q", p.Time)
	}

	payload := api.CreateTask{
		Title:       title,
		Description: p.Description,
		Date:        date,
		Time:        p.Time,
		GroupID:     task.NormalizeGroupID(p.GroupID),
	}
	for _, st := range p.Subtasks {
		st = strings.TrimSpace(st)
		if st != "" {
			payload.Subtasks = append(payload.Subtasks, api.CreateSubtask{Title: st})
		}
	}

	record, err := s.remote.CreateTask(ctx, payload)
	if err != nil {
		return task.Task{}, err
	}
	created := taskFromRecord(record)
	if created.Date == s.selectedDate {
		s.dayTasks = append([]task.Task{created}, s.dayTasks...)
		s.dayDirty = true
	}
	s.monthTasks = append(s.monthTasks, created)
	return created, nil
}

// ToggleTask flips a task's completed flag, remote first.
func (s *Store) ToggleTask(ctx context.Context, id string) error {
	if err := s.remote.ToggleTask(ctx, id); err != nil {
		return err
	}
	s.eachByID(id, func(t *task.Task) {
		t.Completed = !t.Completed
	})
	return nil
}

// DeleteTask removes a task from the remote and then from both collections.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	if err := s.remote.DeleteTask(ctx, id); err != nil {
		return err
	}
	s.dayTasks = removeByID(s.dayTasks, id)
	s.monthTasks = removeByID(s.monthTasks, id)
	s.dayDirty = true
	return nil
}

// UpdateFields carries a task edit. Nil fields stay unchanged.
type UpdateFields struct {
	Title       *string
	Description *string
	Time        *string
	GroupID     *string
}

// UpdateTask pushes a field edit to the remote, then applies it locally.
func (s *Store) UpdateTask(ctx context.Context, id string, f UpdateFields) error {
	if f.Title != nil && !task.ValidTitle(*f.Title) {
		return errors.New("title cannot be empty")
	}
	if f.Time != nil && !task.ValidTime(*f.Time) {
		return fmt.Errorf("invalid time %q", *f.Time)
	}
	if f.GroupID != nil {
		normalized := task.NormalizeGroupID(*f.GroupID)
		f.GroupID = &normalized
	}
	err := s.remote.UpdateTask(ctx, api.UpdateTask{
		ID:          id,
		Title:       f.Title,
		Description: f.Description,
		Time:        f.Time,
		GroupID:     f.GroupID,
	})
	if err != nil {
		return err
	}
	s.eachByID(id, func(t *task.Task) {
		if f.Title != nil {
			t.Title = strings.TrimSpace(*f.Title)
		}
		if f.Description != nil {
			t.Description = *f.Description
		}
		if f.Time != nil {
			t.Time = *f.Time
		}
		if f.GroupID != nil {
			t.GroupID = *f.GroupID
		}
	})
	return nil
}

// SubtaskOutcome reports one reconciliation operation and its result.
type SubtaskOutcome struct {
	Op  task.SubtaskOp
	Err error
}

// ReconcileSubtasks converges the remote subtask state of a task to the
// edited list produced by a bulk edit. Operations are independent and
// best-effort: one failure neither aborts the rest nor rolls anything back,
// and each operation mutates local state only after its own confirmation.
func (s *Store) ReconcileSubtasks(ctx context.Context, taskID string, edited []task.SubTask) []SubtaskOutcome {
	current := s.find(taskID)
	if current == nil {
		return nil
	}
	ops := task.DiffSubtasks(current.Subtasks, edited)
	outcomes := make([]SubtaskOutcome, 0, len(ops))
	for _, op := range ops {
		var err error
		switch op.Kind {
		case task.SubtaskDelete:
			err = s.remote.DeleteSubtask(ctx, op.ID)
			if err == nil {
				s.eachByID(taskID, func(t *task.Task) {
					t.Subtasks = removeSubtask(t.Subtasks, op.ID)
				})
			}
		case task.SubtaskRename:
			err = s.remote.UpdateSubtask(ctx, op.ID, op.Title)
			if err == nil {
				s.eachByID(taskID, func(t *task.Task) {
					for i := range t.Subtasks {
						if t.Subtasks[i].ID == op.ID {
							t.Subtasks[i].Title = op.Title
						}
					}
				})
			}
		}
		outcomes = append(outcomes, SubtaskOutcome{Op: op, Err: err})
	}
	return outcomes
}

// AddSubtask appends a confirmed new subtask to a task.
func (s *Store) AddSubtask(ctx context.Context, taskID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return errors.New("subtask title cannot be empty")
	}
	record, err := s.remote.AddSubtask(ctx, taskID, title)
	if err != nil {
		return err
	}
	st := task.SubTask{ID: api.FormatID(record.ID), Title: record.Title, Completed: record.Completed}
	s.eachByID(taskID, func(t *task.Task) {
		for _, existing := range t.Subtasks {
			if existing.ID == st.ID {
				return
			}
		}
		t.Subtasks = append(t.Subtasks, st)
	})
	return nil
}

// ToggleSubtask flips one subtask's completed flag, remote first.
func (s *Store) ToggleSubtask(ctx context.Context, taskID, subtaskID string) error {
	if err := s.remote.ToggleSubtask(ctx, subtaskID); err != nil {
		return err
	}
	s.eachByID(taskID, func(t *task.Task) {
		for i := range t.Subtasks {
			if t.Subtasks[i].ID == subtaskID {
				t.Subtasks[i].Completed = !t.Subtasks[i].Completed
			}
		}
	})
	return nil
}

// CreateFromPrompt sends free text to the drafting collaborator and, when a
// usable draft comes back, creates the task through the ordinary create
// path with the same confirm-then-apply semantics.
func (s *Store) CreateFromPrompt(ctx context.Context, text string) (task.Task, error) {
	if s.drafter == nil {
		return task.Task{}, errors.New("ai drafting is not configured")
	}
	draft, err := s.drafter.ParseTask(ctx, text, s.selectedDate)
	if err != nil {
		return task.Task{}, err
	}
	params := CreateParams{
		Title:       draft.Title,
		Description: draft.Description,
		Date:        draft.Date,
		Time:        draft.Time,
		GroupID:     draft.GroupID,
	}
	for _, st := range draft.Subtasks {
		params.Subtasks = append(params.Subtasks, st.Title)
	}
	return s.CreateTask(ctx, params)
}

// DayTasks returns the selected date's tasks in display order. The slice is
// derived (filter + sort) from the authoritative collection and memoized
// until the next mutation; callers must not modify it.
func (s *Store) DayTasks() []task.Task {
	if s.dayDirty {
		list := make([]task.Task, 0, len(s.dayTasks))
		for _, t := range s.dayTasks {
			if t.Date == s.selectedDate {
				list = append(list, t)
			}
		}
		task.SortForDay(list)
		s.sortedDay = list
		s.dayDirty = false
	}
	return s.sortedDay
}

// HasActivity reports whether the month collection holds unfinished work on
// a date, which drives the calendar activity dots.
func (s *Store) HasActivity(date string) bool {
	for _, t := range s.monthTasks {
		if t.Date == date && !t.Completed {
			return true
		}
	}
	return false
}

// Progress returns completed and total counts for the selected date.
func (s *Store) Progress() (completed, total int) {
	for _, t := range s.DayTasks() {
		total++
		if t.Completed {
			completed++
		}
	}
	return completed, total
}

// Task returns a copy of the task with the given id, if the day collection
// holds it.
func (s *Store) Task(id string) (task.Task, bool) {
	if t := s.find(id); t != nil {
		return *t, true
	}
	return task.Task{}, false
}

func (s *Store) find(id string) *task.Task {
	for i := range s.dayTasks {
		if s.dayTasks[i].ID == id {
			return &s.dayTasks[i]
		}
	}
	return nil
}

// eachByID applies fn to every entry with the given id across both
// collections. Placeholder ids never collide with task ids, so month
// placeholders stay untouched by CRUD.
func (s *Store) eachByID(id string, fn func(*task.Task)) {
	for i := range s.dayTasks {
		if s.dayTasks[i].ID == id {
			fn(&s.dayTasks[i])
			s.dayDirty = true
		}
	}
	for i := range s.monthTasks {
		if s.monthTasks[i].ID == id {
			fn(&s.monthTasks[i])
		}
	}
}

func removeByID(tasks []task.Task, id string) []task.Task {
	kept := tasks[:0]
	for _, t := range tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	return kept
}

func removeSubtask(subtasks []task.SubTask, id string) []task.SubTask {
	kept := subtasks[:0]
	for _, st := range subtasks {
		if st.ID != id {
			kept = append(kept, st)
		}
	}
	return kept
}

func tasksFromRecords(records []api.TaskRecord) []task.Task {
	tasks := make([]task.Task, 0, len(records))
	for _, r := range records {
		tasks = append(tasks, taskFromRecord(r))
	}
	return tasks
}

// taskFromRecord converts a wire record, normalizing the group id at the
// boundary so an unknown group is never stored.
func taskFromRecord(r api.TaskRecord) task.Task {
	t := task.Task{
		ID:          api.FormatID(r.ID),
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
		Time:        r.Time,
		GroupID:     task.NormalizeGroupID(r.GroupID),
		Completed:   r.Completed,
	}
	seen := make(map[string]bool, len(r.Subtasks))
	for _, st := range r.Subtasks {
		id := api.FormatID(st.ID)
		if seen[id] {
			continue
		}
		seen[id] = true
		t.Subtasks = append(t.Subtasks, task.SubTask{ID: id, Title: st.Title, Completed: st.Completed})
	}
	return t
}
