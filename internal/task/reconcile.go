package task

// SubtaskOpKind distinguishes the two remote operations a bulk edit can
// require for existing subtasks. Newly added subtasks go through the add
// path at creation time and never appear in a diff.
type SubtaskOpKind int

const (
	SubtaskDelete SubtaskOpKind = iota
	SubtaskRename
)

type SubtaskOp struct {
	Kind  SubtaskOpKind
	ID    string
	Title string // new title, rename only
}

// DiffSubtasks computes the remote operations that converge a task's server
// subtask state to the edited list: deletes for every id present only in
// before, then renames for every surviving id whose title changed. Deletes
// keep before's order, renames keep after's order. The result is applied
// best-effort, one independent operation at a time.
func DiffSubtasks(before, after []SubTask) []SubtaskOp {
	kept := make(map[string]string, len(after))
	for _, st := range after {
		if st.ID == "" {
			continue
		}
		kept[st.ID] = st.Title
	}

	var ops []SubtaskOp
	for _, st := range before {
		if _, ok := kept[st.ID]; !ok {
			ops = append(ops, SubtaskOp{Kind: SubtaskDelete, ID: st.ID})
		}
	}
	prev := make(map[string]string, len(before))
	for _, st := range before {
		prev[st.ID] = st.Title
	}
	for _, st := range after {
		if st.ID == "" {
			continue
		}
		if old, ok := prev[st.ID]; ok && old != st.Title {
			ops = append(ops, SubtaskOp{Kind: SubtaskRename, ID: st.ID, Title: st.Title})
		}
	}
	return ops
}
