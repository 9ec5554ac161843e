package task

import (
	"reflect"
	"testing"
)

func TestDiffSubtasks(t *testing.T) {
	cases := []struct {
		name   string
		before []SubTask
		after  []SubTask
		want   []SubtaskOp
	}{
		{
			name: "delete missing then rename changed",
			before: []SubTask{
				{ID: "a", Title: "x"},
				{ID: "b", Title: "y"},
			},
			after: []SubTask{
				{ID: "a", Title: "x2"},
			},
			want: []SubtaskOp{
				{Kind: SubtaskDelete, ID: "b"},
				{Kind: SubtaskRename, ID: "a", Title: "x2"},
			},
		},
		{
			name: "no changes",
			before: []SubTask{
				{ID: "a", Title: "x"},
			},
			after: []SubTask{
				{ID: "a", Title: "x"},
			},
			want: nil,
		},
		{
			name:   "everything removed",
			before: []SubTask{{ID: "a", Title: "x"}, {ID: "b", Title: "y"}},
			after:  nil,
			want: []SubtaskOp{
				{Kind: SubtaskDelete, ID: "a"},
				{Kind: SubtaskDelete, ID: "b"},
			},
		},
		{
			name:   "new entries without ids are not the diff's business",
			before: []SubTask{{ID: "a", Title: "x"}},
			after: []SubTask{
				{ID: "a", Title: "x"},
				{Title: "brand new"},
			},
			want: nil,
		},
		{
			name:   "completed flag changes are ignored",
			before: []SubTask{{ID: "a", Title: "x", Completed: false}},
			after:  []SubTask{{ID: "a", Title: "x", Completed: true}},
			want:   nil,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DiffSubtasks(tc.before, tc.after)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}
