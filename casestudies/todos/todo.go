// Package todos is the todo list case study: identified elements edited
// through bindings, filters, and a debounced re-sort after completion.
package todos

import (
	"github.com/google/uuid"

	"github.com/on-the-ground/composable_go/reducer"
)

type Todo struct {
	ID          uuid.UUID
	Description string
	IsComplete  bool
}

// TodoAction edits one field of a Todo.
type TodoAction = reducer.BindingAction[Todo]

func SetDescription(description string) TodoAction {
	return reducer.Set("description", func(t *Todo) *string { return &t.Description }, description)
}

func SetComplete(complete bool) TodoAction {
	return reducer.Set("isComplete", func(t *Todo) *bool { return &t.IsComplete }, complete)
}

func todoReducer() reducer.Reducer[Todo, TodoAction] {
	return reducer.Binding[Todo, TodoAction](func(a TodoAction) (TodoAction, bool) {
		return a, true
	})
}
