package todos

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/on-the-ground/composable_go/dependency"
	"github.com/on-the-ground/composable_go/effects"
	"github.com/on-the-ground/composable_go/identified"
	"github.com/on-the-ground/composable_go/reducer"
)

type Filter int

const (
	All Filter = iota
	Active
	Completed
)

func (f Filter) String() string {
	switch f {
	case All:
		return "All"
	case Active:
		return "Active"
	case Completed:
		return "Completed"
	default:
		panic("exhaustive match fallback, filter")
	}
}

func (f Filter) includes(t Todo) bool {
	switch f {
	case Active:
		return !t.IsComplete
	case Completed:
		return t.IsComplete
	default:
		return true
	}
}

type List = identified.Array[uuid.UUID, Todo]

func todoID(t Todo) uuid.UUID { return t.ID }

// NewList builds a todo list from todos in order.
func NewList(todos ...Todo) List {
	return identified.New(todoID, todos...)
}

type State struct {
	Filter Filter
	Todos  List
}

// Filtered returns the todos the current filter shows, in list order.
func (s State) Filtered() []Todo {
	var out []Todo
	for _, t := range s.Todos.Elements() {
		if s.Filter.includes(t) {
			out = append(out, t)
		}
	}
	return out
}

type Action interface {
	todosAction()
}

type (
	AddTodoTapped        struct{}
	Binding              struct{ Action reducer.BindingAction[State] }
	ClearCompletedTapped struct{}
	// Delete removes the todos at Indices of the filtered list.
	Delete struct{ Indices []int }
	// Move moves the todo at From of the filtered list to To.
	Move               struct{ From, To int }
	SortCompletedTodos struct{}
	Element            struct {
		identified.ElementAction[uuid.UUID, TodoAction]
	}
)

func (AddTodoTapped) todosAction()        {}
func (Binding) todosAction()              {}
func (ClearCompletedTapped) todosAction() {}
func (Delete) todosAction()               {}
func (Move) todosAction()                 {}
func (SortCompletedTodos) todosAction()   {}
func (Element) todosAction()              {}

// SetFilter is the binding of the filter picker.
func SetFilter(f Filter) Action {
	return Binding{Action: reducer.Set("filter", func(s *State) *Filter { return &s.Filter }, f)}
}

// Edit routes a todo edit to the todo with id.
func Edit(id uuid.UUID, edit TodoAction) Action {
	return Element{identified.Element(id, edit)}
}

var (
	completionID = effects.NewToken("todos.completion")

	elementPath = reducer.Path(
		func(a Action) (identified.ElementAction[uuid.UUID, TodoAction], bool) {
			e, ok := a.(Element)
			return e.ElementAction, ok
		},
		func(e identified.ElementAction[uuid.UUID, TodoAction]) Action { return Element{e} },
	)
)

const (
	sortAfterMove       = 100 * time.Millisecond
	sortAfterCompletion = time.Second
)

func sortLater(d time.Duration) effects.Effect[Action] {
	return effects.Concatenate(
		effects.Sleep[Action](d),
		effects.Send[Action](SortCompletedTodos{}),
	)
}

func Reducer() reducer.Reducer[State, Action] {
	binding := reducer.Binding[State, Action](func(a Action) (reducer.BindingAction[State], bool) {
		b, ok := a.(Binding)
		return b.Action, ok
	})
	list := reducer.Reduce[State, Action](reduce)
	return reducer.ForEach(
		reducer.Combine(binding, reducer.Reducer[State, Action](list)),
		func(s *State) *List { return &s.Todos },
		elementPath,
		todoReducer(),
	)
}

func reduce(state *State, action Action) effects.Effect[Action] {
	switch action := action.(type) {
	case AddTodoTapped:
		return effects.Run(func(ctx context.Context, send effects.Sender[Action]) error {
			send.Send(insertTodo{ID: dependency.FromContext(ctx).UUID.NewUUID()})
			return nil
		}, effects.Named[Action]("newTodo"))

	case insertTodo:
		state.Todos.Insert(0, Todo{ID: action.ID})
		return effects.None[Action]()

	case Binding:
		return effects.None[Action]()

	case ClearCompletedTapped:
		state.Todos.RemoveWhere(func(t Todo) bool { return t.IsComplete })
		return effects.None[Action]()

	case Delete:
		filtered := state.Filtered()
		for _, i := range action.Indices {
			if i >= 0 && i < len(filtered) {
				state.Todos.Remove(filtered[i].ID)
			}
		}
		return effects.None[Action]()

	case Move:
		filtered := state.Filtered()
		if action.From < 0 || action.From >= len(filtered) {
			return effects.None[Action]()
		}
		from := indexOf(state.Todos, filtered[action.From].ID)
		to := state.Todos.Len() - 1
		if action.To >= 0 && action.To < len(filtered) {
			to = indexOf(state.Todos, filtered[action.To].ID)
		}
		state.Todos.Move(from, to)
		return sortLater(sortAfterMove)

	case SortCompletedTodos:
		state.Todos.Sort(func(x, y Todo) bool { return !x.IsComplete && y.IsComplete })
		return effects.None[Action]()

	case Element:
		if action.Action.Name != "isComplete" {
			return effects.None[Action]()
		}
		return sortLater(sortAfterCompletion).Cancellable(completionID, true)

	default:
		panic("exhaustive match fallback, todos action")
	}
}

// insertTodo carries a freshly generated id back into the list.
type insertTodo struct{ ID uuid.UUID }

func (insertTodo) todosAction() {}

func indexOf(list List, id uuid.UUID) int {
	for i, other := range list.IDs() {
		if other == id {
			return i
		}
	}
	return -1
}
