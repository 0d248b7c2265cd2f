package identified

// ElementAction routes Action to the element of an Array with ID.
type ElementAction[ID comparable, CA any] struct {
	ID     ID
	Action CA
}

func Element[ID comparable, CA any](id ID, action CA) ElementAction[ID, CA] {
	return ElementAction[ID, CA]{ID: id, Action: action}
}

// StackAction is the sum of actions a navigation stack understands:
// StackElement, StackPush and StackPopFrom.
type StackAction[C, CA any] interface {
	stackAction(C, CA)
}

// StackElement routes Action to the stack element with ID.
type StackElement[C, CA any] struct {
	ID     StackElementID
	Action CA
}

// StackPush pushes State under ID.
type StackPush[C, CA any] struct {
	ID    StackElementID
	State C
}

// StackPopFrom pops ID and everything above it.
type StackPopFrom[C, CA any] struct {
	ID StackElementID
}

func (StackElement[C, CA]) stackAction(C, CA) {}
func (StackPush[C, CA]) stackAction(C, CA)    {}
func (StackPopFrom[C, CA]) stackAction(C, CA) {}
