package reducer

import (
	"github.com/on-the-ground/composable_go/effects"
)

// BindingAction writes one field of S, typically from a form control.
type BindingAction[S any] struct {
	Name string
	set  func(*S)
}

// Set builds the BindingAction writing value through field.
func Set[S, V any](name string, field func(*S) *V, value V) BindingAction[S] {
	return BindingAction[S]{
		Name: name,
		set: func(s *S) {
			*field(s) = value
		},
	}
}

func (b BindingAction[S]) String() string {
	return "binding(" + b.Name + ")"
}

// Binding applies every BindingAction extract finds.
func Binding[S, A any](extract func(A) (BindingAction[S], bool)) Reducer[S, A] {
	return Reduce[S, A](func(state *S, action A) effects.Effect[A] {
		if b, ok := extract(action); ok && b.set != nil {
			b.set(state)
		}
		return effects.None[A]()
	})
}
