package reducer

import (
	"github.com/on-the-ground/composable_go/effects"
)

type Reducer[S, A any] interface {
	Reduce(state *S, action A) effects.Effect[A]
}

// Reduce turns a plain function into a Reducer.
type Reduce[S, A any] func(state *S, action A) effects.Effect[A]

func (f Reduce[S, A]) Reduce(state *S, action A) effects.Effect[A] {
	return f(state, action)
}

// CasePath focuses a parent action on one child case.
type CasePath[A, CA any] struct {
	Extract func(A) (CA, bool)
	Embed   func(CA) A
}

func Path[A, CA any](extract func(A) (CA, bool), embed func(CA) A) CasePath[A, CA] {
	return CasePath[A, CA]{Extract: extract, Embed: embed}
}

// TypePath is the CasePath of a parent action sum type whose case CA is a
// distinct Go type.
func TypePath[A, CA any](embed func(CA) A) CasePath[A, CA] {
	return CasePath[A, CA]{
		Extract: func(a A) (CA, bool) {
			ca, ok := any(a).(CA)
			return ca, ok
		},
		Embed: embed,
	}
}

func Empty[S, A any]() Reducer[S, A] {
	return Reduce[S, A](func(*S, A) effects.Effect[A] {
		return effects.None[A]()
	})
}

// Combine runs reducers in declared order; each sees the mutations of the
// previous ones. Their effects are merged.
func Combine[S, A any](reducers ...Reducer[S, A]) Reducer[S, A] {
	return Reduce[S, A](func(state *S, action A) effects.Effect[A] {
		effs := make([]effects.Effect[A], 0, len(reducers))
		for _, r := range reducers {
			effs = append(effs, r.Reduce(state, action))
		}
		return effects.Merge(effs...)
	})
}

// Scope runs child on the field toChild focuses on, for the actions path
// matches. Other actions are ignored by this stage.
func Scope[S, A, C, CA any](
	toChild func(*S) *C,
	path CasePath[A, CA],
	child Reducer[C, CA],
) Reducer[S, A] {
	return Reduce[S, A](func(state *S, action A) effects.Effect[A] {
		ca, ok := path.Extract(action)
		if !ok {
			return effects.None[A]()
		}
		return effects.Map(child.Reduce(toChild(state), ca), path.Embed)
	})
}

// Case runs child on the active variant of a sum-typed state when extract
// recognizes it. Actions for an inactive variant are dropped.
func Case[S, A, C, CA any](
	extract func(S) (C, bool),
	embedState func(C) S,
	path CasePath[A, CA],
	child Reducer[C, CA],
) Reducer[S, A] {
	return Reduce[S, A](func(state *S, action A) effects.Effect[A] {
		ca, ok := path.Extract(action)
		if !ok {
			return effects.None[A]()
		}
		c, ok := extract(*state)
		if !ok {
			return effects.None[A]()
		}
		eff := child.Reduce(&c, ca)
		*state = embedState(c)
		return effects.Map(eff, path.Embed)
	})
}

// Namespaced runs every effect of r under ns, so cancellation IDs used by r
// cannot collide with the same IDs used by sibling reducers.
func Namespaced[S, A any](ns any, r Reducer[S, A]) Reducer[S, A] {
	return Reduce[S, A](func(state *S, action A) effects.Effect[A] {
		return effects.Namespace(r.Reduce(state, action), ns)
	})
}
