package effects

import "fmt"

// ID combines a fixed tag with a dynamic key, e.g. a row ID, so that one
// reducer can keep one cancellable task per element.
type ID struct {
	Tag any
	Key any
}

// IDOf builds a cancellation ID. tag and key must be comparable.
func IDOf(tag, key any) ID {
	return ID{Tag: tag, Key: key}
}

func (id ID) String() string {
	return fmt.Sprintf("%v:%v", id.Tag, id.Key)
}

// Token is a pointer-identity cancellation ID. Two tokens never collide even
// when their names match.
type Token struct {
	name string
}

func NewToken(name string) *Token {
	return &Token{name: name}
}

func (t *Token) String() string {
	return t.name
}
