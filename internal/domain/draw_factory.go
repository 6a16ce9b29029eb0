package domain

import "fmt"

// DrawSourceFactory instantiates the draw source for a selection spec. It
// is called once per resolution call.
type DrawSourceFactory interface {
	DrawSource(spec SelectionStrategySpec) (DrawSource, error)
}

// DefaultDrawSourceFactory creates built-in draw sources. Each call to
// DrawSource returns a new source, so random generators are never shared
// between resolution calls.
type DefaultDrawSourceFactory struct{}

func (DefaultDrawSourceFactory) DrawSource(spec SelectionStrategySpec) (DrawSource, error) {
	switch spec.Type {
	case SelectionRandom, "":
		return NewRandomDraws(), nil
	case SelectionDeterministic:
		if spec.Key == "" {
			return nil, fmt.Errorf("%w: deterministic selection requires a key", ErrInvalidArgument)
		}
		return KeyedDraws{Key: spec.Key}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported selection strategy type %q", ErrInvalidArgument, spec.Type)
	}
}
