package viewer

import (
	"github.com/pkg/errors"
)

// Kind classifies why the viewer failed.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindLoad
	KindDisplay
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindLoad:
		return "load failure"
	case KindDisplay:
		return "display failure"
	}
	return "unknown"
}

var (
	ErrNotFound = errors.New("3D file not found")
	ErrLoad     = errors.New("mesh could not be loaded")
	ErrDisplay  = errors.New("display failure")
)

var sentinels = map[Kind]error{
	KindNotFound: ErrNotFound,
	KindLoad:     ErrLoad,
	KindDisplay:  ErrDisplay,
}

// Error is returned by every Viewer operation.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindNotFound:
		return "3D file not found at: " + e.Path
	case e.Err != nil:
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func fail(kind Kind, path string, err error) error {
	return &Error{Kind: kind, Path: path, Err: err}
}
