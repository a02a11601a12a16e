package image

import "errors"

type Kind int

const (
	_ Kind = iota
	MissingCredential
	InvalidInput
	RemoteFailure
)

func (k Kind) String() string {
	switch k {
	case MissingCredential:
		return "missing credential"
	case InvalidInput:
		return "invalid input"
	case RemoteFailure:
		return "remote failure"
	}
	return "unknown"
}

// DispatchError is returned for every failed dispatch. Err is the cause and
// is passed through from the remote collaborator untouched.
type DispatchError struct {
	Kind Kind
	Err  error
}

func (e *DispatchError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *DispatchError) Unwrap() error { return e.Err }

// Is matches any DispatchError of the same kind when target carries no cause,
// so errors.Is(err, ErrRemoteFailure) works regardless of the wrapped error.
func (e *DispatchError) Is(target error) bool {
	t, ok := target.(*DispatchError)
	return ok && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrMissingCredential = &DispatchError{Kind: MissingCredential}
	ErrInvalidInput      = &DispatchError{Kind: InvalidInput}
	ErrRemoteFailure     = &DispatchError{Kind: RemoteFailure}
)

// KindOf returns the kind of the first DispatchError in err's chain, or zero.
func KindOf(err error) Kind {
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}
