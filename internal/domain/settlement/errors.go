package settlement

// ErrValidation indicates malformed allocation input. The allocator is pure
// and deterministic, so retrying with the same input reproduces the same
// error; the caller must refresh or correct its input first.
type ErrValidation struct {
	Reason string
}

func (e ErrValidation) Error() string {
	return "allocation input invalid: " + e.Reason
}

// Is implements the errors.Is interface for ErrValidation
func (e ErrValidation) Is(target error) bool {
	_, ok := target.(ErrValidation)
	return ok
}
