package form

import "fmt"

// ValueCoercionError reports text that cannot be cast to a field's type.
type ValueCoercionError struct {
	Name  string
	Input string
	Err   error
}

func (e *ValueCoercionError) Error() string {
	return fmt.Sprintf("form: set value %q for %q: %v", e.Input, e.Name, e.Err)
}

func (e *ValueCoercionError) Unwrap() error {
	return e.Err
}

// DuplicateFieldError reports a second primitive field with the same name in
// one container.
type DuplicateFieldError struct {
	Name      string
	Container string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("form: parameter with name %q already exists in %q", e.Name, e.Container)
}
