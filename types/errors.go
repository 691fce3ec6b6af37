package types

import "errors"

// InvalidColumnError reports a sort or filter column outside the allow-list.
// It is always a client-input defect and is never retried.
type InvalidColumnError struct {
	Column string
}

func (e *InvalidColumnError) Error() string {
	return "'" + e.Column + "' is not a valid column"
}

func NewInvalidColumnError(column string) error {
	return &InvalidColumnError{Column: column}
}

// InvalidSearchQueryError reports a structurally malformed filter, e.g. a
// condition/operator count mismatch or a missing comparator.
type InvalidSearchQueryError struct {
	msg string
}

func (e *InvalidSearchQueryError) Error() string {
	return e.msg
}

func NewInvalidSearchQueryError(text string) error {
	return &InvalidSearchQueryError{text}
}

// InvalidArgumentError reports a filter value that fails a required coercion,
// e.g. a non-numeric value where a numeric one is required.
type InvalidArgumentError struct {
	msg string
}

func (e *InvalidArgumentError) Error() string {
	return e.msg
}

func NewInvalidArgumentError(text string) error {
	return &InvalidArgumentError{text}
}

// InsufficientPermissionsError reports a visibility, ownership or
// authentication failure.
type InsufficientPermissionsError struct {
	msg string
}

func (e *InsufficientPermissionsError) Error() string {
	return e.msg
}

func NewInsufficientPermissionsError() error {
	return &InsufficientPermissionsError{"insufficient permissions"}
}

// ReadOnlyModeError reports a mutation attempted while the deployment is
// configured read-only.
type ReadOnlyModeError struct {
	msg string
}

func (e *ReadOnlyModeError) Error() string {
	return e.msg
}

func NewReadOnlyModeError() error {
	return &ReadOnlyModeError{"the system is operating in read-only mode"}
}

func IsInvalidColumn(err error) bool {
	var target *InvalidColumnError
	return errors.As(err, &target)
}

func IsInvalidSearchQuery(err error) bool {
	var target *InvalidSearchQueryError
	return errors.As(err, &target)
}

func IsInvalidArgument(err error) bool {
	var target *InvalidArgumentError
	return errors.As(err, &target)
}

func IsInsufficientPermissions(err error) bool {
	var target *InsufficientPermissionsError
	return errors.As(err, &target)
}

func IsReadOnlyMode(err error) bool {
	var target *ReadOnlyModeError
	return errors.As(err, &target)
}
