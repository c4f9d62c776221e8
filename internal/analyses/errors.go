package analyses

import "errors"

var (
	// ErrValidation marks request data the store refuses to write.
	ErrValidation = errors.New("validation failed")
	// ErrStorage marks failures reported by the persistence layer.
	ErrStorage = errors.New("storage failure")
)

const (
	ErrorCodeValidation = "VALIDATION_ERROR"
	ErrorCodeStorage    = "STORAGE_ERROR"
	ErrorCodeBadRequest = "BAD_REQUEST"
)

// ValidationError reports a missing required field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return e.Field + " is required"
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// StorageError wraps a driver error with the statement that failed.
// Its message is the underlying driver message.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return e.Op + " failed"
	}
	return e.Err.Error()
}

func (e *StorageError) Unwrap() []error { return []error{ErrStorage, e.Err} }

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
