package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidRequest marks malformed input; handlers answer 400.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrLookup marks a referenced document that could not be read.
	ErrLookup = errors.New("lookup failed")
	// ErrBatchWrite marks a multi-document write that did not commit.
	ErrBatchWrite = errors.New("batch write failed")
	// ErrConflict marks a state transition that is no longer allowed.
	ErrConflict = errors.New("conflicting state")
	// ErrForbidden marks a credential that does not match the document.
	ErrForbidden = errors.New("forbidden")
)

var validate = validator.New()

// check runs struct validation and reports failures as ErrInvalidRequest.
func check(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s is %s", ErrInvalidRequest, verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}
