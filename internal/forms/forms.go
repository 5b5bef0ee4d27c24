// Package forms binds and validates user-submitted fields before they reach the entities.
package forms

import (
	"errors"

	"github.com/anonto42/nano-blog/backend/validators"
)

// Messages shown next to invalid fields.
const (
	MsgRequired      = "This field is required."
	MsgInvalidImage  = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	MsgEmptyFile     = "The submitted file is empty."
	MsgImageTooLarge = "Ensure the image is at most 10 MB."
	MsgImageConflict = "Please either submit a file or check the clear checkbox, not both."
	MsgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."
	MsgBadLogin      = "Please enter a correct username and password. Note that both fields may be case-sensitive."
	MsgUsernameTaken = "A user with that username already exists."
)

// StructValidator is satisfied by echo.Validator.
type StructValidator interface {
	Validate(i interface{}) error
}

// runValidator folds tag-validation failures into errs. Errors other than field errors are returned.
func runValidator(v StructValidator, input interface{}, errs validators.FieldErrors) error {
	err := v.Validate(input)
	if err == nil {
		return nil
	}
	var fe validators.FieldErrors
	if errors.As(err, &fe) {
		errs.Merge(fe)
		return nil
	}
	return err
}
