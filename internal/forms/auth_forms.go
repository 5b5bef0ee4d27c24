package forms

import (
	"strings"

	"github.com/anonto42/nano-blog/backend/validators"
)

type SignupInput struct {
	Username string `form:"username" validate:"required,max=150,username"`
	Email    string `form:"email" validate:"required,email"`
	Name     string `form:"name" validate:"max=150"`
	Password string `form:"password" validate:"required,min=8"`
}

type SignupForm struct {
	SignupInput
	Errors validators.FieldErrors
}

func NewSignupForm() *SignupForm {
	return &SignupForm{Errors: validators.FieldErrors{}}
}

func (f *SignupForm) Validate(v StructValidator) (bool, error) {
	f.Errors = validators.FieldErrors{}
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
	if err := runValidator(v, &f.SignupInput, f.Errors); err != nil {
		return false, err
	}
	return len(f.Errors) == 0, nil
}

type LoginInput struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next"`
}

type LoginForm struct {
	LoginInput
	Errors validators.FieldErrors
}

func NewLoginForm(next string) *LoginForm {
	f := &LoginForm{Errors: validators.FieldErrors{}}
	f.Next = next
	return f
}

func (f *LoginForm) Validate(v StructValidator) (bool, error) {
	f.Errors = validators.FieldErrors{}
	if err := runValidator(v, &f.LoginInput, f.Errors); err != nil {
		return false, err
	}
	return len(f.Errors) == 0, nil
}

// SafeNext returns the post-login destination, falling back to "/" for anything that is not a local path.
func (f *LoginForm) SafeNext() string {
	return SafeRedirect(f.Next)
}

// SafeRedirect accepts only local absolute paths.
func SafeRedirect(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
