package validators

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// FieldErrors maps a form field name to its human-readable messages.
// NonFieldKey collects errors that do not belong to a single field.
type FieldErrors map[string][]string

const NonFieldKey = "__all__"

func (e FieldErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Get returns the first message for field, or "".
func (e FieldErrors) Get(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func (e FieldErrors) Has(field string) bool {
	return len(e[field]) > 0
}

func (e FieldErrors) Merge(other FieldErrors) {
	for field, msgs := range other {
		e[field] = append(e[field], msgs...)
	}
}

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(e[field], " "))
	}
	return strings.Join(parts, "; ")
}

// Validator implements echo.Validator. Failures come back as FieldErrors keyed by the `form` tag.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// NewValidator creates a validator with English messages.
func NewValidator() *Validator {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	locale := en.New()
	trans, _ := ut.New(locale, locale).GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		panic(err)
	}
	overrides := map[string]string{
		"required": "This field is required.",
		"email":    "Enter a valid email address.",
		"username": "Enter a valid username. This value may contain only letters, numbers, and _ characters.",
		"slug":     "Enter a valid slug consisting of letters, numbers, underscores or hyphens.",
	}
	for tag, text := range overrides {
		tag, text := tag, text
		_ = validate.RegisterTranslation(tag, trans, func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T(fe.Tag(), fe.Field())
			return msg
		})
	}
	if err := validate.RegisterValidation("username", validUsername); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("slug", validSlug); err != nil {
		panic(err)
	}

	return &Validator{validate: validate, trans: trans}
}

// Validate runs the struct tags of i.
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		out.Add(fe.Field(), fe.Translate(v.trans))
	}
	return out
}

func validUsername(fl validator.FieldLevel) bool {
	return onlyWordChars(fl.Field().String(), "")
}

func validSlug(fl validator.FieldLevel) bool {
	return onlyWordChars(fl.Field().String(), "-")
}

// onlyWordChars reports whether s holds only ASCII letters, digits, '_' and the runes in extra.
func onlyWordChars(s, extra string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		case strings.ContainsRune(extra, r):
		default:
			return false
		}
	}
	return true
}
