package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	calendarDateTag  = "calendardate"
	calendarDateText = "{0} must be a date in YYYY-MM-DD format"
)

// FieldError describes a problem with one request field
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError collects field problems for a request
type ValidationError struct {
	Err    error
	Fields []FieldError
}

// NewValidationError builds a ValidationError for the given fields
func NewValidationError(err error, fields ...FieldError) error {
	return &ValidationError{Err: err, Fields: fields}
}

// Field returns a ValidationError for a single field
func Field(field, message string) error {
	return &ValidationError{
		Err:    errors.New(field + ": " + message),
		Fields: []FieldError{{Field: field, Error: message}},
	}
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return "validation failed"
	}
	return e.Err.Error()
}

// As extracts a ValidationError from err
func As(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	english := en.New()
	uni := ut.New(english, english)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Report JSON names instead of Go field names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(calendarDateTag, func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01-02", fl.Field().String())
		return err == nil
	})
	registerTranslation(calendarDateTag, calendarDateText)
}

func registerTranslation(tag, text string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, false) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Struct validates a request struct using its validate tags
func Struct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]FieldError, 0, len(verrs))
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fe.Translate(translator)
		fields = append(fields, FieldError{Field: fe.Field(), Error: msg})
		messages = append(messages, msg)
	}
	return &ValidationError{Err: errors.New(strings.Join(messages, "; ")), Fields: fields}
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return Field("email", "email is required")
	}
	if !emailRegex.MatchString(email) {
		return Field("email", "invalid email format")
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return Field("password", "password is required")
	}
	if len(password) < 8 {
		return Field("password", "password must be at least 8 characters")
	}
	return nil
}

// ValidateName checks if a display name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return Field("name", "name is required")
	}
	if len([]rune(name)) < 2 {
		return Field("name", "name must be at least 2 characters")
	}
	return nil
}
