package validator

import (
	"errors"
	"log/slog"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entrans "github.com/go-playground/validator/v10/translations/en"
	"github.com/shandysiswandi/storefront/internal/pkg/strcase"
)

var ErrTranslatorNotFound = errors.New("translator not found")

var (
	// 72 is the bcrypt input limit.
	rePassword = regexp.MustCompile(`^.{8,72}$`)
	rePhone    = regexp.MustCompile(`^\+[1-9][0-9]{7,14}$`)
)

type rule struct {
	tag, message string
	valid        func(string) bool
}

var rules = []rule{
	{"password", "{0} must be 8-72 characters", rePassword.MatchString},
	{"phone_e164", "{0} must be a phone number in international format", rePhone.MatchString},
	{"otp_code_type", "{0} must be one of numeric, alphanumeric or alphabetic", func(s string) bool {
		return s == "numeric" || s == "alphanumeric" || s == "alphabetic"
	}},
}

// V10ValidationError maps snake_case field names to translated messages.
type V10ValidationError map[string]string

func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}
	var b strings.Builder
	b.WriteString("validation error: ")
	for i, k := range slices.Sorted(maps.Keys(vs)) {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(k + ": " + vs[k])
	}
	return b.String()
}

func (vs V10ValidationError) Values() map[string]string {
	return vs
}

// V10Validator is Validator backed by go-playground/validator with English
// messages.
type V10Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func NewV10Validator() (*V10Validator, error) {
	locale := en.New()
	trans, ok := ut.New(locale, locale).GetTranslator(locale.Locale())
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	if err := entrans.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, err
	}
	for _, r := range rules {
		if err := register(v, trans, r); err != nil {
			return nil, err
		}
	}

	return &V10Validator{validate: v, trans: trans}, nil
}

func register(v *validator.Validate, trans ut.Translator, r rule) error {
	if err := v.RegisterValidation(r.tag, func(fl validator.FieldLevel) bool {
		return r.valid(fl.Field().String())
	}); err != nil {
		return err
	}

	return v.RegisterTranslation(r.tag, trans,
		func(t ut.Translator) error { return t.Add(r.tag, r.message, false) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, err := t.T(fe.Tag(), fe.Field())
			if err != nil {
				slog.Warn("validator: missing translation", "tag", fe.Tag(), "error", err)
				return fe.Error()
			}
			return msg
		},
	)
}

// Validate returns V10ValidationError when data breaks any of its tags.
func (v *V10Validator) Validate(data any) error {
	err := v.validate.Struct(data)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(V10ValidationError, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[strcase.ToLowerSnake(fe.Field())] = fe.Translate(v.trans)
	}
	return out
}

func (v *V10Validator) Var(value any, tag string) bool {
	return v.validate.Var(value, tag) == nil
}
