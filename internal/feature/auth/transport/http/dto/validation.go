package dto

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

var (
	translatorOnce sync.Once
	translator     ut.Translator
	translatorErr  error
)

// RegisterValidation configures gin's validator engine once: field names are
// reported by their json tag and messages are translated to English.
func RegisterValidation() error {
	translatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			translatorErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
			translatorErr = err
			return
		}

		enLocale := en.New()
		trans, _ := ut.New(enLocale, enLocale).GetTranslator("en")
		if err := entranslations.RegisterDefaultTranslations(v, trans); err != nil {
			translatorErr = err
			return
		}

		if err := v.RegisterTranslation("notblank", trans,
			func(ut ut.Translator) error {
				return ut.Add("notblank", "{0} must not be blank", true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				msg, err := ut.T("notblank", fe.Field())
				if err != nil {
					return fe.Error()
				}
				return msg
			},
		); err != nil {
			translatorErr = err
			return
		}

		// The default eqfield message names the Go field; say what the user did wrong.
		translatorErr = v.RegisterTranslation("eqfield", trans,
			func(ut ut.Translator) error {
				return ut.Add("eqfield", "{0} does not match {1}", true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				msg, err := ut.T("eqfield", fe.Field(), strings.ToLower(fe.Param()))
				if err != nil {
					return fe.Error()
				}
				return msg
			},
		)
		translator = trans
	})
	return translatorErr
}

// FieldErrors converts a binding error into field-level messages.
// ok is false when err is not a validation error (e.g. malformed JSON).
func FieldErrors(err error) (map[string][]string, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	out := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		msg := fe.Error()
		if translator != nil {
			msg = fe.Translate(translator)
		}
		out[fe.Field()] = append(out[fe.Field()], msg)
	}
	return out, true
}

// AddFieldError appends a message for a field, creating the map if needed.
func AddFieldError(errs map[string][]string, field, msg string) map[string][]string {
	if errs == nil {
		errs = map[string][]string{}
	}
	errs[field] = append(errs[field], msg)
	return errs
}
