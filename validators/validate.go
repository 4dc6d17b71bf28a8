package validators

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a JSON field path (e.g. "qualifications[0].examination") to a message.
type FieldErrors map[string]string

func (f FieldErrors) OK() bool { return len(f) == 0 }

func (f FieldErrors) Add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

var (
	mobileRe   = regexp.MustCompile(`^\d{10}$`)
	pincodeRe  = regexp.MustCompile(`^\d{6}$`)
	ifscRe     = regexp.MustCompile(`^[A-Za-z]{4}0[A-Za-z0-9]{6}$`)
	passwordRe = regexp.MustCompile(`^[A-Za-z\d@$!%*?&]{8,15}$`)

	engineOnce sync.Once
	engine     *validator.Validate
)

func instance() *validator.Validate {
	engineOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("mobile", matches(mobileRe))
		_ = v.RegisterValidation("pincode", matches(pincodeRe))
		_ = v.RegisterValidation("ifsc", matches(ifscRe))
		_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return IsStrongPassword(fl.Field().String())
		})
		engine = v
	})
	return engine
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// IsStrongPassword: 8-15 characters from letters, digits and @$!%*?&, with at least
// one lowercase, one uppercase, one digit and one special character.
func IsStrongPassword(pw string) bool {
	if !passwordRe.MatchString(pw) {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	return lower && upper && digit && special
}

func IsValidMobile(mobile string) bool { return mobileRe.MatchString(mobile) }

// Struct validates v and returns per-field messages. An empty map means v is valid.
func Struct(v any) FieldErrors {
	out := FieldErrors{}
	err := instance().Struct(v)
	if err == nil {
		return out
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["_"] = err.Error()
		return out
	}
	for _, fe := range verrs {
		out.Add(fieldPath(fe.Namespace()), message(fe))
	}
	return out
}

// Var validates a single value against a tag, reporting the error under field.
func Var(field string, value any, tag string) FieldErrors {
	out := FieldErrors{}
	if err := instance().Var(value, tag); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			out[field] = messageFor(field, verrs[0].Tag(), verrs[0].Param())
		} else {
			out[field] = "Invalid value!"
		}
	}
	return out
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func message(fe validator.FieldError) string {
	return messageFor(fe.Field(), fe.Tag(), fe.Param())
}

func messageFor(field, tag, param string) string {
	name := label(field)
	switch tag {
	case "required", "required_if":
		return name + " is required!"
	case "mobile":
		return "Invalid mobile number!"
	case "email":
		return "Invalid email!"
	case "password":
		return "Password must be 8-15 characters and include an uppercase letter, a lowercase letter, a number and one of @$!%*?&"
	case "ifsc":
		return "Invalid IFSC code!"
	case "pincode":
		return "PIN code must be 6 digits!"
	case "oneof":
		return name + " must be one of: " + strings.ReplaceAll(param, "'", "") + "!"
	case "eqfield":
		return "Passwords do not match!"
	case "numeric":
		return name + " must be numeric!"
	case "min":
		return name + " must be at least " + param + " characters long!"
	case "max":
		return name + " must be at most " + param + " characters long!"
	case "len":
		return name + " must be exactly " + param + " characters long!"
	case "gt", "gte":
		return name + " must be greater than " + param + "!"
	}
	return "Invalid " + strings.ToLower(name) + "!"
}

// label turns a JSON key into a readable label: "boardUniversity" -> "Board university".
func label(field string) string {
	if field == "" {
		return "Field"
	}
	var b strings.Builder
	for i, r := range field {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteRune(' ')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		if i == 0 {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
