// Package inputval validates user-submitted form input.
//
// Handlers declare validation rules as struct tags and call Validate:
//
//	type createGroupInput struct {
//		Name string `validate:"required,max=200" label:"Name"`
//	}
//
//	if result := inputval.Validate(input); result.HasErrors() {
//		reRender(result.First())
//		return
//	}
//
// Messages use the `label` tag so they read naturally on the page.
package inputval

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// FieldError is one failed rule on one field.
type FieldError struct {
	Field   string
	Message string
}

// Result collects validation failures in field declaration order.
type Result struct {
	Errors []FieldError
}

func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first error message, or "" when valid.
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every error message with "; ".
func (r *Result) All() string {
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, e.Message)
	}
	return strings.Join(parts, "; ")
}

func (r *Result) add(field, msg string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: msg})
}

// Validate applies the `validate` tag rules of v's string fields.
// v must be a struct or a pointer to one; anything else yields an
// empty Result.
func Validate(v any) *Result {
	res := &Result{}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return res
	}

	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		tag := f.Tag.Get("validate")
		if tag == "" || f.Type.Kind() != reflect.String {
			continue
		}

		label := f.Tag.Get("label")
		if label == "" {
			label = f.Name
		}
		value := strings.TrimSpace(rv.Field(i).String())

		for _, rule := range strings.Split(tag, ",") {
			if msg := applyRule(rule, label, value); msg != "" {
				res.add(f.Name, msg)
				break // report one failure per field
			}
		}
	}
	return res
}

func applyRule(rule, label, value string) string {
	name, arg, _ := strings.Cut(rule, "=")

	// Every rule except "required" passes on an empty value.
	if value == "" && name != "required" {
		return ""
	}

	switch name {
	case "required":
		if value == "" {
			return fmt.Sprintf("%s is required.", label)
		}
	case "max":
		n, err := strconv.Atoi(arg)
		if err == nil && len([]rune(value)) > n {
			return fmt.Sprintf("%s must be at most %d characters.", label, n)
		}
	case "email":
		if !IsValidEmail(value) {
			return "A valid email address is required."
		}
	case "oneof":
		allowed := strings.Fields(arg)
		for _, a := range allowed {
			if value == a {
				return ""
			}
		}
		return fmt.Sprintf("%s must be one of: %s.", label, strings.Join(allowed, ", "))
	case "authmethod":
		if !IsValidAuthMethod(value) {
			return fmt.Sprintf("%s must be one of: %s.", label, strings.Join(AllowedAuthMethodsList(), ", "))
		}
	case "httpurl", "url":
		if !IsValidHTTPURL(value) {
			return fmt.Sprintf("%s must be a valid http or https URL.", label)
		}
	case "objectid":
		if !IsValidObjectID(value) {
			return fmt.Sprintf("%s is not a valid identifier.", label)
		}
	case "ra":
		if !IsValidRA(value) {
			return fmt.Sprintf("%s must look like RA00000000.", label)
		}
	case "section":
		if !IsValidSection(value) {
			return fmt.Sprintf("%s must look like MA6.", label)
		}
	}
	return ""
}

/* -------------------------------------------------------------------------- */
/* Field validators                                                           */
/* -------------------------------------------------------------------------- */

// emailLocal and emailDomain reject leading/trailing/consecutive dots
// and whitespace. Single-label domains are allowed for dev setups.
var (
	emailLocal  = regexp.MustCompile(`^[A-Za-z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+(\.[A-Za-z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+)*$`)
	emailDomain = regexp.MustCompile(`^[A-Za-z0-9-]+(\.[A-Za-z0-9-]+)*$`)

	raPattern      = regexp.MustCompile(`^RA\d{8}$`)
	sectionPattern = regexp.MustCompile(`^[A-Z]{2}\d$`)
)

// IsValidEmail reports whether s is a plausible bare email address.
// Display-name forms like "Name <a@b>" are rejected.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	local, domain, ok := strings.Cut(s, "@")
	if !ok || local == "" || domain == "" {
		return false
	}
	if strings.Contains(domain, "@") {
		return false
	}
	return emailLocal.MatchString(local) && emailDomain.MatchString(domain)
}

// IsValidAuthMethod reports whether s names a supported sign-in method.
func IsValidAuthMethod(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, m := range AllowedAuthMethodsList() {
		if s == m {
			return true
		}
	}
	return false
}

// AllowedAuthMethodsList returns the supported sign-in methods.
func AllowedAuthMethodsList() []string {
	return []string{"internal", "google"}
}

// IsValidHTTPURL reports whether s is an absolute http or https URL.
func IsValidHTTPURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != "" && !strings.ContainsAny(s, " \t")
}

// IsValidObjectID reports whether s is a 24-char hex Mongo ObjectID.
func IsValidObjectID(s string) bool {
	if len(s) != 24 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// IsValidRA reports whether s is a registrar id like RA01234567.
func IsValidRA(s string) bool {
	return raPattern.MatchString(strings.TrimSpace(s))
}

// IsValidSection reports whether s is a section code like MA6.
func IsValidSection(s string) bool {
	return sectionPattern.MatchString(strings.TrimSpace(s))
}
