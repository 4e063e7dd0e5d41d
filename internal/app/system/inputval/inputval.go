// Package inputval holds entity validation for user-supplied input.
//
// Validators return an Errors value (a list of field/message pairs) instead
// of recording problems on the entity. An empty Errors means the input is
// acceptable. Messages follow the "<Field> <message>" convention so that
// FullMessages renders text such as "Title can't be blank".
package inputval

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dalemusser/waffle/pantry/validate"
)

// Length limits for entity fields.
const (
	TaskTitleMin   = 6
	TaskTitleMax   = 100
	TaskStatusMax  = 20
	PasswordMin    = 6
	ProjectNameMax = 100
	UserNameMax    = 100
)

// Messages shared by validators and stores.
const (
	MsgBlank        = "can't be blank"
	MsgInvalid      = "is invalid"
	MsgTaken        = "has already been taken"
	MsgNotMember    = "is not a valid project member"
	MsgConfirmation = "doesn't match Password"
)

// FieldError is one violated rule on one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FullMessage renders the error as "<Humanized field> <message>".
func (f FieldError) FullMessage() string {
	return Humanize(f.Field) + " " + f.Message
}

// Errors is an ordered list of field errors.
type Errors []FieldError

// Add appends a field error.
func (e *Errors) Add(field, message string) {
	*e = append(*e, FieldError{Field: field, Message: message})
}

// Empty reports whether no rule was violated.
func (e Errors) Empty() bool { return len(e) == 0 }

// FullMessages renders every error with its humanized field name.
func (e Errors) FullMessages() []string {
	out := make([]string, 0, len(e))
	for _, fe := range e {
		out = append(out, fe.FullMessage())
	}
	return out
}

func (e Errors) Error() string {
	return strings.Join(e.FullMessages(), "; ")
}

// Humanize turns a field key into a display label: "assignee_id" → "Assignee",
// "password_confirmation" → "Password confirmation".
func Humanize(field string) string {
	s := strings.TrimSuffix(field, "_id")
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// Presence records a blank error when value is empty after trimming.
// It returns false when the value was blank.
func Presence(errs *Errors, field, value string) bool {
	if strings.TrimSpace(value) == "" {
		errs.Add(field, MsgBlank)
		return false
	}
	return true
}

// Length records too-short / too-long errors. A zero bound is ignored.
// Length counts runes, not bytes.
func Length(errs *Errors, field, value string, min, max int) {
	n := utf8.RuneCountInString(value)
	if min > 0 && n < min {
		errs.Add(field, "is too short (minimum is "+strconv.Itoa(min)+" characters)")
	}
	if max > 0 && n > max {
		errs.Add(field, "is too long (maximum is "+strconv.Itoa(max)+" characters)")
	}
}

// IsValidEmail checks an email address with waffle's SimpleEmailValid and
// additionally rejects display-name forms, whitespace, and leading,
// trailing, or doubled dots in either part.
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" || strings.Count(email, "@") != 1 || !validate.SimpleEmailValid(email) {
		return false
	}
	if strings.ContainsAny(email, " \t\r\n<>()[]\\,;:\"") {
		return false
	}
	at := strings.IndexByte(email, '@')
	local, domain := email[:at], email[at+1:]
	return validDotAtom(local) && validDotAtom(domain)
}

func validDotAtom(s string) bool {
	if s == "" || strings.HasPrefix(s, ".") || strings.HasSuffix(s, ".") {
		return false
	}
	return !strings.Contains(s, "..")
}
