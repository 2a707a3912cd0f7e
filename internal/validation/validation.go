// Package validation holds the input rules applied before anything reaches a store.
package validation

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Rule messages returned to clients, one per violated rule.
const (
	MsgUsernameLength   = "Username must be between 3 and 20 characters"
	MsgUsernameChars    = "Username can only contain letters, numbers, and underscores"
	MsgPasswordLength   = "Password must be at least 8 characters long"
	MsgPasswordMix      = "Password must contain at least one uppercase letter, one lowercase letter, and one number"
	MsgUsernameRequired = "Username is required"
	MsgPasswordRequired = "Password is required"
	MsgTextLength       = "Todo text must be between 1 and 500 characters"
	MsgEmptyPatch       = "At least one of text or completed must be provided"
)

var (
	usernameChars = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	hasLower      = regexp.MustCompile(`[a-z]`)
	hasUpper      = regexp.MustCompile(`[A-Z]`)
	hasDigit      = regexp.MustCompile(`[0-9]`)

	validate = newValidate()
)

// rule pairs a validator tag with the message reported when it fails.
type rule struct {
	tag string
	msg string
}

var (
	usernameRules = []rule{
		{"min=3,max=20", MsgUsernameLength},
		{"username_chars", MsgUsernameChars},
	}
	passwordRules = []rule{
		{"min=8", MsgPasswordLength},
		{"password_mix", MsgPasswordMix},
	}
	textRules = []rule{
		{"min=1,max=500", MsgTextLength},
	}
)

func newValidate() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("username_chars", func(fl validator.FieldLevel) bool {
		return usernameChars.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("password_mix", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return hasLower.MatchString(s) && hasUpper.MatchString(s) && hasDigit.MatchString(s)
	})
	return v
}

// check runs every rule independently so each violation yields its own message.
func check(value string, rules []rule) []string {
	var out []string
	for _, r := range rules {
		if err := validate.Var(value, r.tag); err != nil {
			out = append(out, r.msg)
		}
	}
	return out
}

// Registration validates sign-up input. It returns the normalised username
// and the list of violated rules (nil when valid).
func Registration(username, password string) (string, []string) {
	username = strings.TrimSpace(username)
	violations := check(username, usernameRules)
	violations = append(violations, check(password, passwordRules)...)
	return Escape(username), violations
}

// Login only requires both fields to be present; strength rules are not
// re-checked so existing accounts can always sign in.
func Login(username, password string) (string, []string) {
	username = strings.TrimSpace(username)
	var violations []string
	if validate.Var(username, "required") != nil {
		violations = append(violations, MsgUsernameRequired)
	}
	if validate.Var(password, "required") != nil {
		violations = append(violations, MsgPasswordRequired)
	}
	return Escape(username), violations
}

// ItemText trims and length-checks text, then escapes it for storage.
func ItemText(text string) (string, []string) {
	text = strings.TrimSpace(text)
	if violations := check(text, textRules); len(violations) > 0 {
		return "", violations
	}
	return Escape(text), nil
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
	`\`, "&#x5C;",
	"`", "&#96;",
)

// Escape replaces markup-significant characters with HTML entities.
func Escape(s string) string {
	return escaper.Replace(s)
}
