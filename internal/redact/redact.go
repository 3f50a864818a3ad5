// Package redact hides credentials in values that end up in logs and error
// text: repository URLs with user info and Bot API paths carrying the token.
package redact

import (
	"net/url"
	"regexp"
	"strings"
)

// Placeholder replaces every hidden value.
const Placeholder = "xxxxx"

var (
	// user info of any URL, with or without a password.
	userinfoPattern = regexp.MustCompile(`(://)[^/\s@'"]+@`)
	// Bot API method paths, /bot<token>/<method>.
	botTokenPattern = regexp.MustCompile(`/bot[^/\s'"]+/`)
)

// URL replaces the whole user info of a URL with a placeholder, so that
// token-only remotes such as https://<token>@host/repo are covered too.
// Values that are not URLs with user info are returned unchanged.
func URL(raw string) string {
	if !strings.Contains(raw, "://") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Text(raw)
	}
	if u.User == nil {
		return raw
	}
	u.User = url.User(Placeholder)
	return u.String()
}

// Args applies URL to each argument.
func Args(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		out[i] = URL(arg)
	}
	return out
}

// Text hides credentials embedded in free-form text such as command output
// or error messages.
func Text(s string) string {
	s = userinfoPattern.ReplaceAllString(s, "${1}"+Placeholder+"@")
	return botTokenPattern.ReplaceAllString(s, "/bot"+Placeholder+"/")
}

// Error wraps err so that its message goes through Text. The original error
// stays reachable with errors.Is and errors.As.
func Error(err error) error {
	if err == nil {
		return nil
	}
	msg := Text(err.Error())
	if msg == err.Error() {
		return err
	}
	return &redactedError{msg: msg, err: err}
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }

func (e *redactedError) Unwrap() error { return e.err }
