package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

// SensitiveFields is the set of attribute names (lowercase) that carry
// credentials and must be redacted before logging. Registry auth settings
// and one-time passwords reach the log through option dumps.
var SensitiveFields = map[string]bool{
	"authorization": true,
	"_authtoken":    true,
	"otp":           true,
	"npm_token":     true,
}

// bearerPattern matches "Bearer <token>" strings that appear as raw values.
var bearerPattern = regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9\-._~+/]+=*`)

// npmTokenPattern matches granular and classic npm access tokens.
var npmTokenPattern = regexp.MustCompile(`npm_[A-Za-z0-9]{36}`)

// authTokenInlinePattern matches ".npmrc" style "_authToken=<value>" lines
// that may appear in captured process output.
var authTokenInlinePattern = regexp.MustCompile(`(?i)_auth(token)?\s*=\s*\S+`)

// fixedRedactOptions is the number of masq options beyond the dynamic
// SensitiveFields set (3 field names + 2 prefixes + 3 regexes).
const fixedRedactOptions = 8

// newRedactAttr returns a masq-powered ReplaceAttr function for use in
// slog.HandlerOptions. It redacts by field name for known sensitive fields
// and by regex for values that escape call-site redaction.
func newRedactAttr() func([]string, slog.Attr) slog.Attr {
	opts := make([]masq.Option, 0, fixedRedactOptions+len(SensitiveFields))

	for name := range SensitiveFields {
		opts = append(opts, masq.WithFieldName(name))
	}

	opts = append(opts,
		masq.WithFieldName("password"),
		masq.WithFieldName("secret"),
		masq.WithFieldName("token"),

		masq.WithFieldPrefix("secret_"),
		masq.WithFieldPrefix("token_"),

		masq.WithRegex(bearerPattern),
		masq.WithRegex(npmTokenPattern),
		masq.WithRegex(authTokenInlinePattern),
	)

	return masq.New(opts...)
}
