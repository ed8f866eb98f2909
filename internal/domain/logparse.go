package domain

import "regexp"

// badPubliccodeRe matches the crawler message emitted when a repository
// carries an invalid publiccode.yml. The parser output may span many lines.
var badPubliccodeRe = regexp.MustCompile(`(?ms)^\[(.+?)\] BAD publiccode\.yml: (.*)`)

// ParseLogMessage extracts the repository and the validator output from a
// catalog log message. ok is false for unrelated messages.
func ParseLogMessage(message string) (repo, output string, ok bool) {
	m := badPubliccodeRe.FindStringSubmatch(message)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// IsResolvableEntity reports whether a log entity references a record.
// The crawler writes "//" when it could not build one.
func IsResolvableEntity(entity string) bool {
	return entity != "" && entity != "//"
}
