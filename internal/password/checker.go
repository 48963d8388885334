// Package password evaluates candidate passwords against the account policy.
package password

import "unicode"

// MinLength is the shortest accepted password.
const MinLength = 8

type ErrorKind string

const (
	Short       ErrorKind = "SHORT"
	NoLowerCase ErrorKind = "NO_LOWER_CASE"
	NoUpperCase ErrorKind = "NO_UPPER_CASE"
	NoNumber    ErrorKind = "NO_NUMBER"
)

// Result lists every rule a password broke. Valid is true when Reasons is empty.
type Result struct {
	Valid   bool        `json:"valid"`
	Reasons []ErrorKind `json:"reasons"`
}

// CheckPassword applies the length, lowercase and uppercase rules.
func CheckPassword(candidate string) Result {
	return check(candidate, false)
}

// CheckAdminPassword also requires at least one ASCII digit.
func CheckAdminPassword(candidate string) Result {
	return check(candidate, true)
}

func check(candidate string, admin bool) Result {
	var lower, upper, digit bool
	for _, r := range candidate {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}

	reasons := []ErrorKind{}
	if len([]rune(candidate)) < MinLength {
		reasons = append(reasons, Short)
	}
	if !lower {
		reasons = append(reasons, NoLowerCase)
	}
	if !upper {
		reasons = append(reasons, NoUpperCase)
	}
	if admin && !digit {
		reasons = append(reasons, NoNumber)
	}
	return Result{Valid: len(reasons) == 0, Reasons: reasons}
}
