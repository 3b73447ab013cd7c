package domain

import "unicode"

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

// PasswordPolicyMessage describes the policy enforced by SatisfiesPasswordPolicy.
const PasswordPolicyMessage = "password must be at least 8 characters and contain a digit and a lowercase letter"

// SatisfiesPasswordPolicy reports whether p is acceptable as a new password.
// Uppercase letters and symbols are allowed but not required.
func SatisfiesPasswordPolicy(p string) bool {
	if len([]rune(p)) < MinPasswordLength {
		return false
	}
	var hasDigit, hasLower bool
	for _, r := range p {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		}
	}
	return hasDigit && hasLower
}
