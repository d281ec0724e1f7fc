// Package validate holds the syntax checks applied to contact details during intake.
package validate

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	ErrEmailMsg = "must look like name@domain.tld"
	ErrPhoneMsg = "must be 10-15 digits with an optional leading +"
)

var (
	RegEmail = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)
	RegPhone = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
)

// Email returns a validation error when s is not an email address.
func Email(s string) error {
	return validation.Validate(s,
		validation.Required,
		validation.Match(RegEmail).Error(ErrEmailMsg),
	)
}

// Phone returns a validation error when s is not a phone number.
func Phone(s string) error {
	return validation.Validate(s,
		validation.Required,
		validation.Match(RegPhone).Error(ErrPhoneMsg),
	)
}

func IsEmail(s string) bool { return Email(s) == nil }

func IsPhone(s string) bool { return Phone(s) == nil }
