package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Input length limits, in characters.
const (
	MaxEmailLength    = 255
	MaxPasswordLength = 128
	MaxMessageLength  = 4000
	MaxTopicLength    = 500
	MaxNameLength     = 256
)

// EmailPattern is a loose address check. The API does the real validation.
var EmailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateString checks a required or optional field's length and content.
// Errors are phrased for the person typing.
func ValidateString(value, fieldName string, maxLen int, required bool) error {
	if strings.TrimSpace(value) == "" {
		if required {
			return fmt.Errorf("%s is required.", capitalize(fieldName))
		}
		return nil
	}
	if utf8.RuneCountInString(value) > maxLen {
		return fmt.Errorf("%s must not exceed %d characters.", capitalize(fieldName), maxLen)
	}
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters.", capitalize(fieldName))
	}
	return nil
}

// ValidateEmail validates a sign-in address.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if err := ValidateString(email, "email", MaxEmailLength, true); err != nil {
		return err
	}
	if !EmailPattern.MatchString(email) {
		return errors.New("Enter a valid email address.")
	}
	return nil
}

// ValidatePassword only bounds the password. Strength rules are the API's.
func ValidatePassword(password string) error {
	return ValidateString(password, "password", MaxPasswordLength, true)
}

// ValidateCredentials validates an email and password pair.
func ValidateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return errors.New("Email and password are required.")
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}
	return ValidatePassword(password)
}

// ValidateMessage validates a trimmed chat message.
func ValidateMessage(message string) error {
	if message == "" {
		return errors.New("Type a message first.")
	}
	return ValidateString(message, "message", MaxMessageLength, true)
}

// ValidateTopic validates a trimmed content topic.
func ValidateTopic(topic string) error {
	if topic == "" {
		return errors.New("Enter a topic to generate content.")
	}
	return ValidateString(topic, "topic", MaxTopicLength, true)
}

// ValidateName validates a required name field such as a business name.
func ValidateName(name, fieldName string) error {
	return ValidateString(name, fieldName, MaxNameLength, true)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
