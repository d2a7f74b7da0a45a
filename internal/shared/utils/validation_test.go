package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCredentials(t *testing.T) {
	assert.NoError(t, ValidateCredentials("owner@example.com", "hunter2"))
	assert.EqualError(t, ValidateCredentials(" ", "x"), "Email and password are required.")
	assert.EqualError(t, ValidateCredentials("owner@example.com", ""), "Email and password are required.")
	assert.EqualError(t, ValidateCredentials("owner", "hunter2"), "Enter a valid email address.")
	assert.Error(t, ValidateCredentials("owner@example.com", strings.Repeat("x", MaxPasswordLength+1)))
}

func TestValidateMessage(t *testing.T) {
	assert.NoError(t, ValidateMessage("How do I sell more sweets?"))
	assert.EqualError(t, ValidateMessage(""), "Type a message first.")
	assert.EqualError(t, ValidateMessage(strings.Repeat("a", MaxMessageLength+1)),
		"Message must not exceed 4000 characters.")
	assert.EqualError(t, ValidateMessage("hi\x00"), "Message contains invalid characters.")
}

func TestValidateTopic(t *testing.T) {
	assert.NoError(t, ValidateTopic("Diwali sweets discount"))
	assert.EqualError(t, ValidateTopic(""), "Enter a topic to generate content.")
	assert.Error(t, ValidateTopic(strings.Repeat("t", MaxTopicLength+1)))
}

func TestValidateString(t *testing.T) {
	assert.NoError(t, ValidateString("", "website", 10, false))
	assert.EqualError(t, ValidateString("  ", "business name", 10, true), "Business name is required.")
	assert.NoError(t, ValidateString("héllo", "name", 5, true))
}
