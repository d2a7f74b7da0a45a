// Package utils validates user input before it reaches the API.
package utils
