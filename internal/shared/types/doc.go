// Package types provides the data structures shared by the BizMate
// controller: chat messages, generated content, scheduled posts and the
// business profile, with the JSON names used by the remote API.
package types
