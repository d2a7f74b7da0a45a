// Package workflow provides Controller, the state holder that wraps one
// asynchronous operation of a screen: sending a chat message, generating
// content, loading the schedule.
//
// A controller is Idle, Pending, Success or Failed. While Pending, later
// callers join the in-flight call instead of starting another, so an
// operation is never issued twice concurrently. A failure that ends the
// session locks the controller and emits the redirect signal once; a new
// session unlocks it. Any other failure returns the controller to its
// previous stable state and is kept as LastError.
package workflow
