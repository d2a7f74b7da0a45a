// Package content drives the marketing screen: generate a post for a
// topic, then save it as a draft or schedule it.
//
// The workflow moves through
//
//	Empty -> Generating -> Generated -> SavingDraft|Scheduling -> Saved
//
// Generating again is allowed from Generated and Saved and discards the
// previous payload. Saving is allowed only from Generated; a failed save
// returns there with the payload intact.
package content
