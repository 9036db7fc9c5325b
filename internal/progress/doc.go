// Package progress derives a member's statistics and level from their
// training history. Everything here is a pure function of its inputs.
package progress
