// Package feedback renders alarm feedback for exactly as long as an alarm is
// active. The Controller observes engine transitions and drives a Player.
package feedback
