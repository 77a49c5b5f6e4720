// Package activities provides the read-only Activity Source the engine
// reconciles against.
package activities
