// Package engine wires the alarm engine binary: it loads settings, watches the
// activities file, picks the scheduling capabilities available on this host
// and serves a small terminal surface for the active alarm.
package engine
