// Package scheduler runs the native scheduler daemon: an out-of-process
// facility that fires alarms at absolute wall-clock times whether or not the
// alarm engine is running, and keeps them across its own restarts.
package scheduler
