// Package client holds the alarm-scheduler client commands.
//
// The commands connect to the native scheduler daemon, list the alarms it
// holds and cancel them by activity id.
package client
