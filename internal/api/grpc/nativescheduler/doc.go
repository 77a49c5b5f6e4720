// Package nativescheduler implements the gRPC transport for the native
// scheduler daemon.
//
// It adapts wire messages to domain alarms and exposes a server that calls
// into a provided business-service interface.
package nativescheduler
