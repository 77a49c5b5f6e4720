// Package activity contains the core domain types for schedulable activities.
//
// An Activity is either an alarm (fires at an absolute time) or an app-usage
// timer. Only alarms take part in scheduling.
package activity
