// Package platform wraps the host facilities the alarm binaries rely on:
// platform detection, process probing for the native scheduler daemon,
// desktop notifications, the notification permission check and the login
// autostart entry of the scheduler daemon.
package platform
