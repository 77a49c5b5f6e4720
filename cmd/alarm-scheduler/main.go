// Command alarm-scheduler runs the native scheduler daemon that fires alarms
// on behalf of the alarm engine.
package main

import "github.com/oshokin/activity-alarms/cmd/alarm-scheduler/cmd"

func main() {
	cmd.Execute()
}
