// Command alarm-engine schedules the alarms found in an activities file and
// presents them on the terminal.
package main

import "github.com/oshokin/activity-alarms/cmd/alarm-engine/cmd"

func main() {
	cmd.Execute()
}
