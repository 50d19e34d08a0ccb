// mqttsim generates configurable MQTT publish traffic for load tests and demos.
package main

import "github.com/marcelo-6/mqtt-sim/pkg/cli"

// Build-time variables set via -ldflags.
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.BuildDate = buildDate
	cli.Execute()
}
