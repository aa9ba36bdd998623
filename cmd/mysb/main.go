// Command mysb serves firmware updates to MYSBootloader nodes over MQTT.
package main

import "github.com/moffa90/go-mysb/cmd/mysb/cmd"

func main() {
	cmd.Execute()
}
