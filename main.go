package main

import "PerfHarness/pkg/commands"

func main() {
	commands.Execute()
}
