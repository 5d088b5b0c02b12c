// Command turbine is the §6 command-line driver: a thin wrapper around the
// binder/codec library exposing bind and deps subcommands.
package main

import "github.com/google/turbine/pkg/cmd"

func main() {
	cmd.Execute()
}
