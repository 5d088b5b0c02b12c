package cmd

import (
	"fmt"
	"os"

	"github.com/google/turbine/pkg/diag"
	"github.com/google/turbine/pkg/driver"
	"github.com/spf13/cobra"
)

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "classify classpath entries as EXPLICIT, IMPLICIT or UNUSED.",
	Long:  "Binds --units against the configured classpath and writes the §6 deps-output map, without writing class files.",
	Run: func(cmd *cobra.Command, args []string) {
		entry := configureLogging(cmd)

		units := readUnits(GetString(cmd, "units"))

		log := diag.NewLog()
		env := buildClasspath(cmd, log)

		result, err := driver.Bind(units, env, log, entry)
		if err != nil {
			printDiagnostics(log)
			fmt.Println(err)
			os.Exit(1)
		}

		deps := driver.Deps(env, result.Headers)
		if err := driver.WriteDeps(GetString(cmd, "out"), deps); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(depsCmd)
	depsCmd.Flags().String("units", "", "path to a gob-encoded []*tree.CompilationUnit")
	depsCmd.Flags().String("out", "", "path to write the deps-usage map to")
	depsCmd.MarkFlagRequired("units")
	depsCmd.MarkFlagRequired("out")
}
