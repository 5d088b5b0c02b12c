package cmd

import (
	"fmt"
	"os"

	"github.com/google/turbine/pkg/diag"
	"github.com/google/turbine/pkg/driver"
	"github.com/spf13/cobra"
)

var bindCmd = &cobra.Command{
	Use:   "bind",
	Short: "bind a set of compilation units and write header class files.",
	Long:  "Runs every binder phase over --units and writes one .class file per bound class into --outdir.",
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

		classFiles := make(map[string][]byte, len(result.ClassFiles))
		for cs, cf := range result.ClassFiles {
			classFiles[cs.BinaryName()] = classFileBytes(cf)
		}

		if err := writeClassFiles(GetString(cmd, "outdir"), classFiles); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		if depsPath := GetString(cmd, "deps"); depsPath != "" {
			deps := driver.Deps(env, result.Headers)
			if err := driver.WriteDeps(depsPath, deps); err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
		}
	},
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(bindCmd)
	bindCmd.Flags().String("units", "", "path to a gob-encoded []*tree.CompilationUnit")
	bindCmd.Flags().String("outdir", "", "directory to write header class files into")
	bindCmd.Flags().String("deps", "", "also write the classpath deps-usage map to this path")
	bindCmd.MarkFlagRequired("units")
	bindCmd.MarkFlagRequired("outdir")
}
