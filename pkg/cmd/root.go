// Package cmd implements the turbine command-line driver (§6 "Command-line
// driver, option parsing ... out of scope, specified only as collaborators"):
// a thin cobra wrapper around pkg/driver, built the same way the teacher's
// pkg/cmd/root.go wraps subcommands around its compiler library.
package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "turbine",
	Short: "Produces Java header class files from bound compilation units.",
	Long:  "A fast, ABI-only substitute for a full javac pass: binds a set of compilation units and writes header class files without lowering method bodies.",
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.PersistentFlags().StringArrayP("classpath", "c", []string{}, "classpath jar file (repeatable)")
	rootCmd.PersistentFlags().String("ct-sym", "", "path to a JDK lib/ct.sym for platform classpath entries")
	rootCmd.PersistentFlags().String("release", "", "JDK release to select from --ct-sym, e.g. 17")
}

func configureLogging(cmd *cobra.Command) *log.Entry {
	if GetFlag(cmd, "verbose") {
		log.SetLevel(log.DebugLevel)
	}

	return log.NewEntry(log.StandardLogger())
}
