package cmd

import (
	"archive/zip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/turbine/pkg/classfile"
	"github.com/google/turbine/pkg/classpath"
	"github.com/google/turbine/pkg/diag"
	"github.com/google/turbine/pkg/tree"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// GetFlag gets an expected flag, or exits if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetString gets an expected string, or exits if an error arises.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetStringArray gets an expected string array, or exits if an error arises.
func GetStringArray(cmd *cobra.Command, flag string) []string {
	r, err := cmd.Flags().GetStringArray(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// readUnits decodes a gob-encoded []*tree.CompilationUnit from path. The
// parser itself is out of scope (§6): a gob artifact is the input boundary
// a collaborator would hand this command, the same way the teacher's own
// cmd layer consumes a pre-built binary artifact rather than raw source.
func readUnits(path string) []*tree.CompilationUnit {
	f, err := os.Open(path)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer f.Close()

	var units []*tree.CompilationUnit

	if err := gob.NewDecoder(f).Decode(&units); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	return units
}

// buildClasspath opens every --classpath jar and, if --ct-sym is set, the
// platform ct.sym filtered to --release, layering them bootclasspath-first
// into a classpath.Env (§5 "fixed order by bootclasspath then classpath").
// The opened zip.ReadCloser is deliberately never closed: each ByteSupplier
// reads its entry lazily, potentially well after buildClasspath returns, for
// the process's whole (short) lifetime as a CLI invocation.
func buildClasspath(cmd *cobra.Command, log *diag.Log) *classpath.Env {
	var providers []classpath.Provider

	if ctSym := GetString(cmd, "ct-sym"); ctSym != "" {
		release := GetString(cmd, "release")
		if release == "" {
			fmt.Println("--release is required when --ct-sym is set")
			os.Exit(2)
		}

		r, err := zip.OpenReader(ctSym)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		p, err := classpath.NewCtSymProvider(ctSym, release, &r.Reader)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}

		providers = append(providers, p)
	}

	for _, path := range GetStringArray(cmd, "classpath") {
		r, err := zip.OpenReader(path)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		providers = append(providers, classpath.NewJarProvider(path, &r.Reader))
	}

	return classpath.NewEnv(log, providers...)
}

// writeClassFiles writes cf.Write output to outdir/<binaryName>.class for
// every produced class file, creating package directories as needed.
func writeClassFiles(outdir string, classFiles map[string][]byte) error {
	for binary, data := range classFiles {
		path := filepath.Join(outdir, binary+".class")

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}

		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
	}

	return nil
}

// stderrIsTerminal reports whether diagnostics should be printed with ANSI
// severity coloring, following the teacher's pkg/util/termio convention of
// checking term.IsTerminal before assuming interactive output.
func stderrIsTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// printDiagnostics prints every diagnostic in log, coloring SeverityError
// red and SeverityWarning yellow when stderr is a terminal.
func printDiagnostics(log *diag.Log) {
	color := stderrIsTerminal()

	for _, d := range log.Diagnostics() {
		if !color {
			fmt.Fprintln(os.Stderr, d.String())
			continue
		}

		const (
			red    = "\x1b[31m"
			yellow = "\x1b[33m"
			reset  = "\x1b[0m"
		)

		prefix := red
		if d.Severity == diag.SeverityWarning {
			prefix = yellow
		}

		fmt.Fprintf(os.Stderr, "%s%s%s\n", prefix, d.String(), reset)
	}
}

// classFileBytes lowers cf to its serialised .class bytes, keyed by binary
// name for writeClassFiles.
func classFileBytes(cf *classfile.ClassFile) []byte {
	return classfile.Write(cf)
}
