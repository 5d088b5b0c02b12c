package classpath

import (
	"fmt"
	"strconv"
	"strings"
)

// formatReleaseVersion encodes a JDK release number as the upper-case
// base-36 digit lib/ct.sym uses to prefix each entry's path (§5 "Classpath
// inputs"): "8" -> "8", "10" -> "A", "17" -> "H". Only a single base-36
// digit is valid, so releases before Java 5 (no ct.sym encoding exists) or
// at or beyond 36 (would need a second digit) are rejected.
func formatReleaseVersion(release string) (string, error) {
	v, err := strconv.Atoi(release)
	if err != nil {
		return "", fmt.Errorf("classpath: invalid release %q: %w", release, err)
	}

	if v <= 4 || v >= 36 {
		return "", fmt.Errorf("classpath: release %q has no single-digit ct.sym encoding", release)
	}

	return strings.ToUpper(strconv.FormatInt(int64(v), 36)), nil
}

// ctSymEntry is one lib/ct.sym zip entry already split into its encoded
// release and the binary name it describes, e.g. "A/java/util/List.sig" ->
// {Release: "A", Binary: "java/util/List"}.
type ctSymEntry struct {
	Release string
	Binary  string
}

// parseCtSymEntry splits a ct.sym zip entry name of the form
// "<release>/<path>/<binary>.sig" into its release digit and binary name.
// Entries outside this shape (directories, META-INF, etc.) are rejected.
func parseCtSymEntry(name string) (ctSymEntry, bool) {
	const suffix = ".sig"

	if !strings.HasSuffix(name, suffix) {
		return ctSymEntry{}, false
	}

	i := strings.IndexByte(name, '/')
	if i < 0 {
		return ctSymEntry{}, false
	}

	release := name[:i]
	binary := strings.TrimSuffix(name[i+1:], suffix)

	if release == "" || binary == "" {
		return ctSymEntry{}, false
	}

	return ctSymEntry{Release: release, Binary: binary}, true
}
