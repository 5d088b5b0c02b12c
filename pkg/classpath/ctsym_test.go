package classpath

import "testing"

func TestFormatReleaseVersion(t *testing.T) {
	tests := []struct {
		release string
		want    string
	}{
		{"8", "8"},
		{"9", "9"},
		{"10", "A"},
		{"17", "H"},
		{"35", "Z"},
	}

	for _, tt := range tests {
		t.Run(tt.release, func(t *testing.T) {
			got, err := formatReleaseVersion(tt.release)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Fatalf("formatReleaseVersion(%q) = %q, want %q", tt.release, got, tt.want)
			}
		})
	}
}

func TestFormatReleaseVersionRejectsOutOfRange(t *testing.T) {
	for _, release := range []string{"0", "4", "36", "100"} {
		t.Run(release, func(t *testing.T) {
			if _, err := formatReleaseVersion(release); err == nil {
				t.Fatalf("expected an error for release %q", release)
			}
		})
	}
}

func TestParseCtSymEntry(t *testing.T) {
	entry, ok := parseCtSymEntry("A/java/util/List.sig")
	if !ok {
		t.Fatalf("expected A/java/util/List.sig to parse")
	}

	if entry.Release != "A" || entry.Binary != "java/util/List" {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	if _, ok := parseCtSymEntry("META-INF/MANIFEST.MF"); ok {
		t.Fatalf("expected a non-.sig entry to be rejected")
	}
}
