// ABOUTME: Tests for version constants
// ABOUTME: Ensures the reported version strings are usable
package version

import (
	"strings"
	"testing"
)

func TestConstantsDefined(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"Version", Version},
		{"Product", Product},
		{"Manufacturer", Manufacturer},
	}

	placeholders := []string{"TODO", "FIXME", "XXX", "placeholder"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value == "" {
				t.Fatalf("%s should not be empty", tt.name)
			}
			if len(tt.value) > 100 {
				t.Errorf("%s is unreasonably long", tt.name)
			}
			for _, p := range placeholders {
				if tt.value == p {
					t.Errorf("%s should not be placeholder value: %s", tt.name, p)
				}
			}
		})
	}
}

func TestVersionFormat(t *testing.T) {
	// major.minor.patch
	if parts := strings.Split(Version, "."); len(parts) != 3 {
		t.Errorf("expected semantic version, got %q", Version)
	}
}

func TestVersionString(t *testing.T) {
	if got := String(); got != Product+" "+Version {
		t.Errorf("expected %q, got %q", Product+" "+Version, got)
	}
}
