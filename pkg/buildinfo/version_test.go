package buildinfo

import (
	"strings"
	"testing"
)

func TestUserAgent(t *testing.T) {
	oldV, oldC := Version, Commit
	t.Cleanup(func() { Version, Commit = oldV, oldC })

	Version, Commit = "v1.2.0", "none"
	if got := UserAgent(); got != "occupancy/v1.2.0" {
		t.Errorf("UserAgent() = %q", got)
	}
	Version, Commit = "v1.2.0", "0123456789abcdef"
	if got := UserAgent(); got != "occupancy/v1.2.0 (0123456)" {
		t.Errorf("UserAgent() = %q", got)
	}
}

func TestTemplate(t *testing.T) {
	if !strings.HasPrefix(Template(), "{{.Name}} version ") {
		t.Errorf("Template() = %q", Template())
	}
	if strings.Count(String(), "\n") != 2 {
		t.Errorf("String() = %q", String())
	}
}
