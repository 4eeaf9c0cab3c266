package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	d := Get()
	if d.Version != Version || d.Commit != Commit || d.BuildTime != BuildTime {
		t.Errorf("Get() = %+v, want package variables", d)
	}
	if !strings.HasPrefix(Info(), Version+" (") {
		t.Errorf("Info() = %q", Info())
	}
	if !strings.Contains(Full(), "built: "+BuildTime) {
		t.Errorf("Full() = %q", Full())
	}
}
