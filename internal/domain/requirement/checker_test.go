package requirement

import (
	"os"
	"path/filepath"
	"testing"
)

// fakeFacts is a Facts implementation with fixed answers.
type fakeFacts struct {
	version      string
	capabilities map[string]bool
	paths        map[string][2]bool
}

func (f fakeFacts) RuntimeVersion() string { return f.version }

func (f fakeFacts) HasCapability(name string) bool { return f.capabilities[name] }

func (f fakeFacts) PathPermissions(path string) (bool, bool) {
	perms := f.paths[path]
	return perms[0], perms[1]
}

func TestChecker_RuntimeVersion(t *testing.T) {
	tests := []struct {
		name    string
		have    string
		need    string
		satisfy bool
	}{
		{"equal", "8.2.0", "8.2.0", true},
		{"newer", "8.3.1", "8.2.0", true},
		{"older", "8.1.9", "8.2.0", false},
		{"leading v accepted", "v8.2.0", "8.2.0", true},
		{"invalid runtime version", "eight", "8.2.0", false},
		{"invalid required version", "8.2.0", "latest", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewChecker(fakeFacts{version: tt.have})
			report := checker.Check(Requirements{MinRuntimeVersion: tt.need})

			if report.Passed() != tt.satisfy {
				t.Errorf("Passed() = %v, want %v (%s)", report.Passed(), tt.satisfy, report.Summary())
			}
		})
	}
}

func TestChecker_Capabilities(t *testing.T) {
	checker := NewChecker(fakeFacts{
		capabilities: map[string]bool{"pdo": true, "openssl": true},
	})

	report := checker.Check(Requirements{
		Capabilities: []string{"pdo", "openssl", "mbstring"},
	})

	if report.Passed() {
		t.Error("Passed() should be false with a missing capability")
	}
	failed := report.Failed()
	if len(failed) != 1 || failed[0].Name != "mbstring" {
		t.Errorf("Failed() = %v, want only mbstring", failed)
	}
}

func TestChecker_Paths(t *testing.T) {
	checker := NewChecker(fakeFacts{
		paths: map[string][2]bool{
			"/srv/app/storage": {true, true},
			"/srv/app/config":  {true, false},
		},
	})

	report := checker.Check(Requirements{
		Paths: map[string]string{
			"/srv/app/storage": "rw",
			"/srv/app/config":  "rw",
		},
	})

	failed := report.Failed()
	if len(failed) != 1 || failed[0].Name != "/srv/app/config" {
		t.Errorf("Failed() = %v, want only the config path", failed)
	}
}

func TestChecker_InvalidPermissionString(t *testing.T) {
	checker := NewChecker(fakeFacts{paths: map[string][2]bool{"/p": {true, true}}})

	report := checker.Check(Requirements{Paths: map[string]string{"/p": "rx"}})
	if report.Passed() {
		t.Error("an unknown permission character should fail the check")
	}
}

func TestChecker_DeterministicOrder(t *testing.T) {
	checker := NewChecker(fakeFacts{
		version:      "8.2.0",
		capabilities: map[string]bool{"a": true, "b": true},
		paths:        map[string][2]bool{"/x": {true, true}, "/y": {true, true}},
	})
	reqs := Requirements{
		MinRuntimeVersion: "8.0.0",
		Capabilities:      []string{"b", "a"},
		Paths:             map[string]string{"/y": "r", "/x": "r"},
	}

	report := checker.Check(reqs)
	checks := report.Checks()

	wantNames := []string{"runtime version", "a", "b", "/x", "/y"}
	if len(checks) != len(wantNames) {
		t.Fatalf("Checks() = %d entries, want %d", len(checks), len(wantNames))
	}
	for i, name := range wantNames {
		if checks[i].Name != name {
			t.Errorf("Checks()[%d].Name = %q, want %q", i, checks[i].Name, name)
		}
	}
}

func TestRequirements_IsEmpty(t *testing.T) {
	if !(Requirements{}).IsEmpty() {
		t.Error("zero Requirements should be empty")
	}
	if (Requirements{MinRuntimeVersion: "8.0.0"}).IsEmpty() {
		t.Error("Requirements with a version should not be empty")
	}
}

func TestSystemFacts(t *testing.T) {
	facts := NewSystemFacts("8.2.0", []string{"pdo"})

	if facts.RuntimeVersion() != "8.2.0" {
		t.Errorf("RuntimeVersion() = %q", facts.RuntimeVersion())
	}
	if !facts.HasCapability("pdo") || facts.HasCapability("gd") {
		t.Error("HasCapability() should reflect the declared set")
	}
}

func TestSystemFacts_PathPermissions(t *testing.T) {
	facts := NewSystemFacts("8.2.0", nil)

	dir := t.TempDir()
	readable, writable := facts.PathPermissions(dir)
	if !readable || !writable {
		t.Errorf("temp dir should be rw, got r=%v w=%v", readable, writable)
	}

	file := filepath.Join(dir, "probe.txt")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	readable, writable = facts.PathPermissions(file)
	if !readable || !writable {
		t.Errorf("owned file should be rw, got r=%v w=%v", readable, writable)
	}

	readable, writable = facts.PathPermissions(filepath.Join(dir, "absent"))
	if readable || writable {
		t.Error("a missing path has no permissions")
	}
}
