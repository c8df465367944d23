package requirement

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/mod/semver"
)

// Kind categorizes a requirement check.
type Kind string

const (
	// KindRuntime is the runtime version requirement.
	KindRuntime Kind = "runtime"
	// KindCapability is an installed-capability requirement.
	KindCapability Kind = "capability"
	// KindPath is a filesystem permission requirement.
	KindPath Kind = "path"
)

// Check is the outcome of evaluating a single requirement.
type Check struct {
	Kind      Kind
	Name      string
	Satisfied bool
	Detail    string
}

// Report aggregates the outcome of all requirement checks.
type Report struct {
	checks []Check
}

// Checks returns all checks in evaluation order.
func (r Report) Checks() []Check {
	result := make([]Check, len(r.checks))
	copy(result, r.checks)
	return result
}

// Failed returns only the unsatisfied checks.
func (r Report) Failed() []Check {
	var failed []Check
	for _, c := range r.checks {
		if !c.Satisfied {
			failed = append(failed, c)
		}
	}
	return failed
}

// Passed reports whether every check is satisfied.
func (r Report) Passed() bool {
	for _, c := range r.checks {
		if !c.Satisfied {
			return false
		}
	}
	return true
}

// Summary returns a one-line human-readable summary.
func (r Report) Summary() string {
	failed := len(r.Failed())
	if failed == 0 {
		return fmt.Sprintf("all %d requirements satisfied", len(r.checks))
	}
	return fmt.Sprintf("%d of %d requirements unsatisfied", failed, len(r.checks))
}

// Checker evaluates Requirements against environment Facts.
type Checker struct {
	facts Facts
}

// NewChecker creates a Checker over the given facts.
func NewChecker(facts Facts) *Checker {
	return &Checker{facts: facts}
}

// Check evaluates every declared requirement and returns a Report.
// Evaluation order is deterministic: runtime version, then capabilities,
// then paths, each sorted by name.
func (c *Checker) Check(reqs Requirements) Report {
	var report Report

	if reqs.MinRuntimeVersion != "" {
		report.checks = append(report.checks, c.checkRuntime(reqs.MinRuntimeVersion))
	}

	capabilities := make([]string, len(reqs.Capabilities))
	copy(capabilities, reqs.Capabilities)
	sort.Strings(capabilities)
	for _, name := range capabilities {
		satisfied := c.facts.HasCapability(name)
		detail := "installed"
		if !satisfied {
			detail = "not installed"
		}
		report.checks = append(report.checks, Check{
			Kind:      KindCapability,
			Name:      name,
			Satisfied: satisfied,
			Detail:    detail,
		})
	}

	paths := make([]string, 0, len(reqs.Paths))
	for path := range reqs.Paths {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		report.checks = append(report.checks, c.checkPath(path, reqs.Paths[path]))
	}

	return report
}

// checkRuntime compares the runtime version against the declared minimum.
func (c *Checker) checkRuntime(minVersion string) Check {
	min := canonicalVersion(minVersion)
	have := canonicalVersion(c.facts.RuntimeVersion())

	check := Check{Kind: KindRuntime, Name: "runtime version"}
	switch {
	case !semver.IsValid(min):
		check.Detail = fmt.Sprintf("invalid required version %q", minVersion)
	case !semver.IsValid(have):
		check.Detail = fmt.Sprintf("invalid runtime version %q", c.facts.RuntimeVersion())
	case semver.Compare(have, min) < 0:
		check.Detail = fmt.Sprintf("have %s, need >= %s", have, min)
	default:
		check.Satisfied = true
		check.Detail = fmt.Sprintf("have %s, need >= %s", have, min)
	}
	return check
}

// checkPath verifies a filesystem path against its permission string.
func (c *Checker) checkPath(path, perm string) Check {
	check := Check{Kind: KindPath, Name: path}

	needRead, needWrite, err := parsePermission(perm)
	if err != nil {
		check.Detail = err.Error()
		return check
	}

	readable, writable := c.facts.PathPermissions(path)
	check.Satisfied = (!needRead || readable) && (!needWrite || writable)
	check.Detail = fmt.Sprintf("need %s, have %s",
		formatPermission(needRead, needWrite),
		formatPermission(readable, writable))
	return check
}

// canonicalVersion normalizes a version string for semver comparison.
func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return v
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
