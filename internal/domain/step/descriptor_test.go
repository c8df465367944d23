package step

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/groundwork/internal/ports"
)

func TestDescriptor_Defaults(t *testing.T) {
	d := NewDescriptor(MustNewID("database"), 5)

	if d.Namespace() != "database" {
		t.Errorf("Namespace() = %q, want step id", d.Namespace())
	}
	if !d.Display(emptySnapshot()) {
		t.Error("a descriptor without a display predicate is always displayed")
	}
	if len(d.DependsOn()) != 0 {
		t.Errorf("DependsOn() = %v, want empty", d.DependsOn())
	}

	// The default execute hook stages the submitted form unchanged.
	out, err := d.Execute(context.Background(), FormData{"host": "localhost"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out["host"] != "localhost" {
		t.Errorf("Execute() output = %v, want the form data", out)
	}
}

func TestDescriptor_WithBuildersDoNotMutate(t *testing.T) {
	base := NewDescriptor(MustNewID("database"), 5)
	derived := base.WithNamespace("db").WithDependsOn(MustNewID("welcome"))

	if base.Namespace() != "database" {
		t.Errorf("base namespace mutated to %q", base.Namespace())
	}
	if derived.Namespace() != "db" {
		t.Errorf("derived namespace = %q, want %q", derived.Namespace(), "db")
	}
	if len(base.DependsOn()) != 0 {
		t.Error("base dependencies mutated")
	}
}

func TestAsCommittable(t *testing.T) {
	plain := NewDescriptor(MustNewID("welcome"), 1)
	if AsCommittable(plain) != nil {
		t.Error("a step without a commit hook should not be committable")
	}

	custom := plain.WithCommit(func(_ context.Context, _ ports.PermanentStore, _ map[string]interface{}) error {
		return nil
	})
	if AsCommittable(custom) == nil {
		t.Error("a step with a commit hook should be committable")
	}
}
