package graph

import (
	"errors"
	"fmt"
	"sort"
	"testing"

	"pgregory.net/rapid"
)

func TestAddPrerequisite(t *testing.T) {
	g := New()
	if err := g.AddPrerequisite("b", "a"); err != nil {
		t.Fatalf("AddPrerequisite: %v", err)
	}

	if got := g.Prerequisites("b"); len(got) != 1 || got[0] != "a" {
		t.Errorf("Prerequisites(b) = %v, want [a]", got)
	}
	if got := g.Dependents("a"); len(got) != 1 || got[0] != "b" {
		t.Errorf("Dependents(a) = %v, want [b]", got)
	}
}

func TestAddPrerequisiteDuplicateIsNoOp(t *testing.T) {
	g := New()
	if err := g.AddPrerequisite("b", "a"); err != nil {
		t.Fatal(err)
	}
	if err := g.AddPrerequisite("b", "a"); err != nil {
		t.Fatalf("duplicate edge rejected: %v", err)
	}
	if got := g.Prerequisites("b"); len(got) != 1 {
		t.Errorf("Prerequisites(b) = %v, want one edge", got)
	}
}

func TestAddPrerequisiteSelfEdge(t *testing.T) {
	g := New()
	err := g.AddPrerequisite("a", "a")
	var cycErr *CyclicDependencyError
	if !errors.As(err, &cycErr) {
		t.Fatalf("self edge returned %v, want CyclicDependencyError", err)
	}
}

func TestAddPrerequisiteRejectsCycle(t *testing.T) {
	g := New()
	// a <- b <- c (c depends on b depends on a)
	if err := g.AddPrerequisite("b", "a"); err != nil {
		t.Fatal(err)
	}
	if err := g.AddPrerequisite("c", "b"); err != nil {
		t.Fatal(err)
	}

	// Closing the loop: a depends on c.
	err := g.AddPrerequisite("a", "c")
	var cycErr *CyclicDependencyError
	if !errors.As(err, &cycErr) {
		t.Fatalf("cycle returned %v, want CyclicDependencyError", err)
	}
	if cycErr.TaskID != "a" || cycErr.PrerequisiteID != "c" {
		t.Errorf("error names %s/%s, want a/c", cycErr.TaskID, cycErr.PrerequisiteID)
	}

	// The rejected edge must leave the graph untouched.
	if got := g.Prerequisites("a"); len(got) != 0 {
		t.Errorf("Prerequisites(a) = %v after rejected add, want empty", got)
	}
	if got := g.Dependents("c"); len(got) != 0 {
		t.Errorf("Dependents(c) = %v after rejected add, want empty", got)
	}
}

func TestRemovePrerequisiteIdempotent(t *testing.T) {
	g := New()
	if err := g.AddPrerequisite("b", "a"); err != nil {
		t.Fatal(err)
	}
	g.RemovePrerequisite("b", "a")
	g.RemovePrerequisite("b", "a") // absent edge, still fine
	g.RemovePrerequisite("x", "y") // unknown nodes, still fine

	if got := g.Prerequisites("b"); len(got) != 0 {
		t.Errorf("Prerequisites(b) = %v, want empty", got)
	}

	// The removed edge no longer blocks the reverse direction.
	if err := g.AddPrerequisite("a", "b"); err != nil {
		t.Errorf("reverse edge after removal: %v", err)
	}
}

func TestRemoveTask(t *testing.T) {
	g := New()
	for _, edge := range [][2]string{{"b", "a"}, {"c", "b"}, {"d", "b"}} {
		if err := g.AddPrerequisite(edge[0], edge[1]); err != nil {
			t.Fatal(err)
		}
	}

	g.RemoveTask("b")

	if got := g.Dependents("a"); len(got) != 0 {
		t.Errorf("Dependents(a) = %v after removing b, want empty", got)
	}
	if got := g.Prerequisites("c"); len(got) != 0 {
		t.Errorf("Prerequisites(c) = %v after removing b, want empty", got)
	}
	if got := g.Prerequisites("d"); len(got) != 0 {
		t.Errorf("Prerequisites(d) = %v after removing b, want empty", got)
	}
}

func TestCanStart(t *testing.T) {
	g := New()
	if err := g.AddPrerequisite("c", "a"); err != nil {
		t.Fatal(err)
	}
	if err := g.AddPrerequisite("c", "b"); err != nil {
		t.Fatal(err)
	}

	done := map[string]bool{"a": true}
	isCompleted := func(id string) bool { return done[id] }

	if g.CanStart("c", isCompleted) {
		t.Error("c can start with b incomplete")
	}
	done["b"] = true
	if !g.CanStart("c", isCompleted) {
		t.Error("c cannot start with all prerequisites complete")
	}
	if !g.CanStart("unknown", isCompleted) {
		t.Error("a task with no prerequisites cannot start")
	}
}

// TestGraphStaysAcyclic drives the graph with random edge additions and
// removals and checks that no accepted sequence ever produces a cycle.
func TestGraphStaysAcyclic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := New()
		nodes := make([]string, 8)
		for i := range nodes {
			nodes[i] = fmt.Sprintf("n%d", i)
		}
		nodeGen := rapid.SampledFrom(nodes)

		ops := rapid.IntRange(1, 60).Draw(t, "ops")
		for i := 0; i < ops; i++ {
			task := nodeGen.Draw(t, "task")
			prereq := nodeGen.Draw(t, "prereq")
			if rapid.Bool().Draw(t, "remove") {
				g.RemovePrerequisite(task, prereq)
			} else {
				_ = g.AddPrerequisite(task, prereq) // rejection is fine
			}
		}

		for _, n := range nodes {
			for _, p := range g.Prerequisites(n) {
				if g.dependsOn(p, n) {
					t.Fatalf("cycle through edge %s->%s", n, p)
				}
			}
		}

		// Reverse index agrees with the forward edges.
		for _, n := range nodes {
			for _, p := range g.Prerequisites(n) {
				deps := g.Dependents(p)
				sort.Strings(deps)
				idx := sort.SearchStrings(deps, n)
				if idx == len(deps) || deps[idx] != n {
					t.Fatalf("edge %s->%s missing from reverse index", n, p)
				}
			}
		}
	})
}
