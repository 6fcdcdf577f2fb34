// Package graph maintains the prerequisite edges between tasks as an
// identifier-based adjacency structure with a derived reverse index.
// Holding IDs instead of task references keeps ownership out of the graph
// and makes the cycle traversal straightforward.
package graph

import "fmt"

// CyclicDependencyError is returned when adding an edge would create a
// dependency cycle. The graph is left unchanged.
type CyclicDependencyError struct {
	TaskID         string
	PrerequisiteID string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("adding prerequisite %s to task %s would create a dependency cycle", e.PrerequisiteID, e.TaskID)
}

// DependencyGraph stores prerequisite edges as sets keyed by task ID.
// prereqs[t] holds the prerequisites of t; dependents is the reverse
// index and is derived, never authoritative. The zero value is not
// usable; call New.
//
// The graph itself is not goroutine safe. The orchestrator serializes
// all mutations behind its own lock.
type DependencyGraph struct {
	prereqs    map[string]map[string]struct{}
	dependents map[string]map[string]struct{}
}

// New returns an empty dependency graph.
func New() *DependencyGraph {
	return &DependencyGraph{
		prereqs:    make(map[string]map[string]struct{}),
		dependents: make(map[string]map[string]struct{}),
	}
}

// AddPrerequisite records that taskID cannot start before prereqID
// completes. It fails with *CyclicDependencyError if prereqID already
// depends on taskID, directly or transitively. Duplicate edges are
// no-ops: edges are a set, not a sequence.
func (g *DependencyGraph) AddPrerequisite(taskID, prereqID string) error {
	if taskID == prereqID {
		return &CyclicDependencyError{TaskID: taskID, PrerequisiteID: prereqID}
	}
	if g.dependsOn(prereqID, taskID) {
		return &CyclicDependencyError{TaskID: taskID, PrerequisiteID: prereqID}
	}
	if g.prereqs[taskID] == nil {
		g.prereqs[taskID] = make(map[string]struct{})
	}
	g.prereqs[taskID][prereqID] = struct{}{}
	if g.dependents[prereqID] == nil {
		g.dependents[prereqID] = make(map[string]struct{})
	}
	g.dependents[prereqID][taskID] = struct{}{}
	return nil
}

// RemovePrerequisite removes the edge if present. Removing an absent
// edge is a no-op.
func (g *DependencyGraph) RemovePrerequisite(taskID, prereqID string) {
	delete(g.prereqs[taskID], prereqID)
	delete(g.dependents[prereqID], taskID)
}

// RemoveTask drops every edge touching taskID, in both directions.
func (g *DependencyGraph) RemoveTask(taskID string) {
	for prereqID := range g.prereqs[taskID] {
		delete(g.dependents[prereqID], taskID)
	}
	delete(g.prereqs, taskID)
	for depID := range g.dependents[taskID] {
		delete(g.prereqs[depID], taskID)
	}
	delete(g.dependents, taskID)
}

// Prerequisites returns the direct prerequisites of taskID.
func (g *DependencyGraph) Prerequisites(taskID string) []string {
	out := make([]string, 0, len(g.prereqs[taskID]))
	for id := range g.prereqs[taskID] {
		out = append(out, id)
	}
	return out
}

// Dependents returns every task that lists taskID as a prerequisite.
func (g *DependencyGraph) Dependents(taskID string) []string {
	out := make([]string, 0, len(g.dependents[taskID]))
	for id := range g.dependents[taskID] {
		out = append(out, id)
	}
	return out
}

// CanStart reports whether every prerequisite of taskID satisfies
// isCompleted. A task with no prerequisites can always start.
func (g *DependencyGraph) CanStart(taskID string, isCompleted func(string) bool) bool {
	for prereqID := range g.prereqs[taskID] {
		if !isCompleted(prereqID) {
			return false
		}
	}
	return true
}

// dependsOn walks the prerequisite edges from startID looking for
// targetID. The visited set guarantees termination even if a cycle
// already exists from a data-integrity bug.
func (g *DependencyGraph) dependsOn(startID, targetID string) bool {
	visited := make(map[string]bool)
	var walk func(id string) bool
	walk = func(id string) bool {
		if id == targetID {
			return true
		}
		if visited[id] {
			return false
		}
		visited[id] = true
		for prereqID := range g.prereqs[id] {
			if walk(prereqID) {
				return true
			}
		}
		return false
	}
	return walk(startID)
}
