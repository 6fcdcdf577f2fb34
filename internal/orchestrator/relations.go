package orchestrator

import (
	"github.com/strideapp/stride/models"
	"github.com/strideapp/stride/types"
)

// AddPrerequisite records that task cannot start before prereq
// completes. The cycle check runs before any mutation; on rejection the
// graph and both tasks are untouched.
func (o *Orchestrator) AddPrerequisite(taskID, prereqID string) (Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	task, ok := o.tasks[taskID]
	if !ok {
		return Result{}, types.NotFound("task", taskID)
	}
	prereq, ok := o.tasks[prereqID]
	if !ok {
		return Result{}, types.NotFound("prerequisite", prereqID)
	}
	if err := o.graph.AddPrerequisite(taskID, prereqID); err != nil {
		return Result{}, err
	}

	now := o.clock()
	task.Prerequisites = appendMissing(task.Prerequisites, prereqID)
	task.UpdatedAt = now
	o.tasks[taskID] = task
	prereq.Dependents = appendMissing(prereq.Dependents, taskID)
	prereq.UpdatedAt = now
	o.tasks[prereqID] = prereq

	effects := []Effect{PersistTask{Task: task}, PersistTask{Task: prereq}}
	return Result{Task: task, Effects: effects}, nil
}

// RemovePrerequisite removes the edge. Removing an edge that does not
// exist succeeds as a no-op.
func (o *Orchestrator) RemovePrerequisite(taskID, prereqID string) (Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	task, ok := o.tasks[taskID]
	if !ok {
		return Result{}, types.NotFound("task", taskID)
	}
	prereq, hadPrereq := o.tasks[prereqID]

	o.graph.RemovePrerequisite(taskID, prereqID)

	now := o.clock()
	task.Prerequisites = removeString(task.Prerequisites, prereqID)
	task.UpdatedAt = now
	o.tasks[taskID] = task
	effects := []Effect{PersistTask{Task: task}}

	if hadPrereq {
		prereq.Dependents = removeString(prereq.Dependents, taskID)
		prereq.UpdatedAt = now
		o.tasks[prereqID] = prereq
		effects = append(effects, PersistTask{Task: prereq})
	}
	return Result{Task: task, Effects: effects}, nil
}

// AddSubtask attaches child under parent via the weak back-reference.
// The parent owns the subtask list; the child only records its parent's
// ID. A task cannot be its own ancestor.
func (o *Orchestrator) AddSubtask(parentID, childID string) (Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	parent, ok := o.tasks[parentID]
	if !ok {
		return Result{}, types.NotFound("parent task", parentID)
	}
	child, ok := o.tasks[childID]
	if !ok {
		return Result{}, types.NotFound("subtask", childID)
	}
	if parentID == childID || o.isAncestor(childID, parentID) {
		return Result{}, &types.ValidationError{Field: "parentId", Reason: "task cannot be its own ancestor"}
	}

	now := o.clock()
	// Detach from a previous parent first.
	if child.ParentID != nil && *child.ParentID != parentID {
		if old, ok := o.tasks[*child.ParentID]; ok {
			old.SubtaskIDs = removeString(old.SubtaskIDs, childID)
			old.UpdatedAt = now
			o.tasks[old.ID] = old
		}
	}
	child.ParentID = &parent.ID
	child.UpdatedAt = now
	o.tasks[childID] = child
	parent.SubtaskIDs = appendMissing(parent.SubtaskIDs, childID)
	parent.UpdatedAt = now
	o.tasks[parentID] = parent

	effects := []Effect{PersistTask{Task: parent}, PersistTask{Task: child}}
	return Result{Task: parent, Effects: effects}, nil
}

// RemoveSubtask detaches child from parent. A no-op when the link does
// not exist.
func (o *Orchestrator) RemoveSubtask(parentID, childID string) (Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	parent, ok := o.tasks[parentID]
	if !ok {
		return Result{}, types.NotFound("parent task", parentID)
	}
	now := o.clock()
	parent.SubtaskIDs = removeString(parent.SubtaskIDs, childID)
	parent.UpdatedAt = now
	o.tasks[parentID] = parent
	effects := []Effect{PersistTask{Task: parent}}

	if child, ok := o.tasks[childID]; ok && child.ParentID != nil && *child.ParentID == parentID {
		child.ParentID = nil
		child.UpdatedAt = now
		o.tasks[childID] = child
		effects = append(effects, PersistTask{Task: child})
	}
	return Result{Task: parent, Effects: effects}, nil
}

// isAncestor walks the parent chain from startID looking for targetID.
func (o *Orchestrator) isAncestor(startID, targetID string) bool {
	seen := make(map[string]bool)
	current := startID
	for {
		task, ok := o.tasks[current]
		if !ok || task.ParentID == nil || seen[current] {
			return false
		}
		if *task.ParentID == targetID {
			return true
		}
		seen[current] = true
		current = *task.ParentID
	}
}

// Prerequisites returns the direct prerequisites of the task.
func (o *Orchestrator) Prerequisites(id string) ([]string, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if _, ok := o.tasks[id]; !ok {
		return nil, types.NotFound("task", id)
	}
	return o.graph.Prerequisites(id), nil
}

// Subtasks returns the direct children of the task.
func (o *Orchestrator) Subtasks(id string) ([]models.Task, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	parent, ok := o.tasks[id]
	if !ok {
		return nil, types.NotFound("task", id)
	}
	var out []models.Task
	for _, childID := range parent.SubtaskIDs {
		if child, ok := o.tasks[childID]; ok {
			out = append(out, child)
		}
	}
	return out, nil
}
