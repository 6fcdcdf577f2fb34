package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/strideapp/stride/models"
	"github.com/strideapp/stride/types"
	yaml "gopkg.in/yaml.v3"
)

const (
	defaultDataFile   = "tasks.json"
	dataFileKey       = "dataFile"
	dataFileFormatKey = "dataFileFormat"
	defaultDataFormat = "json"
	formatJSON        = "json"
	formatYAML        = "yaml"
	formatTOML        = "toml"
	checksumSuffix    = ".checksum"
)

// FileTaskStore implements TaskStore on a single data file. It supports
// JSON, YAML and TOML formats, guards the file with an OS-level lock and
// keeps a SHA-256 checksum sidecar to detect corruption.
type FileTaskStore struct {
	filePath string
	tasks    map[string]models.Task
	flk      *flock.Flock
	format   string
}

// NewFileTaskStore creates a new instance. Initialize must be called
// before use.
func NewFileTaskStore() *FileTaskStore {
	return &FileTaskStore{
		tasks: make(map[string]models.Task),
	}
}

// Initialize configures the store from the config map ("dataFile",
// "dataFileFormat"), creates the data file when absent and loads
// existing tasks.
func (s *FileTaskStore) Initialize(config map[string]string) error {
	if val, ok := config[dataFileKey]; ok && val != "" {
		s.filePath = val
	} else {
		s.filePath = defaultDataFile
	}

	if val, ok := config[dataFileFormatKey]; ok && val != "" {
		formatLower := strings.ToLower(val)
		switch formatLower {
		case formatJSON, formatYAML, formatTOML:
			s.format = formatLower
		default:
			return fmt.Errorf("unsupported dataFileFormat: %s. Supported formats are json, yaml, toml", val)
		}
	} else {
		s.format = defaultDataFormat
	}

	if s.filePath == defaultDataFile && s.format != formatJSON {
		ext := filepath.Ext(s.filePath)
		s.filePath = strings.TrimSuffix(s.filePath, ext) + "." + s.format
	}

	dir := filepath.Dir(s.filePath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	s.flk = flock.New(s.filePath)

	locked, err := s.flk.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire initial lock for %s: %w", s.filePath, err)
	}
	if !locked {
		if err := s.flk.Lock(); err != nil {
			return fmt.Errorf("failed to acquire blocking initial lock for %s: %w", s.filePath, err)
		}
	}
	defer func() { _ = s.flk.Unlock() }()

	s.tasks = make(map[string]models.Task)
	return s.loadLocked()
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// loadLocked reads tasks from the file, verifying the checksum sidecar
// when present. The caller must hold the file lock.
func (s *FileTaskStore) loadLocked() error {
	checksumPath := s.filePath + checksumSuffix

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.tasks = make(map[string]models.Task)
			_ = os.Remove(checksumPath)
			f, createErr := os.OpenFile(s.filePath, os.O_CREATE|os.O_RDWR, 0o644)
			if createErr != nil {
				return fmt.Errorf("failed to create data file %s: %w", s.filePath, createErr)
			}
			_ = f.Close()
			_ = os.WriteFile(checksumPath, []byte(checksum(nil)), 0o644)
			return nil
		}
		return fmt.Errorf("failed to read data file %s: %w", s.filePath, err)
	}

	if _, err := os.Stat(checksumPath); err == nil {
		expectedBytes, readErr := os.ReadFile(checksumPath)
		if readErr != nil {
			return fmt.Errorf("failed to read checksum file %s: %w", checksumPath, readErr)
		}
		expected := strings.TrimSpace(string(expectedBytes))
		if actual := checksum(data); actual != expected {
			return fmt.Errorf("checksum mismatch for %s - expected %s, got %s - file is corrupt or tampered", s.filePath, expected, actual)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("error checking checksum file %s: %w", checksumPath, err)
	}

	if len(data) == 0 {
		_ = os.WriteFile(checksumPath, []byte(checksum(nil)), 0o644)
		s.tasks = make(map[string]models.Task)
		return nil
	}

	var taskList models.TaskList
	switch s.format {
	case formatJSON:
		if err := json.Unmarshal(data, &taskList); err != nil {
			return fmt.Errorf("failed to unmarshal JSON from %s: %w", s.filePath, err)
		}
	case formatYAML:
		if err := yaml.Unmarshal(data, &taskList); err != nil {
			return fmt.Errorf("failed to unmarshal YAML from %s: %w", s.filePath, err)
		}
	case formatTOML:
		if err := toml.Unmarshal(data, &taskList); err != nil {
			return fmt.Errorf("failed to unmarshal TOML from %s: %w", s.filePath, err)
		}
	default:
		return fmt.Errorf("unsupported data format for loading: %s", s.format)
	}

	s.tasks = make(map[string]models.Task, len(taskList.Tasks))
	for _, task := range taskList.Tasks {
		s.tasks[task.ID] = task
	}
	return nil
}

// saveLocked writes the full task set to a temp file, then atomically
// renames the data file and its checksum into place. The caller must
// hold the file lock.
func (s *FileTaskStore) saveLocked() error {
	taskList := models.TaskList{
		Tasks:      make([]models.Task, 0, len(s.tasks)),
		TotalCount: len(s.tasks),
	}
	for _, task := range s.tasks {
		taskList.Tasks = append(taskList.Tasks, task)
	}

	var marshaled []byte
	var err error
	switch s.format {
	case formatJSON:
		marshaled, err = json.MarshalIndent(taskList, "", "  ")
	case formatYAML:
		marshaled, err = yaml.Marshal(taskList)
	case formatTOML:
		buf := new(bytes.Buffer)
		if encodeErr := toml.NewEncoder(buf).Encode(taskList); encodeErr == nil {
			marshaled = buf.Bytes()
		} else {
			err = fmt.Errorf("failed to marshal TOML: %w", encodeErr)
		}
	default:
		return fmt.Errorf("unsupported data format for saving: %s", s.format)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal tasks to %s: %w", s.format, err)
	}

	tempPath := s.filePath + ".tmp"
	checksumPath := s.filePath + checksumSuffix
	tempChecksumPath := checksumPath + ".tmp"
	defer func() { _ = os.Remove(tempPath) }()
	defer func() { _ = os.Remove(tempChecksumPath) }()

	if err := os.WriteFile(tempPath, marshaled, 0o644); err != nil {
		return fmt.Errorf("failed to write to temporary data file %s: %w", tempPath, err)
	}
	if err := os.WriteFile(tempChecksumPath, []byte(checksum(marshaled)), 0o644); err != nil {
		return fmt.Errorf("failed to write to temporary checksum file %s: %w", tempChecksumPath, err)
	}
	if err := os.Rename(tempPath, s.filePath); err != nil {
		return fmt.Errorf("failed to rename temporary data file %s to %s: %w", tempPath, s.filePath, err)
	}
	if err := os.Rename(tempChecksumPath, checksumPath); err != nil {
		return fmt.Errorf("data file %s updated but checksum file %s was not: %w", s.filePath, checksumPath, err)
	}
	return nil
}

func addMissing(slice []string, item string) []string {
	for _, s := range slice {
		if s == item {
			return slice
		}
	}
	return append(slice, item)
}

func removeAll(slice []string, item string) []string {
	out := make([]string, 0, len(slice))
	for _, s := range slice {
		if s != item {
			out = append(out, s)
		}
	}
	return out
}

// CreateTask adds a new task. It generates an ID when none is set,
// stamps timestamps, validates the struct, and wires the parent subtask
// list and the dependent reverse index of every prerequisite.
func (s *FileTaskStore) CreateTask(task models.Task) (models.Task, error) {
	if err := s.flk.Lock(); err != nil {
		return models.Task{}, fmt.Errorf("could not lock file for create: %w", err)
	}
	defer func() { _ = s.flk.Unlock() }()

	if err := s.loadLocked(); err != nil {
		return models.Task{}, fmt.Errorf("failed to reload tasks before create: %w", err)
	}

	if task.ID == "" {
		task.ID = uuid.NewString()
	} else if _, exists := s.tasks[task.ID]; exists {
		return models.Task{}, fmt.Errorf("task with ID '%s' already exists", task.ID)
	}

	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now
	task.Dependents = []string{}

	if err := models.ValidateStruct(task); err != nil {
		return models.Task{}, fmt.Errorf("validation failed for new task: %w", err)
	}

	if task.ParentID != nil && *task.ParentID != "" {
		parent, exists := s.tasks[*task.ParentID]
		if !exists {
			return models.Task{}, types.NotFound("parent task", *task.ParentID)
		}
		parent.SubtaskIDs = addMissing(parent.SubtaskIDs, task.ID)
		parent.UpdatedAt = now
		s.tasks[*task.ParentID] = parent
	}

	for _, prereqID := range task.Prerequisites {
		if prereqID == task.ID {
			return models.Task{}, fmt.Errorf("task cannot be its own prerequisite")
		}
		prereq, exists := s.tasks[prereqID]
		if !exists {
			return models.Task{}, types.NotFound("prerequisite", prereqID)
		}
		prereq.Dependents = addMissing(prereq.Dependents, task.ID)
		prereq.UpdatedAt = now
		s.tasks[prereqID] = prereq
	}

	s.tasks[task.ID] = task

	if err := s.saveLocked(); err != nil {
		_ = s.loadLocked()
		return models.Task{}, fmt.Errorf("failed to save new task: %w", err)
	}
	return task, nil
}

// GetTask retrieves a task by its unique identifier.
func (s *FileTaskStore) GetTask(id string) (models.Task, error) {
	if err := s.flk.Lock(); err != nil {
		return models.Task{}, fmt.Errorf("failed to acquire lock for GetTask: %w", err)
	}
	defer func() { _ = s.flk.Unlock() }()

	if err := s.loadLocked(); err != nil {
		return models.Task{}, fmt.Errorf("failed to load tasks for GetTask: %w", err)
	}

	task, ok := s.tasks[id]
	if !ok {
		return models.Task{}, types.NotFound("task", id)
	}
	return task, nil
}

// UpdateTask replaces the stored task with the given value and keeps the
// relationship indexes consistent with the new prerequisite list and
// parent reference.
func (s *FileTaskStore) UpdateTask(task models.Task) (models.Task, error) {
	if err := s.flk.Lock(); err != nil {
		return models.Task{}, fmt.Errorf("could not lock file for update: %w", err)
	}
	defer func() { _ = s.flk.Unlock() }()

	if err := s.loadLocked(); err != nil {
		return models.Task{}, fmt.Errorf("failed to reload tasks before update: %w", err)
	}

	existing, ok := s.tasks[task.ID]
	if !ok {
		return models.Task{}, types.NotFound("task", task.ID)
	}
	original := existing

	now := time.Now().UTC()
	task.UpdatedAt = now

	if err := models.ValidateStruct(task); err != nil {
		return models.Task{}, fmt.Errorf("validation failed for updated task: %w", err)
	}

	if err := s.relinkParent(existing, task, now); err != nil {
		return models.Task{}, err
	}
	if err := s.relinkPrerequisites(existing, task, now); err != nil {
		return models.Task{}, err
	}

	s.tasks[task.ID] = task

	if err := s.saveLocked(); err != nil {
		s.tasks[task.ID] = original
		return models.Task{}, fmt.Errorf("failed to save updated task: %w", err)
	}
	return task, nil
}

// relinkParent moves the task between parent subtask lists when the
// parent reference changed.
func (s *FileTaskStore) relinkParent(old, updated models.Task, now time.Time) error {
	same := (old.ParentID == nil && updated.ParentID == nil) ||
		(old.ParentID != nil && updated.ParentID != nil && *old.ParentID == *updated.ParentID)
	if same {
		return nil
	}
	if updated.ParentID != nil && *updated.ParentID == updated.ID {
		return fmt.Errorf("task cannot be its own parent")
	}
	if old.ParentID != nil {
		if parent, ok := s.tasks[*old.ParentID]; ok {
			parent.SubtaskIDs = removeAll(parent.SubtaskIDs, updated.ID)
			parent.UpdatedAt = now
			s.tasks[parent.ID] = parent
		}
	}
	if updated.ParentID != nil {
		parent, ok := s.tasks[*updated.ParentID]
		if !ok {
			return types.NotFound("parent task", *updated.ParentID)
		}
		parent.SubtaskIDs = addMissing(parent.SubtaskIDs, updated.ID)
		parent.UpdatedAt = now
		s.tasks[parent.ID] = parent
	}
	return nil
}

// relinkPrerequisites diffs the old and new prerequisite sets and
// updates the reverse index on both sides.
func (s *FileTaskStore) relinkPrerequisites(old, updated models.Task, now time.Time) error {
	oldSet := make(map[string]bool, len(old.Prerequisites))
	for _, id := range old.Prerequisites {
		oldSet[id] = true
	}
	newSet := make(map[string]bool, len(updated.Prerequisites))
	for _, id := range updated.Prerequisites {
		newSet[id] = true
	}

	for id := range oldSet {
		if newSet[id] {
			continue
		}
		if prereq, ok := s.tasks[id]; ok {
			prereq.Dependents = removeAll(prereq.Dependents, updated.ID)
			prereq.UpdatedAt = now
			s.tasks[id] = prereq
		}
	}
	for id := range newSet {
		if oldSet[id] {
			continue
		}
		if id == updated.ID {
			return fmt.Errorf("task cannot be its own prerequisite")
		}
		prereq, ok := s.tasks[id]
		if !ok {
			return types.NotFound("prerequisite", id)
		}
		prereq.Dependents = addMissing(prereq.Dependents, updated.ID)
		prereq.UpdatedAt = now
		s.tasks[id] = prereq
	}
	return nil
}

// DeleteTask removes a task and scrubs the weak references to it from
// its parent, subtasks, prerequisites and dependents.
func (s *FileTaskStore) DeleteTask(id string) error {
	if err := s.flk.Lock(); err != nil {
		return fmt.Errorf("could not lock file for delete: %w", err)
	}
	defer func() { _ = s.flk.Unlock() }()

	if err := s.loadLocked(); err != nil {
		return fmt.Errorf("failed to reload tasks before delete: %w", err)
	}

	task, exists := s.tasks[id]
	if !exists {
		return types.NotFound("task", id)
	}
	now := time.Now().UTC()

	if task.ParentID != nil {
		if parent, ok := s.tasks[*task.ParentID]; ok {
			parent.SubtaskIDs = removeAll(parent.SubtaskIDs, id)
			parent.UpdatedAt = now
			s.tasks[parent.ID] = parent
		}
	}
	for _, childID := range task.SubtaskIDs {
		if child, ok := s.tasks[childID]; ok {
			child.ParentID = nil
			child.UpdatedAt = now
			s.tasks[childID] = child
		}
	}
	for _, prereqID := range task.Prerequisites {
		if prereq, ok := s.tasks[prereqID]; ok {
			prereq.Dependents = removeAll(prereq.Dependents, id)
			prereq.UpdatedAt = now
			s.tasks[prereqID] = prereq
		}
	}
	for _, depID := range task.Dependents {
		if dep, ok := s.tasks[depID]; ok {
			dep.Prerequisites = removeAll(dep.Prerequisites, id)
			dep.UpdatedAt = now
			s.tasks[depID] = dep
		}
	}

	delete(s.tasks, id)

	if err := s.saveLocked(); err != nil {
		_ = s.loadLocked()
		return fmt.Errorf("failed to save after deleting task: %w", err)
	}
	return nil
}

// DeleteTasks removes a batch of tasks in one write and cleans up every
// relationship pointing at a deleted task.
func (s *FileTaskStore) DeleteTasks(ids []string) (int, error) {
	if err := s.flk.Lock(); err != nil {
		return 0, fmt.Errorf("could not lock file for batch delete: %w", err)
	}
	defer func() { _ = s.flk.Unlock() }()

	if err := s.loadLocked(); err != nil {
		return 0, fmt.Errorf("failed to reload tasks before batch delete: %w", err)
	}

	deleteSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		deleteSet[id] = true
	}

	now := time.Now().UTC()
	kept := make(map[string]models.Task)
	for id, task := range s.tasks {
		if !deleteSet[id] {
			kept[id] = task
		}
	}

	for id, task := range kept {
		modified := false
		if task.ParentID != nil && deleteSet[*task.ParentID] {
			task.ParentID = nil
			modified = true
		}
		for _, rel := range []struct {
			slice *[]string
		}{{&task.SubtaskIDs}, {&task.Prerequisites}, {&task.Dependents}} {
			cleaned := make([]string, 0, len(*rel.slice))
			for _, refID := range *rel.slice {
				if !deleteSet[refID] {
					cleaned = append(cleaned, refID)
				} else {
					modified = true
				}
			}
			*rel.slice = cleaned
		}
		if modified {
			task.UpdatedAt = now
			kept[id] = task
		}
	}

	deleted := len(s.tasks) - len(kept)
	s.tasks = kept

	if err := s.saveLocked(); err != nil {
		_ = s.loadLocked()
		return 0, fmt.Errorf("failed to save after batch deleting tasks: %w", err)
	}
	return deleted, nil
}

// ListTasks returns the tasks matching the filter criteria.
func (s *FileTaskStore) ListTasks(filter models.TaskFilter) ([]models.Task, error) {
	if err := s.flk.Lock(); err != nil {
		return nil, fmt.Errorf("failed to acquire lock for ListTasks: %w", err)
	}
	defer func() { _ = s.flk.Unlock() }()

	if err := s.loadLocked(); err != nil {
		return nil, fmt.Errorf("failed to load tasks for ListTasks: %w", err)
	}

	out := make([]models.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		if filter.Matches(task) {
			out = append(out, task)
		}
	}
	return out, nil
}

// Close releases the file lock. Unlock is idempotent.
func (s *FileTaskStore) Close() error {
	if s.flk != nil {
		return s.flk.Unlock()
	}
	return nil
}
