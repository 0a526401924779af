// Package task implements the task half of the Record Store: a
// project- and status-sharded markdown repository with serial generation,
// parent/subtask invariants, and cascading delete.
package task

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/endlessblink/memstore/internal/frontmatter"
	"github.com/endlessblink/memstore/internal/model"
	"github.com/endlessblink/memstore/internal/pathguard"
	"github.com/endlessblink/memstore/internal/safeguard"
	"github.com/endlessblink/memstore/internal/store"
	"github.com/endlessblink/memstore/internal/storeerr"
)

// Store is the task record store: <root>/tasks/<project>/<shard>/<id>.md,
// where shard is one of "active", "completed", "blocked".
type Store struct {
	engine *store.Engine
	logger *slog.Logger
	now    func() time.Time
}

// New creates a task store rooted at root/tasks.
func New(engine *store.Engine, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{engine: engine, logger: logger, now: time.Now}
}

func (s *Store) dir() string { return filepath.Join(s.engine.Root, "tasks") }

// shardFor maps a task status onto its on-disk shard.
func shardFor(status string) string {
	switch status {
	case model.TaskStatusDone:
		return "completed"
	case model.TaskStatusBlocked:
		return "blocked"
	default:
		return "active"
	}
}

var shards = []string{"active", "completed", "blocked"}

func (s *Store) shardDir(projectDir, shard string) string {
	return filepath.Join(projectDir, shard)
}

// Add validates, assigns id/serial/timestamps, places the file in the shard
// matching its initial status, and links it to its parent task if any.
func (s *Store) Add(t *model.Task) (*model.Task, error) {
	if t.Project == "" {
		t.Project = model.DefaultProject
	}
	if t.Title == "" {
		return nil, storeerr.New(storeerr.InvalidInput, "task title is required")
	}
	if err := safeguard.CheckMockData(t.Title+" "+t.Description, t.Project, t.Tags); err != nil {
		return nil, err
	}

	projectDir, err := pathguard.ResolveProject(s.dir(), t.Project)
	if err != nil {
		return nil, err
	}

	serial, err := nextSerial(s.engine)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := *t
	out.ID = uuid.NewString()
	out.Serial = serial
	out.Created = now
	out.Updated = now
	if out.Status == "" {
		out.Status = model.TaskStatusTodo
	}
	if out.Priority == "" {
		out.Priority = model.TaskPriorityMedium
	}

	shardDir := s.shardDir(projectDir, shardFor(out.Status))
	path := filepath.Join(shardDir, out.ID+".md")
	out.Path = path

	if err := s.write(&out); err != nil {
		return nil, err
	}

	if out.ParentTask != "" {
		if _, err := s.Update(out.ParentTask, func(parent *model.Task) {
			if !containsString(parent.Subtasks, out.ID) {
				parent.Subtasks = append(parent.Subtasks, out.ID)
			}
		}); err != nil {
			s.logger.Warn("created task with unresolvable parent", "task", out.ID, "parent", out.ParentTask, "error", err)
		}
	}

	return &out, nil
}

// AddLegacy writes a task carried over from the one-shot JSON migration,
// preserving its original id, assigning a fresh serial (the legacy format
// predates serials), and preserving its created timestamp.
func (s *Store) AddLegacy(id, title, description, project, category, priority, status string, tags []string, createdAt time.Time) error {
	if project == "" {
		project = model.DefaultProject
	}
	if title == "" {
		return storeerr.New(storeerr.InvalidInput, "task title is required")
	}
	if err := safeguard.CheckMockData(title+" "+description, project, tags); err != nil {
		return err
	}
	if id == "" {
		id = uuid.NewString()
	}
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	if status == "" {
		status = model.TaskStatusTodo
	}
	if priority == "" {
		priority = model.TaskPriorityMedium
	}

	projectDir, err := pathguard.ResolveProject(s.dir(), project)
	if err != nil {
		return err
	}
	serial, err := nextSerial(s.engine)
	if err != nil {
		return err
	}

	out := model.Task{
		ID:          id,
		Serial:      serial,
		Title:       title,
		Description: description,
		Project:     project,
		Category:    category,
		Priority:    priority,
		Status:      status,
		Tags:        tags,
		Created:     createdAt,
		Updated:     createdAt,
	}
	out.Path = filepath.Join(s.shardDir(projectDir, shardFor(out.Status)), out.ID+".md")
	return s.write(&out)
}

func (s *Store) write(t *model.Task) error {
	doc := toDocument(t)
	data, err := frontmatter.Render(doc)
	if err != nil {
		return storeerr.Wrap(storeerr.Internal, err, "rendering task: %v", err)
	}
	if err := s.engine.WithFileLock(t.Path, func() error {
		return store.WriteAtomic(t.Path, data, 0o644)
	}); err != nil {
		return storeerr.Wrap(storeerr.Internal, err, "writing task: %v", err)
	}
	return nil
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func removeString(list []string, v string) []string {
	out := list[:0:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}

// projectDirs lists project subdirectories under the task root.
func (s *Store) projectDirs() ([]string, error) {
	root := s.dir()
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, storeerr.Wrap(storeerr.Internal, err, "listing task projects: %v", err)
	}

	var dirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		resolved, err := pathguard.Resolve(root, e.Name())
		if err != nil {
			s.logger.Warn("skipping project directory that escapes root", "project", e.Name())
			continue
		}
		dirs = append(dirs, resolved)
	}
	return dirs, nil
}

func (s *Store) filesInShard(projectDir string) []string {
	var files []string
	for _, shard := range shards {
		entries, err := os.ReadDir(s.shardDir(projectDir, shard))
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
				continue
			}
			files = append(files, filepath.Join(s.shardDir(projectDir, shard), e.Name()))
		}
	}
	return files
}

func (s *Store) readTask(path string) (*model.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := frontmatter.Parse(data)
	if err != nil {
		return nil, err
	}
	t := fromDocument(doc, path)
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return t, nil
}

// Get scans all projects and shards for a record with the given id.
func (s *Store) Get(id string) (*model.Task, error) {
	dirs, err := s.projectDirs()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		for _, f := range s.filesInShard(dir) {
			t, err := s.readTask(f)
			if err != nil {
				s.logger.Warn("skipping unreadable task file", "path", f, "error", err)
				continue
			}
			if t.ID == id {
				return t, nil
			}
		}
	}
	return nil, storeerr.New(storeerr.NotFound, "task %q not found", id)
}

// List returns tasks for project (all projects if empty), optionally
// filtered by status, sorted by Updated descending.
func (s *Store) List(project, status string, limit int) ([]*model.Task, error) {
	var dirs []string
	if project != "" {
		d, err := pathguard.ResolveProject(s.dir(), project)
		if err != nil {
			return nil, err
		}
		dirs = []string{d}
	} else {
		var err error
		dirs, err = s.projectDirs()
		if err != nil {
			return nil, err
		}
	}

	var out []*model.Task
	for _, dir := range dirs {
		for _, f := range s.filesInShard(dir) {
			t, err := s.readTask(f)
			if err != nil {
				s.logger.Warn("skipping unreadable task file", "path", f, "error", err)
				continue
			}
			if status != "" && t.Status != status {
				continue
			}
			out = append(out, t)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Updated.After(out[j].Updated)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Update loads the record, applies mutate (which must not touch ID, Serial,
// or Created — all three are preserved regardless), and writes it back,
// relocating the file to a new shard if mutate changed Status.
func (s *Store) Update(id string, mutate func(*model.Task)) (*model.Task, error) {
	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	originalID, originalSerial, originalCreated := existing.ID, existing.Serial, existing.Created
	originalPath, originalStatus := existing.Path, existing.Status

	mutate(existing)
	existing.ID = originalID
	existing.Serial = originalSerial
	existing.Created = originalCreated
	existing.Updated = s.now()

	if existing.Status != originalStatus {
		if existing.Status == model.TaskStatusDone && existing.Completed == nil {
			completedAt := existing.Updated
			existing.Completed = &completedAt
		}
		newPath := filepath.Join(filepath.Dir(filepath.Dir(originalPath)), shardFor(existing.Status), filepath.Base(originalPath))
		existing.Path = newPath
	}

	if err := s.write(existing); err != nil {
		return nil, err
	}

	if existing.Path != originalPath {
		if err := os.Remove(originalPath); err != nil && !os.IsNotExist(err) {
			return nil, storeerr.Wrap(storeerr.Internal, err, "removing old shard file: %v", err)
		}
	}

	return existing, nil
}

// Delete removes the task and recursively deletes its entire subtask
// subtree. If the task has a parent, it is unlinked from the
// parent's subtask list.
func (s *Store) Delete(id string) error {
	existing, err := s.Get(id)
	if err != nil {
		return err
	}

	for _, childID := range existing.Subtasks {
		if err := s.Delete(childID); err != nil && storeerr.KindOf(err) != storeerr.NotFound {
			return err
		}
	}

	if err := os.Remove(existing.Path); err != nil {
		if os.IsNotExist(err) {
			return storeerr.New(storeerr.NotFound, "task %q not found", id)
		}
		return storeerr.Wrap(storeerr.Internal, err, "deleting task: %v", err)
	}

	if existing.ParentTask != "" {
		if _, err := s.Update(existing.ParentTask, func(parent *model.Task) {
			parent.Subtasks = removeString(parent.Subtasks, existing.ID)
		}); err != nil {
			s.logger.Warn("failed to unlink deleted task from parent", "task", existing.ID, "parent", existing.ParentTask, "error", err)
		}
	}

	return nil
}

// Search performs a case-insensitive substring match over title, description,
// category, and tags.
func (s *Store) Search(query, project string) ([]*model.Task, error) {
	all, err := s.List(project, "", 0)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return all, nil
	}
	q := strings.ToLower(query)

	var matched []*model.Task
	for _, t := range all {
		if strings.Contains(strings.ToLower(t.Title), q) ||
			strings.Contains(strings.ToLower(t.Description), q) ||
			strings.Contains(strings.ToLower(t.Category), q) {
			matched = append(matched, t)
			continue
		}
		for _, tag := range t.Tags {
			if strings.Contains(strings.ToLower(tag), q) {
				matched = append(matched, t)
				break
			}
		}
	}
	return matched, nil
}
