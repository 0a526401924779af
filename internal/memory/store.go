// Package memory implements the memory half of the Record Store:
// a project-sharded markdown repository with indexed lookup by id, listing,
// search, update, delete, and de-duplication.
package memory

import (
	"fmt"
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

// Store is the memory record store: <root>/memories/<project>/*.md.
type Store struct {
	engine *store.Engine
	logger *slog.Logger
	now    func() time.Time
}

// New creates a memory store rooted at root/memories.
func New(engine *store.Engine, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{engine: engine, logger: logger, now: time.Now}
}

func (s *Store) dir() string { return filepath.Join(s.engine.Root, "memories") }

// Add validates, assigns id/timestamp, generates a deterministic filename,
// and writes the record atomically.
func (s *Store) Add(m *model.Memory) (*model.Memory, error) {
	if m.Project == "" {
		m.Project = model.DefaultProject
	}
	if err := safeguard.Validate(m.Content, m.Project, m.Tags); err != nil {
		return nil, err
	}

	projectDir, err := pathguard.ResolveProject(s.dir(), m.Project)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := *m
	out.ID = uuid.NewString()
	out.Timestamp = now
	out.LastAccessed = now
	out.AccessCount = 0
	if out.Status == "" {
		out.Status = model.StatusActive
	}
	if out.Metadata.ContentType == "" {
		out.Metadata.ContentType = model.ContentTypeText
	}
	out.Metadata.Size = len(out.Content)
	out.Complexity = deriveComplexity(&out)

	path := filepath.Join(projectDir, filename(now, out.Content))
	out.Path = path

	doc := toDocument(&out)
	data, err := frontmatter.Render(doc)
	if err != nil {
		return nil, storeerr.Wrap(storeerr.Internal, err, "rendering memory: %v", err)
	}

	if err := s.engine.WithFileLock(path, func() error {
		return store.WriteAtomic(path, data, 0o644)
	}); err != nil {
		return nil, storeerr.Wrap(storeerr.Internal, err, "writing memory: %v", err)
	}

	return &out, nil
}

// AddLegacy writes a memory carried over from the one-shot JSON migration,
// preserving its original id and timestamp rather than assigning fresh
// ones — migrated records keep their pre-markdown identity.
func (s *Store) AddLegacy(id, content, project, category, priority string, tags []string, createdAt time.Time) error {
	if project == "" {
		project = model.DefaultProject
	}
	if err := safeguard.Validate(content, project, tags); err != nil {
		return err
	}
	if id == "" {
		id = uuid.NewString()
	}
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	projectDir, err := pathguard.ResolveProject(s.dir(), project)
	if err != nil {
		return err
	}

	out := model.Memory{
		ID:           id,
		Content:      content,
		Project:      project,
		Category:     category,
		Priority:     priority,
		Status:       model.StatusActive,
		Tags:         tags,
		Timestamp:    createdAt,
		LastAccessed: createdAt,
		Metadata:     model.Metadata{ContentType: model.ContentTypeText, Size: len(content)},
	}
	out.Complexity = deriveComplexity(&out)
	out.Path = filepath.Join(projectDir, filename(createdAt, out.Content))

	doc := toDocument(&out)
	data, err := frontmatter.Render(doc)
	if err != nil {
		return storeerr.Wrap(storeerr.Internal, err, "rendering migrated memory: %v", err)
	}
	return s.engine.WithFileLock(out.Path, func() error {
		return store.WriteAtomic(out.Path, data, 0o644)
	})
}

// deriveComplexity is a cheap heuristic over content shape; it is derived,
// never authoritative.
func deriveComplexity(m *model.Memory) int {
	switch {
	case strings.Contains(m.Content, "```") && len(m.Content) > 500:
		return 4
	case strings.Contains(m.Content, "```"):
		return 3
	case len(m.Content) > 300:
		return 2
	default:
		return 1
	}
}

// projectDirs lists project subdirectories under the memory root, skipping
// any entry that would escape the root.
func (s *Store) projectDirs() ([]string, error) {
	root := s.dir()
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, storeerr.Wrap(storeerr.Internal, err, "listing memory projects: %v", err)
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

func (s *Store) filesInProject(projectDir string) ([]string, error) {
	entries, err := os.ReadDir(projectDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		files = append(files, filepath.Join(projectDir, e.Name()))
	}
	return files, nil
}

func (s *Store) readMemory(path string) (*model.Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := frontmatter.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	m := fromDocument(doc, path)
	if m.ID == "" {
		// No recognizable envelope, or an envelope missing id: treat as an
		// active memory with an auto-generated id.
		m.ID = uuid.NewString()
	}
	return m, nil
}

// Get scans all projects for a record with the given id, short-circuiting
// on the first match.
func (s *Store) Get(id string) (*model.Memory, error) {
	dirs, err := s.projectDirs()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		files, err := s.filesInProject(dir)
		if err != nil {
			continue
		}
		for _, f := range files {
			m, err := s.readMemory(f)
			if err != nil {
				s.logger.Warn("skipping unreadable memory file", "path", f, "error", err)
				continue
			}
			if m.ID == id {
				return m, nil
			}
		}
	}
	return nil, storeerr.New(storeerr.NotFound, "memory %q not found", id)
}

// Touch bumps access_count and last_accessed for a retrieved memory. It is a
// separate, explicit step from Get so that Get itself stays a pure read and
// update(id, ∅) == get(id) holds.
func (s *Store) Touch(id string) (*model.Memory, error) {
	return s.Update(id, func(m *model.Memory) {
		m.AccessCount++
		m.LastAccessed = s.now()
	})
}

// List returns memories for project (all projects if empty), sorted by
// timestamp descending, capped at limit if positive.
func (s *Store) List(project string, limit int) ([]*model.Memory, error) {
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

	var out []*model.Memory
	for _, dir := range dirs {
		files, err := s.filesInProject(dir)
		if err != nil {
			continue
		}
		for _, f := range files {
			m, err := s.readMemory(f)
			if err != nil {
				s.logger.Warn("skipping unreadable memory file", "path", f, "error", err)
				continue
			}
			if m.Content == "" && m.ID == "" {
				// readMemory assigns a generated id to every record without
				// one, so this condition never holds: records whose envelope
				// lacks id or content are listed, not skipped.
				continue
			}
			out = append(out, m)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Update loads the record, applies mutate in place (which must not touch ID
// or Timestamp — both are preserved regardless), and writes it back to the
// file it currently lives in.
func (s *Store) Update(id string, mutate func(*model.Memory)) (*model.Memory, error) {
	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	originalID, originalTimestamp := existing.ID, existing.Timestamp
	mutate(existing)
	existing.ID = originalID
	existing.Timestamp = originalTimestamp
	existing.Metadata.Size = len(existing.Content)

	doc := toDocument(existing)
	data, err := frontmatter.Render(doc)
	if err != nil {
		return nil, storeerr.Wrap(storeerr.Internal, err, "rendering memory: %v", err)
	}

	if err := s.engine.WithFileLock(existing.Path, func() error {
		return store.WriteAtomic(existing.Path, data, 0o644)
	}); err != nil {
		return nil, storeerr.Wrap(storeerr.Internal, err, "writing memory: %v", err)
	}
	return existing, nil
}

// Delete unlinks the memory's file. Callers (the service layer) are
// responsible for removing inbound link references from tasks.
func (s *Store) Delete(id string) error {
	existing, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := os.Remove(existing.Path); err != nil {
		if os.IsNotExist(err) {
			return storeerr.New(storeerr.NotFound, "memory %q not found", id)
		}
		return storeerr.Wrap(storeerr.Internal, err, "deleting memory: %v", err)
	}
	return nil
}

// Search performs a case-insensitive substring match over content, category,
// and tags, returning full records.
func (s *Store) Search(query, project string) ([]*model.Memory, error) {
	all, err := s.List(project, 0)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return all, nil
	}
	q := strings.ToLower(query)

	var matched []*model.Memory
	for _, m := range all {
		if strings.Contains(strings.ToLower(m.Content), q) ||
			strings.Contains(strings.ToLower(m.Category), q) {
			matched = append(matched, m)
			continue
		}
		for _, tag := range m.Tags {
			if strings.Contains(strings.ToLower(tag), q) {
				matched = append(matched, m)
				break
			}
		}
	}
	return matched, nil
}

// DedupeCandidate describes a file that deduplicate would (or did) remove.
type DedupeCandidate struct {
	ID   string
	Path string
}

// Deduplicate scans the whole tree, groups files by front-matter id, and
// keeps the newest (by mtime, tie-broken by lexicographic filename),
// removing the rest. In preview mode no files are modified.
func (s *Store) Deduplicate(preview bool) ([]DedupeCandidate, error) {
	var removed []DedupeCandidate

	err := s.engine.Exclusive(func() error {
		dirs, err := s.projectDirs()
		if err != nil {
			return err
		}

		type fileInfo struct {
			path    string
			modTime time.Time
		}
		byID := map[string][]fileInfo{}

		for _, dir := range dirs {
			files, err := s.filesInProject(dir)
			if err != nil {
				continue
			}
			for _, f := range files {
				m, err := s.readMemory(f)
				if err != nil || m.ID == "" {
					continue
				}
				info, statErr := os.Stat(f)
				modTime := time.Time{}
				if statErr == nil {
					modTime = info.ModTime()
				}
				byID[m.ID] = append(byID[m.ID], fileInfo{path: f, modTime: modTime})
			}
		}

		for id, files := range byID {
			if len(files) < 2 {
				continue
			}
			sort.Slice(files, func(i, j int) bool {
				if !files[i].modTime.Equal(files[j].modTime) {
					return files[i].modTime.After(files[j].modTime)
				}
				return files[i].path < files[j].path
			})
			// files[0] is kept; the rest are duplicates.
			for _, dup := range files[1:] {
				removed = append(removed, DedupeCandidate{ID: id, Path: dup.path})
				if !preview {
					if err := os.Remove(dup.path); err != nil && !os.IsNotExist(err) {
						return storeerr.Wrap(storeerr.Internal, err, "removing duplicate %s: %v", dup.path, err)
					}
				}
			}
		}
		return nil
	})

	return removed, err
}
