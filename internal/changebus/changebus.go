// Package changebus watches the store root recursively and publishes
// debounced change events to bounded per-subscriber channels. It is
// the sole authority the HTTP surface trusts for live updates.
package changebus

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/endlessblink/memstore/internal/frontmatter"
)

// Kind enumerates the change an event represents.
type Kind string

const (
	KindCreated  Kind = "created"
	KindModified Kind = "modified"
	KindDeleted  Kind = "deleted"
)

// Domain identifies which record type a changed path belongs to.
type Domain string

const (
	DomainMemory  Domain = "memory"
	DomainTask    Domain = "task"
	DomainUnknown Domain = "unknown"
)

// Event is a single coalesced filesystem change.
type Event struct {
	Kind    Kind
	Domain  Domain
	Project string
	ID      string
	Path    string
	At      time.Time
}

// subscriberCap is the default bounded channel size per subscriber.
const subscriberCap = 256

// debounceWindow coalesces same-path events within this window to a single
// modified event.
const debounceWindow = 250 * time.Millisecond

// Bus fans out debounced events to bounded per-subscriber channels. A full
// subscriber channel drops the send rather than blocking the watcher; the
// subscriber is expected to notice the gap and refetch.
type Bus struct {
	mu          sync.Mutex
	subscribers map[int]chan Event
	nextID      int

	watcher *fsnotify.Watcher
	root    string
	logger  *slog.Logger

	pending map[string]*pendingEvent
	pendMu  sync.Mutex
}

type pendingEvent struct {
	kind Kind
	at   time.Time
}

// New creates a bus watching root recursively. Call Run to start processing
// events; Close stops the underlying watcher.
func New(root string, logger *slog.Logger) (*Bus, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bus{
		subscribers: map[int]chan Event{},
		watcher:     w,
		root:        root,
		logger:      logger,
		pending:     map[string]*pendingEvent{},
	}
	return b, nil
}

// Subscribe registers a new bounded channel and returns it along with an
// unsubscribe function.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, subscriberCap)
	b.subscribers[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if existing, ok := b.subscribers[id]; ok {
			close(existing)
			delete(b.subscribers, id)
		}
	}
}

func (b *Bus) publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subscribers {
		select {
		case ch <- ev:
		default:
			b.logger.Warn("changebus: subscriber channel full, dropping event", "subscriber", id, "path", ev.Path)
		}
	}
}

// Run watches root recursively, debouncing same-path events and publishing
// coalesced events until ctx is done.
func (b *Bus) Run(ctx context.Context) error {
	if err := b.addTree(b.root); err != nil {
		b.logger.Warn("changebus: initial watch setup failed", "error", err)
	}

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return b.watcher.Close()

		case event, ok := <-b.watcher.Events:
			if !ok {
				return nil
			}
			b.handleRawEvent(event)

		case err, ok := <-b.watcher.Errors:
			if !ok {
				return nil
			}
			b.logger.Error("changebus: watcher error", "error", err)

		case <-ticker.C:
			b.flushDebounced()
		}
	}
}

// addTree registers every directory under root with the watcher. fsnotify
// does not watch recursively, so new subdirectories created after startup
// are picked up lazily via handleRawEvent re-arming the watch on create.
func (b *Bus) addTree(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return err
	}
	return fs.WalkDir(os.DirFS(root), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		full := filepath.Join(root, path)
		if addErr := b.watcher.Add(full); addErr != nil {
			b.logger.Warn("changebus: failed to watch directory", "dir", full, "error", addErr)
		}
		return nil
	})
}

func (b *Bus) handleRawEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := b.watcher.Add(event.Name); err != nil {
				b.logger.Warn("changebus: failed to watch new directory", "dir", event.Name, "error", err)
			}
			return
		}
	}

	if !strings.HasSuffix(event.Name, ".md") {
		return
	}

	var kind Kind
	switch {
	case event.Op&fsnotify.Create != 0:
		kind = KindCreated
	case event.Op&fsnotify.Write != 0:
		kind = KindModified
	case event.Op&fsnotify.Remove != 0, event.Op&fsnotify.Rename != 0:
		kind = KindDeleted
	default:
		return
	}

	b.pendMu.Lock()
	if _, ok := b.pending[event.Name]; ok && kind != KindDeleted {
		kind = KindModified
	}
	b.pending[event.Name] = &pendingEvent{kind: kind, at: time.Now()}
	b.pendMu.Unlock()
}

func (b *Bus) flushDebounced() {
	now := time.Now()
	var toEmit []struct {
		path string
		kind Kind
	}

	b.pendMu.Lock()
	for path, pe := range b.pending {
		if now.Sub(pe.at) >= debounceWindow {
			toEmit = append(toEmit, struct {
				path string
				kind Kind
			}{path, pe.kind})
			delete(b.pending, path)
		}
	}
	b.pendMu.Unlock()

	for _, e := range toEmit {
		b.publish(Event{
			Kind:    e.kind,
			Domain:  domainFor(b.root, e.path),
			Project: projectFor(b.root, e.path),
			ID:      idFor(e.kind, e.path),
			Path:    e.path,
			At:      now,
		})
	}
}

// idFor reads the front-matter id of a created or modified file. A deleted
// file can no longer be read, so its event carries no id — callers treat it
// as optional, matching spec.md's `id?` event shape.
func idFor(kind Kind, path string) string {
	if kind == KindDeleted {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	doc, err := frontmatter.Parse(data)
	if err != nil {
		return ""
	}
	id, _ := doc.Fields["id"].(string)
	return id
}

// domainFor classifies a changed path as memory, task, or unknown based on
// its position relative to root.
func domainFor(root, path string) Domain {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return DomainUnknown
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) == 0 {
		return DomainUnknown
	}
	switch parts[0] {
	case "memories":
		return DomainMemory
	case "tasks":
		return DomainTask
	default:
		return DomainUnknown
	}
}

func projectFor(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return ""
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) >= 2 {
		return parts[1]
	}
	return ""
}
