// Package todo is a persisted, ordered to-do list.
package todo

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-chi-widgets/internal/notify"
)

// StorageKey is where the list is persisted.
const StorageKey = "todos"

var (
	ErrEmptyTask = errors.New("task text is empty")
	ErrNotFound  = errors.New("task not found")
)

// SampleTasks seed a list that is empty when first opened.
var SampleTasks = []string{
	"Review HTML semantics",
	"Practice CSS Grid layouts",
	"Build Bootstrap components",
	"Write JavaScript functions",
	"Test responsive design",
}

// Item is one task.
type Item struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists the list.
type Store interface {
	Load(key string, dst any) (bool, error)
	Save(key string, v any) error
}

// List is safe for concurrent use. Every mutation is saved before it returns.
type List struct {
	mu       sync.Mutex
	items    []Item
	store    Store
	notifier notify.Notifier
	now      func() time.Time
}

// Open loads the saved list. An unreadable saved list is treated as empty,
// and an empty list is seeded with SampleTasks.
func Open(store Store, notifier notify.Notifier) (*List, error) {
	if notifier == nil {
		notifier = notify.Discard
	}
	l := &List{store: store, notifier: notifier, now: time.Now}

	if _, err := store.Load(StorageKey, &l.items); err != nil {
		l.items = nil
	}

	if len(l.items) == 0 {
		for _, text := range SampleTasks {
			l.items = append(l.items, l.newItem(text))
		}
		if err := l.save(); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *List) newItem(text string) Item {
	return Item{
		ID:        uuid.New().String(),
		Text:      text,
		CreatedAt: l.now().UTC(),
	}
}

// Items returns a copy of the list in order.
func (l *List) Items() []Item {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Item, len(l.items))
	copy(out, l.items)
	return out
}

// Add appends a task with the trimmed text.
func (l *List) Add(text string) (Item, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		l.notifier.Notify("Please enter a task", notify.Error)
		return Item{}, ErrEmptyTask
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	item := l.newItem(text)
	l.items = append(l.items, item)
	if err := l.save(); err != nil {
		l.items = l.items[:len(l.items)-1]
		return Item{}, err
	}

	l.notifier.Notify("Task added!", notify.Success)
	return item, nil
}

// Toggle flips the completion flag of the task with id.
func (l *List) Toggle(id string) (Item, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.index(id)
	if i < 0 {
		return Item{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	l.items[i].Completed = !l.items[i].Completed
	if err := l.save(); err != nil {
		l.items[i].Completed = !l.items[i].Completed
		return Item{}, err
	}
	return l.items[i], nil
}

// Delete removes the task with id.
func (l *List) Delete(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	prev := l.items
	l.items = append(l.items[:i:i], l.items[i+1:]...)
	if err := l.save(); err != nil {
		l.items = prev
		return err
	}
	return nil
}

func (l *List) index(id string) int {
	for i, it := range l.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (l *List) save() error {
	items := l.items
	if items == nil {
		items = []Item{}
	}
	if err := l.store.Save(StorageKey, items); err != nil {
		return fmt.Errorf("saving todos: %w", err)
	}
	return nil
}
