// Package inmemory keeps comments in process memory. Used for dev mode and
// as the storage stub in tests.
package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MyNameIsWhaaat/replythread/internal/thread/model"
	"github.com/MyNameIsWhaaat/replythread/internal/thread/storage"
)

type Repo struct {
	mu sync.RWMutex

	byID     map[string]model.Row
	children map[string][]string
	byPost   map[string][]string

	nextInsertErr error
}

func New() *Repo {
	return &Repo{
		byID:     make(map[string]model.Row),
		children: make(map[string][]string),
		byPost:   make(map[string][]string),
	}
}

// FailNextInsert makes the next Insert call return err instead of writing.
func (r *Repo) FailNextInsert(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextInsertErr = err
}

// Seed stores a fixture row as-is, id, timestamp and author relation
// included.
func (r *Repo) Seed(row model.Row) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(row)
}

func (r *Repo) put(row model.Row) {
	r.byID[row.ID] = row
	r.byPost[row.PostID] = append(r.byPost[row.PostID], row.ID)
	if row.ParentID != nil && *row.ParentID != "" {
		r.children[*row.ParentID] = append(r.children[*row.ParentID], row.ID)
	}
}

func (r *Repo) ListByPost(ctx context.Context, postID string) ([]model.Row, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byPost[postID]
	rows := make([]model.Row, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, r.byID[id])
	}
	return rows, nil
}

func (r *Repo) Insert(ctx context.Context, c storage.NewComment) (storage.Created, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.nextInsertErr; err != nil {
		r.nextInsertErr = nil
		return storage.Created{}, err
	}

	row := model.Row{
		ID:        uuid.NewString(),
		PostID:    c.PostID,
		AuthorID:  c.AuthorID,
		ParentID:  c.ParentID,
		Body:      c.Body,
		CreatedAt: time.Now().UTC(),
	}
	r.put(row)

	return storage.Created{ID: row.ID, CreatedAt: row.CreatedAt}, nil
}

func (r *Repo) DeleteSubtree(ctx context.Context, id string) (int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return 0, nil
	}

	toDelete := make([]string, 0, 16)
	stack := []string{id}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		toDelete = append(toDelete, n)
		stack = append(stack, r.children[n]...)
	}

	for _, cid := range toDelete {
		row := r.byID[cid]
		if row.ParentID != nil && *row.ParentID != "" {
			r.children[*row.ParentID] = removeID(r.children[*row.ParentID], cid)
		}
		r.byPost[row.PostID] = removeID(r.byPost[row.PostID], cid)
		delete(r.byID, cid)
		delete(r.children, cid)
	}

	return len(toDelete), nil
}

func (r *Repo) Subtree(ctx context.Context, id string) ([]model.Row, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.byID[id]; !ok {
		return nil, storage.ErrNotFound
	}

	var rows []model.Row
	stack := []string{id}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		rows = append(rows, r.byID[n])
		stack = append(stack, r.children[n]...)
	}
	return rows, nil
}

func (r *Repo) Path(ctx context.Context, id string) ([]model.PathItem, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.byID[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	var items []model.PathItem
	for {
		items = append(items, model.PathItem{ID: row.ID, ParentID: row.ParentID, Body: row.Body})
		if row.ParentID == nil || *row.ParentID == "" {
			break
		}
		parent, ok := r.byID[*row.ParentID]
		if !ok {
			break
		}
		row = parent
	}

	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items, nil
}

func (r *Repo) Close() error { return nil }

func removeID(ids []string, target string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != target {
			out = append(out, v)
		}
	}
	return append([]string(nil), out...)
}
