package storage

import (
	"context"
	"errors"
	"time"

	"github.com/MyNameIsWhaaat/replythread/internal/thread/model"
)

// ErrNotFound when the requested comment does not exist.
var ErrNotFound = errors.New("comment not found")

// NewComment is the write shape sent to the store.
type NewComment struct {
	PostID   string
	ParentID *string
	AuthorID string
	Body     string
}

// Created is what the store assigns on a successful write.
type Created struct {
	ID        string
	CreatedAt time.Time
}

type Repository interface {
	ListByPost(ctx context.Context, postID string) ([]model.Row, error)
	Insert(ctx context.Context, c NewComment) (Created, error)
	DeleteSubtree(ctx context.Context, id string) (int, error)
	Subtree(ctx context.Context, id string) ([]model.Row, error)
	Path(ctx context.Context, id string) ([]model.PathItem, error)
	Close() error
}
