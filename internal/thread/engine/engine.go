// Package engine owns the reply lifecycle for one post's thread: which node
// is being replied to, the optimistic insert of a provisional reply, and its
// reconciliation against the store's answer.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MyNameIsWhaaat/replythread/internal/thread/identity"
	"github.com/MyNameIsWhaaat/replythread/internal/thread/model"
	"github.com/MyNameIsWhaaat/replythread/internal/thread/storage"
	"github.com/MyNameIsWhaaat/replythread/internal/thread/tree"
)

var (
	// ErrValidation blocks a submit synchronously: empty body, or no
	// authenticated identity. The forest is untouched.
	ErrValidation = errors.New("validation")
	// ErrPersistence means the store rejected the write. The optimistic
	// insert has been rolled back; the caller may resubmit.
	ErrPersistence = errors.New("persistence")
)

// Engine is deliberately lock-free: the forest is mutated only by its
// calling layer, which must serialize calls per engine (and suppress
// duplicate submits while one is in flight).
type Engine struct {
	postID   string
	store    storage.Repository
	identity identity.Provider
	builder  *tree.Builder
	logger   *zap.Logger

	now func() time.Time

	forest  []*model.CommentNode
	loaded  bool
	replyTo *string
}

func New(postID string, store storage.Repository, idp identity.Provider, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		postID:   postID,
		store:    store,
		identity: idp,
		builder:  tree.NewBuilder(logger),
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Refresh reloads the row set from the store and rebuilds the forest,
// discarding derived state including any unconfirmed provisional nodes.
func (e *Engine) Refresh(ctx context.Context) error {
	rows, err := e.store.ListByPost(ctx, e.postID)
	if err != nil {
		return fmt.Errorf("load thread %s: %w", e.postID, err)
	}
	e.forest = e.builder.Build(rows)
	e.loaded = true
	return nil
}

func (e *Engine) Loaded() bool { return e.loaded }

// Forest returns the current ordered root list.
func (e *Engine) Forest() []*model.CommentNode { return e.forest }

// Len is the current node count.
func (e *Engine) Len() int { return tree.Count(e.forest) }

// StartReply marks id as the active reply target. Pure state change.
func (e *Engine) StartReply(id string) {
	e.replyTo = &id
}

// CancelReply clears the active target. Nothing persisted is discarded.
func (e *Engine) CancelReply() {
	e.replyTo = nil
}

// ReplyTarget returns the active target, nil meaning "reply at root".
func (e *Engine) ReplyTarget() *string { return e.replyTo }

// SubmitReply validates, inserts a provisional node as the last child of the
// target's sibling group, then performs the single blocking persist call.
// On success the node is confirmed in place: the store id (and the store's
// creation time) replace the provisional values but the node keeps its
// position, even when canonical time order would move it. On failure the
// provisional node is removed and the pre-call forest is restored exactly.
func (e *Engine) SubmitReply(ctx context.Context, body string, target *string) (*model.CommentNode, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: empty body", ErrValidation)
	}

	authorID, err := e.identity.CurrentAuthor(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	node := &model.CommentNode{
		Comment: model.Comment{
			ID:        "tmp-" + uuid.NewString(),
			PostID:    e.postID,
			AuthorID:  authorID,
			ParentID:  target,
			Body:      body,
			CreatedAt: e.now(),
		},
		Author:   e.authorLabel(ctx),
		State:    model.StatePending,
		Children: []*model.CommentNode{},
	}

	siblings := e.attach(node, target)

	created, err := e.store.Insert(ctx, storage.NewComment{
		PostID:   e.postID,
		ParentID: target,
		AuthorID: authorID,
		Body:     body,
	})
	if err != nil {
		e.detach(node, siblings)
		e.logger.Warn("reply persist failed, provisional node removed",
			zap.String("post_id", e.postID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	node.ID = created.ID
	if !created.CreatedAt.IsZero() {
		node.CreatedAt = created.CreatedAt
	}
	node.State = model.StateConfirmed

	return node, nil
}

// authorLabel resolves the display label for the session author. Labels are
// total: a provider without one yields the anonymous fallback, same as an
// empty author relation during a build.
func (e *Engine) authorLabel(ctx context.Context) string {
	if l, ok := e.identity.(identity.Labeler); ok {
		if label, err := l.CurrentLabel(ctx); err == nil && label != "" {
			return label
		}
	}
	return model.AnonymousLabel
}

// attach appends node at the end of its sibling group and returns a pointer
// to that group. A target missing from the forest gets the same treatment as
// an unresolved parent_id during the build: the node goes to the root list.
func (e *Engine) attach(node *model.CommentNode, target *string) *[]*model.CommentNode {
	if target != nil && *target != "" {
		if parent := e.find(*target); parent != nil {
			parent.Children = append(parent.Children, node)
			return &parent.Children
		}
		e.logger.Info("reply target not in forest, attaching to root",
			zap.String("target", *target),
		)
	}
	e.forest = append(e.forest, node)
	return &e.forest
}

func (e *Engine) detach(node *model.CommentNode, siblings *[]*model.CommentNode) {
	kept := (*siblings)[:0]
	for _, n := range *siblings {
		if n != node {
			kept = append(kept, n)
		}
	}
	*siblings = kept
}

func (e *Engine) find(id string) *model.CommentNode {
	stack := make([]*model.CommentNode, len(e.forest))
	copy(stack, e.forest)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.ID == id {
			return n
		}
		stack = append(stack, n.Children...)
	}
	return nil
}
