package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/MyNameIsWhaaat/replythread/internal/thread/engine"
	"github.com/MyNameIsWhaaat/replythread/internal/thread/identity"
	"github.com/MyNameIsWhaaat/replythread/internal/thread/model"
	"github.com/MyNameIsWhaaat/replythread/internal/thread/storage"
	"github.com/MyNameIsWhaaat/replythread/internal/thread/tree"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

const maxBodyLen = 2000

// threadService fronts one engine per post. Engines are single-writer, so
// every call into an engine happens under that post's lock; holding the lock
// across the persist call is also what suppresses duplicate concurrent
// submits for a post.
type threadService struct {
	repo     storage.Repository
	identity identity.Provider
	logger   *zap.Logger

	mu      sync.Mutex
	engines map[string]*postEngine
}

type postEngine struct {
	mu sync.Mutex
	e  *engine.Engine
}

func New(repo storage.Repository, idp identity.Provider, logger *zap.Logger) ThreadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &threadService{
		repo:     repo,
		identity: idp,
		logger:   logger,
		engines:  make(map[string]*postEngine),
	}
}

func (s *threadService) engineFor(postID string) *postEngine {
	s.mu.Lock()
	defer s.mu.Unlock()
	pe, ok := s.engines[postID]
	if !ok {
		pe = &postEngine{e: engine.New(postID, s.repo, s.identity, s.logger)}
		s.engines[postID] = pe
	}
	return pe
}

func (s *threadService) Thread(ctx context.Context, postID string) ([]*model.CommentNode, error) {
	if postID == "" {
		return nil, ErrInvalidInput
	}

	pe := s.engineFor(postID)
	pe.mu.Lock()
	defer pe.mu.Unlock()

	if err := pe.e.Refresh(ctx); err != nil {
		return nil, err
	}
	return pe.e.Forest(), nil
}

func (s *threadService) Reply(ctx context.Context, postID string, parentID *string, body string) (*model.CommentNode, error) {
	if postID == "" {
		return nil, ErrInvalidInput
	}
	body = strings.TrimSpace(body)
	if len(body) > maxBodyLen {
		return nil, ErrInvalidInput
	}

	pe := s.engineFor(postID)
	pe.mu.Lock()
	defer pe.mu.Unlock()

	if !pe.e.Loaded() {
		if err := pe.e.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	return pe.e.SubmitReply(ctx, body, parentID)
}

func (s *threadService) DeleteSubtree(ctx context.Context, id string) (int, error) {
	if id == "" {
		return 0, ErrInvalidInput
	}

	deleted, err := s.repo.DeleteSubtree(ctx, id)
	if err != nil {
		return 0, err
	}
	if deleted == 0 {
		return 0, ErrNotFound
	}
	return deleted, nil
}

func (s *threadService) Subtree(ctx context.Context, id string) (*model.CommentNode, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}

	rows, err := s.repo.Subtree(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	// the requested comment heads the forest; its own parent is outside the
	// row set and gets reparented to root by the builder
	forest := tree.NewBuilder(s.logger).Build(rows)
	for _, n := range forest {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, ErrNotFound
}

func (s *threadService) Path(ctx context.Context, id string) ([]model.PathItem, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}

	items, err := s.repo.Path(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}
