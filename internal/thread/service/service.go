package service

import (
	"context"

	"github.com/MyNameIsWhaaat/replythread/internal/thread/model"
)

type ThreadService interface {
	Thread(ctx context.Context, postID string) ([]*model.CommentNode, error)
	Reply(ctx context.Context, postID string, parentID *string, body string) (*model.CommentNode, error)
	DeleteSubtree(ctx context.Context, id string) (deleted int, err error)
	Subtree(ctx context.Context, id string) (*model.CommentNode, error)
	Path(ctx context.Context, id string) ([]model.PathItem, error)
}
