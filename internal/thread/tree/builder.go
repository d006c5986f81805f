// Package tree assembles flat comment rows into an ordered forest of
// nested replies.
package tree

import (
	"sort"

	"go.uber.org/zap"

	"github.com/MyNameIsWhaaat/replythread/internal/thread/model"
)

type Builder struct {
	logger *zap.Logger
}

func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{logger: logger}
}

// Build converts an unordered row set belonging to one post into an ordered
// forest. Each row becomes exactly one node (duplicate ids: last row wins in
// the lookup pass). A row whose parent_id is not among the input ids is
// reparented to the root list rather than dropped, so subtrees under deleted
// or unloaded parents stay visible.
func (b *Builder) Build(rows []model.Row) []*model.CommentNode {
	byID := make(map[string]*model.CommentNode, len(rows))
	order := make([]string, 0, len(rows))
	for _, r := range rows {
		if _, dup := byID[r.ID]; !dup {
			order = append(order, r.ID)
		}
		byID[r.ID] = &model.CommentNode{
			Comment: model.Comment{
				ID:        r.ID,
				PostID:    r.PostID,
				AuthorID:  r.AuthorID,
				ParentID:  r.ParentID,
				Body:      r.Body,
				CreatedAt: r.CreatedAt,
			},
			Author:   r.Author.Label(),
			State:    model.StateConfirmed,
			Children: []*model.CommentNode{},
		}
	}

	roots := make([]*model.CommentNode, 0, len(order))
	for _, id := range order {
		n := byID[id]
		if n.Root() {
			roots = append(roots, n)
			continue
		}
		parent, ok := byID[*n.ParentID]
		if !ok || parent == n {
			b.logger.Info("comment parent not in row set, attaching to root",
				zap.String("id", n.ID),
				zap.String("parent_id", *n.ParentID),
			)
			roots = append(roots, n)
			continue
		}
		parent.Children = append(parent.Children, n)
	}

	sortSiblings(roots)
	for _, n := range byID {
		sortSiblings(n.Children)
	}

	return roots
}

// sortSiblings orders one sibling list ascending by creation time, ties
// broken by ascending id for determinism.
func sortSiblings(nodes []*model.CommentNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// Count walks the forest with an explicit stack and returns the number of
// nodes. Threads can nest arbitrarily deep, so no recursion here.
func Count(forest []*model.CommentNode) int {
	n := 0
	stack := make([]*model.CommentNode, len(forest))
	copy(stack, forest)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n++
		stack = append(stack, node.Children...)
	}
	return n
}
