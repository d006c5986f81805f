// Package render defines the boundary by which a display layer consumes a
// comment forest. The display implementation itself lives with the caller;
// this package only fixes the contract and provides the traversal that
// drives it.
package render

import "github.com/MyNameIsWhaaat/replythread/internal/thread/model"

// ReplySignal is raised by a display layer when the user asks to reply to a
// node. The id is always the id of the node the signal was raised on; the
// traversal hands the same signal to every level, so nothing in between can
// rewrap it.
type ReplySignal func(id string)

// Renderer displays a single node: body, metadata and the resolved author
// label carried on the node. The traversal calls it once per node, parents
// before children, siblings in order.
type Renderer interface {
	Render(node *model.CommentNode, depth int, onReply ReplySignal) error
}

type frame struct {
	node  *model.CommentNode
	depth int
}

// RenderForest drives r over the forest depth-first in sibling order. The
// traversal keeps an explicit stack, so adversarially deep threads cannot
// blow the goroutine stack. Stops on the first renderer error.
func RenderForest(r Renderer, forest []*model.CommentNode, onReply ReplySignal) error {
	stack := make([]frame, 0, len(forest))
	for i := len(forest) - 1; i >= 0; i-- {
		stack = append(stack, frame{node: forest[i]})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := r.Render(f.node, f.depth, onReply); err != nil {
			return err
		}

		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: f.node.Children[i], depth: f.depth + 1})
		}
	}
	return nil
}

// Walk visits every node in display order without the reply plumbing.
func Walk(forest []*model.CommentNode, fn func(node *model.CommentNode, depth int)) {
	_ = RenderForest(renderFunc(func(n *model.CommentNode, depth int, _ ReplySignal) error {
		fn(n, depth)
		return nil
	}), forest, nil)
}

type renderFunc func(*model.CommentNode, int, ReplySignal) error

func (f renderFunc) Render(n *model.CommentNode, depth int, onReply ReplySignal) error {
	return f(n, depth, onReply)
}
