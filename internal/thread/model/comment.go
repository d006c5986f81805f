package model

import "time"

// NodeState tags a node as provisional (inserted optimistically, awaiting
// store confirmation) or confirmed (carrying a store-assigned id).
type NodeState string

const (
	StatePending   NodeState = "pending"
	StateConfirmed NodeState = "confirmed"
)

type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	ParentID  *string   `json:"parent_id,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Root reports whether the comment has no parent within its post.
func (c Comment) Root() bool {
	return c.ParentID == nil || *c.ParentID == ""
}

// CommentNode is a comment placed in its thread. Author is the display label
// resolved once at build time; Children is derived state owned by the tree
// builder and is never persisted.
type CommentNode struct {
	Comment
	Author   string         `json:"author"`
	State    NodeState      `json:"state"`
	Children []*CommentNode `json:"children"`
}

// Row is the read shape coming from the persistence collaborator: a comment
// plus its author relation in whatever shape the upstream client produced.
type Row struct {
	ID        string         `json:"id"`
	PostID    string         `json:"post_id"`
	AuthorID  string         `json:"author_id"`
	ParentID  *string        `json:"parent_id,omitempty"`
	Body      string         `json:"body"`
	CreatedAt time.Time      `json:"created_at"`
	Author    AuthorRelation `json:"author"`
}

// Root reports whether the row has no parent reference.
func (r Row) Root() bool {
	return r.ParentID == nil || *r.ParentID == ""
}

// PathItem is one ancestor on the breadcrumb from a root down to a comment.
type PathItem struct {
	ID       string  `json:"id"`
	ParentID *string `json:"parent_id,omitempty"`
	Body     string  `json:"body"`
}
