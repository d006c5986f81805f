package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MyNameIsWhaaat/replythread/internal/thread/identity"
	"github.com/MyNameIsWhaaat/replythread/internal/thread/model"
	"github.com/MyNameIsWhaaat/replythread/internal/thread/storage/inmemory"
)

func ptr(s string) *string { return &s }

func seedThread(t *testing.T, repo *inmemory.Repo) {
	t.Helper()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rows := []model.Row{
		{ID: "root-1", PostID: "p1", AuthorID: "u1", Body: "first", CreatedAt: base},
		{ID: "root-2", PostID: "p1", AuthorID: "u2", Body: "second", CreatedAt: base.Add(time.Minute)},
		{ID: "reply-1", PostID: "p1", AuthorID: "u2", ParentID: ptr("root-1"), Body: "re: first", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, r := range rows {
		repo.Seed(r)
	}
}

func newEngine(t *testing.T, idp identity.Provider) (*Engine, *inmemory.Repo) {
	t.Helper()
	repo := inmemory.New()
	seedThread(t, repo)
	e := New("p1", repo, idp, nil)
	if err := e.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	return e, repo
}

func TestReplyTargetState(t *testing.T) {
	e, _ := newEngine(t, identity.Static{AuthorID: "u9"})

	if e.ReplyTarget() != nil {
		t.Fatal("fresh engine should have no reply target")
	}
	e.StartReply("root-1")
	if got := e.ReplyTarget(); got == nil || *got != "root-1" {
		t.Fatalf("ReplyTarget() = %v, want root-1", got)
	}
	e.StartReply("root-2")
	if got := e.ReplyTarget(); got == nil || *got != "root-2" {
		t.Fatalf("ReplyTarget() = %v, want root-2", got)
	}
	e.CancelReply()
	if e.ReplyTarget() != nil {
		t.Fatal("CancelReply should clear the target")
	}
	if e.Len() != 3 {
		t.Errorf("target state changes must not touch the tree, Len() = %d", e.Len())
	}
}

func TestSubmitReplyEmptyBody(t *testing.T) {
	e, _ := newEngine(t, identity.Static{AuthorID: "u9"})

	before := e.Len()
	for _, body := range []string{"", "   ", " \t\n "} {
		_, err := e.SubmitReply(context.Background(), body, ptr("root-1"))
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("body %q: expected ErrValidation, got %v", body, err)
		}
	}
	if e.Len() != before {
		t.Errorf("tree changed on validation failure: %d -> %d", before, e.Len())
	}
}

func TestSubmitReplyNoIdentity(t *testing.T) {
	e, _ := newEngine(t, identity.None{})

	before := e.Len()
	_, err := e.SubmitReply(context.Background(), "hello", nil)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if !errors.Is(err, identity.ErrNoSession) {
		t.Errorf("error should carry the session cause, got %v", err)
	}
	if e.Len() != before {
		t.Errorf("tree changed on validation failure: %d -> %d", before, e.Len())
	}
}

func TestSubmitReplySuccess(t *testing.T) {
	e, _ := newEngine(t, identity.Static{AuthorID: "u9"})

	before := e.Len()
	node, err := e.SubmitReply(context.Background(), "a reply", ptr("root-1"))
	if err != nil {
		t.Fatalf("SubmitReply: %v", err)
	}

	if e.Len() != before+1 {
		t.Fatalf("Len() = %d, want %d", e.Len(), before+1)
	}
	if node.State != model.StateConfirmed {
		t.Errorf("State = %s, want confirmed", node.State)
	}
	if node.ID == "" || strings.HasPrefix(node.ID, "tmp-") {
		t.Errorf("node kept provisional id %q after reconciliation", node.ID)
	}
	if node.AuthorID != "u9" {
		t.Errorf("AuthorID = %q, want u9", node.AuthorID)
	}
	if node.Author != model.AnonymousLabel {
		t.Errorf("Author = %q, want %q; every node handed to a renderer carries a label", node.Author, model.AnonymousLabel)
	}

	root := e.Forest()[0]
	if root.ID != "root-1" {
		t.Fatalf("unexpected forest order, root[0] = %s", root.ID)
	}
	last := root.Children[len(root.Children)-1]
	if last != node {
		t.Errorf("confirmed node should stay where it was optimistically inserted")
	}
}

func TestSubmitReplyUsesSessionLabel(t *testing.T) {
	e, _ := newEngine(t, identity.Static{AuthorID: "u9", Label: "Ada"})

	node, err := e.SubmitReply(context.Background(), "labeled", ptr("root-1"))
	if err != nil {
		t.Fatalf("SubmitReply: %v", err)
	}
	if node.Author != "Ada" {
		t.Errorf("Author = %q, want Ada", node.Author)
	}
}

func TestSubmitReplyAtRoot(t *testing.T) {
	e, _ := newEngine(t, identity.Static{AuthorID: "u9"})

	node, err := e.SubmitReply(context.Background(), "top level", nil)
	if err != nil {
		t.Fatalf("SubmitReply: %v", err)
	}

	forest := e.Forest()
	if forest[len(forest)-1] != node {
		t.Errorf("root reply should be appended to the end of the root list")
	}
}

// The optimistic insert appends to the end of the sibling group and stays
// there after confirmation, even though a rebuild would sort it elsewhere.
func TestSubmitReplyKeepsOptimisticPosition(t *testing.T) {
	e, _ := newEngine(t, identity.Static{AuthorID: "u9"})
	e.now = func() time.Time {
		return time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	node, err := e.SubmitReply(context.Background(), "backdated", nil)
	if err != nil {
		t.Fatalf("SubmitReply: %v", err)
	}

	forest := e.Forest()
	if forest[len(forest)-1] != node {
		t.Errorf("node moved after reconciliation; sibling order must not be recomputed on insert")
	}
}

func TestSubmitReplyMissingTargetGoesToRoot(t *testing.T) {
	e, _ := newEngine(t, identity.Static{AuthorID: "u9"})

	node, err := e.SubmitReply(context.Background(), "orphan reply", ptr("vanished"))
	if err != nil {
		t.Fatalf("SubmitReply: %v", err)
	}

	forest := e.Forest()
	if forest[len(forest)-1] != node {
		t.Errorf("reply to a vanished target should land in the root list")
	}
}

func TestSubmitReplyPersistFailureRollsBack(t *testing.T) {
	e, repo := newEngine(t, identity.Static{AuthorID: "u9"})

	before := e.Len()
	repo.FailNextInsert(errors.New("connection reset"))

	_, err := e.SubmitReply(context.Background(), "doomed", ptr("root-1"))
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if e.Len() != before {
		t.Errorf("Len() = %d after rollback, want %d", e.Len(), before)
	}

	root := e.Forest()[0]
	for _, ch := range root.Children {
		if ch.Body == "doomed" {
			t.Error("provisional node survived a failed persist")
		}
	}

	// the failure is recoverable: the next submit goes through
	if _, err := e.SubmitReply(context.Background(), "retry", ptr("root-1")); err != nil {
		t.Fatalf("resubmit after failure: %v", err)
	}
	if e.Len() != before+1 {
		t.Errorf("Len() = %d after resubmit, want %d", e.Len(), before+1)
	}
}

func TestRefreshRebuildsFromStore(t *testing.T) {
	e, _ := newEngine(t, identity.Static{AuthorID: "u9"})

	if _, err := e.SubmitReply(context.Background(), "persisted", ptr("root-2")); err != nil {
		t.Fatalf("SubmitReply: %v", err)
	}

	if err := e.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if e.Len() != 4 {
		t.Errorf("Len() = %d after refresh, want 4", e.Len())
	}
}
