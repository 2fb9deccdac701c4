package entries

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestCreateAndList(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()
	owner := uuid.NewString()

	if _, err := svc.Create(ctx, CreateInput{UserID: owner, Content: "walked in the rain", Mood: "calm"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	secret, err := svc.Create(ctx, CreateInput{UserID: owner, Content: "do not read", IsPrivate: true})
	if err != nil {
		t.Fatalf("create private: %v", err)
	}

	public, err := svc.List(ctx, owner, ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(public) != 1 {
		t.Fatalf("expected 1 public entry, got %d", len(public))
	}

	all, err := svc.List(ctx, owner, ListFilter{IncludePrivate: true})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(all))
	}

	if _, err := svc.Get(ctx, owner, secret.ID); err != nil {
		t.Fatalf("get private: %v", err)
	}
}

func TestCreateRequiresContent(t *testing.T) {
	svc := NewService(NewMemoryRepository())

	if _, err := svc.Create(context.Background(), CreateInput{UserID: uuid.NewString(), Content: "   "}); err == nil {
		t.Fatalf("expected empty content to be rejected")
	}
}

func TestGetScopedToOwner(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	entry, err := svc.Create(ctx, CreateInput{UserID: uuid.NewString(), Content: "mine"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Get(ctx, uuid.NewString(), entry.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for other owner, got %v", err)
	}
}

func TestDeletePrivateIdempotent(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()
	owner := uuid.NewString()

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(ctx, CreateInput{UserID: owner, Content: "secret", IsPrivate: true}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := svc.Create(ctx, CreateInput{UserID: owner, Content: "public"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	deleted, err := svc.DeletePrivate(ctx, owner)
	if err != nil {
		t.Fatalf("delete private: %v", err)
	}
	if deleted != 3 {
		t.Fatalf("expected 3 deleted, got %d", deleted)
	}

	// Second wipe over an empty set is a no-op, not an error.
	deleted, err = svc.DeletePrivate(ctx, owner)
	if err != nil {
		t.Fatalf("delete private again: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("expected 0 deleted, got %d", deleted)
	}

	remaining, err := svc.List(ctx, owner, ListFilter{IncludePrivate: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("expected the public entry to survive, got %d entries", len(remaining))
	}
}
