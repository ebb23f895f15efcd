package user

import (
	"context"
	"testing"
)

func TestSync_SkipsEmptyClaims(t *testing.T) {
	repo := NewInMemoryRepository([]User{{ID: "u1", Name: "Jenny", Email: "j@example.com"}})
	svc := NewService(repo)
	ctx := context.Background()

	if err := svc.Sync(ctx, Identity{UserID: "u1"}); err != nil {
		t.Fatalf("sync: %v", err)
	}
	u, _ := svc.GetByID(ctx, "u1")
	if u.Name != "Jenny" {
		t.Fatalf("claims without name must not overwrite, got %+v", u)
	}

	if err := svc.Sync(ctx, Identity{UserID: "u1", Name: "Jen", Email: "jen@example.com"}); err != nil {
		t.Fatalf("sync: %v", err)
	}
	u, _ = svc.GetByID(ctx, "u1")
	if u.Name != "Jen" || u.Email != "jen@example.com" {
		t.Fatalf("expected synced profile, got %+v", u)
	}
}

func TestLookup_OmitsUnknown(t *testing.T) {
	svc := NewService(NewInMemoryRepository([]User{{ID: "u1"}}))
	got, err := svc.Lookup(context.Background(), []string{"u1", "u2"})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if _, ok := got["u2"]; ok || len(got) != 1 {
		t.Fatalf("unexpected lookup %+v", got)
	}
}

func TestSync_PartialClaimsKeepStoredFields(t *testing.T) {
	repo := NewInMemoryRepository([]User{{ID: "u1", Name: "Jenny", Email: "j@example.com"}})
	svc := NewService(repo)
	ctx := context.Background()

	if err := svc.Sync(ctx, Identity{UserID: "u1", Name: "Jen"}); err != nil {
		t.Fatalf("sync: %v", err)
	}
	u, _ := svc.GetByID(ctx, "u1")
	if u.Name != "Jen" || u.Email != "j@example.com" {
		t.Fatalf("email should survive a name-only token, got %+v", u)
	}

	if err := svc.Sync(ctx, Identity{UserID: "u1", Email: "jen@example.com"}); err != nil {
		t.Fatalf("sync: %v", err)
	}
	u, _ = svc.GetByID(ctx, "u1")
	if u.Name != "Jen" || u.Email != "jen@example.com" {
		t.Fatalf("name should survive an email-only token, got %+v", u)
	}

	if err := svc.Sync(ctx, Identity{UserID: "new", Name: "Newcomer"}); err != nil {
		t.Fatalf("sync: %v", err)
	}
	u, _ = svc.GetByID(ctx, "new")
	if u.Name != "Newcomer" || u.Email != "" {
		t.Fatalf("unexpected new entry %+v", u)
	}
}
