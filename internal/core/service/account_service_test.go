package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/openshelf/library-system/internal/core/domain"
)

func TestAccountService_ToggleActive_FlipsAndPersists(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAccountService(repo, zerolog.Nop())

	user := repo.add(&domain.User{Username: "alice", Email: "alice@example.com", Role: domain.RoleUser, Active: true})

	toggled, err := svc.ToggleActive(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ToggleActive returned error: %v", err)
	}
	if toggled.Active {
		t.Fatalf("expected account deactivated")
	}

	stored, _ := repo.FindByID(context.Background(), user.ID)
	if stored.Active {
		t.Fatalf("deactivation was not persisted")
	}

	toggled, err = svc.ToggleActive(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	if !toggled.Active {
		t.Fatalf("expected account reactivated")
	}
}

func TestAccountService_ToggleActive_AdminProtected(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAccountService(repo, zerolog.Nop())

	admin := repo.add(&domain.User{Username: "root", Email: "root@example.com", Role: domain.RoleAdmin, Active: true})

	if _, err := svc.ToggleActive(context.Background(), admin.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for admin account, got %v", err)
	}

	stored, _ := repo.FindByID(context.Background(), admin.ID)
	if !stored.Active {
		t.Fatalf("admin account must stay active")
	}
}

func TestAccountService_ToggleActive_UnknownUser(t *testing.T) {
	svc := NewAccountService(newStubUserRepo(), zerolog.Nop())

	if _, err := svc.ToggleActive(context.Background(), "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAccountService_ListUsers(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAccountService(repo, zerolog.Nop())

	repo.add(&domain.User{Username: "zoe", Email: "zoe@example.com", Role: domain.RoleUser, Active: true})
	repo.add(&domain.User{Username: "adam", Email: "adam@example.com", Role: domain.RoleUser, Active: true})

	users, err := svc.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers returned error: %v", err)
	}
	if len(users) != 2 || users[0].Username != "adam" {
		t.Fatalf("expected users ordered by username, got %+v", users)
	}
}
