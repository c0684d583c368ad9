package repository

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	authdomain "github.com/AlibekovAA/recipebook/backend/internal/auth/domain"
	"github.com/AlibekovAA/recipebook/backend/internal/common/clock"
)

func TestMemoryRefreshTokenRepository_CreateAndFind(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	repo := NewMemoryRefreshTokenRepository(clk)
	ctx := context.Background()

	created, err := repo.Create(ctx, authdomain.RefreshToken{UserID: 1, TokenHash: "h1", ExpiresAt: clk.Now().Add(time.Hour)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 || !created.CreatedAt.Equal(clk.Now()) {
		t.Fatalf("expected id and created_at to be assigned, got %+v", created)
	}

	byHash, err := repo.FindByTokenHash(ctx, "h1")
	if err != nil || byHash.ID != created.ID {
		t.Fatalf("find by hash: %+v %v", byHash, err)
	}
	byID, err := repo.FindByID(ctx, created.ID)
	if err != nil || byID.TokenHash != "h1" {
		t.Fatalf("find by id: %+v %v", byID, err)
	}

	if _, err := repo.Create(ctx, authdomain.RefreshToken{UserID: 2, TokenHash: "h1"}); !errors.Is(err, ErrRefreshTokenAlreadyExists) {
		t.Errorf("expected ErrRefreshTokenAlreadyExists, got %v", err)
	}
	if _, err := repo.FindByTokenHash(ctx, "missing"); !errors.Is(err, ErrRefreshTokenNotFound) {
		t.Errorf("expected ErrRefreshTokenNotFound, got %v", err)
	}
}

func TestMemoryRefreshTokenRepository_FindByUserIDNewestFirst(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	repo := NewMemoryRefreshTokenRepository(clk)
	ctx := context.Background()

	first, _ := repo.Create(ctx, authdomain.RefreshToken{UserID: 1, TokenHash: "a"})
	clk.Advance(time.Minute)
	second, _ := repo.Create(ctx, authdomain.RefreshToken{UserID: 1, TokenHash: "b"})
	_, _ = repo.Create(ctx, authdomain.RefreshToken{UserID: 2, TokenHash: "c"})

	tokens, err := repo.FindByUserID(ctx, 1)
	if err != nil {
		t.Fatalf("find by user: %v", err)
	}
	if len(tokens) != 2 || tokens[0].ID != second.ID || tokens[1].ID != first.ID {
		t.Fatalf("expected newest first, got %+v", tokens)
	}

	empty, err := repo.FindByUserID(ctx, 42)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty slice, got %+v %v", empty, err)
	}
}

func TestMemoryRefreshTokenRepository_Delete(t *testing.T) {
	repo := NewMemoryRefreshTokenRepository(nil)
	ctx := context.Background()

	token, _ := repo.Create(ctx, authdomain.RefreshToken{UserID: 1, TokenHash: "a"})

	deleted, err := repo.Delete(ctx, token.ID)
	if err != nil || !deleted {
		t.Fatalf("expected first delete to succeed, got %v %v", deleted, err)
	}
	deleted, err = repo.Delete(ctx, token.ID)
	if err != nil || deleted {
		t.Fatalf("expected second delete to report false, got %v %v", deleted, err)
	}
	if _, err := repo.FindByTokenHash(ctx, "a"); !errors.Is(err, ErrRefreshTokenNotFound) {
		t.Errorf("expected hash index to be cleared, got %v", err)
	}
}

func TestMemoryRefreshTokenRepository_ConcurrentDeleteHasOneWinner(t *testing.T) {
	repo := NewMemoryRefreshTokenRepository(nil)
	ctx := context.Background()
	token, _ := repo.Create(ctx, authdomain.RefreshToken{UserID: 1, TokenHash: "a"})

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := repo.Delete(ctx, token.ID); ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly one successful delete, got %d", wins)
	}
}

func TestMemoryRefreshTokenRepository_DeleteByUserID(t *testing.T) {
	repo := NewMemoryRefreshTokenRepository(nil)
	ctx := context.Background()

	_, _ = repo.Create(ctx, authdomain.RefreshToken{UserID: 1, TokenHash: "a"})
	_, _ = repo.Create(ctx, authdomain.RefreshToken{UserID: 1, TokenHash: "b"})
	_, _ = repo.Create(ctx, authdomain.RefreshToken{UserID: 2, TokenHash: "c"})

	n, err := repo.DeleteByUserID(ctx, 1)
	if err != nil || n != 2 {
		t.Fatalf("expected 2 deleted, got %d %v", n, err)
	}
	n, err = repo.DeleteByUserID(ctx, 1)
	if err != nil || n != 0 {
		t.Fatalf("expected 0 deleted on repeat, got %d %v", n, err)
	}
	if _, err := repo.FindByTokenHash(ctx, "c"); err != nil {
		t.Errorf("other user's token should survive: %v", err)
	}
}

func TestMemoryRefreshTokenRepository_DeleteExpired(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	repo := NewMemoryRefreshTokenRepository(clk)
	ctx := context.Background()

	_, _ = repo.Create(ctx, authdomain.RefreshToken{UserID: 1, TokenHash: "past", ExpiresAt: clk.Now().Add(-time.Second)})
	_, _ = repo.Create(ctx, authdomain.RefreshToken{UserID: 1, TokenHash: "now", ExpiresAt: clk.Now()})
	_, _ = repo.Create(ctx, authdomain.RefreshToken{UserID: 1, TokenHash: "future", ExpiresAt: clk.Now().Add(time.Hour)})

	n, err := repo.DeleteExpired(ctx)
	if err != nil || n != 2 {
		t.Fatalf("expected 2 expired records removed, got %d %v", n, err)
	}
	n, err = repo.DeleteExpired(ctx)
	if err != nil || n != 0 {
		t.Fatalf("expected second sweep to remove nothing, got %d %v", n, err)
	}
	if _, err := repo.FindByTokenHash(ctx, "future"); err != nil {
		t.Errorf("unexpired token removed: %v", err)
	}
}
