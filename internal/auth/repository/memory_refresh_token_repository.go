package repository

import (
	"context"
	"sort"
	"sync"

	authdomain "github.com/AlibekovAA/recipebook/backend/internal/auth/domain"
	"github.com/AlibekovAA/recipebook/backend/internal/common/clock"
	userdomain "github.com/AlibekovAA/recipebook/backend/internal/user/domain"
)

type MemoryRefreshTokenRepository struct {
	mu     sync.RWMutex
	clock  clock.Clock
	nextID authdomain.RefreshTokenID
	byID   map[authdomain.RefreshTokenID]authdomain.RefreshToken
	byHash map[string]authdomain.RefreshTokenID
}

func NewMemoryRefreshTokenRepository(clk clock.Clock) *MemoryRefreshTokenRepository {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &MemoryRefreshTokenRepository{
		clock:  clk,
		byID:   make(map[authdomain.RefreshTokenID]authdomain.RefreshToken),
		byHash: make(map[string]authdomain.RefreshTokenID),
	}
}

func (r *MemoryRefreshTokenRepository) Create(_ context.Context, token authdomain.RefreshToken) (authdomain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byHash[token.TokenHash]; exists {
		return authdomain.RefreshToken{}, ErrRefreshTokenAlreadyExists
	}

	r.nextID++
	token.ID = r.nextID
	token.CreatedAt = r.clock.Now()

	r.byID[token.ID] = token
	r.byHash[token.TokenHash] = token.ID
	return token, nil
}

func (r *MemoryRefreshTokenRepository) FindByID(_ context.Context, id authdomain.RefreshTokenID) (authdomain.RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	token, ok := r.byID[id]
	if !ok {
		return authdomain.RefreshToken{}, ErrRefreshTokenNotFound
	}
	return token, nil
}

func (r *MemoryRefreshTokenRepository) FindByTokenHash(_ context.Context, hash string) (authdomain.RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byHash[hash]
	if !ok {
		return authdomain.RefreshToken{}, ErrRefreshTokenNotFound
	}
	return r.byID[id], nil
}

func (r *MemoryRefreshTokenRepository) FindByUserID(_ context.Context, userID userdomain.ID) ([]authdomain.RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tokens := make([]authdomain.RefreshToken, 0)
	for _, token := range r.byID {
		if token.UserID == userID {
			tokens = append(tokens, token)
		}
	}

	sort.Slice(tokens, func(i, j int) bool {
		if !tokens[i].CreatedAt.Equal(tokens[j].CreatedAt) {
			return tokens[i].CreatedAt.After(tokens[j].CreatedAt)
		}
		return tokens[i].ID > tokens[j].ID
	})
	return tokens, nil
}

func (r *MemoryRefreshTokenRepository) Delete(_ context.Context, id authdomain.RefreshTokenID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.deleteLocked(id), nil
}

func (r *MemoryRefreshTokenRepository) DeleteByUserID(_ context.Context, userID userdomain.ID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, token := range r.byID {
		if token.UserID == userID && r.deleteLocked(id) {
			deleted++
		}
	}
	return deleted, nil
}

func (r *MemoryRefreshTokenRepository) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	var deleted int64
	for id, token := range r.byID {
		if !token.ExpiresAt.After(now) && r.deleteLocked(id) {
			deleted++
		}
	}
	return deleted, nil
}

func (r *MemoryRefreshTokenRepository) deleteLocked(id authdomain.RefreshTokenID) bool {
	token, ok := r.byID[id]
	if !ok {
		return false
	}
	delete(r.byID, id)
	delete(r.byHash, token.TokenHash)
	return true
}
