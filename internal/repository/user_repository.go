package repository

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/console-client/internal/domain"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
)

// UserRepository defines account storage for the development backend.
type UserRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	Update(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
}

type userRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]domain.Account
}

// NewUserRepository returns an in-memory implementation.
func NewUserRepository() UserRepository {
	return &userRepository{byID: map[int64]domain.Account{}}
}

func (r *userRepository) Create(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.findByEmail(account.Email); ok {
		return ErrAccountExists
	}
	r.nextID++
	now := time.Now().UTC()
	account.ID = r.nextID
	account.CreatedAt = now
	account.UpdatedAt = now
	r.byID[account.ID] = *account
	return nil
}

func (r *userRepository) Update(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[account.ID]; !ok {
		return ErrAccountNotFound
	}
	account.UpdatedAt = time.Now().UTC()
	r.byID[account.ID] = *account
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.byID[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return &account, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.findByEmail(email)
	if !ok {
		return nil, ErrAccountNotFound
	}
	return &account, nil
}

func (r *userRepository) List(_ context.Context) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Account, 0, len(r.byID))
	for _, account := range r.byID {
		out = append(out, account)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *userRepository) findByEmail(email string) (domain.Account, bool) {
	for _, account := range r.byID {
		if strings.EqualFold(account.Email, email) {
			return account, true
		}
	}
	return domain.Account{}, false
}
