// Package directory resolves user identities for the task and comment services.
// It is read-only: accounts are created by the auth service.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("user not found in directory")

// Entry is the public view of a user.
type Entry struct {
	ID       string      `json:"id"`
	Email    string      `json:"email"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}

type Directory interface {
	ResolveByEmail(ctx context.Context, email string) (Entry, error)
	ResolveByID(ctx context.Context, id string) (Entry, error)
	// ResolveEmails returns the entries found, keyed by lower-cased email. Unknown emails are left out.
	ResolveEmails(ctx context.Context, emails []string) (map[string]Entry, error)
}

// Store resolves users from the database.
type Store struct {
	users repository.UserRepository
}

func NewStore(users repository.UserRepository) *Store {
	return &Store{users: users}
}

func (s *Store) ResolveByEmail(ctx context.Context, email string) (Entry, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return Entry{}, translate(err)
	}
	return EntryOf(*user), nil
}

func (s *Store) ResolveByID(ctx context.Context, id string) (Entry, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return Entry{}, translate(err)
	}
	return EntryOf(*user), nil
}

func (s *Store) ResolveEmails(ctx context.Context, emails []string) (map[string]Entry, error) {
	users, err := s.users.FindByEmails(ctx, emails)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve emails: %w", err)
	}

	found := make(map[string]Entry, len(users))
	for _, u := range users {
		found[strings.ToLower(u.Email)] = EntryOf(u)
	}
	return found, nil
}

// EntryOf converts a user model into a directory entry.
func EntryOf(u models.User) Entry {
	return Entry{
		ID:       u.ID,
		Email:    u.Email,
		Username: u.Username,
		Role:     u.Role,
	}
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to resolve user: %w", err)
}
