package users

import (
	"context"
	"errors"

	"github.com/gotodo/todo-service/internal/models"
	"github.com/gotodo/todo-service/internal/validation"
	"github.com/gotodo/todo-service/pkg/apperrors"
	"golang.org/x/crypto/bcrypt"
)

const msgPasswordTooLong = "Password must be at most 72 bytes long"

// Service is the credential store: it registers accounts and checks passwords.
type Service struct {
	repo AccountRepository
	cost int
	// dummyHash is compared against when the username is unknown so both
	// failure paths spend the same bcrypt time.
	dummyHash []byte
}

// NewService builds a Service hashing with the given bcrypt cost.
// Costs outside bcrypt's accepted range fall back to bcrypt.DefaultCost.
func NewService(r AccountRepository, cost int) (*Service, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	if err != nil {
		return nil, err
	}
	return &Service{repo: r, cost: cost, dummyHash: dummy}, nil
}

// Register validates the input, rejects taken usernames and stores a new account.
func (s *Service) Register(ctx context.Context, username, password string) (*models.Account, error) {
	username, violations := validation.Registration(username, password)
	if len(violations) > 0 {
		return nil, apperrors.Validation(violations)
	}

	existing, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if existing != nil {
		return nil, apperrors.ErrDuplicateIdentity
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperrors.Validation([]string{msgPasswordTooLong})
		}
		return nil, apperrors.Internal(err)
	}

	a, err := s.repo.Create(ctx, &models.Account{Username: username, PasswordHash: string(hash)})
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, apperrors.ErrDuplicateIdentity
		}
		return nil, apperrors.Internal(err)
	}
	return a, nil
}

// Authenticate returns the account when the password matches. Unknown
// usernames and wrong passwords fail with the same InvalidCredentials error.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.Account, error) {
	username, violations := validation.Login(username, password)
	if len(violations) > 0 {
		return nil, apperrors.Validation(violations)
	}

	a, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if a == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, apperrors.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	return a, nil
}
