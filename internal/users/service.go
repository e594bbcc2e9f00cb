package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mealdrop/go-delivery-orders/internal/apperr"
	"github.com/mealdrop/go-delivery-orders/internal/auth"
)

type Repository interface {
	Insert(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	UpdateProfile(ctx context.Context, userID string, p ProfileUpdate) error
	UpdatePassword(ctx context.Context, userID, hash string) error
}

type Service struct {
	repo       Repository
	tokens     *auth.Tokens
	bcryptCost int
}

func NewService(repo Repository, tokens *auth.Tokens, bcryptCost int) *Service {
	return &Service{repo: repo, tokens: tokens, bcryptCost: bcryptCost}
}

// Register selalu membuat CUSTOMER; role staff di-seed lewat DB, bukan API.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Email == "" || in.Password == "" {
		return User{}, fmt.Errorf("%w: email and password required", apperr.ErrInvalidInput)
	}
	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return User{}, err
	}
	u := User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: hash,
		Role:         auth.RoleCustomer,
		FullName:     in.FullName,
		Address:      in.Address,
		LocX:         in.LocX,
		LocY:         in.LocY,
	}
	if err := s.repo.Insert(ctx, &u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Login mengembalikan signed token + user publik.
// Email tak dikenal dan password salah sengaja dibuat tidak bisa dibedakan.
func (s *Service) Login(ctx context.Context, email, password string) (string, User, error) {
	if email == "" || password == "" {
		return "", User{}, fmt.Errorf("%w: email and password required", apperr.ErrInvalidInput)
	}
	u, err := s.repo.FindByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", User{}, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthenticated)
		}
		return "", User{}, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return "", User{}, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthenticated)
	}
	tok, err := s.tokens.Mint(auth.Identity{UserID: u.ID, Role: u.Role, Email: u.Email})
	if err != nil {
		return "", User{}, err
	}
	return tok, u, nil
}

func (s *Service) Get(ctx context.Context, userID string) (User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, p ProfileUpdate) (User, error) {
	if err := s.repo.UpdateProfile(ctx, userID, p); err != nil {
		return User{}, err
	}
	return s.repo.FindByID(ctx, userID)
}

func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: new password required", apperr.ErrInvalidInput)
	}
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, oldPassword) {
		return fmt.Errorf("%w: wrong password", apperr.ErrUnauthenticated)
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, userID, hash)
}
