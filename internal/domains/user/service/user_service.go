package service

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"library-backend/internal/domains/user"
	"library-backend/pkg/jwt"
	"library-backend/pkg/logger"
)

const bcryptCost = 12

// LoanChecker reports whether a user still holds unreturned books.
// Implemented by the borrow repository; kept as a small interface here
// to avoid a dependency cycle between the domains.
type LoanChecker interface {
	CountUnreturnedByUser(ctx context.Context, userID uuid.UUID) (int, error)
}

type userService struct {
	repo       user.Repository
	jwtManager *jwt.Manager
	loans      LoanChecker
}

func NewUserService(repo user.Repository, jwtManager *jwt.Manager, loans LoanChecker) user.Service {
	return &userService{
		repo:       repo,
		jwtManager: jwtManager,
		loans:      loans,
	}
}

func (s *userService) Register(ctx context.Context, req user.RegisterRequest) (*user.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	u := &user.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		PhoneNumber:  req.PhoneNumber,
		Role:         req.Role,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	token, err := s.jwtManager.GenerateToken(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, err
	}

	logger.Info("user registered", map[string]interface{}{
		"user_id": u.ID.String(),
		"role":    u.Role,
	})

	return &user.AuthResponse{Token: token, User: user.ToUserResponse(u)}, nil
}

func (s *userService) Login(ctx context.Context, req user.LoginRequest) (*user.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		// không tiết lộ email có tồn tại hay không
		return nil, user.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, user.ErrInvalidCredentials
	}

	token, err := s.jwtManager.GenerateToken(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, err
	}

	return &user.AuthResponse{Token: token, User: user.ToUserResponse(u)}, nil
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*user.UserResponse, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := user.ToUserResponse(u)
	return &resp, nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*user.UserResponse, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	resp := user.ToUserResponse(u)
	return &resp, nil
}

func (s *userService) List(ctx context.Context) ([]user.UserResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]user.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, user.ToUserResponse(u))
	}

	return responses, nil
}

func (s *userService) Update(ctx context.Context, id uuid.UUID, req user.UpdateUserRequest) (*user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	u.Name = req.Name
	u.Email = req.Email
	u.PhoneNumber = req.PhoneNumber
	u.Role = req.Role

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	resp := user.ToUserResponse(u)
	return &resp, nil
}

func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	count, err := s.loans.CountUnreturnedByUser(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return user.ErrUserHasActiveLoans
	}

	return s.repo.Delete(ctx, id)
}
