package service

import (
	"context"
	"fmt"

	"github.com/SAYREKAS/CryptoSphereAPI/internal/models"
	"github.com/SAYREKAS/CryptoSphereAPI/internal/repository"
	"github.com/SAYREKAS/CryptoSphereAPI/lib/errs"
	"github.com/SAYREKAS/CryptoSphereAPI/lib/hashcrypto"
)

type UsersService interface {
	CreateUser(ctx context.Context, username, email, password string) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]models.UserView, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// DeleteUser removes an account after verifying the supplied email and
	// password against the stored record. Deletion cascades to the user's
	// coins, transactions and statistics.
	DeleteUser(ctx context.Context, username, email, password string) (*models.User, error)
}

type usersService struct {
	repo repository.UsersRepository
}

func NewUsersService(repo repository.UsersRepository) UsersService {
	return &usersService{repo: repo}
}

func (s *usersService) CreateUser(_ context.Context, username, email, password string) (*models.User, error) {
	hash, err := hashcrypto.HashPwd([]byte(password))
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}

	if err := s.repo.CreateUser(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *usersService) GetAllUsers(_ context.Context) ([]models.UserView, error) {
	users, err := s.repo.GetAllUsers()
	if err != nil {
		return nil, err
	}

	views := make([]models.UserView, 0, len(users))
	for i := range users {
		views = append(views, users[i].View())
	}

	return views, nil
}

func (s *usersService) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return s.repo.GetUserByUsername(username)
}

func (s *usersService) DeleteUser(_ context.Context, username, email, password string) (*models.User, error) {
	user, err := s.repo.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}

	// A wrong email or password reads the same as a missing account, so
	// deletion does not leak which part of the credentials failed.
	if user.Email != email {
		return nil, errs.ErrNotFound
	}
	if err := hashcrypto.ComparePwd([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errs.ErrNotFound
	}

	if err := s.repo.DeleteUserByID(user.ID); err != nil {
		return nil, err
	}

	return user, nil
}
