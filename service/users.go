package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/purbarunBC13/team-tracker/activity"
	"github.com/purbarunBC13/team-tracker/models"
	"github.com/purbarunBC13/team-tracker/security"
	"github.com/purbarunBC13/team-tracker/store"
)

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Company  string `json:"company"`
	Phone    string `json:"phone"`
}

type ProfileInput struct {
	Name    *string `json:"name"`
	Company *string `json:"company"`
	Phone   *string `json:"phone"`
	Avatar  *string `json:"avatar"`
}

type PasswordInput struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func checkPassword(password string) error {
	if !security.IsPasswordValid(password) {
		return invalid("password", "must be at least 8 characters with upper and lower case letters, a digit and a special character")
	}
	return nil
}

// newAccount validates and stores a fresh active user.
func (s *Service) newAccount(ctx context.Context, name, email, password string, role models.Role, company, phone string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	if !security.IsValidEmail(email) {
		return nil, invalid("email", "is not a valid address")
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := models.NewUser(name, email, hash, role, strings.TrimSpace(company))
	user.Phone = strings.TrimSpace(phone)
	if err := s.store.Users.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

func (s *Service) Register(ctx context.Context, rc *activity.RequestContext, in RegisterInput) (*models.User, error) {
	if _, err := s.store.Users.GetUserByEmail(ctx, normalizeEmail(in.Email)); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	user, err := s.newAccount(ctx, in.Name, in.Email, in.Password, models.RoleMember, in.Company, in.Phone)
	if err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, user.ID, models.ActionUserRegistered, activity.UserTarget(user), rc, nil)
	return user, nil
}

// Login verifies credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, rc *activity.RequestContext, email, password string) (string, *models.User, error) {
	user, err := s.store.Users.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("lookup user: %w", err)
	}
	if !security.CheckPassword(user.Password, password) {
		return "", nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, ErrInactiveUser
	}

	token, err := s.tokens.NewAccessToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	s.recorder.Record(ctx, user.ID, models.ActionUserLogin, activity.UserTarget(user), rc, nil)
	return token, user, nil
}

// Logout only audits; access tokens are stateless and expire on their own.
func (s *Service) Logout(ctx context.Context, c Caller) {
	target := activity.Target{Type: models.EntityUser, ID: c.ID, Name: s.userName(ctx, c.ID)}
	s.record(ctx, c, models.ActionUserLogout, target, nil)
}

func (s *Service) Profile(ctx context.Context, c Caller) (*models.User, error) {
	return s.store.Users.GetUser(ctx, c.ID)
}

func (s *Service) UpdateProfile(ctx context.Context, c Caller, in ProfileInput) (*models.User, error) {
	user, err := s.store.Users.GetUser(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	var changes []string
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, invalid("name", "must not be empty")
		}
		if name != user.Name {
			user.Name = name
			changes = append(changes, "name")
		}
	}
	if in.Company != nil && strings.TrimSpace(*in.Company) != user.Company {
		user.Company = strings.TrimSpace(*in.Company)
		changes = append(changes, "company")
	}
	if in.Phone != nil && strings.TrimSpace(*in.Phone) != user.Phone {
		user.Phone = strings.TrimSpace(*in.Phone)
		changes = append(changes, "phone")
	}
	if in.Avatar != nil && *in.Avatar != user.Avatar {
		user.Avatar = *in.Avatar
		changes = append(changes, "avatar")
	}
	if len(changes) == 0 {
		return user, nil
	}

	user.UpdatedAt = s.now()
	if err := s.store.Users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	s.record(ctx, c, models.ActionProfileUpdated, activity.UserTarget(user), activity.Metadata{activity.MetaChanges: changes})
	return user, nil
}

func (s *Service) ChangePassword(ctx context.Context, c Caller, in PasswordInput) error {
	user, err := s.store.Users.GetUser(ctx, c.ID)
	if err != nil {
		return err
	}
	if !security.CheckPassword(user.Password, in.OldPassword) {
		return ErrInvalidCredentials
	}
	if err := checkPassword(in.NewPassword); err != nil {
		return err
	}
	hash, err := security.HashPassword(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Password = hash
	user.UpdatedAt = s.now()
	if err := s.store.Users.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	s.record(ctx, c, models.ActionPasswordChanged, activity.UserTarget(user), nil)
	return nil
}
