package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/brightdesk/support-service/internal/auth"
	"github.com/brightdesk/support-service/internal/errs"
	"github.com/brightdesk/support-service/internal/model"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

type RegisterInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
	Password2 string
}

type ProfileChanges struct {
	Email     *string
	FirstName *string
	LastName  *string
}

// Register creates a new account. New registrations are staff accounts:
// the public sign-up is the dashboard for agent operators, customers are
// provisioned through ticket intake.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if in.Email == "" {
		return nil, errs.Validation("email", "email is required")
	}
	if in.FirstName == "" {
		return nil, errs.Validation("first_name", "first name is required")
	}
	if in.LastName == "" {
		return nil, errs.Validation("last_name", "last name is required")
	}
	if in.Password == "" {
		return nil, errs.Validation("password", "password is required")
	}
	if in.Password != in.Password2 {
		return nil, errs.Validation("password", "password fields didn't match")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errs.Validation("email", "a user with this email already exists")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         model.UserRoleAdmin,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks credentials for the token endpoint.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("email = ? AND is_active = ?", email, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, errs.ErrInvalidCredentials
	}
	return &user, nil
}

// GetActive loads an active user by id, for the auth middleware and token
// refresh.
func (s *UserService) GetActive(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ChangePassword verifies the old password and stores the new one.
func (s *UserService) ChangePassword(ctx context.Context, user *model.User, oldPassword, newPassword, newPassword2 string) error {
	if !auth.CheckPassword(user.PasswordHash, oldPassword) {
		return errs.Validation("old_password", "wrong password")
	}
	if newPassword == "" {
		return errs.Validation("new_password", "new password is required")
	}
	if newPassword != newPassword2 {
		return errs.Validation("new_password", "password fields didn't match")
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(user).Update("password_hash", hash).Error
}

// UpdateProfile applies profile changes. Password changes go through
// ChangePassword only.
func (s *UserService) UpdateProfile(ctx context.Context, user *model.User, changes ProfileChanges) (*model.User, error) {
	updates := make(map[string]interface{})
	if changes.Email != nil && *changes.Email != user.Email {
		var count int64
		if err := s.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", *changes.Email).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, errs.Validation("email", "a user with this email already exists")
		}
		updates["email"] = *changes.Email
	}
	if changes.FirstName != nil {
		updates["first_name"] = *changes.FirstName
	}
	if changes.LastName != nil {
		updates["last_name"] = *changes.LastName
	}
	if len(updates) == 0 {
		return user, nil
	}
	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetActive(ctx, user.ID)
}

// CreateAdmin provisions an admin account directly, for the create-admin
// CLI command.
func (s *UserService) CreateAdmin(ctx context.Context, email, firstName, lastName, password string) (*model.User, error) {
	return s.Register(ctx, RegisterInput{
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Password:  password,
		Password2: password,
	})
}
