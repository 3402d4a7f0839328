package usecase

import (
	"context"
	"fmt"
	"time"

	"notevault/model"
	"notevault/services"
	"notevault/utils"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
)

// UserStore is the persistence contract the user service needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	FindUserByEmail(ctx context.Context, email string) (*model.User, error)
	FindUserByID(ctx context.Context, userID string) (*model.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	SetTwoFactor(ctx context.Context, userID, secret string, enabled bool) error
	AddNoteRef(ctx context.Context, userID, noteID string) error
	RemoveNoteRefs(ctx context.Context, userID string, noteIDs []string) error
}

type UserService struct {
	Users UserStore
}

// SignupProfile is the input to Register.
type SignupProfile struct {
	FirstName     string
	LastName      string
	Email         string
	Password      string
	ContactNumber string
}

// Register creates a new account with a hashed credential. The returned
// user carries no password material (the model strips it from JSON).
func (svc *UserService) Register(ctx context.Context, profile SignupProfile) (*model.User, error) {
	if profile.FirstName == "" || profile.LastName == "" || profile.Email == "" ||
		profile.Password == "" || profile.ContactNumber == "" {
		return nil, invalid("Please provide all required fields")
	}

	if !utils.ValidateEmail(profile.Email) {
		return nil, invalid("Please provide a valid email address")
	}

	if !utils.ValidatePassword(profile.Password) {
		return nil, invalid("Password must be at least 6 characters long")
	}

	email := utils.NormalizeEmail(profile.Email)

	existing, err := svc.Users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := services.HashPassword(profile.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		UserID:        uuid.New().String(),
		FirstName:     profile.FirstName,
		LastName:      profile.LastName,
		Email:         email,
		Password:      hash,
		ContactNumber: profile.ContactNumber,
		CreatedAt:     time.Now(),
		Notes:         []string{},
	}

	if err := svc.Users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies credentials and issues a session token. Unknown
// email and wrong password fail identically so neither is revealed.
func (svc *UserService) Authenticate(ctx context.Context, email, password, totpCode string) (*model.User, string, error) {
	user, err := svc.Users.FindUserByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}

	match, err := services.VerifyPassword(user.Password, password)
	if err != nil || !match {
		return nil, "", ErrInvalidCredentials
	}

	if user.TwoFactorEnabled {
		if totpCode == "" {
			return nil, "", ErrTwoFactorRequired
		}
		if !totp.Validate(totpCode, user.TwoFactorSecret) {
			return nil, "", ErrInvalidCredentials
		}
	}

	token, err := services.GenerateToken(user.UserID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// ChangePassword replaces the stored hash after verifying the current
// password.
func (svc *UserService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := svc.Users.FindUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	match, err := services.VerifyPassword(user.Password, currentPassword)
	if err != nil || !match {
		return ErrInvalidCredentials
	}

	if !utils.ValidatePassword(newPassword) {
		return invalid("Password must be at least 6 characters long")
	}

	hash, err := services.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return svc.Users.UpdatePassword(ctx, userID, hash)
}

// EnableTwoFactor generates a TOTP secret for the account. The second
// factor stays inactive until VerifyTwoFactor confirms a valid code.
func (svc *UserService) EnableTwoFactor(ctx context.Context, userID string) (string, error) {
	user, err := svc.Users.FindUserByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return "", ErrUserNotFound
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      services.TokenIssuer,
		AccountName: user.Email,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate TOTP secret: %w", err)
	}

	if err := svc.Users.SetTwoFactor(ctx, userID, key.Secret(), false); err != nil {
		return "", err
	}

	return key.URL(), nil
}

// VerifyTwoFactor activates the pending second factor once the caller
// proves possession of the secret.
func (svc *UserService) VerifyTwoFactor(ctx context.Context, userID, code string) error {
	user, err := svc.Users.FindUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.TwoFactorSecret == "" {
		return invalid("Two-factor setup has not been started")
	}

	if !totp.Validate(code, user.TwoFactorSecret) {
		return ErrInvalidCredentials
	}

	return svc.Users.SetTwoFactor(ctx, userID, user.TwoFactorSecret, true)
}
