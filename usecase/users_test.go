package usecase

import (
	"context"
	"os"
	"testing"
	"time"

	"notevault/services"
	"notevault/testutil"

	"github.com/pquerna/otp/totp"
)

func TestMain(m *testing.M) {
	services.InitJWT("test-secret", time.Hour)
	os.Exit(m.Run())
}

func newUserService() (*UserService, *testutil.MemStore) {
	store := testutil.NewMemStore()
	return &UserService{Users: store}, store
}

func validProfile() SignupProfile {
	return SignupProfile{
		FirstName:     "Ada",
		LastName:      "Lovelace",
		Email:         "Ada@Example.com",
		Password:      "secret123",
		ContactNumber: "1234567890",
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, _ := newUserService()
		user, err := svc.Register(ctx, validProfile())
		if err != nil {
			t.Fatalf("register failed: %v", err)
		}
		if user.UserID == "" {
			t.Error("expected user id to be assigned")
		}
		if user.Email != "ada@example.com" {
			t.Errorf("email not normalized: %q", user.Email)
		}
		if user.Password == "secret123" {
			t.Error("password stored in plaintext")
		}
		match, err := services.VerifyPassword(user.Password, "secret123")
		if err != nil || !match {
			t.Errorf("stored hash does not verify: match=%v err=%v", match, err)
		}
	})

	t.Run("MissingFields", func(t *testing.T) {
		svc, _ := newUserService()
		fields := []func(*SignupProfile){
			func(p *SignupProfile) { p.FirstName = "" },
			func(p *SignupProfile) { p.LastName = "" },
			func(p *SignupProfile) { p.Email = "" },
			func(p *SignupProfile) { p.Password = "" },
			func(p *SignupProfile) { p.ContactNumber = "" },
		}
		for i, blank := range fields {
			profile := validProfile()
			blank(&profile)
			if _, err := svc.Register(ctx, profile); !IsValidation(err) {
				t.Errorf("case %d: expected validation error, got %v", i, err)
			}
		}
	})

	t.Run("MalformedEmail", func(t *testing.T) {
		svc, _ := newUserService()
		profile := validProfile()
		profile.Email = "not-an-email"
		if _, err := svc.Register(ctx, profile); !IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("ShortPassword", func(t *testing.T) {
		svc, _ := newUserService()
		profile := validProfile()
		profile.Password = "abc"
		if _, err := svc.Register(ctx, profile); !IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		svc, _ := newUserService()
		if _, err := svc.Register(ctx, validProfile()); err != nil {
			t.Fatalf("first register failed: %v", err)
		}
		// Same address in different case still collides
		profile := validProfile()
		profile.Email = "ADA@EXAMPLE.COM"
		if _, err := svc.Register(ctx, profile); err != ErrEmailExists {
			t.Errorf("expected ErrEmailExists, got %v", err)
		}
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newUserService()
	if _, err := svc.Register(ctx, validProfile()); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	t.Run("Success", func(t *testing.T) {
		user, token, err := svc.Authenticate(ctx, "ada@example.com", "secret123", "")
		if err != nil {
			t.Fatalf("authenticate failed: %v", err)
		}
		if token == "" {
			t.Error("expected a session token")
		}
		claims, err := services.ParseToken(token)
		if err != nil {
			t.Fatalf("issued token does not parse: %v", err)
		}
		if claims.UserID != user.UserID || claims.Email != user.Email {
			t.Errorf("token claims do not match the user: %+v", claims)
		}
	})

	t.Run("CaseInsensitiveEmail", func(t *testing.T) {
		if _, _, err := svc.Authenticate(ctx, "Ada@Example.com", "secret123", ""); err != nil {
			t.Errorf("mixed-case email rejected: %v", err)
		}
	})

	// Unknown email and wrong password must be indistinguishable
	t.Run("UniformFailure", func(t *testing.T) {
		_, _, errUnknown := svc.Authenticate(ctx, "nobody@example.com", "secret123", "")
		_, _, errWrongPw := svc.Authenticate(ctx, "ada@example.com", "wrong-password", "")
		if errUnknown != ErrInvalidCredentials || errWrongPw != ErrInvalidCredentials {
			t.Errorf("expected uniform ErrInvalidCredentials, got %v and %v", errUnknown, errWrongPw)
		}
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newUserService()
	user, err := svc.Register(ctx, validProfile())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	t.Run("WrongCurrentPassword", func(t *testing.T) {
		if err := svc.ChangePassword(ctx, user.UserID, "wrong", "newsecret"); err != ErrInvalidCredentials {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("ShortNewPassword", func(t *testing.T) {
		if err := svc.ChangePassword(ctx, user.UserID, "secret123", "ab"); !IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("Success", func(t *testing.T) {
		if err := svc.ChangePassword(ctx, user.UserID, "secret123", "newsecret"); err != nil {
			t.Fatalf("change failed: %v", err)
		}
		if _, _, err := svc.Authenticate(ctx, "ada@example.com", "secret123", ""); err != ErrInvalidCredentials {
			t.Error("old password still accepted")
		}
		if _, _, err := svc.Authenticate(ctx, "ada@example.com", "newsecret", ""); err != nil {
			t.Errorf("new password rejected: %v", err)
		}
	})

	t.Run("UnknownUser", func(t *testing.T) {
		if err := svc.ChangePassword(ctx, "no-such-user", "x", "newsecret"); err != ErrUserNotFound {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestTwoFactorFlow(t *testing.T) {
	ctx := context.Background()
	svc, store := newUserService()
	user, err := svc.Register(ctx, validProfile())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	url, err := svc.EnableTwoFactor(ctx, user.UserID)
	if err != nil {
		t.Fatalf("enable failed: %v", err)
	}
	if url == "" {
		t.Fatal("expected an otpauth URL")
	}

	// Still disabled until verified; login works without a code
	if _, _, err := svc.Authenticate(ctx, "ada@example.com", "secret123", ""); err != nil {
		t.Errorf("login blocked before 2FA verification: %v", err)
	}

	stored, _ := store.FindUserByID(ctx, user.UserID)
	code, err := totp.GenerateCode(stored.TwoFactorSecret, time.Now())
	if err != nil {
		t.Fatalf("failed to generate test code: %v", err)
	}

	if err := svc.VerifyTwoFactor(ctx, user.UserID, code); err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	t.Run("CodeRequiredAfterActivation", func(t *testing.T) {
		if _, _, err := svc.Authenticate(ctx, "ada@example.com", "secret123", ""); err != ErrTwoFactorRequired {
			t.Errorf("expected ErrTwoFactorRequired, got %v", err)
		}
	})

	t.Run("WrongCode", func(t *testing.T) {
		if _, _, err := svc.Authenticate(ctx, "ada@example.com", "secret123", "000000"); err != ErrInvalidCredentials {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("ValidCode", func(t *testing.T) {
		code, err := totp.GenerateCode(stored.TwoFactorSecret, time.Now())
		if err != nil {
			t.Fatalf("failed to generate test code: %v", err)
		}
		if _, _, err := svc.Authenticate(ctx, "ada@example.com", "secret123", code); err != nil {
			t.Errorf("valid code rejected: %v", err)
		}
	})

	t.Run("VerifyWithoutSetup", func(t *testing.T) {
		fresh, err := svc.Register(ctx, SignupProfile{
			FirstName: "Bob", LastName: "B", Email: "bob@example.com",
			Password: "secret123", ContactNumber: "555",
		})
		if err != nil {
			t.Fatalf("register failed: %v", err)
		}
		if err := svc.VerifyTwoFactor(ctx, fresh.UserID, "123456"); !IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}
