package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/yaddak/yaddak/internal/auth/service"
	"github.com/yaddak/yaddak/internal/common/crypto"
	commonerrors "github.com/yaddak/yaddak/internal/common/errors"
	"github.com/yaddak/yaddak/internal/common/logger"
	userdomain "github.com/yaddak/yaddak/internal/user/domain"
)

func setupAuthService(t *testing.T) (*service.AuthService, *mockUserRepo, *mockHasher, *mockIDGenerator) {
	t.Helper()
	repo := &mockUserRepo{}
	hasher := &mockHasher{}
	ids := &mockIDGenerator{}
	log, _ := logger.New("", "test", "error")

	svc := service.NewAuthService(service.AuthServiceDeps{
		Repo:        repo,
		Hasher:      hasher,
		IDGenerator: ids,
		Tokens:      service.DigestTokenIssuer{},
		Log:         log,
	})
	return svc, repo, hasher, ids
}

func validRegister() service.RegisterInput {
	return service.RegisterInput{
		UserName:  "testuser",
		UserEmail: "test@example.com",
		Password:  "password123",
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, repo, _, ids := setupAuthService(t)

	id := uuid.MustParse("2b1c4f0e-8d6a-4b52-9a1e-3f7c2d5e6a10")
	ids.newIDFunc = func() (uuid.UUID, error) { return id, nil }

	var inserted userdomain.User
	repo.insertFunc = func(ctx context.Context, user userdomain.User) error {
		inserted = user
		return nil
	}

	user, err := svc.Register(context.Background(), validRegister())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if user.ID != id {
		t.Errorf("expected id %s, got %s", id, user.ID)
	}
	if inserted.UserName != "testuser" || inserted.UserEmail != "test@example.com" {
		t.Errorf("unexpected inserted user %+v", inserted)
	}
	expectedDigest := "h:" + id.String() + ":testuser:password123"
	if inserted.UserAuth != expectedDigest {
		t.Errorf("expected digest %q, got %q", expectedDigest, inserted.UserAuth)
	}
}

func TestAuthService_Register_IdentityTaken(t *testing.T) {
	testCases := []struct {
		name        string
		nameTaken   bool
		emailTaken  bool
		wantMessage string
	}{
		{"name taken", true, false, "user name is already used"},
		{"email taken", false, true, "user email is already used"},
		{"both taken reports name", true, true, "user name is already used"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, repo, hasher, _ := setupAuthService(t)

			repo.nameTakenFunc = func(ctx context.Context, name string, exclude uuid.UUID) (bool, error) {
				if exclude != uuid.Nil {
					t.Errorf("expected nil exclude on register, got %s", exclude)
				}
				return tc.nameTaken, nil
			}
			repo.emailTakenFunc = func(ctx context.Context, email string, exclude uuid.UUID) (bool, error) {
				return tc.emailTaken, nil
			}
			repo.insertFunc = func(ctx context.Context, user userdomain.User) error {
				t.Error("insert must not be called when identity is taken")
				return nil
			}
			hasher.hashFunc = func(id uuid.UUID, name, secret string) (string, error) {
				t.Error("hash must not be called when identity is taken")
				return "", nil
			}

			_, err := svc.Register(context.Background(), validRegister())
			if !errors.Is(err, commonerrors.ErrAlreadyExists) {
				t.Fatalf("expected ErrAlreadyExists, got %v", err)
			}

			de, _ := commonerrors.AsDomainError(err)
			if de.Message() != tc.wantMessage {
				t.Errorf("expected message %q, got %q", tc.wantMessage, de.Message())
			}
			if de.HTTPStatus() != 400 {
				t.Errorf("expected status 400, got %d", de.HTTPStatus())
			}
		})
	}
}

func TestAuthService_Register_CatalogOwnerIdentityReserved(t *testing.T) {
	testCases := []struct {
		name        string
		input       service.RegisterInput
		wantMessage string
	}{
		{"name", service.RegisterInput{UserName: userdomain.CatalogOwnerName, UserEmail: "w@x.io", Password: "password123"}, "user name is already used"},
		{"email", service.RegisterInput{UserName: "testuser", UserEmail: userdomain.CatalogOwnerEmail, Password: "password123"}, "user email is already used"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, repo, _, _ := setupAuthService(t)
			repo.insertFunc = func(ctx context.Context, user userdomain.User) error {
				t.Error("insert must not be called for a reserved identity")
				return nil
			}

			_, err := svc.Register(context.Background(), tc.input)
			if !errors.Is(err, commonerrors.ErrAlreadyExists) {
				t.Fatalf("expected ErrAlreadyExists, got %v", err)
			}
			de, _ := commonerrors.AsDomainError(err)
			if de.Message() != tc.wantMessage {
				t.Errorf("expected message %q, got %q", tc.wantMessage, de.Message())
			}
		})
	}
}

func TestAuthService_Register_ValidationError(t *testing.T) {
	svc, repo, _, _ := setupAuthService(t)
	repo.nameTakenFunc = func(ctx context.Context, name string, exclude uuid.UUID) (bool, error) {
		t.Error("uniqueness must not be checked for invalid input")
		return false, nil
	}

	testCases := []struct {
		name  string
		input service.RegisterInput
	}{
		{"short username", service.RegisterInput{UserName: "ab", UserEmail: "a@b.co", Password: "password123"}},
		{"long username", service.RegisterInput{UserName: strings.Repeat("a", 33), UserEmail: "a@b.co", Password: "password123"}},
		{"invalid username chars", service.RegisterInput{UserName: "test@user", UserEmail: "a@b.co", Password: "password123"}},
		{"username ends with underscore", service.RegisterInput{UserName: "testuser_", UserEmail: "a@b.co", Password: "password123"}},
		{"bad email", service.RegisterInput{UserName: "testuser", UserEmail: "not-an-email", Password: "password123"}},
		{"short password", service.RegisterInput{UserName: "testuser", UserEmail: "a@b.co", Password: "12345"}},
		{"empty password", service.RegisterInput{UserName: "testuser", UserEmail: "a@b.co"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.input)
			if !errors.Is(err, commonerrors.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestAuthService_Register_InsertRace(t *testing.T) {
	svc, repo, _, _ := setupAuthService(t)

	repo.insertFunc = func(ctx context.Context, user userdomain.User) error {
		return service.ErrUserNameTaken
	}

	_, err := svc.Register(context.Background(), validRegister())
	if !errors.Is(err, commonerrors.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestAuthService_Register_LookupFailure(t *testing.T) {
	svc, repo, _, _ := setupAuthService(t)

	repo.nameTakenFunc = func(ctx context.Context, name string, exclude uuid.UUID) (bool, error) {
		return false, commonerrors.ErrUnavailable
	}

	_, err := svc.Register(context.Background(), validRegister())
	if !errors.Is(err, commonerrors.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, repo, hasher, _ := setupAuthService(t)

	id := uuid.New()
	digest, _ := hasher.Hash(id, "testuser", "password123")
	repo.findByNameFunc = func(ctx context.Context, name string) (userdomain.User, error) {
		return userdomain.User{ID: id, UserName: name, UserEmail: "test@example.com", UserAuth: digest}, nil
	}

	result, err := svc.Login(context.Background(), service.LoginInput{UserName: "testuser", Password: "password123"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if result.Token != digest {
		t.Errorf("expected digest token %q, got %q", digest, result.Token)
	}
	if result.User.ID != id {
		t.Errorf("expected user %s, got %s", id, result.User.ID)
	}
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	svc, repo, hasher, _ := setupAuthService(t)

	id := uuid.New()
	digest, _ := hasher.Hash(id, "testuser", "password123")
	repo.findByNameFunc = func(ctx context.Context, name string) (userdomain.User, error) {
		if name != "testuser" {
			return userdomain.User{}, commonerrors.ErrNotFound
		}
		return userdomain.User{ID: id, UserName: name, UserAuth: digest}, nil
	}

	testCases := []struct {
		name  string
		input service.LoginInput
	}{
		{"wrong password", service.LoginInput{UserName: "testuser", Password: "wrongpass"}},
		{"unknown user", service.LoginInput{UserName: "nobody", Password: "password123"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tc.input)
			if !errors.Is(err, commonerrors.ErrInvalidCredential) {
				t.Fatalf("expected ErrInvalidCredential, got %v", err)
			}
			de, _ := commonerrors.AsDomainError(err)
			if de.HTTPStatus() != 401 {
				t.Errorf("expected status 401, got %d", de.HTTPStatus())
			}
		})
	}
}

func TestAuthService_Login_StorageError(t *testing.T) {
	svc, repo, _, _ := setupAuthService(t)

	repo.findByNameFunc = func(ctx context.Context, name string) (userdomain.User, error) {
		return userdomain.User{}, commonerrors.ErrBackend
	}

	_, err := svc.Login(context.Background(), service.LoginInput{UserName: "testuser", Password: "password123"})
	if !errors.Is(err, commonerrors.ErrBackend) {
		t.Errorf("expected ErrBackend, got %v", err)
	}
}

func TestAuthService_UpdateUser(t *testing.T) {
	id := uuid.New()
	other := service.UpdateInput{UserName: "renamed", UserEmail: "new@example.com", Password: "password123"}

	stored := func(h *mockHasher) userdomain.User {
		digest, _ := h.Hash(id, "testuser", "password123")
		return userdomain.User{ID: id, UserName: "testuser", UserEmail: "test@example.com", UserAuth: digest}
	}

	t.Run("success rehashes under new name", func(t *testing.T) {
		svc, repo, hasher, _ := setupAuthService(t)
		repo.getFunc = func(ctx context.Context, got uuid.UUID) (userdomain.User, error) {
			return stored(hasher), nil
		}
		repo.nameTakenFunc = func(ctx context.Context, name string, exclude uuid.UUID) (bool, error) {
			if exclude != id {
				t.Errorf("expected exclude %s, got %s", id, exclude)
			}
			return false, nil
		}

		var written userdomain.User
		repo.updateFunc = func(ctx context.Context, got uuid.UUID, user userdomain.User) error {
			written = user
			return nil
		}

		updated, err := svc.UpdateUser(context.Background(), id, other)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		want := "h:" + id.String() + ":renamed:password123"
		if written.UserAuth != want || updated.UserAuth != want {
			t.Errorf("expected digest %q, got %q", want, written.UserAuth)
		}
		if written.UserName != "renamed" || written.UserEmail != "new@example.com" {
			t.Errorf("unexpected written user %+v", written)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, repo, hasher, _ := setupAuthService(t)
		repo.getFunc = func(ctx context.Context, got uuid.UUID) (userdomain.User, error) {
			return stored(hasher), nil
		}
		repo.updateFunc = func(ctx context.Context, got uuid.UUID, user userdomain.User) error {
			t.Error("update must not be called")
			return nil
		}

		input := other
		input.Password = "wrongpass"
		_, err := svc.UpdateUser(context.Background(), id, input)
		if !errors.Is(err, commonerrors.ErrInvalidCredential) {
			t.Errorf("expected ErrInvalidCredential, got %v", err)
		}
	})

	t.Run("name held by another user", func(t *testing.T) {
		svc, repo, hasher, _ := setupAuthService(t)
		repo.getFunc = func(ctx context.Context, got uuid.UUID) (userdomain.User, error) {
			return stored(hasher), nil
		}
		repo.nameTakenFunc = func(ctx context.Context, name string, exclude uuid.UUID) (bool, error) {
			return true, nil
		}

		_, err := svc.UpdateUser(context.Background(), id, other)
		if !errors.Is(err, commonerrors.ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("missing user", func(t *testing.T) {
		svc, _, _, _ := setupAuthService(t)

		_, err := svc.UpdateUser(context.Background(), id, other)
		if !errors.Is(err, commonerrors.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestAuthService_DeleteUser_NotFound(t *testing.T) {
	svc, repo, _, _ := setupAuthService(t)
	repo.deleteFunc = func(ctx context.Context, id uuid.UUID) error {
		return commonerrors.ErrNotFound
	}

	if err := svc.DeleteUser(context.Background(), uuid.New()); !errors.Is(err, commonerrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// Register alice, reject a second alice, then log in with the right and
// wrong password against a real argon2 hasher.
func TestAuthService_AliceScenario(t *testing.T) {
	hasher, err := crypto.NewArgon2Hasher(testSecret, crypto.DefaultArgon2Params)
	if err != nil {
		t.Fatalf("failed to create hasher: %v", err)
	}
	log, _ := logger.New("", "test", "error")
	repo := newMemoryUserRepo()

	svc := service.NewAuthService(service.AuthServiceDeps{
		Repo:        repo,
		Hasher:      hasher,
		IDGenerator: crypto.NewUUIDGenerator(),
		Tokens:      service.DigestTokenIssuer{},
		Log:         log,
	})
	ctx := context.Background()

	alice, err := svc.Register(ctx, service.RegisterInput{UserName: "alice", UserEmail: "a@x.io", Password: "secret1"})
	if err != nil {
		t.Fatalf("register alice: %v", err)
	}
	if !strings.HasPrefix(alice.UserAuth, "$argon2id$") {
		t.Errorf("expected argon2id digest, got %q", alice.UserAuth)
	}

	_, err = svc.Register(ctx, service.RegisterInput{UserName: "alice", UserEmail: "b@x.io", Password: "secret2"})
	if !errors.Is(err, commonerrors.ErrAlreadyExists) {
		t.Fatalf("expected duplicate alice to fail with ErrAlreadyExists, got %v", err)
	}

	all, _ := repo.GetAll(ctx)
	if len(all) != 1 {
		t.Errorf("expected one stored user, got %d", len(all))
	}

	result, err := svc.Login(ctx, service.LoginInput{UserName: "alice", Password: "secret1"})
	if err != nil {
		t.Fatalf("login alice: %v", err)
	}
	if result.User.ID != alice.ID {
		t.Errorf("expected login to return user %s, got %s", alice.ID, result.User.ID)
	}
	if result.Token != alice.UserAuth {
		t.Errorf("expected token to equal stored digest")
	}

	_, err = svc.Login(ctx, service.LoginInput{UserName: "alice", Password: "wrong"})
	if !errors.Is(err, commonerrors.ErrInvalidCredential) {
		t.Errorf("expected ErrInvalidCredential, got %v", err)
	}
}
