package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/yaddak/yaddak/internal/common/crypto"
	commonerrors "github.com/yaddak/yaddak/internal/common/errors"
	"github.com/yaddak/yaddak/internal/common/logger"
	userdomain "github.com/yaddak/yaddak/internal/user/domain"
	userrepo "github.com/yaddak/yaddak/internal/user/repository"
)

type AuthService struct {
	repo        userrepo.Repository
	guard       *UniquenessGuard
	hasher      crypto.CredentialHasher
	idGenerator crypto.IDGenerator
	tokens      TokenIssuer
	log         *logger.Logger
}

type AuthServiceDeps struct {
	Repo        userrepo.Repository
	Hasher      crypto.CredentialHasher
	IDGenerator crypto.IDGenerator
	Tokens      TokenIssuer
	Log         *logger.Logger
}

func NewAuthService(deps AuthServiceDeps) *AuthService {
	return &AuthService{
		repo:        deps.Repo,
		guard:       NewUniquenessGuard(deps.Repo),
		hasher:      deps.Hasher,
		idGenerator: deps.IDGenerator,
		tokens:      deps.Tokens,
		log:         deps.Log,
	}
}

type LoginResult struct {
	User  userdomain.User `json:"user"`
	Token string          `json:"token"`
}

// Register admits a new identity: validation, uniqueness guard, digest
// derivation, insert.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (userdomain.User, error) {
	s.log.WithFields(ctx, logger.Fields{
		"user_name": input.UserName,
		"action":    "register_attempt",
	}).Info("register attempt")

	if err := input.Validate(); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_name": input.UserName,
			"action":    "register_validation_failed",
		}).Warnf("register validation failed: %v", err)
		observeRegistration("invalid")
		return userdomain.User{}, err
	}

	if err := s.guard.Check(ctx, input.UserName, input.UserEmail, uuid.Nil); err != nil {
		if errors.Is(err, commonerrors.ErrAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"user_name": input.UserName,
				"action":    "register_identity_exists",
			}).Warnf("register failed: %v", err)
			observeRegistration("exists")
			return userdomain.User{}, err
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_name": input.UserName,
			"action":    "register_lookup_failed",
		}).Errorf("register failed: uniqueness lookup error: %v", err)
		observeRegistration("error")
		return userdomain.User{}, err
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_name": input.UserName,
			"action":    "register_id_generation_failed",
		}).Errorf("register failed: id generation error: %v", err)
		observeRegistration("error")
		return userdomain.User{}, commonerrors.ErrInternalError.WithCause(err)
	}

	digest, err := s.hash(id, input.UserName, input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_name": input.UserName,
			"action":    "register_hash_failed",
		}).Errorf("register failed: credential hash error: %v", err)
		observeRegistration("error")
		return userdomain.User{}, err
	}

	user := userdomain.User{
		ID:        id,
		UserName:  input.UserName,
		UserEmail: input.UserEmail,
		UserAuth:  digest,
	}

	if err := s.repo.Insert(ctx, user); err != nil {
		if errors.Is(err, commonerrors.ErrAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"user_name": input.UserName,
				"action":    "register_identity_exists_race",
			}).Warnf("register failed: unique index rejected insert: %v", err)
			observeRegistration("exists")
			return userdomain.User{}, err
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_name": input.UserName,
			"action":    "register_create_failed",
		}).Errorf("register failed: %v", err)
		observeRegistration("error")
		return userdomain.User{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_name": user.UserName,
		"user_id":   user.ID.String(),
		"action":    "register_success",
	}).Info("register success")
	observeRegistration("success")

	return user, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	s.log.WithFields(ctx, logger.Fields{
		"user_name": input.UserName,
		"action":    "login_attempt",
	}).Info("login attempt")

	if err := input.Validate(); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_name": input.UserName,
			"action":    "login_validation_failed",
		}).Warnf("login validation failed: %v", err)
		observeLogin("invalid")
		return LoginResult{}, err
	}

	user, err := s.repo.FindByName(ctx, input.UserName)
	if err != nil {
		if errors.Is(err, commonerrors.ErrNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"user_name": input.UserName,
				"action":    "login_user_not_found",
			}).Warn("login failed: not found")
			observeLogin("invalid_credentials")
			return LoginResult{}, ErrInvalidCredentials
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_name": input.UserName,
			"action":    "login_fetch_failed",
		}).Errorf("login failed: %v", err)
		observeLogin("error")
		return LoginResult{}, err
	}

	if err := s.hasher.Verify(user.UserAuth, user.ID, input.UserName, input.Password); err != nil {
		if errors.Is(err, commonerrors.ErrInvalidCredential) {
			s.log.WithFields(ctx, logger.Fields{
				"user_name": input.UserName,
				"action":    "login_invalid_password",
			}).Warn("login failed: invalid password")
			observeLogin("invalid_credentials")
			return LoginResult{}, ErrInvalidCredentials
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_name": input.UserName,
			"action":    "login_verify_failed",
		}).Errorf("login failed: credential verify error: %v", err)
		observeLogin("error")
		return LoginResult{}, err
	}

	token, err := s.tokens.IssueToken(user)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_name": input.UserName,
			"user_id":   user.ID.String(),
			"action":    "login_token_issue_failed",
		}).Errorf("login failed: token issue error: %v", err)
		observeLogin("error")
		return LoginResult{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_name": user.UserName,
		"user_id":   user.ID.String(),
		"action":    "login_success",
	}).Info("login success")
	observeLogin("success")

	return LoginResult{User: user, Token: token}, nil
}

func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (userdomain.User, error) {
	return s.repo.Get(ctx, id)
}

func (s *AuthService) ListUsers(ctx context.Context) ([]userdomain.User, error) {
	return s.repo.GetAll(ctx)
}

// UpdateUser changes name and email of an existing user. The password must
// verify against the current digest; the digest is then re-derived under the
// new name, which invalidates outstanding session tokens.
func (s *AuthService) UpdateUser(ctx context.Context, id uuid.UUID, input UpdateInput) (userdomain.User, error) {
	if err := input.Validate(); err != nil {
		return userdomain.User{}, err
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return userdomain.User{}, err
	}

	if err := s.hasher.Verify(current.UserAuth, current.ID, current.UserName, input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": id.String(),
			"action":  "update_invalid_password",
		}).Warn("update failed: invalid password")
		if errors.Is(err, commonerrors.ErrInvalidCredential) {
			return userdomain.User{}, ErrInvalidCredentials
		}
		return userdomain.User{}, err
	}

	if err := s.guard.Check(ctx, input.UserName, input.UserEmail, id); err != nil {
		return userdomain.User{}, err
	}

	digest, err := s.hash(id, input.UserName, input.Password)
	if err != nil {
		return userdomain.User{}, err
	}

	updated := userdomain.User{
		ID:        id,
		UserName:  input.UserName,
		UserEmail: input.UserEmail,
		UserAuth:  digest,
	}
	if err := s.repo.Update(ctx, id, updated); err != nil {
		return userdomain.User{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": id.String(),
		"action":  "update_success",
	}).Info("user updated")
	return updated, nil
}

func (s *AuthService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithFields(ctx, logger.Fields{
		"user_id": id.String(),
		"action":  "delete_success",
	}).Info("user deleted")
	return nil
}

func (s *AuthService) hash(id uuid.UUID, name, password string) (string, error) {
	start := time.Now()
	defer observeHash(start)
	return s.hasher.Hash(id, name, password)
}
