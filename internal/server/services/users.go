package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/lifestyle/internal/common"
	"github.com/dmitrijs2005/lifestyle/internal/cryptox"
	"github.com/dmitrijs2005/lifestyle/internal/dbx"
	"github.com/dmitrijs2005/lifestyle/internal/server/models"
	"github.com/dmitrijs2005/lifestyle/internal/server/repositories/repomanager"
)

// Client-facing messages.
const (
	MsgInvalidCredentials = "Invalid username or password"
	MsgUsernameTaken      = "A user with that username already exists."
	MsgEmailTaken         = "user with this email address already exists."
	MsgSamePassword       = "New password can't be the same as old password."
	MsgOldPasswordWrong   = "old password incorrect"
)

var (
	hashPassword   = cryptox.HashPassword
	verifyPassword = cryptox.VerifyPassword
)

// RegisterInput is a sign-up request.
type RegisterInput struct {
	Username string `json:"username" validate:"required,max=150,username"`
	Email    string `json:"email" validate:"required,max=254,email"`
	Password string `json:"password" validate:"required"`
}

// PatchInput is a partial user update. Nil fields stay unchanged.
type PatchInput struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// ChangePasswordInput is a password change by the account owner.
type ChangePasswordInput struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager

	// strictPasswords enables the password strength rules.
	strictPasswords bool

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
	}
}

// WithPasswordValidation turns the password strength rules on or off. They
// are off by default: the API accepts any non-empty password.
func (s *UserService) WithPasswordValidation(on bool) *UserService {
	s.strictPasswords = on
	return s
}

// checkPassword adds the strength problems of password to verr under field
// when strict passwords are on.
func (s *UserService) checkPassword(verr *common.ValidationError, field, password, username string) {
	if !s.strictPasswords {
		return
	}
	for _, p := range passwordProblems(password, username) {
		verr.Add(field, p)
	}
}

// Authenticate returns the user when username and password match. Unknown
// users and wrong passwords fail with the same AuthenticationFailedError, and
// both paths run one password verification.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			verifyPassword(s.dummy(), password)
			return nil, common.NewAuthenticationFailed(MsgInvalidCredentials)
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	if !verifyPassword(user.PasswordHash, password) {
		return nil, common.NewAuthenticationFailed(MsgInvalidCredentials)
	}

	return user, nil
}

// dummy returns a hash used to equalize timing for unknown usernames.
func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := hashPassword("lifestyle-dummy-password")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	verr := &common.ValidationError{}
	s.checkPassword(verr, "password", in.Password, in.Username)
	if !verr.Empty() {
		return nil, verr
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		UserName:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
	}

	repo := s.repomanager.Users(s.db)

	user, err = repo.Create(ctx, user)
	if err != nil {
		return nil, conflictToValidation(err, "error creating user")
	}

	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.repomanager.Users(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error loading user %d: %w", id, err)
	}
	return user, nil
}

// Patch validates the present fields, re-hashes a new password and writes
// the changes in one transaction.
func (s *UserService) Patch(ctx context.Context, id int64, in PatchInput) (*models.User, error) {
	var updated *models.User

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		current, err := repo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("error loading user %d: %w", id, err)
		}

		patch, err := s.buildPatch(current, in)
		if err != nil {
			return err
		}

		updated, err = repo.Update(ctx, id, patch)
		if err != nil {
			return conflictToValidation(err, "error updating user")
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *UserService) buildPatch(current *models.User, in PatchInput) (models.UserPatch, error) {
	verr := &common.ValidationError{}
	var patch models.UserPatch

	username := current.UserName
	if in.Username != nil {
		if err := checkVar(verr, "username", *in.Username, "required,max=150,username"); err != nil {
			return patch, err
		}
		patch.UserName = in.Username
		username = *in.Username
	}
	if in.Email != nil {
		if err := checkVar(verr, "email", *in.Email, "required,max=254,email"); err != nil {
			return patch, err
		}
		patch.Email = in.Email
	}
	if in.Password != nil {
		if err := checkVar(verr, "password", *in.Password, "required"); err != nil {
			return patch, err
		}
		s.checkPassword(verr, "password", *in.Password, username)
	}

	if !verr.Empty() {
		return patch, verr
	}

	if in.Password != nil {
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return patch, fmt.Errorf("error hashing password: %w", err)
		}
		patch.PasswordHash = &hash
	}

	return patch, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.repomanager.Users(s.db).Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting user %d: %w", id, err)
	}
	return nil
}

// ChangePassword replaces the password of userID after checking the old one.
// Tokens issued before the change stay valid until they expire.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, in ChangePasswordInput) error {
	if err := validateStruct(in); err != nil {
		return err
	}
	if in.OldPassword == in.NewPassword {
		return common.NewValidationError(common.NonFieldErrorsKey, MsgSamePassword)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("error loading user %d: %w", userID, err)
		}

		if !verifyPassword(user.PasswordHash, in.OldPassword) {
			return common.NewValidationError("old_password", MsgOldPasswordWrong)
		}

		verr := &common.ValidationError{}
		s.checkPassword(verr, "new_password", in.NewPassword, user.UserName)
		if !verr.Empty() {
			return verr
		}

		hash, err := hashPassword(in.NewPassword)
		if err != nil {
			return fmt.Errorf("error hashing password: %w", err)
		}

		if _, err := repo.Update(ctx, userID, models.UserPatch{PasswordHash: &hash}); err != nil {
			return fmt.Errorf("error updating password: %w", err)
		}
		return nil
	})
}

// SetPassword replaces the password of username without checking the old
// one. Used by operator tooling.
func (s *UserService) SetPassword(ctx context.Context, username, password string) error {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("error loading user %q: %w", username, err)
	}

	verr := &common.ValidationError{}
	if err := checkVar(verr, "password", password, "required"); err != nil {
		return err
	}
	s.checkPassword(verr, "password", password, user.UserName)
	if !verr.Empty() {
		return verr
	}

	hash, err := hashPassword(password)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	if _, err := repo.Update(ctx, user.ID, models.UserPatch{PasswordHash: &hash}); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	return nil
}

func conflictToValidation(err error, op string) error {
	var conflict *common.ConflictError
	if errors.As(err, &conflict) {
		switch conflict.Field {
		case "username":
			return common.NewValidationError("username", MsgUsernameTaken)
		case "email":
			return common.NewValidationError("email", MsgEmailTaken)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
