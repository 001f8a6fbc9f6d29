package users

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/bookbridge/bookbridge/pkg/errcodes"
	"github.com/bookbridge/bookbridge/pkg/models"
	"github.com/bookbridge/bookbridge/pkg/token"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the cost factor for bcrypt hashing.
const BcryptCost = 12

type RetrieveUserOptions struct {
	ID    *int
	Login *string
}

type ListUsersOptions struct {
	Limit  *int
	Offset *int

	includeTotal bool
}

type UpdateUserOptions struct {
	Columns []string
}

type Service struct {
	db     *bun.DB
	signer token.Signer
}

func NewService(db *bun.DB, signer token.Signer) *Service {
	return &Service{db, signer}
}

// CreateUser stores the user with a bcrypt password hash and a fresh token
// salt.
func (svc *Service) CreateUser(ctx context.Context, user *models.User, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = user.CreatedAt
	user.PasswordHash = hash
	user.TokenSalt = token.NewSalt()

	_, err = svc.db.
		NewInsert().
		Model(user).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return errcodes.Conflict("A user with this login already exists.")
		}
		return errors.WithStack(err)
	}
	return nil
}

func (svc *Service) RetrieveUser(ctx context.Context, opts RetrieveUserOptions) (*models.User, error) {
	user := &models.User{}

	q := svc.db.
		NewSelect().
		Model(user)

	if opts.ID != nil {
		q = q.Where("u.id = ?", *opts.ID)
	}
	if opts.Login != nil {
		q = q.Where("u.login = ? COLLATE NOCASE", *opts.Login)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("User")
		}
		return nil, errors.WithStack(err)
	}

	return user, nil
}

func (svc *Service) ListUsers(ctx context.Context, opts ListUsersOptions) ([]*models.User, error) {
	u, _, err := svc.listUsersWithTotal(ctx, opts)
	return u, errors.WithStack(err)
}

func (svc *Service) ListUsersWithTotal(ctx context.Context, opts ListUsersOptions) ([]*models.User, int, error) {
	opts.includeTotal = true
	return svc.listUsersWithTotal(ctx, opts)
}

func (svc *Service) listUsersWithTotal(ctx context.Context, opts ListUsersOptions) ([]*models.User, int, error) {
	var users []*models.User
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&users).
		Order("u.login ASC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return users, total, nil
}

func (svc *Service) UpdateUser(ctx context.Context, user *models.User, opts UpdateUserOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	user.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(user).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return errcodes.Conflict("A user with this login already exists.")
		}
		return errors.WithStack(err)
	}
	return nil
}

// ChangePassword re-hashes the password and rotates the token salt, which
// invalidates every session token issued before the change.
func (svc *Service) ChangePassword(ctx context.Context, user *models.User, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	user.TokenSalt = token.NewSalt()
	return svc.UpdateUser(ctx, user, UpdateUserOptions{Columns: []string{"password_hash", "token_salt"}})
}

// DeleteUser removes a user. Deleting an absent user is a no-op.
func (svc *Service) DeleteUser(ctx context.Context, userID int) error {
	_, err := svc.db.NewDelete().
		Model((*models.User)(nil)).
		Where("id = ?", userID).
		Exec(ctx)
	return errors.WithStack(err)
}

// Login validates credentials and issues a session token. Both an unknown
// login and a wrong password produce the same Unauthorized error.
func (svc *Service) Login(ctx context.Context, login, password string) (string, error) {
	user, err := svc.RetrieveUser(ctx, RetrieveUserOptions{Login: &login})
	if err != nil {
		return "", errcodes.Unauthorized("Invalid login or password")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", errcodes.Unauthorized("Invalid login or password")
	}

	return svc.signer.IssueSessionToken(user)
}

// ExchangeToken trades a session token for a short-lived internal identity
// token. An invalid, expired, or stale-salt session token yields "" with a
// nil error; the validate endpoint reports that as a null token rather than
// an HTTP failure.
func (svc *Service) ExchangeToken(ctx context.Context, sessionToken string) (string, error) {
	claims, err := svc.signer.VerifySessionToken(sessionToken)
	if err != nil {
		return "", nil
	}

	userID, err := claims.UserID()
	if err != nil {
		return "", nil
	}

	user, err := svc.RetrieveUser(ctx, RetrieveUserOptions{ID: &userID})
	if err != nil {
		if errors.Is(err, errcodes.NotFound("User")) {
			return "", nil
		}
		return "", err
	}

	// salt equality is what makes rotation revoke outstanding sessions
	if claims.Salt != user.TokenSalt {
		return "", nil
	}

	return svc.signer.IssueInternalToken(user)
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return string(hash), nil
}
