package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkovacevic/portfolioapi/internal/telemetry/tracing"
)

var ErrUserNotFound = errors.New("user not found")

var _ usersRepo = (*Repo)(nil)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

const userColumns = `
	id, username, email, password_hash, full_name, bio, avatar_url,
	linkedin_url, github_url, website_url, is_active, created_at, updated_at`

// GetByUsernameOrEmail matches the login value against both the username
// and the email column.
func (r *Repo) GetByUsernameOrEmail(ctx context.Context, login string) (*User, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "usersRepo.GetByUsernameOrEmail")
	defer span.End()

	row := r.db.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $1`,
		login,
	)
	return r.scanUser(row)
}

func (r *Repo) GetByID(ctx context.Context, id int) (*User, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "usersRepo.GetByID")
	defer span.End()

	row := r.db.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	)
	return r.scanUser(row)
}

func (r *Repo) scanUser(row pgx.Row) (*User, error) {
	var user User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.FullName, &user.Bio, &user.AvatarURL,
		&user.LinkedinURL, &user.GithubURL, &user.WebsiteURL,
		&user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}
