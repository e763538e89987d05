package postgres

import (
	"context"

	"medxmentor-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, first_name, last_name, email, password_hash, mentee_id, country,
	university, program, year_of_study, cohort, theme, profile_image, role,
	profile_complete, created_at, updated_at`

type userRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) domain.UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (` + userColumns + `)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.FirstName, user.LastName, user.Email, user.PasswordHash, user.MenteeID, user.Country,
		user.University, user.Program, user.YearOfStudy, user.Cohort, user.Theme, user.ProfileImage, user.Role,
		user.ProfileComplete, user.CreatedAt, user.UpdatedAt,
	)
	return mapError(err, "Email already registered")
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *userRepo) Update(ctx context.Context, user *domain.User) error {
	query := `UPDATE users SET
                first_name = $2, last_name = $3, email = $4, country = $5, university = $6,
                program = $7, year_of_study = $8, cohort = $9, theme = $10, profile_image = $11,
                profile_complete = $12, updated_at = $13
              WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		user.ID, user.FirstName, user.LastName, user.Email, user.Country, user.University,
		user.Program, user.YearOfStudy, user.Cohort, user.Theme, user.ProfileImage,
		user.ProfileComplete, user.UpdatedAt,
	)
	if err != nil {
		return mapError(err, "Email already in use")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.PasswordHash, &user.MenteeID, &user.Country,
		&user.University, &user.Program, &user.YearOfStudy, &user.Cohort, &user.Theme, &user.ProfileImage, &user.Role,
		&user.ProfileComplete, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err, "")
	}
	return &user, nil
}
