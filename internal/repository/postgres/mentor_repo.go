package postgres

import (
	"context"
	"fmt"
	"time"

	"medxmentor-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type mentorProfileRepo struct {
	db *pgxpool.Pool
}

func NewMentorProfileRepository(db *pgxpool.Pool) domain.MentorProfileRepository {
	return &mentorProfileRepo{db: db}
}

func (r *mentorProfileRepo) GetOrCreate(ctx context.Context, userID string) (*domain.MentorProfile, error) {
	_, err := r.db.Exec(ctx,
		`INSERT INTO mentor_profiles (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID)
	if err != nil {
		return nil, mapError(err, "")
	}

	query := `SELECT user_id, introduction, hobbies, interests, goals, created_at, updated_at
              FROM mentor_profiles WHERE user_id = $1`
	var p domain.MentorProfile
	err = r.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID, &p.Introduction, &p.Hobbies, &p.Interests, &p.Goals, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err, "")
	}
	return &p, nil
}

// Update overwrites all four fields; concurrent writers are last-write-wins.
func (r *mentorProfileRepo) Update(ctx context.Context, p *domain.MentorProfile) error {
	query := `UPDATE mentor_profiles
              SET introduction = $2, hobbies = $3, interests = $4, goals = $5, updated_at = $6
              WHERE user_id = $1`
	tag, err := r.db.Exec(ctx, query, p.UserID, p.Introduction, p.Hobbies, p.Interests, p.Goals, p.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type mentorConversationRepo struct {
	db *pgxpool.Pool
}

func NewMentorConversationRepository(db *pgxpool.Pool) domain.MentorConversationRepository {
	return &mentorConversationRepo{db: db}
}

const ensureConversation = `INSERT INTO mentor_conversations (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`

func (r *mentorConversationRepo) GetOrCreate(ctx context.Context, userID string) (*domain.MentorConversation, error) {
	if _, err := r.db.Exec(ctx, ensureConversation, userID); err != nil {
		return nil, mapError(err, "")
	}

	var c domain.MentorConversation
	err := r.db.QueryRow(ctx,
		`SELECT user_id, summary, created_at, updated_at FROM mentor_conversations WHERE user_id = $1`, userID,
	).Scan(&c.UserID, &c.Summary, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapError(err, "")
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, role, content, created_at FROM mentor_messages WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	c.Messages = []domain.MentorMessage{}
	for rows.Next() {
		var m domain.MentorMessage
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		c.Messages = append(c.Messages, m)
	}
	return &c, rows.Err()
}

// AppendMessages inserts the messages in order and touches updated_at in one transaction.
func (r *mentorConversationRepo) AppendMessages(ctx context.Context, userID string, messages []domain.MentorMessage) error {
	if len(messages) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, ensureConversation, userID); err != nil {
		return mapError(err, "")
	}

	now := time.Now()
	batch := &pgx.Batch{}
	for _, m := range messages {
		createdAt := m.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		batch.Queue(`INSERT INTO mentor_messages (user_id, role, content, created_at) VALUES ($1, $2, $3, $4)`,
			userID, m.Role, m.Content, createdAt)
	}
	batch.Queue(`UPDATE mentor_conversations SET updated_at = $2 WHERE user_id = $1`, userID, now)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("append mentor messages: %w", err)
	}
	return tx.Commit(ctx)
}
