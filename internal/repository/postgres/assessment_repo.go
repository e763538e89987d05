package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"medxmentor-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const assessmentColumns = `id, mentee_id, assessment_date, competencies, milestones, overall_progress,
	strengths, areas_for_improvement, next_steps, submitted_by, created_at, updated_at`

type assessmentRepo struct {
	db *pgxpool.Pool
}

func NewAssessmentRepository(db *pgxpool.Pool) domain.AssessmentRepository {
	return &assessmentRepo{db: db}
}

func (r *assessmentRepo) Create(ctx context.Context, a *domain.Assessment) error {
	competencies, milestones, err := encodeAssessmentDocs(a)
	if err != nil {
		return err
	}

	query := `INSERT INTO assessments (` + assessmentColumns + `)
              VALUES ($1, $2, $3, $4::jsonb, $5::jsonb, $6, $7, $8, $9, $10, $11, $12)`
	_, err = r.db.Exec(ctx, query,
		a.ID, a.MenteeID, a.AssessmentDate, competencies, milestones, a.OverallProgress,
		a.Strengths, a.AreasForImprovement, a.NextSteps, a.SubmittedBy, a.CreatedAt, a.UpdatedAt,
	)
	return mapError(err, "Assessment already exists")
}

func (r *assessmentRepo) GetByID(ctx context.Context, id string) (*domain.Assessment, error) {
	query := `SELECT ` + assessmentColumns + ` FROM assessments WHERE id = $1`
	return scanAssessment(r.db.QueryRow(ctx, query, id))
}

func (r *assessmentRepo) ListByMentee(ctx context.Context, menteeID string) ([]domain.Assessment, error) {
	query := `SELECT ` + assessmentColumns + ` FROM assessments
              WHERE mentee_id = $1
              ORDER BY assessment_date DESC, created_at DESC`
	rows, err := r.db.Query(ctx, query, menteeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assessments := []domain.Assessment{}
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		assessments = append(assessments, *a)
	}
	return assessments, rows.Err()
}

func (r *assessmentRepo) Update(ctx context.Context, a *domain.Assessment) error {
	competencies, milestones, err := encodeAssessmentDocs(a)
	if err != nil {
		return err
	}

	query := `UPDATE assessments SET
                assessment_date = $2, competencies = $3::jsonb, milestones = $4::jsonb,
                overall_progress = $5, strengths = $6, areas_for_improvement = $7,
                next_steps = $8, submitted_by = $9, updated_at = $10
              WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		a.ID, a.AssessmentDate, competencies, milestones,
		a.OverallProgress, a.Strengths, a.AreasForImprovement,
		a.NextSteps, a.SubmittedBy, a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *assessmentRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM assessments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// encodeAssessmentDocs renders the JSONB columns as text. []byte would be
// sent as bytea under the simple query protocol.
func encodeAssessmentDocs(a *domain.Assessment) (string, string, error) {
	competencies, err := json.Marshal(a.Competencies)
	if err != nil {
		return "", "", fmt.Errorf("encode competencies: %w", err)
	}
	milestones, err := json.Marshal(a.Milestones)
	if err != nil {
		return "", "", fmt.Errorf("encode milestones: %w", err)
	}
	return string(competencies), string(milestones), nil
}

func scanAssessment(row pgx.Row) (*domain.Assessment, error) {
	var (
		a            domain.Assessment
		competencies []byte
		milestones   []byte
	)
	err := row.Scan(
		&a.ID, &a.MenteeID, &a.AssessmentDate, &competencies, &milestones, &a.OverallProgress,
		&a.Strengths, &a.AreasForImprovement, &a.NextSteps, &a.SubmittedBy, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err, "")
	}
	if err := json.Unmarshal(competencies, &a.Competencies); err != nil {
		return nil, fmt.Errorf("decode competencies: %w", err)
	}
	if err := json.Unmarshal(milestones, &a.Milestones); err != nil {
		return nil, fmt.Errorf("decode milestones: %w", err)
	}
	return &a, nil
}
