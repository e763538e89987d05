package postgres

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"medxmentor-backend/internal/domain"
	"medxmentor-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError(nil, ""))
	assert.ErrorIs(t, mapError(fmt.Errorf("scan: %w", pgx.ErrNoRows), ""), domain.ErrNotFound)

	conflict := mapError(&pgconn.PgError{Code: pgUniqueViolation}, "Email already registered")
	assert.Equal(t, http.StatusConflict, apperror.CodeOf(conflict))
	assert.Equal(t, "Email already registered", conflict.Error())

	missingUser := mapError(&pgconn.PgError{Code: pgForeignKeyViolation}, "")
	assert.Equal(t, http.StatusNotFound, apperror.CodeOf(missingUser))

	other := errors.New("connection reset")
	assert.Same(t, other, mapError(other, ""))
}

type fakeRow struct {
	values []any
}

func (r fakeRow) Scan(dest ...any) error {
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.values[i].(string)
		case *int:
			*p = r.values[i].(int)
		case *[]byte:
			*p = r.values[i].([]byte)
		case *time.Time:
			*p = r.values[i].(time.Time)
		default:
			return fmt.Errorf("unsupported dest %T", d)
		}
	}
	return nil
}

func TestAssessmentDocsRoundTrip(t *testing.T) {
	four := 4
	a := &domain.Assessment{
		Competencies: domain.Competencies{Leadership: domain.CompetencyRating{Rating: &four, Comment: "Ran journal club"}},
		Milestones:   domain.Milestones{PapersPublished: 2},
	}
	competencies, milestones, err := encodeAssessmentDocs(a)
	require.NoError(t, err)

	now := time.Now()
	got, err := scanAssessment(fakeRow{values: []any{
		"id-1", "mentee-1", now, []byte(competencies), []byte(milestones), 60,
		"", "", "", "self", now, now,
	}})
	require.NoError(t, err)

	require.NotNil(t, got.Competencies.Leadership.Rating)
	assert.Equal(t, 4, *got.Competencies.Leadership.Rating)
	assert.Equal(t, "Ran journal club", got.Competencies.Leadership.Comment)
	assert.Nil(t, got.Competencies.Communication.Rating)
	assert.Equal(t, 2, got.Milestones.PapersPublished)
}
