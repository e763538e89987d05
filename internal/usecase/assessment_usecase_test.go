package usecase_test

import (
	"net/http"
	"testing"
	"time"

	"medxmentor-backend/internal/domain"
	"medxmentor-backend/internal/usecase"
	"medxmentor-backend/pkg/validation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func rating(v int) domain.CompetencyRating {
	return domain.CompetencyRating{Rating: &v}
}

func TestAssessmentCreate(t *testing.T) {
	validate := validation.New()

	t.Run("Should force the owner and compute the score", func(t *testing.T) {
		repo := new(MockAssessmentRepo)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Assessment")).Return(nil)
		uc := usecase.NewAssessmentUsecase(repo, validate)

		got, err := uc.Create(userCtx("mentee-1"), &domain.AssessmentInput{
			Competencies: domain.Competencies{ClinicalKnowledge: rating(4), Communication: rating(3)},
			Milestones:   domain.Milestones{CompletedRotations: 2, PapersPublished: 1},
		})
		require.NoError(t, err)

		assert.Equal(t, "mentee-1", got.MenteeID)
		assert.Equal(t, 50, got.OverallProgress)
		assert.Equal(t, domain.SubmittedBySelf, got.SubmittedBy)
		assert.NotEmpty(t, got.ID)
		assert.False(t, got.AssessmentDate.IsZero())
		repo.AssertExpectations(t)
	})

	t.Run("Should reject a rating outside 1..5", func(t *testing.T) {
		repo := new(MockAssessmentRepo)
		uc := usecase.NewAssessmentUsecase(repo, validate)

		_, err := uc.Create(userCtx("mentee-1"), &domain.AssessmentInput{
			Competencies: domain.Competencies{Leadership: rating(6)},
		})
		assertCode(t, http.StatusBadRequest, err)
		assert.Contains(t, err.Error(), "Leadership rating")
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Should reject negative milestones", func(t *testing.T) {
		repo := new(MockAssessmentRepo)
		uc := usecase.NewAssessmentUsecase(repo, validate)

		_, err := uc.Create(userCtx("mentee-1"), &domain.AssessmentInput{
			Milestones: domain.Milestones{PapersPublished: -1},
		})
		assertCode(t, http.StatusBadRequest, err)
	})

	t.Run("Should require authentication", func(t *testing.T) {
		uc := usecase.NewAssessmentUsecase(new(MockAssessmentRepo), validate)
		_, err := uc.Create(userCtx(""), &domain.AssessmentInput{})
		assertCode(t, http.StatusUnauthorized, err)
	})
}

func TestAssessmentOwnership(t *testing.T) {
	validate := validation.New()
	id := uuid.NewString()
	foreign := &domain.Assessment{ID: id, MenteeID: "someone-else"}

	t.Run("Should reject a malformed id", func(t *testing.T) {
		repo := new(MockAssessmentRepo)
		uc := usecase.NewAssessmentUsecase(repo, validate)

		_, err := uc.Get(userCtx("mentee-1"), "not-a-uuid")
		assertCode(t, http.StatusBadRequest, err)
		assert.Equal(t, "Invalid ID format", err.Error())
		repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("Should return 404 when missing", func(t *testing.T) {
		repo := new(MockAssessmentRepo)
		repo.On("GetByID", mock.Anything, id).Return(nil, domain.ErrNotFound)
		uc := usecase.NewAssessmentUsecase(repo, validate)

		_, err := uc.Get(userCtx("mentee-1"), id)
		assertCode(t, http.StatusNotFound, err)
		assert.Equal(t, "Assessment not found", err.Error())
	})

	t.Run("Should forbid viewing another mentee's assessment", func(t *testing.T) {
		repo := new(MockAssessmentRepo)
		repo.On("GetByID", mock.Anything, id).Return(foreign, nil)
		uc := usecase.NewAssessmentUsecase(repo, validate)

		_, err := uc.Get(userCtx("mentee-1"), id)
		assertCode(t, http.StatusForbidden, err)
		assert.Equal(t, "Not authorized to view this assessment", err.Error())
	})

	t.Run("Should check ownership before updating", func(t *testing.T) {
		repo := new(MockAssessmentRepo)
		repo.On("GetByID", mock.Anything, id).Return(foreign, nil)
		uc := usecase.NewAssessmentUsecase(repo, validate)

		_, err := uc.Update(userCtx("mentee-1"), id, &domain.AssessmentPatch{})
		assertCode(t, http.StatusForbidden, err)
		assert.Equal(t, "Not authorized to update this assessment", err.Error())
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Should check ownership before deleting", func(t *testing.T) {
		repo := new(MockAssessmentRepo)
		repo.On("GetByID", mock.Anything, id).Return(foreign, nil)
		uc := usecase.NewAssessmentUsecase(repo, validate)

		err := uc.Delete(userCtx("mentee-1"), id)
		assertCode(t, http.StatusForbidden, err)
		assert.Equal(t, "Not authorized to delete this assessment", err.Error())
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("Should delete an owned assessment", func(t *testing.T) {
		repo := new(MockAssessmentRepo)
		repo.On("GetByID", mock.Anything, id).Return(&domain.Assessment{ID: id, MenteeID: "mentee-1"}, nil)
		repo.On("Delete", mock.Anything, id).Return(nil)
		uc := usecase.NewAssessmentUsecase(repo, validate)

		require.NoError(t, uc.Delete(userCtx("mentee-1"), id))
		repo.AssertExpectations(t)
	})
}

func TestAssessmentUpdate(t *testing.T) {
	validate := validation.New()
	id := uuid.NewString()

	stored := func() *domain.Assessment {
		return &domain.Assessment{
			ID:              id,
			MenteeID:        "mentee-1",
			Competencies:    domain.Competencies{ClinicalKnowledge: rating(4), Communication: rating(3)},
			Milestones:      domain.Milestones{CompletedRotations: 3},
			OverallProgress: 50,
			Strengths:       "Bedside manner",
			SubmittedBy:     domain.SubmittedBySelf,
		}
	}

	t.Run("Should merge the patch and recompute the score", func(t *testing.T) {
		repo := new(MockAssessmentRepo)
		repo.On("GetByID", mock.Anything, id).Return(stored(), nil)
		repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Assessment")).Return(nil)
		uc := usecase.NewAssessmentUsecase(repo, validate)

		milestones := domain.Milestones{CompletedRotations: 5, ProjectsCompleted: 5}
		next := "Submit abstract"
		got, err := uc.Update(userCtx("mentee-1"), id, &domain.AssessmentPatch{
			Milestones: &milestones,
			NextSteps:  &next,
		})
		require.NoError(t, err)

		// 3.5/5*50 = 35, ten milestones saturate at 50
		assert.Equal(t, 85, got.OverallProgress)
		assert.Equal(t, "Bedside manner", got.Strengths)
		assert.Equal(t, "Submit abstract", got.NextSteps)
		assert.Equal(t, "mentee-1", got.MenteeID)
		repo.AssertExpectations(t)
	})

	t.Run("Should validate the patch", func(t *testing.T) {
		repo := new(MockAssessmentRepo)
		repo.On("GetByID", mock.Anything, id).Return(stored(), nil)
		uc := usecase.NewAssessmentUsecase(repo, validate)

		by := "coach"
		_, err := uc.Update(userCtx("mentee-1"), id, &domain.AssessmentPatch{SubmittedBy: &by})
		assertCode(t, http.StatusBadRequest, err)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestAssessmentDashboardSummary(t *testing.T) {
	validate := validation.New()

	t.Run("Should return zero values with no assessments", func(t *testing.T) {
		repo := new(MockAssessmentRepo)
		repo.On("ListByMentee", mock.Anything, "mentee-1").Return(nil, nil)
		uc := usecase.NewAssessmentUsecase(repo, validate)

		got, err := uc.DashboardSummary(userCtx("mentee-1"))
		require.NoError(t, err)
		assert.Nil(t, got.LatestAssessment)
		assert.Zero(t, got.TotalAssessments)
		assert.Zero(t, got.OverallProgress)
		assert.NotNil(t, got.ProgressTrend)
		assert.Empty(t, got.ProgressTrend)
	})

	t.Run("Should trend the five most recent, oldest first", func(t *testing.T) {
		base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		var list []domain.Assessment
		for i := 6; i >= 0; i-- {
			list = append(list, domain.Assessment{
				ID:              uuid.NewString(),
				MenteeID:        "mentee-1",
				AssessmentDate:  base.AddDate(0, i, 0),
				OverallProgress: 10 * i,
			})
		}
		repo := new(MockAssessmentRepo)
		repo.On("ListByMentee", mock.Anything, "mentee-1").Return(list, nil)
		uc := usecase.NewAssessmentUsecase(repo, validate)

		got, err := uc.DashboardSummary(userCtx("mentee-1"))
		require.NoError(t, err)

		assert.Equal(t, 7, got.TotalAssessments)
		assert.Equal(t, 60, got.OverallProgress)
		require.NotNil(t, got.LatestAssessment)
		assert.Equal(t, list[0].ID, got.LatestAssessment.ID)

		require.Len(t, got.ProgressTrend, 5)
		var scores []int
		for _, a := range got.ProgressTrend {
			scores = append(scores, a.OverallProgress)
		}
		assert.Equal(t, []int{20, 30, 40, 50, 60}, scores)
	})
}
