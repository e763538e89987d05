package usecase

import (
	"context"
	"errors"
	"time"

	"medxmentor-backend/internal/domain"
	"medxmentor-backend/pkg/apperror"
	"medxmentor-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const progressTrendSize = 5

type assessmentUsecase struct {
	repo     domain.AssessmentRepository
	validate *validator.Validate
}

func NewAssessmentUsecase(repo domain.AssessmentRepository, validate *validator.Validate) domain.AssessmentUsecase {
	return &assessmentUsecase{
		repo:     repo,
		validate: validate,
	}
}

func (u *assessmentUsecase) Create(ctx context.Context, input *domain.AssessmentInput) (*domain.Assessment, error) {
	userID, ok := domain.UserIDFrom(ctx)
	if !ok {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	if input == nil {
		return nil, apperror.BadRequest("Request body is required")
	}
	if err := u.validate.Struct(input); err != nil {
		return nil, apperror.BadRequest(validation.Message(err))
	}

	now := time.Now()
	assessment := &domain.Assessment{
		ID:                  uuid.NewString(),
		MenteeID:            userID,
		AssessmentDate:      now,
		Competencies:        input.Competencies,
		Milestones:          input.Milestones,
		Strengths:           input.Strengths,
		AreasForImprovement: input.AreasForImprovement,
		NextSteps:           input.NextSteps,
		SubmittedBy:         input.SubmittedBy,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if input.AssessmentDate != nil && !input.AssessmentDate.IsZero() {
		assessment.AssessmentDate = *input.AssessmentDate
	}
	if assessment.SubmittedBy == "" {
		assessment.SubmittedBy = domain.SubmittedBySelf
	}
	assessment.OverallProgress = ScoreProgress(assessment.Competencies, assessment.Milestones)

	if err := u.repo.Create(ctx, assessment); err != nil {
		return nil, err
	}
	return assessment, nil
}

func (u *assessmentUsecase) List(ctx context.Context) ([]domain.Assessment, error) {
	userID, ok := domain.UserIDFrom(ctx)
	if !ok {
		return nil, apperror.Unauthorized("User not authenticated")
	}

	assessments, err := u.repo.ListByMentee(ctx, userID)
	if err != nil {
		return nil, err
	}
	if assessments == nil {
		assessments = []domain.Assessment{}
	}
	return assessments, nil
}

func (u *assessmentUsecase) Get(ctx context.Context, id string) (*domain.Assessment, error) {
	return u.owned(ctx, id, "view")
}

func (u *assessmentUsecase) DashboardSummary(ctx context.Context) (*domain.DashboardSummary, error) {
	assessments, err := u.List(ctx)
	if err != nil {
		return nil, err
	}

	summary := &domain.DashboardSummary{
		TotalAssessments: len(assessments),
		ProgressTrend:    []domain.Assessment{},
	}
	if len(assessments) == 0 {
		return summary, nil
	}

	latest := assessments[0]
	summary.LatestAssessment = &latest
	summary.OverallProgress = latest.OverallProgress

	// assessments are newest first; the trend reads oldest first
	n := min(progressTrendSize, len(assessments))
	summary.ProgressTrend = make([]domain.Assessment, n)
	for i := 0; i < n; i++ {
		summary.ProgressTrend[i] = assessments[n-1-i]
	}
	return summary, nil
}

func (u *assessmentUsecase) Update(ctx context.Context, id string, patch *domain.AssessmentPatch) (*domain.Assessment, error) {
	assessment, err := u.owned(ctx, id, "update")
	if err != nil {
		return nil, err
	}
	if patch == nil {
		patch = &domain.AssessmentPatch{}
	}
	if err := u.validate.Struct(patch); err != nil {
		return nil, apperror.BadRequest(validation.Message(err))
	}

	if patch.AssessmentDate != nil && !patch.AssessmentDate.IsZero() {
		assessment.AssessmentDate = *patch.AssessmentDate
	}
	if patch.Competencies != nil {
		assessment.Competencies = *patch.Competencies
	}
	if patch.Milestones != nil {
		assessment.Milestones = *patch.Milestones
	}
	if patch.Strengths != nil {
		assessment.Strengths = *patch.Strengths
	}
	if patch.AreasForImprovement != nil {
		assessment.AreasForImprovement = *patch.AreasForImprovement
	}
	if patch.NextSteps != nil {
		assessment.NextSteps = *patch.NextSteps
	}
	if patch.SubmittedBy != nil {
		assessment.SubmittedBy = *patch.SubmittedBy
	}

	assessment.OverallProgress = ScoreProgress(assessment.Competencies, assessment.Milestones)
	assessment.UpdatedAt = time.Now()

	if err := u.repo.Update(ctx, assessment); err != nil {
		return nil, err
	}
	return assessment, nil
}

func (u *assessmentUsecase) Delete(ctx context.Context, id string) error {
	if _, err := u.owned(ctx, id, "delete"); err != nil {
		return err
	}
	return u.repo.Delete(ctx, id)
}

// owned loads an assessment and checks the caller owns it. verb names the
// attempted action in the 403 message.
func (u *assessmentUsecase) owned(ctx context.Context, id, verb string) (*domain.Assessment, error) {
	userID, ok := domain.UserIDFrom(ctx)
	if !ok {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperror.BadRequest("Invalid ID format")
	}

	assessment, err := u.repo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.NotFound("Assessment not found")
	}
	if err != nil {
		return nil, err
	}

	if assessment.MenteeID != userID {
		return nil, apperror.Forbidden("Not authorized to " + verb + " this assessment")
	}
	return assessment, nil
}
