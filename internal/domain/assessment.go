package domain

import (
	"context"
	"time"
)

const (
	SubmittedBySelf   = "self"
	SubmittedByMentor = "mentor"
)

// CompetencyRating is one rated skill dimension. A nil or zero Rating means
// the dimension was not rated.
type CompetencyRating struct {
	Rating  *int   `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Comment string `json:"comment,omitempty" validate:"max=2000"`
}

type Competencies struct {
	ClinicalKnowledge CompetencyRating `json:"clinicalKnowledge"`
	Communication     CompetencyRating `json:"communication"`
	ResearchSkills    CompetencyRating `json:"researchSkills"`
	Leadership        CompetencyRating `json:"leadership"`
	Professionalism   CompetencyRating `json:"professionalism"`
	TimeManagement    CompetencyRating `json:"timeManagement"`
}

// Ratings returns the ratings that are present, in declaration order.
func (c Competencies) Ratings() []int {
	all := []CompetencyRating{
		c.ClinicalKnowledge,
		c.Communication,
		c.ResearchSkills,
		c.Leadership,
		c.Professionalism,
		c.TimeManagement,
	}
	ratings := make([]int, 0, len(all))
	for _, r := range all {
		if r.Rating != nil && *r.Rating != 0 {
			ratings = append(ratings, *r.Rating)
		}
	}
	return ratings
}

type Milestones struct {
	CompletedRotations   int `json:"completedRotations" validate:"min=0"`
	CertificationsEarned int `json:"certificationsEarned" validate:"min=0"`
	PapersPublished      int `json:"papersPublished" validate:"min=0"`
	PresentationsGiven   int `json:"presentationsGiven" validate:"min=0"`
	ProjectsCompleted    int `json:"projectsCompleted" validate:"min=0"`
}

func (m Milestones) Total() int {
	return m.CompletedRotations + m.CertificationsEarned + m.PapersPublished +
		m.PresentationsGiven + m.ProjectsCompleted
}

type Assessment struct {
	ID                  string       `json:"id"`
	MenteeID            string       `json:"menteeId"`
	AssessmentDate      time.Time    `json:"assessmentDate"`
	Competencies        Competencies `json:"competencies"`
	Milestones          Milestones   `json:"milestones"`
	OverallProgress     int          `json:"overallProgress"`
	Strengths           string       `json:"strengths,omitempty"`
	AreasForImprovement string       `json:"areasForImprovement,omitempty"`
	NextSteps           string       `json:"nextSteps,omitempty"`
	SubmittedBy         string       `json:"submittedBy"`
	CreatedAt           time.Time    `json:"createdAt"`
	UpdatedAt           time.Time    `json:"updatedAt"`
}

// AssessmentInput is the create payload. Any menteeId or overallProgress
// sent by the client is dropped during decoding.
type AssessmentInput struct {
	AssessmentDate      *time.Time   `json:"assessmentDate"`
	Competencies        Competencies `json:"competencies"`
	Milestones          Milestones   `json:"milestones"`
	Strengths           string       `json:"strengths" validate:"max=5000"`
	AreasForImprovement string       `json:"areasForImprovement" validate:"max=5000"`
	NextSteps           string       `json:"nextSteps" validate:"max=5000"`
	SubmittedBy         string       `json:"submittedBy" validate:"omitempty,oneof=self mentor"`
}

// AssessmentPatch replaces only the sub-documents present in the request.
// The owner and overallProgress cannot be patched.
type AssessmentPatch struct {
	AssessmentDate      *time.Time    `json:"assessmentDate"`
	Competencies        *Competencies `json:"competencies"`
	Milestones          *Milestones   `json:"milestones"`
	Strengths           *string       `json:"strengths" validate:"omitempty,max=5000"`
	AreasForImprovement *string       `json:"areasForImprovement" validate:"omitempty,max=5000"`
	NextSteps           *string       `json:"nextSteps" validate:"omitempty,max=5000"`
	SubmittedBy         *string       `json:"submittedBy" validate:"omitempty,oneof=self mentor"`
}

type DashboardSummary struct {
	LatestAssessment *Assessment  `json:"latestAssessment"`
	TotalAssessments int          `json:"totalAssessments"`
	OverallProgress  int          `json:"overallProgress"`
	ProgressTrend    []Assessment `json:"progressTrend"`
}

type AssessmentRepository interface {
	Create(ctx context.Context, assessment *Assessment) error
	GetByID(ctx context.Context, id string) (*Assessment, error)
	// ListByMentee returns the mentee's assessments, newest assessmentDate first.
	ListByMentee(ctx context.Context, menteeID string) ([]Assessment, error)
	Update(ctx context.Context, assessment *Assessment) error
	Delete(ctx context.Context, id string) error
}

type AssessmentUsecase interface {
	Create(ctx context.Context, input *AssessmentInput) (*Assessment, error)
	List(ctx context.Context) ([]Assessment, error)
	Get(ctx context.Context, id string) (*Assessment, error)
	DashboardSummary(ctx context.Context) (*DashboardSummary, error)
	Update(ctx context.Context, id string, patch *AssessmentPatch) (*Assessment, error)
	Delete(ctx context.Context, id string) error
}
