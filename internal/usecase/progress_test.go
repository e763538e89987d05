package usecase_test

import (
	"testing"

	"medxmentor-backend/internal/domain"
	"medxmentor-backend/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func allRated(v int) domain.Competencies {
	return domain.Competencies{
		ClinicalKnowledge: rating(v),
		Communication:     rating(v),
		ResearchSkills:    rating(v),
		Leadership:        rating(v),
		Professionalism:   rating(v),
		TimeManagement:    rating(v),
	}
}

func TestScoreProgress(t *testing.T) {
	tests := []struct {
		name         string
		competencies domain.Competencies
		milestones   domain.Milestones
		want         int
	}{
		{"empty", domain.Competencies{}, domain.Milestones{}, 0},
		{"two ratings and three milestones", domain.Competencies{ClinicalKnowledge: rating(4), Communication: rating(3)}, domain.Milestones{CompletedRotations: 2, PapersPublished: 1}, 50},
		{"maximum", allRated(5), domain.Milestones{ProjectsCompleted: 10}, 100},
		{"milestones saturate", allRated(5), domain.Milestones{CompletedRotations: 40, PapersPublished: 12}, 100},
		{"zero rating is unrated", domain.Competencies{ClinicalKnowledge: rating(0), Leadership: rating(2)}, domain.Milestones{}, 20},
		{"ratings only", allRated(1), domain.Milestones{}, 10},
		{"milestones only", domain.Competencies{}, domain.Milestones{PresentationsGiven: 1}, 5},
		// 13/3/5*50 = 43.33, 7 milestones = 35
		{"rounds to nearest", domain.Competencies{Communication: rating(4), Leadership: rating(4), Professionalism: rating(5)}, domain.Milestones{CertificationsEarned: 7}, 78},
		// 5/4/5*50 = 12.5
		{"half rounds up", domain.Competencies{ClinicalKnowledge: rating(1), Communication: rating(1), Leadership: rating(1), Professionalism: rating(2)}, domain.Milestones{}, 13},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, usecase.ScoreProgress(tt.competencies, tt.milestones))
		})
	}
}

func TestScoreProgressMonotonic(t *testing.T) {
	milestones := domain.Milestones{CompletedRotations: 3}
	prev := -1
	for v := 1; v <= 5; v++ {
		score := usecase.ScoreProgress(allRated(v), milestones)
		assert.GreaterOrEqual(t, score, prev, "rating %d", v)
		prev = score
	}

	base := allRated(3)
	prev = -1
	for n := 0; n <= 15; n++ {
		score := usecase.ScoreProgress(base, domain.Milestones{ProjectsCompleted: n})
		assert.GreaterOrEqual(t, score, prev, "milestones %d", n)
		assert.LessOrEqual(t, score, 100)
		prev = score
	}
}

func TestScoreProgressMonotonicPerDimension(t *testing.T) {
	ratings := map[string]func(*domain.Competencies, domain.CompetencyRating){
		"clinicalKnowledge": func(c *domain.Competencies, r domain.CompetencyRating) { c.ClinicalKnowledge = r },
		"communication":     func(c *domain.Competencies, r domain.CompetencyRating) { c.Communication = r },
		"researchSkills":    func(c *domain.Competencies, r domain.CompetencyRating) { c.ResearchSkills = r },
		"leadership":        func(c *domain.Competencies, r domain.CompetencyRating) { c.Leadership = r },
		"professionalism":   func(c *domain.Competencies, r domain.CompetencyRating) { c.Professionalism = r },
		"timeManagement":    func(c *domain.Competencies, r domain.CompetencyRating) { c.TimeManagement = r },
	}
	fixedMilestones := domain.Milestones{CompletedRotations: 2, PapersPublished: 1}

	for name, set := range ratings {
		t.Run(name, func(t *testing.T) {
			prev := -1
			for v := 1; v <= 5; v++ {
				competencies := allRated(3)
				set(&competencies, rating(v))
				score := usecase.ScoreProgress(competencies, fixedMilestones)
				assert.GreaterOrEqual(t, score, prev, "%s = %d", name, v)
				prev = score
			}
		})
	}

	milestones := map[string]func(*domain.Milestones, int){
		"completedRotations":   func(m *domain.Milestones, n int) { m.CompletedRotations = n },
		"certificationsEarned": func(m *domain.Milestones, n int) { m.CertificationsEarned = n },
		"papersPublished":      func(m *domain.Milestones, n int) { m.PapersPublished = n },
		"presentationsGiven":   func(m *domain.Milestones, n int) { m.PresentationsGiven = n },
		"projectsCompleted":    func(m *domain.Milestones, n int) { m.ProjectsCompleted = n },
	}
	fixedCompetencies := domain.Competencies{ClinicalKnowledge: rating(4), Leadership: rating(2)}

	for name, set := range milestones {
		t.Run(name, func(t *testing.T) {
			prev := -1
			for n := 0; n <= 12; n++ {
				m := domain.Milestones{CompletedRotations: 1, CertificationsEarned: 1, PapersPublished: 1, PresentationsGiven: 1, ProjectsCompleted: 1}
				set(&m, n)
				score := usecase.ScoreProgress(fixedCompetencies, m)
				assert.GreaterOrEqual(t, score, prev, "%s = %d", name, n)
				assert.LessOrEqual(t, score, 100)
				prev = score
			}
		})
	}
}
