package usecase

import (
	"math"

	"medxmentor-backend/internal/domain"
)

const (
	maxRating          = 5
	milestoneSaturates = 10
	halfScore          = 50.0
)

// ScoreProgress derives overallProgress (0-100): half from the mean of the
// present competency ratings, half from milestone volume, saturating at ten.
func ScoreProgress(competencies domain.Competencies, milestones domain.Milestones) int {
	var average float64
	if ratings := competencies.Ratings(); len(ratings) > 0 {
		sum := 0
		for _, r := range ratings {
			sum += r
		}
		average = float64(sum) / float64(len(ratings))
	}

	competencyScore := average / maxRating * halfScore
	milestoneScore := math.Min(float64(milestones.Total())/milestoneSaturates*halfScore, halfScore)

	score := int(math.Round(competencyScore + milestoneScore))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
