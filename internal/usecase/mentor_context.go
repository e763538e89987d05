package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"medxmentor-backend/internal/domain"
	"medxmentor-backend/pkg/apperror"
	"medxmentor-backend/pkg/openai"
)

// HistoryWindow is the number of prior messages replayed to the model.
const HistoryWindow = 12

const (
	mentorInstruction = "You are the MedXMentor Virtual Mentor. Be warm, supportive, and practical.\n" +
		"Personalize guidance based on the mentee profile below.\n" +
		"If any profile fields are missing, ask friendly questions to collect them."

	extractionInstruction = "Extract introduction, hobbies, interests, and goals from the user message. " +
		"Return JSON with keys: introduction, hobbies, interests, goals. Use null when unknown."

	notProvided = "Not provided"

	chatTemperature       float32 = 0.7
	extractionTemperature float32 = 0.2
)

// Completer is the chat-completion capability the mentor needs.
type Completer interface {
	Complete(ctx context.Context, req openai.CompletionRequest) (string, error)
	Configured() bool
}

// ExtractedProfile is the JSON object returned by the extraction prompt.
// A nil field means the model did not find the value.
type ExtractedProfile struct {
	Introduction *string `json:"introduction"`
	Hobbies      *string `json:"hobbies"`
	Interests    *string `json:"interests"`
	Goals        *string `json:"goals"`
}

// BuildTurn assembles the messages for one mentor turn: the personalised
// system prompt, the last HistoryWindow messages and the new user message.
func BuildTurn(profile *domain.MentorProfile, history []domain.MentorMessage, message string) ([]openai.Message, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperror.BadRequest("Message is required.")
	}

	if len(history) > HistoryWindow {
		history = history[len(history)-HistoryWindow:]
	}

	turn := make([]openai.Message, 0, len(history)+2)
	turn = append(turn, openai.Message{
		Role:    domain.MessageRoleSystem,
		Content: mentorInstruction + "\n\n" + profileBlock(profile),
	})
	for _, m := range history {
		turn = append(turn, openai.Message{Role: m.Role, Content: m.Content})
	}
	turn = append(turn, openai.Message{Role: domain.MessageRoleUser, Content: message})
	return turn, nil
}

func profileBlock(profile *domain.MentorProfile) string {
	if profile == nil {
		profile = &domain.MentorProfile{}
	}
	lines := []string{
		"Introduction: " + orNotProvided(profile.Introduction),
		"Hobbies: " + orNotProvided(profile.Hobbies),
		"Interests: " + orNotProvided(profile.Interests),
		"Goals: " + orNotProvided(profile.Goals),
	}
	return strings.Join(lines, "\n")
}

func orNotProvided(v string) string {
	if v == "" {
		return notProvided
	}
	return v
}

func ProfileIncomplete(profile *domain.MentorProfile) bool {
	return profile == nil || profile.Incomplete()
}

// MergeExtractedFields copies extracted values into empty profile fields only.
// It reports whether any field changed.
func MergeExtractedFields(profile *domain.MentorProfile, extracted ExtractedProfile) bool {
	changed := false
	fill := func(field *string, value *string) {
		if *field != "" || !usableExtraction(value) {
			return
		}
		*field = strings.TrimSpace(*value)
		changed = true
	}

	fill(&profile.Introduction, extracted.Introduction)
	fill(&profile.Hobbies, extracted.Hobbies)
	fill(&profile.Interests, extracted.Interests)
	fill(&profile.Goals, extracted.Goals)
	return changed
}

func usableExtraction(value *string) bool {
	if value == nil {
		return false
	}
	v := strings.TrimSpace(*value)
	return v != "" && !strings.EqualFold(v, "unknown") && !strings.EqualFold(v, "null")
}

// ExtractProfileFields asks the model to pull profile fields out of a raw
// mentee message.
func ExtractProfileFields(ctx context.Context, completer Completer, rawMessage string) (ExtractedProfile, error) {
	var extracted ExtractedProfile

	content, err := completer.Complete(ctx, openai.CompletionRequest{
		Messages: []openai.Message{
			{Role: domain.MessageRoleSystem, Content: extractionInstruction},
			{Role: domain.MessageRoleUser, Content: rawMessage},
		},
		Temperature: extractionTemperature,
		JSONObject:  true,
	})
	if err != nil {
		return extracted, err
	}

	if err := json.Unmarshal([]byte(content), &extracted); err != nil {
		return extracted, fmt.Errorf("decode extracted profile: %w", err)
	}
	return extracted, nil
}
