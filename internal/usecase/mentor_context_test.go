package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"medxmentor-backend/internal/domain"
	"medxmentor-backend/internal/usecase"
	"medxmentor-backend/pkg/openai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func history(n int) []domain.MentorMessage {
	msgs := make([]domain.MentorMessage, n)
	for i := range msgs {
		role := domain.MessageRoleUser
		if i%2 == 1 {
			role = domain.MessageRoleAssistant
		}
		msgs[i] = domain.MentorMessage{ID: int64(i + 1), Role: role, Content: fmt.Sprintf("message %d", i+1)}
	}
	return msgs
}

func TestBuildTurn(t *testing.T) {
	t.Run("Should keep only the last twelve history messages", func(t *testing.T) {
		turn, err := usecase.BuildTurn(&domain.MentorProfile{}, history(20), "hello")
		require.NoError(t, err)

		require.Len(t, turn, 14)
		assert.Equal(t, domain.MessageRoleSystem, turn[0].Role)
		assert.Equal(t, "message 9", turn[1].Content)
		assert.Equal(t, "message 20", turn[12].Content)
		assert.Equal(t, openai.Message{Role: domain.MessageRoleUser, Content: "hello"}, turn[13])
	})

	t.Run("Should pass short history through in order", func(t *testing.T) {
		turn, err := usecase.BuildTurn(&domain.MentorProfile{}, history(3), "hi")
		require.NoError(t, err)
		require.Len(t, turn, 5)
		assert.Equal(t, "message 1", turn[1].Content)
		assert.Equal(t, domain.MessageRoleAssistant, turn[2].Role)
	})

	t.Run("Should render the profile block", func(t *testing.T) {
		profile := &domain.MentorProfile{Introduction: "Final year student in Kampala", Goals: "Pediatrics residency"}
		turn, err := usecase.BuildTurn(profile, nil, "hi")
		require.NoError(t, err)

		system := turn[0].Content
		assert.True(t, strings.HasPrefix(system, "You are the MedXMentor Virtual Mentor. Be warm, supportive, and practical.\n"))
		assert.True(t, strings.HasSuffix(system, "\n\n"+strings.Join([]string{
			"Introduction: Final year student in Kampala",
			"Hobbies: Not provided",
			"Interests: Not provided",
			"Goals: Pediatrics residency",
		}, "\n")))
	})

	t.Run("Should trim the new message", func(t *testing.T) {
		turn, err := usecase.BuildTurn(nil, nil, "  how do I start research?\n")
		require.NoError(t, err)
		assert.Equal(t, "how do I start research?", turn[len(turn)-1].Content)
	})

	t.Run("Should reject a blank message", func(t *testing.T) {
		_, err := usecase.BuildTurn(&domain.MentorProfile{}, history(2), " \t\n")
		assertCode(t, http.StatusBadRequest, err)
		assert.Equal(t, "Message is required.", err.Error())
	})
}

func TestMergeExtractedFields(t *testing.T) {
	str := func(s string) *string { return &s }

	t.Run("Should never overwrite a populated field", func(t *testing.T) {
		profile := &domain.MentorProfile{Hobbies: "football"}
		changed := usecase.MergeExtractedFields(profile, usecase.ExtractedProfile{Hobbies: str("chess")})
		assert.False(t, changed)
		assert.Equal(t, "football", profile.Hobbies)
	})

	t.Run("Should ignore null, empty and unknown values", func(t *testing.T) {
		profile := &domain.MentorProfile{}
		changed := usecase.MergeExtractedFields(profile, usecase.ExtractedProfile{
			Introduction: nil,
			Hobbies:      str("  "),
			Interests:    str("Unknown"),
			Goals:        str("null"),
		})
		assert.False(t, changed)
		assert.Equal(t, domain.MentorProfile{}, *profile)
	})

	t.Run("Should fill empty fields", func(t *testing.T) {
		profile := &domain.MentorProfile{Goals: "Surgery"}
		changed := usecase.MergeExtractedFields(profile, usecase.ExtractedProfile{
			Interests: str(" global health "),
			Goals:     str("Cardiology"),
		})
		assert.True(t, changed)
		assert.Equal(t, "global health", profile.Interests)
		assert.Equal(t, "Surgery", profile.Goals)
		assert.True(t, usecase.ProfileIncomplete(profile))
	})
}

func TestProfileIncomplete(t *testing.T) {
	assert.True(t, usecase.ProfileIncomplete(nil))
	assert.True(t, usecase.ProfileIncomplete(&domain.MentorProfile{Introduction: "a", Hobbies: "b", Interests: "c"}))
	assert.False(t, usecase.ProfileIncomplete(&domain.MentorProfile{Introduction: "a", Hobbies: "b", Interests: "c", Goals: "d"}))
}

func TestExtractProfileFields(t *testing.T) {
	isExtraction := mock.MatchedBy(func(req openai.CompletionRequest) bool {
		return req.JSONObject &&
			req.Temperature == 0.2 &&
			len(req.Messages) == 2 &&
			req.Messages[0].Role == domain.MessageRoleSystem &&
			strings.Contains(req.Messages[0].Content, "Use null when unknown.") &&
			req.Messages[1].Content == "I love hiking and want to be a surgeon"
	})

	t.Run("Should decode the JSON object", func(t *testing.T) {
		completer := new(MockCompleter)
		completer.On("Complete", mock.Anything, isExtraction).
			Return(`{"introduction":null,"hobbies":"hiking","interests":null,"goals":"become a surgeon"}`, nil)

		got, err := usecase.ExtractProfileFields(context.Background(), completer, "I love hiking and want to be a surgeon")
		require.NoError(t, err)
		assert.Nil(t, got.Introduction)
		require.NotNil(t, got.Hobbies)
		assert.Equal(t, "hiking", *got.Hobbies)
		assert.Equal(t, "become a surgeon", *got.Goals)
	})

	t.Run("Should surface malformed JSON", func(t *testing.T) {
		completer := new(MockCompleter)
		completer.On("Complete", mock.Anything, isExtraction).Return("not json", nil)

		_, err := usecase.ExtractProfileFields(context.Background(), completer, "I love hiking and want to be a surgeon")
		assert.Error(t, err)
	})

	t.Run("Should surface completion errors", func(t *testing.T) {
		completer := new(MockCompleter)
		boom := errors.New("timeout")
		completer.On("Complete", mock.Anything, isExtraction).Return("", boom)

		_, err := usecase.ExtractProfileFields(context.Background(), completer, "I love hiking and want to be a surgeon")
		assert.ErrorIs(t, err, boom)
	})
}
