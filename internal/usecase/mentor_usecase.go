package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"medxmentor-backend/internal/domain"
	"medxmentor-backend/pkg/apperror"
	"medxmentor-backend/pkg/logger"
	"medxmentor-backend/pkg/openai"
	"medxmentor-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

const fallbackReply = "Thanks for sharing. How can I support you further?"

type MentorOptions struct {
	// SyncExtraction waits for profile extraction before replying so the
	// returned profile includes the extracted fields.
	SyncExtraction    bool
	ExtractionTimeout time.Duration
}

// MentorUsecase runs virtual-mentor turns. Profile extraction runs as a
// detached task tracked by Wait.
type MentorUsecase struct {
	profiles      domain.MentorProfileRepository
	conversations domain.MentorConversationRepository
	completer     Completer
	validate      *validator.Validate
	opts          MentorOptions
	tasks         sync.WaitGroup
}

var _ domain.MentorUsecase = (*MentorUsecase)(nil)

func NewMentorUsecase(
	profiles domain.MentorProfileRepository,
	conversations domain.MentorConversationRepository,
	completer Completer,
	validate *validator.Validate,
	opts MentorOptions,
) *MentorUsecase {
	if opts.ExtractionTimeout <= 0 {
		opts.ExtractionTimeout = 20 * time.Second
	}
	return &MentorUsecase{
		profiles:      profiles,
		conversations: conversations,
		completer:     completer,
		validate:      validate,
		opts:          opts,
	}
}

func (u *MentorUsecase) GetProfile(ctx context.Context) (*domain.MentorProfile, error) {
	userID, ok := domain.UserIDFrom(ctx)
	if !ok {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	return u.profiles.GetOrCreate(ctx, userID)
}

// UpdateProfile applies the fields present in patch. Explicit edits may
// overwrite values that extraction filled in.
func (u *MentorUsecase) UpdateProfile(ctx context.Context, patch *domain.MentorProfilePatch) (*domain.MentorProfile, error) {
	userID, ok := domain.UserIDFrom(ctx)
	if !ok {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	if patch == nil {
		patch = &domain.MentorProfilePatch{}
	}
	if err := u.validate.Struct(patch); err != nil {
		return nil, apperror.BadRequest(validation.Message(err))
	}

	profile, err := u.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	apply := func(field *string, value *string) {
		if value != nil {
			*field = strings.TrimSpace(*value)
		}
	}
	apply(&profile.Introduction, patch.Introduction)
	apply(&profile.Hobbies, patch.Hobbies)
	apply(&profile.Interests, patch.Interests)
	apply(&profile.Goals, patch.Goals)
	profile.UpdatedAt = time.Now()

	if err := u.profiles.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (u *MentorUsecase) GetHistory(ctx context.Context) (*domain.MentorHistory, error) {
	userID, ok := domain.UserIDFrom(ctx)
	if !ok {
		return nil, apperror.Unauthorized("User not authenticated")
	}

	profile, err := u.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	conversation, err := u.conversations.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	messages := conversation.Messages
	if messages == nil {
		messages = []domain.MentorMessage{}
	}
	return &domain.MentorHistory{Profile: profile, Messages: messages}, nil
}

func (u *MentorUsecase) SendMessage(ctx context.Context, message string) (*domain.MentorReply, error) {
	userID, ok := domain.UserIDFrom(ctx)
	if !ok {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	if u.completer == nil || !u.completer.Configured() {
		return nil, apperror.Upstream("OpenAI API key is not configured.", openai.ErrNotConfigured)
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperror.BadRequest("Message is required.")
	}

	profile, err := u.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	conversation, err := u.conversations.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	turn, err := BuildTurn(profile, conversation.Messages, message)
	if err != nil {
		return nil, err
	}

	content, err := u.completer.Complete(ctx, openai.CompletionRequest{
		Messages:    turn,
		Temperature: chatTemperature,
	})
	if err != nil && !errors.Is(err, openai.ErrNoChoices) {
		logger.FromContext(ctx).Error("mentor completion failed", "user_id", userID, "error", err)
		return nil, apperror.Upstream("The virtual mentor is unavailable right now. Please try again.", err)
	}

	reply := strings.TrimSpace(content)
	if reply == "" {
		reply = fallbackReply
	}

	now := time.Now()
	err = u.conversations.AppendMessages(ctx, userID, []domain.MentorMessage{
		{Role: domain.MessageRoleUser, Content: message, CreatedAt: now},
		{Role: domain.MessageRoleAssistant, Content: reply, CreatedAt: now},
	})
	if err != nil {
		return nil, err
	}

	if ProfileIncomplete(profile) {
		done := u.startExtraction(logger.RequestIDFrom(ctx), userID, message)
		if u.opts.SyncExtraction {
			profile = u.awaitExtraction(ctx, done, userID, profile)
		}
	}

	return &domain.MentorReply{Reply: reply, Profile: profile}, nil
}

// Wait blocks until every detached extraction task has finished.
func (u *MentorUsecase) Wait() {
	u.tasks.Wait()
}

// startExtraction runs extraction detached from the request context so a
// client disconnect does not cancel it.
func (u *MentorUsecase) startExtraction(requestID, userID, message string) <-chan struct{} {
	done := make(chan struct{})
	u.tasks.Add(1)
	go func() {
		defer u.tasks.Done()
		defer close(done)

		ctx, cancel := context.WithTimeout(logger.WithRequestID(context.Background(), requestID), u.opts.ExtractionTimeout)
		defer cancel()

		if err := u.extractProfile(ctx, userID, message); err != nil {
			logger.FromContext(ctx).Warn("mentor profile extraction failed", "user_id", userID, "error", err)
		}
	}()
	return done
}

func (u *MentorUsecase) awaitExtraction(ctx context.Context, done <-chan struct{}, userID string, current *domain.MentorProfile) *domain.MentorProfile {
	select {
	case <-done:
	case <-ctx.Done():
		return current
	}

	refreshed, err := u.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Warn("reload mentor profile after extraction", "user_id", userID, "error", err)
		return current
	}
	return refreshed
}

func (u *MentorUsecase) extractProfile(ctx context.Context, userID, message string) error {
	extracted, err := ExtractProfileFields(ctx, u.completer, message)
	if err != nil {
		return err
	}

	// Re-read so fields saved since the turn started are not clobbered.
	profile, err := u.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	if !MergeExtractedFields(profile, extracted) {
		logger.FromContext(ctx).Debug("mentor profile extraction found nothing new", "user_id", userID)
		return nil
	}

	profile.UpdatedAt = time.Now()
	if err := u.profiles.Update(ctx, profile); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("mentor profile enriched from conversation", "user_id", userID)
	return nil
}
