// Package pipeline composes generation, publication, persistence, and
// notification into the operations exposed to callers.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/postpilot/postpilot/internal/credential"
	"github.com/postpilot/postpilot/internal/generator"
	"github.com/postpilot/postpilot/internal/history"
	"github.com/postpilot/postpilot/internal/linkedin"
	"github.com/postpilot/postpilot/internal/metrics"
	"github.com/postpilot/postpilot/internal/notify"
)

var (
	// ErrNotAuthenticated is returned when no credential has been stored.
	ErrNotAuthenticated = errors.New("not authenticated with LinkedIn")

	// ErrEmptyContent is returned when a publish request carries no content.
	ErrEmptyContent = errors.New("content is required")
)

// Trigger identifies what started a pipeline run.
type Trigger string

const (
	TriggerManual    Trigger = "manual"
	TriggerScheduled Trigger = "scheduled"
)

// Publisher is the slice of the LinkedIn client the pipeline consumes.
type Publisher interface {
	AuthURL() string
	ExchangeCode(ctx context.Context, code string) (*linkedin.ExchangeResult, error)
	SetCredential(token, accountID string)
	Publish(ctx context.Context, content string) (string, error)
}

// Service orchestrates the generate → publish → persist → notify pipeline.
// No operation retries automatically; every failure is reported once to the
// immediate caller.
type Service struct {
	generator   generator.Generator
	publisher   Publisher
	credentials *credential.Store
	history     *history.Store
	notifier    notify.Notifier

	notifyTimeout time.Duration
}

// NewService creates the pipeline service.
func NewService(
	gen generator.Generator,
	pub Publisher,
	creds *credential.Store,
	hist *history.Store,
	notifier notify.Notifier,
) *Service {
	return &Service{
		generator:     gen,
		publisher:     pub,
		credentials:   creds,
		history:       hist,
		notifier:      notifier,
		notifyTimeout: 30 * time.Second,
	}
}

// GenerateResult is the outcome of a generation-only request.
type GenerateResult struct {
	Success   bool   `json:"success"`
	Content   string `json:"content,omitempty"`
	WordCount int    `json:"word_count,omitempty"`
	Error     string `json:"error,omitempty"`
}

// PublishResult is the outcome of a publish-only request.
type PublishResult struct {
	Success bool   `json:"success"`
	PostID  string `json:"post_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RunResult is the outcome of a full generate-and-publish run.
type RunResult struct {
	Success   bool   `json:"success"`
	Content   string `json:"content,omitempty"`
	WordCount int    `json:"word_count,omitempty"`
	PostID    string `json:"post_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// AuthURL returns the authorization URL for the publishing account.
func (s *Service) AuthURL() string {
	return s.publisher.AuthURL()
}

// CompleteAuthorization exchanges the authorization code and durably stores
// the resulting credential, replacing any prior one.
func (s *Service) CompleteAuthorization(ctx context.Context, code string) (*credential.Credential, error) {
	result, err := s.publisher.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	cred := &credential.Credential{
		AccessToken: result.AccessToken,
		AccountID:   result.AccountID,
		ObtainedAt:  time.Now().UTC(),
	}

	if err := s.credentials.Save(ctx, cred); err != nil {
		return nil, fmt.Errorf("storing credential: %w", err)
	}

	log.Info().Str("account_id", cred.AccountID).Msg("LinkedIn authorization completed")

	return cred, nil
}

// AuthStatus reports whether a credential is stored and for which account.
func (s *Service) AuthStatus(ctx context.Context) (bool, string, error) {
	cred, err := s.credentials.Load(ctx)
	if err != nil {
		return false, "", err
	}
	if cred == nil {
		return false, "", nil
	}
	return true, cred.AccountID, nil
}

// History returns the post history, newest first.
func (s *Service) History(ctx context.Context) ([]history.Entry, error) {
	return s.history.List(ctx)
}

// Generate produces a post without publishing or notifying. A successful
// generation is recorded in history with status "generated"; a failed one
// leaves no trace. The returned error is non-nil only for persistence
// failures.
func (s *Service) Generate(ctx context.Context) (*GenerateResult, error) {
	post, err := s.generate(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Post generation failed")
		return &GenerateResult{Success: false, Error: err.Error()}, nil
	}

	if _, err := s.history.Append(ctx, history.Entry{
		Content:   post.Content,
		WordCount: post.WordCount,
		Status:    history.StatusGenerated,
	}); err != nil {
		log.Error().Err(err).Msg("Failed to record generated post")
		return nil, err
	}

	log.Info().Int("word_count", post.WordCount).Msg("Post generated")

	return &GenerateResult{
		Success:   true,
		Content:   post.Content,
		WordCount: post.WordCount,
	}, nil
}

// Publish publishes caller-supplied content. Empty content fails validation
// before any upstream call; a missing credential fails before the publish.
// The publish outcome is recorded in history either way. No notification is
// sent on this path.
func (s *Service) Publish(ctx context.Context, content string) (*PublishResult, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}

	cred, err := s.credentials.Load(ctx)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, ErrNotAuthenticated
	}

	s.publisher.SetCredential(cred.AccessToken, cred.AccountID)

	postID, pubErr := s.publish(ctx, content)

	entry := history.Entry{
		Content:   content,
		WordCount: generator.CountWords(content),
		Status:    history.StatusPublished,
	}
	if pubErr != nil {
		entry.Status = history.StatusFailed
		entry.Error = pubErr.Error()
	} else {
		entry.PublishedID = postID
	}

	if _, err := s.history.Append(ctx, entry); err != nil {
		log.Error().Err(err).Msg("Failed to record publish attempt")
		return nil, err
	}

	if pubErr != nil {
		log.Error().Err(pubErr).Msg("Publish failed")
		return &PublishResult{Success: false, Error: pubErr.Error()}, nil
	}

	log.Info().Str("post_id", postID).Msg("Post published")

	return &PublishResult{Success: true, PostID: postID}, nil
}

// GenerateAndPublish runs the full pipeline. The credential is checked
// first, before the generator is invoked. A generation failure sends an
// error notification and leaves history untouched; once generation
// succeeds, exactly one history entry is written regardless of the publish
// outcome, and a notification reflecting the final status is dispatched.
func (s *Service) GenerateAndPublish(ctx context.Context, trigger Trigger) (*RunResult, error) {
	cred, err := s.credentials.Load(ctx)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, ErrNotAuthenticated
	}

	s.publisher.SetCredential(cred.AccessToken, cred.AccountID)

	log.Info().Str("trigger", string(trigger)).Msg("Starting pipeline run")

	post, err := s.generate(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Post generation failed")
		s.notifyAsync(notify.Outcome{
			Success: false,
			Error:   err.Error(),
			Time:    time.Now(),
		})
		metrics.RecordPipelineRun(string(trigger), "error")
		return &RunResult{Success: false, Error: err.Error()}, nil
	}

	if post.WordCount == 0 {
		post.WordCount = generator.CountWords(post.Content)
	}

	postID, pubErr := s.publish(ctx, post.Content)

	entry := history.Entry{
		Content:   post.Content,
		WordCount: post.WordCount,
		Status:    history.StatusPublished,
	}
	if pubErr != nil {
		entry.Status = history.StatusFailed
		entry.Error = pubErr.Error()
	} else {
		entry.PublishedID = postID
	}

	if _, histErr := s.history.Append(ctx, entry); histErr != nil {
		// The post may already be live; losing the record is severe, so the
		// failure propagates after logging.
		log.Error().Err(histErr).Str("post_id", postID).Msg("Failed to record pipeline run")
		return nil, histErr
	}

	outcome := notify.Outcome{
		Success:   pubErr == nil,
		Content:   post.Content,
		WordCount: post.WordCount,
		Time:      time.Now(),
	}
	if pubErr != nil {
		outcome.Error = pubErr.Error()
	}
	s.notifyAsync(outcome)

	metrics.RecordPipelineRun(string(trigger), string(entry.Status))

	if pubErr != nil {
		log.Error().Err(pubErr).Msg("Pipeline run failed to publish")
		return &RunResult{
			Success:   false,
			Content:   post.Content,
			WordCount: post.WordCount,
			Error:     pubErr.Error(),
		}, nil
	}

	log.Info().Str("post_id", postID).Int("word_count", post.WordCount).Msg("Pipeline run completed")

	return &RunResult{
		Success:   true,
		Content:   post.Content,
		WordCount: post.WordCount,
		PostID:    postID,
	}, nil
}

func (s *Service) generate(ctx context.Context) (*generator.Post, error) {
	start := time.Now()
	post, err := s.generator.Generate(ctx)
	metrics.ObserveGeneration(time.Since(start))
	return post, err
}

func (s *Service) publish(ctx context.Context, content string) (string, error) {
	start := time.Now()
	postID, err := s.publisher.Publish(ctx, content)
	metrics.ObservePublish(time.Since(start))
	return postID, err
}

// notifyAsync dispatches the outcome notification on a detached goroutine.
// Callers cannot observe notification failures; they are logged only.
func (s *Service) notifyAsync(outcome notify.Outcome) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()

		if err := s.notifier.NotifyOutcome(ctx, outcome); err != nil {
			log.Error().Err(err).Msg("Outcome notification failed")
			metrics.RecordNotification("error")
			return
		}
		metrics.RecordNotification("sent")
	}()
}
