package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/berbagi/internal/api"
	"github.com/dmitrijs2005/berbagi/internal/common"
	"github.com/dmitrijs2005/berbagi/internal/logging"
	"github.com/dmitrijs2005/berbagi/internal/models"
)

// Outbox queues stories for background replay.
type Outbox interface {
	AddPendingWrite(ctx context.Context, p models.PendingWrite) (int64, error)
}

// TokenSource yields the current session token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// AddResult tells whether a story was posted or queued for later.
type AddResult struct {
	Queued    bool
	PendingID int64
}

type StoryService interface {
	List(ctx context.Context, opts api.ListOptions) ([]api.Story, error)
	Get(ctx context.Context, id string) (*api.Story, error)
	Add(ctx context.Context, s api.NewStory) (AddResult, error)
}

type Stories struct {
	client api.Client
	auth   TokenSource
	outbox Outbox
	log    logging.Logger
}

var _ StoryService = (*Stories)(nil)

func NewStories(client api.Client, auth TokenSource, outbox Outbox, log logging.Logger) *Stories {
	return &Stories{client: client, auth: auth, outbox: outbox, log: log}
}

// token returns the session token, or "" for guest reads.
func (s *Stories) token(ctx context.Context) (string, error) {
	tok, err := s.auth.Token(ctx)
	if errors.Is(err, common.ErrNotLoggedIn) {
		return "", nil
	}
	return tok, err
}

func (s *Stories) List(ctx context.Context, opts api.ListOptions) ([]api.Story, error) {
	tok, err := s.token(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.ListStories(ctx, tok, opts)
}

func (s *Stories) Get(ctx context.Context, id string) (*api.Story, error) {
	tok, err := s.token(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.GetStory(ctx, tok, id)
}

// Add posts the story. When the API is unreachable or fails with a server
// error the story is queued together with the current token and replayed
// by the sync engine later.
func (s *Stories) Add(ctx context.Context, story api.NewStory) (AddResult, error) {
	if story.Description == "" && len(story.Photo) == 0 {
		return AddResult{}, common.ErrEmptyPayload
	}
	if (story.Lat == nil) != (story.Lon == nil) {
		return AddResult{}, common.ErrInvalidLocation
	}
	tok, err := s.auth.Token(ctx)
	if err != nil {
		return AddResult{}, err
	}

	err = s.client.AddStory(ctx, tok, story)
	if err == nil {
		return AddResult{}, nil
	}
	if !shouldQueue(err) {
		return AddResult{}, err
	}

	id, qerr := s.outbox.AddPendingWrite(ctx, models.PendingWrite{
		Description: story.Description,
		Photo:       story.Photo,
		PhotoType:   story.PhotoType,
		Lat:         story.Lat,
		Lon:         story.Lon,
		Token:       tok,
	})
	if qerr != nil {
		return AddResult{}, errors.Join(err, qerr)
	}
	s.log.Info(ctx, "story queued for sync", "id", id, "reason", err)
	return AddResult{Queued: true, PendingID: id}, nil
}

func shouldQueue(err error) bool {
	if errors.Is(err, api.ErrUnavailable) {
		return true
	}
	var apiErr *api.APIError
	return errors.As(err, &apiErr) && apiErr.Temporary()
}
