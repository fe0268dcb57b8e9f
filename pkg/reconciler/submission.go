package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/AhmedSarhan/gamer-boy/pkg/client"
)

type SubmissionState int

const (
	Idle SubmissionState = iota
	Submitting
	Succeeded
	Failed
)

func (s SubmissionState) String() string {
	switch s {
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "idle"
}

var (
	ErrSubmitting    = errors.New("a rating is already being submitted")
	ErrNotSubmitting = errors.New("no rating is being submitted")
	ErrEmptyResponse = errors.New("empty rating response")
)

// SubmissionView is what a rating widget renders.
type SubmissionView struct {
	State         SubmissionState
	Stars         int
	AverageRating float64
	TotalRatings  int64
	InputEnabled  bool
	Err           error
}

// RatingSubmission shows a chosen rating before the server confirms it. A rejection
// restores the previously confirmed stars. Nothing is retried automatically.
type RatingSubmission struct {
	mu        sync.Mutex
	state     SubmissionState
	shown     int
	confirmed int
	average   float64
	total     int64
	err       error
}

// NewRatingSubmission starts from the server state r, which may be nil.
func NewRatingSubmission(r *client.Rating) *RatingSubmission {
	s := &RatingSubmission{}
	if r != nil {
		s.adopt(r)
	}
	return s
}

func (s *RatingSubmission) adopt(r *client.Rating) {
	s.average = r.AverageRating
	s.total = r.TotalRatings
	if r.UserRating != nil {
		s.confirmed = *r.UserRating
	}
	s.shown = s.confirmed
}

// Begin shows stars and disables input until Resolve or Reject.
func (s *RatingSubmission) Begin(stars int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Submitting {
		return ErrSubmitting
	}
	if stars < 1 || stars > 5 {
		return fmt.Errorf("stars must be between 1 and 5, got %d", stars)
	}
	s.state = Submitting
	s.shown = stars
	s.err = nil
	return nil
}

// Resolve adopts the aggregate returned by the server. A nil r rejects the submission
// with ErrEmptyResponse.
func (s *RatingSubmission) Resolve(r *client.Rating) error {
	if r == nil {
		if err := s.Reject(ErrEmptyResponse); err != nil {
			return err
		}
		return ErrEmptyResponse
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Submitting {
		return ErrNotSubmitting
	}
	confirmed := *r
	if confirmed.UserRating == nil {
		stars := s.shown
		confirmed.UserRating = &stars
	}
	s.adopt(&confirmed)
	s.state = Succeeded
	return nil
}

// Reject reverts to the last confirmed stars and enables input again.
func (s *RatingSubmission) Reject(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Submitting {
		return ErrNotSubmitting
	}
	s.shown = s.confirmed
	s.state = Failed
	s.err = err
	return nil
}

// RetryAfter returns the wait the server asked for when the last submission was
// rate limited.
func (s *RatingSubmission) RetryAfter() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		return 0, false
	}
	return client.RetryAfter(s.err)
}

func (s *RatingSubmission) View() SubmissionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SubmissionView{
		State:         s.state,
		Stars:         s.shown,
		AverageRating: s.average,
		TotalRatings:  s.total,
		InputEnabled:  s.state != Submitting,
		Err:           s.err,
	}
}

// Submit runs one Begin, send, Resolve or Reject cycle.
func (s *RatingSubmission) Submit(ctx context.Context, stars int, send func(ctx context.Context, stars int) (*client.Rating, error)) error {
	if err := s.Begin(stars); err != nil {
		return err
	}
	r, err := send(ctx, stars)
	if err != nil {
		_ = s.Reject(err)
		return err
	}
	return s.Resolve(r)
}
