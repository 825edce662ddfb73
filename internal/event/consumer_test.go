package event

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/domain"
	apperrors "github.com/alvina-abdullah/foodeez.ch-sub002/pkg/errors"
	pkgkafka "github.com/alvina-abdullah/foodeez.ch-sub002/pkg/kafka"
)

type stubApprover struct {
	calls    int
	reviewID int64
	approved bool
	err      error
}

func (s *stubApprover) SetReviewApproval(_ context.Context, reviewID int64, approved bool) (*domain.Review, error) {
	s.calls++
	s.reviewID = reviewID
	s.approved = approved
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Review{ID: reviewID, Approved: approved}, nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func moderatedEvent(t *testing.T, reviewID int64, approved bool) *pkgkafka.Event {
	t.Helper()
	event, err := pkgkafka.NewEvent(TopicReviewModerated, "1", AggregateTypeReview, "moderation-svc", ReviewModeratedData{
		ReviewID: reviewID,
		Approved: approved,
	})
	require.NoError(t, err)
	return event
}

func TestModerationHandler_AppliesDecision(t *testing.T) {
	approver := &stubApprover{}
	handler := ModerationHandler(approver, newTestLogger())

	err := handler(context.Background(), moderatedEvent(t, 42, true))

	require.NoError(t, err)
	assert.Equal(t, 1, approver.calls)
	assert.Equal(t, int64(42), approver.reviewID)
	assert.True(t, approver.approved)
}

func TestModerationHandler_MissingReviewID(t *testing.T) {
	approver := &stubApprover{}
	handler := ModerationHandler(approver, newTestLogger())

	err := handler(context.Background(), moderatedEvent(t, 0, true))

	require.NoError(t, err)
	assert.Zero(t, approver.calls)
}

func TestModerationHandler_ReviewGone(t *testing.T) {
	approver := &stubApprover{err: apperrors.NotFound("review", 42)}
	handler := ModerationHandler(approver, newTestLogger())

	// A deleted review is not retryable; the message must be consumed.
	err := handler(context.Background(), moderatedEvent(t, 42, false))

	require.NoError(t, err)
	assert.Equal(t, 1, approver.calls)
}

func TestModerationHandler_StoreErrorPropagates(t *testing.T) {
	approver := &stubApprover{err: assert.AnError}
	handler := ModerationHandler(approver, newTestLogger())

	err := handler(context.Background(), moderatedEvent(t, 42, true))

	require.Error(t, err)
}

func TestModerationHandler_BadPayload(t *testing.T) {
	approver := &stubApprover{}
	handler := ModerationHandler(approver, newTestLogger())

	event := &pkgkafka.Event{EventType: TopicReviewModerated, Data: []byte(`{invalid`)}
	err := handler(context.Background(), event)

	require.Error(t, err)
	assert.Zero(t, approver.calls)
}
