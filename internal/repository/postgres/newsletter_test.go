package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/alvina-abdullah/foodeez.ch-sub002/pkg/errors"
	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/domain"
)

func newNewsletterTestFixture(t *testing.T) (*NewsletterRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewNewsletterRepository(mock)
	return repo, mock
}

func TestNewsletterRepository_Subscribe_Success(t *testing.T) {
	repo, mock := newNewsletterTestFixture(t)
	defer mock.Close()

	sub := &domain.Subscriber{Email: "mara@example.com"}

	mock.ExpectQuery("INSERT INTO newsletter_subscriber").
		WithArgs(sub.Email, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"subscriber_id"}).AddRow(int64(1)))

	err := repo.Subscribe(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, int64(1), sub.ID)
	assert.False(t, sub.SubscribedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewsletterRepository_Subscribe_DuplicateEmail(t *testing.T) {
	repo, mock := newNewsletterTestFixture(t)
	defer mock.Close()

	sub := &domain.Subscriber{Email: "mara@example.com"}

	mock.ExpectQuery("INSERT INTO newsletter_subscriber").
		WithArgs(sub.Email, pgxmock.AnyArg()).
		WillReturnError(fmt.Errorf("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))

	err := repo.Subscribe(context.Background(), sub)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyExists), "expected ErrAlreadyExists, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewsletterRepository_Unsubscribe_Success(t *testing.T) {
	repo, mock := newNewsletterTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM newsletter_subscriber").
		WithArgs("mara@example.com").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := repo.Unsubscribe(context.Background(), "mara@example.com")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewsletterRepository_Unsubscribe_NotFound(t *testing.T) {
	repo, mock := newNewsletterTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM newsletter_subscriber").
		WithArgs("gone@example.com").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Unsubscribe(context.Background(), "gone@example.com")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
