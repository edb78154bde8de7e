package sequence

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nextSQL = regexp.QuoteMeta(`INSERT INTO event_sequence (partition_key, last_sequence, updated_at)`)

func TestNextSequence(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(nextSQL).WithArgs("session-1").
		WillReturnRows(sqlmock.NewRows([]string{"last_sequence"}).AddRow(int64(1)))
	mock.ExpectQuery(nextSQL).WithArgs("session-1").
		WillReturnRows(sqlmock.NewRows([]string{"last_sequence"}).AddRow(int64(2)))

	repo := NewRepository(db)
	seq, err := repo.NextSequence(context.Background(), "session-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)

	seq, err = repo.NextSequence(context.Background(), "session-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), seq)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNextSequence_Errors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	_, err = repo.NextSequence(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyPartition)

	boom := errors.New("connection reset")
	mock.ExpectQuery(nextSQL).WithArgs("session-2").WillReturnError(boom)
	_, err = repo.NextSequence(context.Background(), "session-2")
	assert.ErrorIs(t, err, boom)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCounter(t *testing.T) {
	c := NewCounter()
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := c.NextSequence(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	got, err := c.NextSequence(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)

	_, err = c.NextSequence(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyPartition)
}
