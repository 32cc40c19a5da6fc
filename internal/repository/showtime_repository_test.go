package repository

import (
    "context"
    "testing"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func newShowtimeMock(t *testing.T) (*ShowtimeRepo, sqlmock.Sqlmock) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() { db.Close() })
    return NewShowtimeRepo(db), mock
}

func TestGetBookedSeats(t *testing.T) {
    repo, mock := newShowtimeMock(t)

    t.Run("populated", func(t *testing.T) {
        mock.ExpectQuery("SELECT booked_seats FROM showtimes").
            WithArgs(7).
            WillReturnRows(sqlmock.NewRows([]string{"booked_seats"}).AddRow(`["A1","B2"]`))
        seats, err := repo.GetBookedSeats(context.Background(), 7)
        require.NoError(t, err)
        assert.Equal(t, []string{"A1", "B2"}, seats)
    })

    t.Run("null column is empty list", func(t *testing.T) {
        mock.ExpectQuery("SELECT booked_seats FROM showtimes").
            WithArgs(7).
            WillReturnRows(sqlmock.NewRows([]string{"booked_seats"}).AddRow(nil))
        seats, err := repo.GetBookedSeats(context.Background(), 7)
        require.NoError(t, err)
        assert.Equal(t, []string{}, seats)
    })

    t.Run("unknown showtime", func(t *testing.T) {
        mock.ExpectQuery("SELECT booked_seats FROM showtimes").
            WithArgs(99).
            WillReturnRows(sqlmock.NewRows([]string{"booked_seats"}))
        _, err := repo.GetBookedSeats(context.Background(), 99)
        require.ErrorIs(t, err, ErrShowtimeNotFound)
    })
}

func TestMergeBookedSeatsTx(t *testing.T) {
    repo, mock := newShowtimeMock(t)

    t.Run("appends to existing list under row lock", func(t *testing.T) {
        mock.ExpectBegin()
        mock.ExpectQuery("SELECT booked_seats FROM showtimes WHERE id = \\? FOR UPDATE").
            WithArgs(7).
            WillReturnRows(sqlmock.NewRows([]string{"booked_seats"}).AddRow(`["Z9"]`))
        mock.ExpectExec("UPDATE showtimes SET booked_seats").
            WithArgs(`["Z9","A1","A2"]`, 7).
            WillReturnResult(sqlmock.NewResult(0, 1))
        mock.ExpectCommit()

        tx, err := repo.db.Begin()
        require.NoError(t, err)
        require.NoError(t, repo.MergeBookedSeatsTx(context.Background(), tx, 7, []string{"A1", "A2"}))
        require.NoError(t, tx.Commit())
    })

    t.Run("corrupt column restarts from new seats", func(t *testing.T) {
        mock.ExpectBegin()
        mock.ExpectQuery("SELECT booked_seats FROM showtimes WHERE id = \\? FOR UPDATE").
            WithArgs(7).
            WillReturnRows(sqlmock.NewRows([]string{"booked_seats"}).AddRow(`not-json`))
        mock.ExpectExec("UPDATE showtimes SET booked_seats").
            WithArgs(`["A1"]`, 7).
            WillReturnResult(sqlmock.NewResult(0, 1))
        mock.ExpectCommit()

        tx, err := repo.db.Begin()
        require.NoError(t, err)
        require.NoError(t, repo.MergeBookedSeatsTx(context.Background(), tx, 7, []string{"A1"}))
        require.NoError(t, tx.Commit())
    })

    t.Run("no seats is a no-op", func(t *testing.T) {
        // No expectations queued: an empty merge must not touch the database.
        require.NoError(t, repo.MergeBookedSeatsTx(context.Background(), nil, 7, nil))
    })

    require.NoError(t, mock.ExpectationsWereMet())
}
