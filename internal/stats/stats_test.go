package stats

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanvirio/contactbook/internal/identity"
	"github.com/tanvirio/contactbook/pkg/logging"
)

func expectStatsQueries(mock sqlmock.Sqlmock, userID uuid.UUID, total, recent, labels, shared int) {
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM user_contacts WHERE user_id`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(total))
	mock.ExpectQuery(`created_at >= now\(\)`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(recent))
	mock.ExpectQuery(`SELECT COUNT\(DISTINCT label\)`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(labels))
	mock.ExpectQuery(`EXISTS`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(shared))
}

func TestForUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	userID := uuid.New()
	expectStatsQueries(mock, userID, 42, 3, 5, 7)

	svc := NewService(db)
	out, err := svc.ForUser(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, 42, out.TotalContacts)
	assert.Equal(t, 3, out.AddedThisWeek)
	assert.Equal(t, 5, out.DistinctLabels)
	assert.Equal(t, 7, out.SharedContacts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForUserQueryFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	userID := uuid.New()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM user_contacts`).
		WithArgs(userID).
		WillReturnError(context.DeadlineExceeded)

	_, err = NewService(db).ForUser(context.Background(), userID)
	assert.Error(t, err)
}

func TestStatsHandler(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	userID := uuid.New()
	expectStatsQueries(mock, userID, 10, 1, 2, 0)

	handler := NewHandler(NewService(db), logging.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/profile/stats", nil)
	req = req.WithContext(identity.WithUserID(req.Context(), userID))
	w := httptest.NewRecorder()
	handler.Get(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, 10, out.TotalContacts)
	assert.Equal(t, 1, out.AddedThisWeek)
}

func TestStatsHandlerRequiresAuth(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	handler := NewHandler(NewService(db), logging.Default())

	w := httptest.NewRecorder()
	handler.Get(w, httptest.NewRequest(http.MethodGet, "/api/profile/stats", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
