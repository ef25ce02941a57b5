package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outy-app/outy/internal/model"
	"github.com/outy-app/outy/internal/repository"
)

var reviewCols = []string{"id", "user_id", "related_type", "related_id", "rating", "comment", "reply", "created_at"}

func newReviewHandler(t *testing.T) (*ReviewHandler, sqlmock.Sqlmock, *recordingCache) {
	db, mock := newMock(t)
	cache := &recordingCache{}
	return NewReviewHandler(repository.NewTargetRepo(db), repository.NewReviewRepo(db), cache), mock, cache
}

func TestUpsertReviewRejectsRatingOutOfRange(t *testing.T) {
	for _, rating := range []string{"0", "6"} {
		h, _, _ := newReviewHandler(t)
		c, rec := newContext(http.MethodPost, "/api/reviews",
			`{"related_type":"place","related_id":"`+placeID+`","rating":`+rating+`}`)
		withClaims(c, userID, model.RoleUser)
		require.NoError(t, h.Upsert(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "rating %s", rating)
	}
}

func TestUpsertReviewInvalidatesListCache(t *testing.T) {
	h, mock, cache := newReviewHandler(t)

	mock.ExpectQuery(`FROM places WHERE id = \$1`).WithArgs(placeID).
		WillReturnRows(sqlmock.NewRows(targetCols).AddRow(hostID, "NONE", ""))
	mock.ExpectQuery(`INSERT INTO reviews .* ON CONFLICT \(user_id, related_type, related_id\)`).
		WithArgs(sqlmock.AnyArg(), userID, "place", placeID, 4, "Lovely terrace").
		WillReturnRows(sqlmock.NewRows(reviewCols).AddRow(reviewID, userID, "place", placeID, 4, "Lovely terrace", nil, time.Now()))

	c, rec := newContext(http.MethodPost, "/api/reviews",
		`{"related_type":"place","related_id":"`+placeID+`","rating":4,"comment":" Lovely terrace "}`)
	withClaims(c, userID, model.RoleUser)
	require.NoError(t, h.Upsert(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var rv model.Review
	decodeBody(t, rec, &rv)
	assert.Equal(t, 4, rv.Rating)
	assert.Nil(t, rv.Reply)
	assert.Equal(t, []string{PlacesRoute}, cache.routes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertReviewUnknownListing(t *testing.T) {
	h, mock, _ := newReviewHandler(t)
	mock.ExpectQuery(`FROM events WHERE id = \$1`).WillReturnRows(sqlmock.NewRows(targetCols))

	c, rec := newContext(http.MethodPost, "/api/reviews",
		`{"related_type":"event","related_id":"`+placeID+`","rating":5}`)
	withClaims(c, userID, model.RoleUser)
	require.NoError(t, h.Upsert(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func expectReviewOf(mock sqlmock.Sqlmock, owner string) {
	mock.ExpectQuery(`FROM reviews WHERE id = \$1`).WithArgs(reviewID).
		WillReturnRows(sqlmock.NewRows(reviewCols).AddRow(reviewID, userID, "place", placeID, 5, "Great", nil, time.Now()))
	mock.ExpectQuery(`FROM places WHERE id = \$1`).WithArgs(placeID).
		WillReturnRows(sqlmock.NewRows(targetCols).AddRow(owner, "OUTY", ""))
}

func TestReplyByNonOwnerIsForbidden(t *testing.T) {
	h, mock, _ := newReviewHandler(t)
	expectReviewOf(mock, hostID)

	c, rec := newContext(http.MethodPost, "/api/reviews/"+reviewID+"/reply", `{"reply":"Thanks!"}`)
	withParams(c, "id", reviewID)
	withClaims(c, otherHostID, model.RoleBusiness)
	require.NoError(t, h.Reply(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplyByOwner(t *testing.T) {
	h, mock, _ := newReviewHandler(t)
	expectReviewOf(mock, hostID)
	mock.ExpectQuery(`UPDATE reviews SET reply = \$1 WHERE id = \$2`).WithArgs("Thanks!", reviewID).
		WillReturnRows(sqlmock.NewRows(reviewCols).AddRow(reviewID, userID, "place", placeID, 5, "Great", "Thanks!", time.Now()))

	c, rec := newContext(http.MethodPost, "/api/reviews/"+reviewID+"/reply", `{"reply":"  Thanks! "}`)
	withParams(c, "id", reviewID)
	withClaims(c, hostID, model.RoleBusiness)
	require.NoError(t, h.Reply(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var rv model.Review
	decodeBody(t, rec, &rv)
	require.NotNil(t, rv.Reply)
	assert.Equal(t, "Thanks!", *rv.Reply)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplyValidation(t *testing.T) {
	h, _, _ := newReviewHandler(t)

	c, rec := newContext(http.MethodPost, "/api/reviews/"+reviewID+"/reply", `{"reply":"   "}`)
	withParams(c, "id", reviewID)
	withClaims(c, hostID, model.RoleBusiness)
	require.NoError(t, h.Reply(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newContext(http.MethodPost, "/api/reviews/nope/reply", `{"reply":"Hi"}`)
	withParams(c, "id", "nope")
	withClaims(c, hostID, model.RoleBusiness)
	require.NoError(t, h.Reply(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
