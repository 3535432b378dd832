package bookings

import (
	"context"
	"farmstay-service/internal/app/models"
	"farmstay-service/internal/pkg/exceptions"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestBuildBookingFilter(t *testing.T) {
	assert.Equal(t, bson.M{}, buildBookingFilter(models.BookingFilter{}))
	assert.Equal(t, bson.M{
		"paymentStatus":   models.PaymentStatusPaid,
		"customer.mobile": "+97450001234",
	}, buildBookingFilter(models.BookingFilter{PaymentStatus: models.PaymentStatusPaid, Mobile: "+97450001234"}))
}

func TestBuildStalePendingFilter(t *testing.T) {
	cutoff := time.Date(2026, 3, 1, 11, 45, 0, 0, time.UTC)
	filter := buildStalePendingFilter(cutoff)

	assert.Equal(t, models.PaymentStatusPending, filter["paymentStatus"])
	assert.Equal(t, bson.M{"$lt": cutoff}, filter["updatedAt"])
	assert.Equal(t, bson.A{
		bson.M{"lastReconciledAt": bson.M{"$exists": false}},
		bson.M{"lastReconciledAt": bson.M{"$lt": cutoff}},
	}, filter["$or"])
}

func TestBookingMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("find by id", func(mt *mtest.T) {
		repo := &BookingMongoRepository{Collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "farmstay.bookings", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "b-1"},
			{Key: "paymentStatus", Value: "pending"},
			{Key: "computedTotal", Value: int64(50000)},
		}))

		booking, err := repo.FindByID(context.Background(), "b-1")
		require.NoError(t, err)
		require.NotNil(t, booking)
		assert.Equal(t, models.PaymentStatusPending, booking.PaymentStatus)
		assert.Equal(t, int64(50000), booking.ComputedTotal)
	})

	mt.Run("find by id missing", func(mt *mtest.T) {
		repo := &BookingMongoRepository{Collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "farmstay.bookings", mtest.FirstBatch))

		booking, err := repo.FindByID(context.Background(), "missing")
		require.NoError(t, err)
		assert.Nil(t, booking)
	})

	mt.Run("list stale pending", func(mt *mtest.T) {
		repo := &BookingMongoRepository{Collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "farmstay.bookings", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "b-1"}, {Key: "paymentStatus", Value: "pending"}, {Key: "paymentReference", Value: "BOOK-b-1-1"}},
			bson.D{{Key: "_id", Value: "b-2"}, {Key: "paymentStatus", Value: "pending"}, {Key: "paymentReference", Value: "BOOK-b-2-1"}},
		))

		bookings, err := repo.ListStalePending(context.Background(), time.Now().Add(-15*time.Minute), 10)
		require.NoError(t, err)
		require.Len(t, bookings, 2)
		assert.Equal(t, "BOOK-b-2-1", bookings[1].PaymentReference)
	})

	mt.Run("increment payment attempts", func(mt *mtest.T) {
		repo := &BookingMongoRepository{Collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: bson.D{{Key: "_id", Value: "b-1"}, {Key: "paymentAttempts", Value: 3}}},
		))

		attempt, err := repo.IncrementPaymentAttempts(context.Background(), "b-1")
		require.NoError(t, err)
		assert.Equal(t, 3, attempt)
	})

	mt.Run("payment details skip a booking that left pending", func(mt *mtest.T) {
		repo := &BookingMongoRepository{Collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		ref := "BOOK-b-1-2"
		err := repo.UpdatePaymentDetails(context.Background(), "b-1", models.BookingPaymentUpdate{PaymentReference: &ref})
		assert.Equal(t, http.StatusConflict, exceptions.StatusCodeOf(err))
	})

	mt.Run("mark reconcile attempt", func(mt *mtest.T) {
		repo := &BookingMongoRepository{Collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		require.NoError(t, repo.MarkReconcileAttempt(context.Background(), "b-1", time.Now()))
	})

	mt.Run("transition lost the race", func(mt *mtest.T) {
		repo := &BookingMongoRepository{Collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		applied, err := repo.TransitionPaymentStatus(context.Background(), "b-1", models.StatusChange{
			From:   models.PaymentStatusPending,
			To:     models.PaymentStatusPaid,
			Source: models.TransitionSourceCallback,
		}, nil)
		require.NoError(t, err)
		assert.False(t, applied)
	})

	mt.Run("transition applied", func(mt *mtest.T) {
		repo := &BookingMongoRepository{Collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		ref := "BOOK-b-1-1"
		applied, err := repo.TransitionPaymentStatus(context.Background(), "b-1", models.StatusChange{
			From:   models.PaymentStatusFailed,
			To:     models.PaymentStatusPending,
			Source: models.TransitionSourceRetry,
		}, &models.BookingPaymentUpdate{PaymentReference: &ref})
		require.NoError(t, err)
		assert.True(t, applied)
	})
}
