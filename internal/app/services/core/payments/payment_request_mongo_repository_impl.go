package payments

import (
	"context"
	"errors"
	"farmstay-service/internal/app/contracts"
	"farmstay-service/internal/app/models"
	"farmstay-service/internal/pkg/constvars"
	"farmstay-service/internal/pkg/exceptions"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PaymentRequestMongoRepository struct {
	Collection *mongo.Collection
}

func NewPaymentRequestMongoRepository(db *mongo.Database) contracts.PaymentRequestRepository {
	return &PaymentRequestMongoRepository{
		Collection: db.Collection(constvars.MongoCollectionPaymentRequests),
	}
}

func (r *PaymentRequestMongoRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "reference", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "bookingId", Value: 1}, {Key: "status", Value: 1}}},
	}

	_, err := r.Collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return exceptions.ErrMongoDBCreateIndex(err)
	}
	return nil
}

func (r *PaymentRequestMongoRepository) Insert(ctx context.Context, paymentRequest *models.PaymentRequest) error {
	_, err := r.Collection.InsertOne(ctx, paymentRequest)
	if err != nil {
		return exceptions.ErrMongoDBInsertDocument(err)
	}
	return nil
}

func (r *PaymentRequestMongoRepository) findOne(ctx context.Context, filter bson.M) (*models.PaymentRequest, error) {
	var paymentRequest models.PaymentRequest
	err := r.Collection.FindOne(ctx, filter).Decode(&paymentRequest)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &paymentRequest, nil
}

func (r *PaymentRequestMongoRepository) FindByReference(ctx context.Context, reference string) (*models.PaymentRequest, error) {
	return r.findOne(ctx, bson.M{"reference": reference})
}

func (r *PaymentRequestMongoRepository) FindActiveByBookingID(ctx context.Context, bookingID string) (*models.PaymentRequest, error) {
	return r.findOne(ctx, bson.M{
		"bookingId": bookingID,
		"status":    models.PaymentRequestStatusActive,
	})
}

func (r *PaymentRequestMongoRepository) SupersedeActive(ctx context.Context, bookingID string) (int64, error) {
	filter := bson.M{
		"bookingId": bookingID,
		"status":    models.PaymentRequestStatusActive,
	}
	update := bson.M{"$set": bson.M{
		"status":    models.PaymentRequestStatusSuperseded,
		"updatedAt": time.Now(),
	}}

	result, err := r.Collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, exceptions.ErrMongoDBUpdateDocument(err)
	}
	return result.ModifiedCount, nil
}

func (r *PaymentRequestMongoRepository) UpdateStatus(ctx context.Context, paymentRequestID string, from, to models.PaymentRequestStatus, failureReason string) (bool, error) {
	set := bson.M{
		"status":    to,
		"updatedAt": time.Now(),
	}
	if failureReason != "" {
		set["failureReason"] = failureReason
	}

	result, err := r.Collection.UpdateOne(ctx, bson.M{"_id": paymentRequestID, "status": from}, bson.M{"$set": set})
	if err != nil {
		return false, exceptions.ErrMongoDBUpdateDocument(err)
	}
	return result.MatchedCount == 1, nil
}
