package bookings

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

type BookingMongoRepository struct {
	Collection *mongo.Collection
}

func NewBookingMongoRepository(db *mongo.Database) contracts.BookingRepository {
	return &BookingMongoRepository{
		Collection: db.Collection(constvars.MongoCollectionBookings),
	}
}

func (r *BookingMongoRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "paymentStatus", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "customer.mobile", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "paymentStatus", Value: 1}, {Key: "updatedAt", Value: 1}}},
		{Keys: bson.D{{Key: "paymentStatus", Value: 1}, {Key: "lastReconciledAt", Value: 1}, {Key: "updatedAt", Value: 1}}},
		{
			Keys:    bson.D{{Key: "paymentReference", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	_, err := r.Collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return exceptions.ErrMongoDBCreateIndex(err)
	}
	return nil
}

func (r *BookingMongoRepository) Insert(ctx context.Context, booking *models.Booking) error {
	_, err := r.Collection.InsertOne(ctx, booking)
	if err != nil {
		return exceptions.ErrMongoDBInsertDocument(err)
	}
	return nil
}

func (r *BookingMongoRepository) FindByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	var booking models.Booking
	err := r.Collection.FindOne(ctx, bson.M{"_id": bookingID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &booking, nil
}

func buildBookingFilter(filter models.BookingFilter) bson.M {
	query := bson.M{}
	if filter.PaymentStatus != "" {
		query["paymentStatus"] = filter.PaymentStatus
	}
	if filter.Mobile != "" {
		query["customer.mobile"] = filter.Mobile
	}
	return query
}

func (r *BookingMongoRepository) List(ctx context.Context, filter models.BookingFilter, page, pageSize int) ([]models.Booking, int, error) {
	query := buildBookingFilter(filter)

	total, err := r.Collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, exceptions.ErrMongoDBCountDocuments(err)
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := r.Collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, 0, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	bookings := make([]models.Booking, 0, pageSize)
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, 0, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return bookings, int(total), nil
}

func buildStalePendingFilter(staleBefore time.Time) bson.M {
	return bson.M{
		"paymentStatus":    models.PaymentStatusPending,
		"paymentReference": bson.M{"$exists": true, "$ne": ""},
		"updatedAt":        bson.M{"$lt": staleBefore},
		"$or": bson.A{
			bson.M{"lastReconciledAt": bson.M{"$exists": false}},
			bson.M{"lastReconciledAt": bson.M{"$lt": staleBefore}},
		},
	}
}

func (r *BookingMongoRepository) ListStalePending(ctx context.Context, staleBefore time.Time, limit int) ([]models.Booking, error) {
	query := buildStalePendingFilter(staleBefore)
	// Never reconciled sorts first.
	findOptions := options.Find().
		SetSort(bson.D{{Key: "lastReconciledAt", Value: 1}, {Key: "updatedAt", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.Collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	bookings := make([]models.Booking, 0, limit)
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return bookings, nil
}

func (r *BookingMongoRepository) IncrementPaymentAttempts(ctx context.Context, bookingID string) (int, error) {
	update := bson.M{
		"$inc": bson.M{"paymentAttempts": 1},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"paymentAttempts": 1})

	var result struct {
		PaymentAttempts int `bson:"paymentAttempts"`
	}
	err := r.Collection.FindOneAndUpdate(ctx, bson.M{"_id": bookingID}, update, opts).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, exceptions.ErrBookingNotFound(err)
		}
		return 0, exceptions.ErrMongoDBUpdateDocument(err)
	}
	return result.PaymentAttempts, nil
}

func paymentUpdateFields(set bson.M, update *models.BookingPaymentUpdate) {
	if update == nil {
		return
	}
	if update.PaymentReference != nil {
		set["paymentReference"] = *update.PaymentReference
	}
	if update.GatewayPaymentID != nil {
		set["gatewayPaymentId"] = *update.GatewayPaymentID
	}
	if update.RedirectURL != nil {
		set["redirectUrl"] = *update.RedirectURL
	}
}

func (r *BookingMongoRepository) TransitionPaymentStatus(ctx context.Context, bookingID string, change models.StatusChange, update *models.BookingPaymentUpdate) (bool, error) {
	if change.At.IsZero() {
		change.At = time.Now()
	}

	set := bson.M{
		"paymentStatus": change.To,
		"updatedAt":     change.At,
	}
	paymentUpdateFields(set, update)

	filter := bson.M{"_id": bookingID, "paymentStatus": change.From}
	result, err := r.Collection.UpdateOne(ctx, filter, bson.M{
		"$set":  set,
		"$push": bson.M{"statusHistory": change},
	})
	if err != nil {
		return false, exceptions.ErrMongoDBUpdateDocument(err)
	}
	return result.MatchedCount == 1, nil
}

func (r *BookingMongoRepository) UpdatePaymentDetails(ctx context.Context, bookingID string, update models.BookingPaymentUpdate) error {
	set := bson.M{"updatedAt": time.Now()}
	paymentUpdateFields(set, &update)

	filter := bson.M{"_id": bookingID, "paymentStatus": models.PaymentStatusPending}
	result, err := r.Collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return exceptions.ErrMongoDBUpdateDocument(err)
	}
	if result.MatchedCount == 0 {
		return exceptions.ErrBookingConcurrentUpdate(errors.New("booking is missing or no longer pending"))
	}
	return nil
}

func (r *BookingMongoRepository) MarkReconcileAttempt(ctx context.Context, bookingID string, at time.Time) error {
	_, err := r.Collection.UpdateOne(ctx, bson.M{"_id": bookingID}, bson.M{"$set": bson.M{"lastReconciledAt": at}})
	if err != nil {
		return exceptions.ErrMongoDBUpdateDocument(err)
	}
	return nil
}
