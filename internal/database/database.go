package database

import (
	"context"
	"errors"
	"fmt"

	"committee-notifier/internal/logger"
	"committee-notifier/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	ResidentsCollection        = "residents"
	FeePaymentsCollection      = "feePayments"
	PendingPaymentsCollection  = "pendingPayments"
	ChargingStationsCollection = "chargingStations"
	MeterReadingsCollection    = "meterReadings"
	SettingsCollection         = "settings"
	UsersCollection            = "users"

	globalSettingsID = "global"
)

// DB wraps the read side of the committee MongoDB database. The debt job
// never writes through it.
type DB struct {
	client   *mongo.Client
	database *mongo.Database
}

// New creates a new database connection
func New(ctx context.Context, uri, dbName string) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err = client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log := logger.WithComponent("database")
	log.Info().Str("database", dbName).Msg("Successfully connected to MongoDB")

	return &DB{
		client:   client,
		database: client.Database(dbName),
	}, nil
}

// Close closes the database connection
func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}

// Ping checks that the server is reachable
func (db *DB) Ping(ctx context.Context) error {
	return db.client.Ping(ctx, nil)
}

// GetSettings returns the global settings. A missing settings document
// yields zero defaults.
func (db *DB) GetSettings(ctx context.Context) (models.GlobalSettings, error) {
	var doc settingsDoc
	err := db.database.Collection(SettingsCollection).FindOne(ctx, bson.M{"_id": globalSettingsID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.GlobalSettings{}, nil
		}
		return models.GlobalSettings{}, fmt.Errorf("failed to find settings: %w", err)
	}
	return doc.toModel()
}

// GetActiveResidents returns residents with active = true
func (db *DB) GetActiveResidents(ctx context.Context) ([]models.Resident, error) {
	opts := options.Find().SetSort(bson.D{{Key: "apartmentNumber", Value: 1}})
	docs, err := findAll[residentDoc](ctx, db.database.Collection(ResidentsCollection), bson.M{"active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch residents: %w", err)
	}
	return convertAll(docs, residentDoc.toModel)
}

// GetFeePaymentsForYear returns every fee payment record of a year
func (db *DB) GetFeePaymentsForYear(ctx context.Context, year int) ([]models.FeePayment, error) {
	docs, err := findAll[feePaymentDoc](ctx, db.database.Collection(FeePaymentsCollection), bson.M{"year": year})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fee payments for %d: %w", year, err)
	}
	return convertAll(docs, feePaymentDoc.toModel)
}

// GetUnpaidFeePayments returns fee payment records explicitly marked unpaid
func (db *DB) GetUnpaidFeePayments(ctx context.Context) ([]models.FeePayment, error) {
	docs, err := findAll[feePaymentDoc](ctx, db.database.Collection(FeePaymentsCollection), bson.M{"paid": false})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unpaid fee payments: %w", err)
	}
	return convertAll(docs, feePaymentDoc.toModel)
}

// GetUnpaidPendingPayments returns ad-hoc charges not yet paid
func (db *DB) GetUnpaidPendingPayments(ctx context.Context) ([]models.PendingPayment, error) {
	docs, err := findAll[pendingPaymentDoc](ctx, db.database.Collection(PendingPaymentsCollection), bson.M{"paid": false})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending payments: %w", err)
	}
	return convertAll(docs, pendingPaymentDoc.toModel)
}

// GetChargingStations returns all charging stations
func (db *DB) GetChargingStations(ctx context.Context) ([]models.ChargingStation, error) {
	docs, err := findAll[chargingStationDoc](ctx, db.database.Collection(ChargingStationsCollection), bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch charging stations: %w", err)
	}
	return convertAll(docs, chargingStationDoc.toModel)
}

// GetUnpaidMeterReadings returns meter readings whose bill is unpaid
func (db *DB) GetUnpaidMeterReadings(ctx context.Context) ([]models.MeterReading, error) {
	docs, err := findAll[meterReadingDoc](ctx, db.database.Collection(MeterReadingsCollection), bson.M{"paid": false})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch meter readings: %w", err)
	}
	return convertAll(docs, meterReadingDoc.toModel)
}

// GetMailRecipients returns accounts flagged to receive the debt summary
func (db *DB) GetMailRecipients(ctx context.Context) ([]models.RecipientAccount, error) {
	docs, err := findAll[recipientDoc](ctx, db.database.Collection(UsersCollection), bson.M{"sendMail": true})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch mail recipients: %w", err)
	}
	return convertAll(docs, recipientDoc.toModel)
}

func findAll[D any](ctx context.Context, coll *mongo.Collection, filter bson.M, opts ...*options.FindOptions) ([]D, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []D
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
