package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDB(uri, dbName string) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Set client options
	clientOptions := options.Client().ApplyURI(uri)

	// Connect to MongoDB
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping the database
	err = client.Ping(ctx, nil)
	if err != nil {
		return nil, err
	}

	return &MongoDB{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

func (m *MongoDB) Disconnect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.Client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the store relies on: thread lookups
// ordered by receipt time, external id dedupe for Gmail ingestion, and the
// (recipient, key) uniqueness backing preference upserts.
func (m *MongoDB) EnsureIndexes(ctx context.Context) error {
	_, err := m.Emails().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "threadId", Value: 1}, {Key: "receivedAt", Value: 1}}},
		{
			Keys: bson.D{{Key: "externalId", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"externalId": bson.M{"$exists": true}}),
		},
	})
	if err != nil {
		return err
	}

	_, err = m.ActionPreferences().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "recipientEmail", Value: 1}, {Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = m.Summaries().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "threadId", Value: 1}},
	})
	return err
}

// Collection helpers
func (m *MongoDB) Emails() *mongo.Collection {
	return m.Database.Collection("emails")
}

func (m *MongoDB) Actions() *mongo.Collection {
	return m.Database.Collection("actions")
}

func (m *MongoDB) ActionPreferences() *mongo.Collection {
	return m.Database.Collection("action_preferences")
}

func (m *MongoDB) GeneralPreferences() *mongo.Collection {
	return m.Database.Collection("general_preferences")
}

func (m *MongoDB) Summaries() *mongo.Collection {
	return m.Database.Collection("summaries")
}
