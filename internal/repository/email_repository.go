package repository

import (
	"context"

	"mailpilot-be/internal/database"
	"mailpilot-be/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is the store of record for emails, actions, preferences, and
// summaries. Method sets are split across the *_repository.go files by
// concern.
type Store struct {
	emails      *mongo.Collection
	actions     *mongo.Collection
	actionPrefs *mongo.Collection
	generalPref *mongo.Collection
	summaries   *mongo.Collection
}

func NewStore(db *database.MongoDB) *Store {
	return &Store{
		emails:      db.Emails(),
		actions:     db.Actions(),
		actionPrefs: db.ActionPreferences(),
		generalPref: db.GeneralPreferences(),
		summaries:   db.Summaries(),
	}
}

// InsertEmail stores a new email. A duplicate mail id is an integrity error,
// not a no-op.
func (s *Store) InsertEmail(ctx context.Context, email *models.Email) error {
	_, err := s.emails.InsertOne(ctx, email)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	return err
}

// FetchEmail returns one email by mail id, or ErrEmailNotFound.
func (s *Store) FetchEmail(ctx context.Context, mailID string) (*models.Email, error) {
	var email models.Email
	err := s.emails.FindOne(ctx, bson.M{"_id": mailID}).Decode(&email)
	if err == mongo.ErrNoDocuments {
		return nil, ErrEmailNotFound
	}
	if err != nil {
		return nil, err
	}
	return &email, nil
}

// FetchEmailsForThread returns the thread's emails ordered by receipt time
// ascending.
func (s *Store) FetchEmailsForThread(ctx context.Context, threadID string) ([]models.Email, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "receivedAt", Value: 1}})

	cursor, err := s.emails.Find(ctx, bson.M{"threadId": threadID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var emails []models.Email
	if err = cursor.All(ctx, &emails); err != nil {
		return nil, err
	}
	return emails, nil
}

// FetchThreadByMailID resolves the thread containing the given email. An
// unknown mail id yields an empty thread, not an error.
func (s *Store) FetchThreadByMailID(ctx context.Context, mailID string) ([]models.Email, error) {
	email, err := s.FetchEmail(ctx, mailID)
	if err == ErrEmailNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.FetchEmailsForThread(ctx, email.ThreadID)
}

// FetchAllEmails returns every stored email ordered by receipt time, used to
// resynchronize the semantic index from the store of record.
func (s *Store) FetchAllEmails(ctx context.Context) ([]models.Email, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "receivedAt", Value: 1}})

	cursor, err := s.emails.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var emails []models.Email
	if err = cursor.All(ctx, &emails); err != nil {
		return nil, err
	}
	return emails, nil
}

// HasExternalID reports whether an email with the given external id is
// already stored.
func (s *Store) HasExternalID(ctx context.Context, externalID string) (bool, error) {
	count, err := s.emails.CountDocuments(ctx, bson.M{"externalId": externalID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// threadExists reports whether any stored email belongs to the thread.
func (s *Store) threadExists(ctx context.Context, threadID string) (bool, error) {
	count, err := s.emails.CountDocuments(ctx, bson.M{"threadId": threadID}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
