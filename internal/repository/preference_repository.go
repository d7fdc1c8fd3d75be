package repository

import (
	"context"
	"strings"

	"mailpilot-be/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UpsertGeneralPreference sets one process-wide preference. Inserting an
// existing key overwrites its value.
func (s *Store) UpsertGeneralPreference(ctx context.Context, key, value string) error {
	update := bson.M{"$set": bson.M{"value": value}}
	_, err := s.generalPref.UpdateOne(ctx, bson.M{"_id": key}, update, options.Update().SetUpsert(true))
	return err
}

// FetchGeneralPreferences returns every general preference as a key to value
// mapping.
func (s *Store) FetchGeneralPreferences(ctx context.Context) (map[string]string, error) {
	cursor, err := s.generalPref.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var prefs []models.GeneralPreference
	if err = cursor.All(ctx, &prefs); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(prefs))
	for _, p := range prefs {
		out[p.Key] = p.Value
	}
	return out, nil
}

// UpsertActionPreference sets one recipient-scoped preference. Inserting an
// existing (recipient, key) pair overwrites its value and provenance.
// Recipient addresses are stored lowercased.
func (s *Store) UpsertActionPreference(ctx context.Context, recipientEmail, key, value, sourceActionID string) error {
	recipientEmail = strings.ToLower(recipientEmail)

	update := bson.M{
		"$set": bson.M{
			"value":          value,
			"sourceActionId": sourceActionID,
		},
		"$setOnInsert": bson.M{
			"_id":            uuid.NewString(),
			"recipientEmail": recipientEmail,
			"key":            key,
		},
	}
	filter := bson.M{"recipientEmail": recipientEmail, "key": key}
	_, err := s.actionPrefs.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// FetchPreferencesForRecipient returns every stored preference for the given
// recipient address, empty if none.
func (s *Store) FetchPreferencesForRecipient(ctx context.Context, recipientEmail string) ([]models.ActionPreference, error) {
	filter := bson.M{"recipientEmail": strings.ToLower(recipientEmail)}

	cursor, err := s.actionPrefs.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var prefs []models.ActionPreference
	if err = cursor.All(ctx, &prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}
