package repository

import (
	"context"

	"mailpilot-be/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// InsertAction stores a newly proposed action.
func (s *Store) InsertAction(ctx context.Context, action *models.Action) error {
	_, err := s.actions.InsertOne(ctx, action)
	return err
}

// FetchAction returns one action by id, or ErrActionNotFound.
func (s *Store) FetchAction(ctx context.Context, actionID string) (*models.Action, error) {
	var action models.Action
	err := s.actions.FindOne(ctx, bson.M{"_id": actionID}).Decode(&action)
	if err == mongo.ErrNoDocuments {
		return nil, ErrActionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &action, nil
}

// UpdateAction updates the provided fields of one action. Nil arguments leave
// the stored value untouched; each non-nil argument carries a full intended
// value, so racing writers resolve to last write wins.
func (s *Store) UpdateAction(ctx context.Context, actionID string, status *string, payload map[string]any, result map[string]any) error {
	set := bson.M{}
	if status != nil {
		set["status"] = *status
	}
	if payload != nil {
		set["payload"] = payload
	}
	if result != nil {
		set["result"] = result
	}
	if len(set) == 0 {
		return nil
	}

	res, err := s.actions.UpdateOne(ctx, bson.M{"_id": actionID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrActionNotFound
	}
	return nil
}
