package repository

import (
	"context"

	"mailpilot-be/internal/models"

	"go.mongodb.org/mongo-driver/bson"
)

// InsertSummary stores a thread summary. The thread must already contain at
// least one email; otherwise ErrUnknownThread is returned and nothing is
// written.
func (s *Store) InsertSummary(ctx context.Context, summary *models.Summary) error {
	exists, err := s.threadExists(ctx, summary.ThreadID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrUnknownThread
	}

	_, err = s.summaries.InsertOne(ctx, summary)
	return err
}

// FetchSummariesForThread returns every summary recorded for the thread.
func (s *Store) FetchSummariesForThread(ctx context.Context, threadID string) ([]models.Summary, error) {
	cursor, err := s.summaries.Find(ctx, bson.M{"threadId": threadID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var summaries []models.Summary
	if err = cursor.All(ctx, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}
