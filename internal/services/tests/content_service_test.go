package services_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"studyai_go_backend/internal/kvstore"
	"studyai_go_backend/internal/models"
	"studyai_go_backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAndListRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	content := services.NewContentService(store)

	original := models.Note{
		UserID:       "u1",
		Topic:        "Photosynthesis",
		Content:      "- light reactions\n- dark reactions",
		OriginalText: "Photosynthesis is the process...",
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}

	noteID, err := content.Store(ctx, models.KindNote, "u1", original)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(noteID, "note:u1:"))

	records, err := content.ListByUser(ctx, models.KindNote, "u1")
	require.NoError(t, err)
	require.Len(t, records, 1)

	var restored models.Note
	require.NoError(t, json.Unmarshal(records[0], &restored))
	assert.Equal(t, original, restored)
}

func TestListByUserIsolation(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	content := services.NewContentService(store)

	// Interleave writes from two users and two kinds.
	_, err := content.Store(ctx, models.KindNote, "u1", models.Note{UserID: "u1", Topic: "one"})
	require.NoError(t, err)
	_, err = content.Store(ctx, models.KindNote, "u2", models.Note{UserID: "u2", Topic: "intruder"})
	require.NoError(t, err)
	_, err = content.Store(ctx, models.KindQuiz, "u1", models.Quiz{UserID: "u1", Topic: "wrong kind"})
	require.NoError(t, err)
	_, err = content.Store(ctx, models.KindNote, "u1", models.Note{UserID: "u1", Topic: "two"})
	require.NoError(t, err)

	records, err := content.ListByUser(ctx, models.KindNote, "u1")
	require.NoError(t, err)
	require.Len(t, records, 2)

	for _, raw := range records {
		var note models.Note
		require.NoError(t, json.Unmarshal(raw, &note))
		assert.Equal(t, "u1", note.UserID)
	}
}

func TestListByUserCreationOrder(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	content := services.NewContentService(store)

	topics := []string{"first", "second", "third"}
	for _, topic := range topics {
		_, err := content.Store(ctx, models.KindNote, "u1", models.Note{UserID: "u1", Topic: topic})
		require.NoError(t, err)
		// Keys embed a millisecond timestamp; space the writes out so the
		// ordering assertion is deterministic.
		time.Sleep(2 * time.Millisecond)
	}

	records, err := content.ListByUser(ctx, models.KindNote, "u1")
	require.NoError(t, err)
	require.Len(t, records, len(topics))

	for i, raw := range records {
		var note models.Note
		require.NoError(t, json.Unmarshal(raw, &note))
		assert.Equal(t, topics[i], note.Topic)
	}
}

func TestStoreKeysAreUnique(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	content := services.NewContentService(store)

	// Burst of writes inside the same millisecond must still produce distinct
	// keys thanks to the random suffix.
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id, err := content.Store(ctx, models.KindFlashcardSet, "u1", models.FlashcardSet{UserID: "u1"})
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate record id %s", id)
		seen[id] = true
	}

	records, err := content.ListByUser(ctx, models.KindFlashcardSet, "u1")
	require.NoError(t, err)
	assert.Len(t, records, 50)
}

func TestListByUserEmpty(t *testing.T) {
	content := services.NewContentService(kvstore.NewMemoryStore())
	records, err := content.ListByUser(context.Background(), models.KindRoutine, "u1")
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}
