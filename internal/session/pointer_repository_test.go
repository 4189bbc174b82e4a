package session

import (
	"testing"
	"time"

	"support-chat-be/internal/entity"

	"github.com/stretchr/testify/assert"
)

func TestPointerWithinWindowIsReturned(t *testing.T) {
	now := time.Now()
	repo := NewPointerRepository(24 * time.Hour).WithClock(func() time.Time { return now })

	repo.Save("client-1", entity.SessionPointer{
		Id:        "9876543210",
		CreatedAt: now.Add(-1 * time.Hour).UnixMilli(),
	})

	pointer, ok := repo.Get("client-1")
	assert.True(t, ok)
	assert.Equal(t, "9876543210", pointer.Id)
}

func TestExpiredPointerIsDiscarded(t *testing.T) {
	now := time.Now()
	repo := NewPointerRepository(24 * time.Hour).WithClock(func() time.Time { return now })

	repo.Save("client-1", entity.SessionPointer{
		Id:        "9876543210",
		CreatedAt: now.Add(-25 * time.Hour).UnixMilli(),
	})

	_, ok := repo.Get("client-1")
	assert.False(t, ok)

	// Discarded for good, not just filtered on this read.
	_, ok = repo.Get("client-1")
	assert.False(t, ok)
}

func TestDeleteClearsPointer(t *testing.T) {
	now := time.Now()
	repo := NewPointerRepository(24 * time.Hour).WithClock(func() time.Time { return now })

	repo.Save("client-1", entity.SessionPointer{Id: "9876543210", CreatedAt: now.UnixMilli()})
	repo.Delete("client-1")

	_, ok := repo.Get("client-1")
	assert.False(t, ok)
}

func TestUnknownClientHasNoPointer(t *testing.T) {
	repo := NewPointerRepository(24 * time.Hour)
	_, ok := repo.Get("nobody")
	assert.False(t, ok)
}
