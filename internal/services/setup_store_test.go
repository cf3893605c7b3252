package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"divine-deck/internal/models"
)

func TestSetupStore_SaveAndGet(t *testing.T) {
	store := newTestSetups(t)

	saved, err := store.Save(models.MassSetup{
		Name:  "  Christmas Vigil ",
		Queue: []models.QueueEntry{{Slide: slide("A"), QueueID: "q1"}, {Slide: slide("A"), QueueID: "q2"}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "Christmas Vigil", saved.Name)
	assert.False(t, saved.CreatedAt.IsZero())

	got, err := store.Get(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Christmas Vigil", got.Name)
	require.Len(t, got.Queue, 2)
	assert.Equal(t, "q2", got.Queue[1].QueueID)
	assert.Equal(t, "content A", got.Queue[1].Contents[0])
}

func TestSetupStore_SaveRequiresName(t *testing.T) {
	store := newTestSetups(t)
	_, err := store.Save(models.MassSetup{Name: " "})
	assert.Error(t, err)
}

func TestSetupStore_SaveOverwritesSameID(t *testing.T) {
	store := newTestSetups(t)

	first, err := store.Save(models.MassSetup{ID: "setup-1", Name: "Draft"})
	require.NoError(t, err)
	_, err = store.Save(models.MassSetup{ID: "setup-1", Name: "Final", CreatedAt: first.CreatedAt})
	require.NoError(t, err)

	all, err := store.List()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Final", all[0].Name)
	assert.NotNil(t, all[0].Queue)
}

func TestSetupStore_ListOldestFirst(t *testing.T) {
	store := newTestSetups(t)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	_, err := store.Save(models.MassSetup{ID: "b", Name: "Later", CreatedAt: base.Add(time.Hour)})
	require.NoError(t, err)
	_, err = store.Save(models.MassSetup{ID: "a", Name: "Earlier", CreatedAt: base})
	require.NoError(t, err)

	all, err := store.List()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Earlier", all[0].Name)
	assert.Equal(t, "Later", all[1].Name)
}

func TestSetupStore_Delete(t *testing.T) {
	store := newTestSetups(t)

	saved, err := store.Save(models.MassSetup{Name: "Temp"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(saved.ID))
	assert.ErrorIs(t, store.Delete(saved.ID), ErrSetupNotFound)

	_, err = store.Get(saved.ID)
	assert.ErrorIs(t, err, ErrSetupNotFound)
}

func TestSetupStore_EmptyList(t *testing.T) {
	store := newTestSetups(t)

	all, err := store.List()
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}
