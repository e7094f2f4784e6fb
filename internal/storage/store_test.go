package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := NewDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db)
}

func strptr(s string) *string { return &s }

func TestUpsertSubscriber(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.UpsertSubscriber("12345", "private", "Alice"))
	require.NoError(t, store.UpsertSubscriber("12345", "private", "Alice Renamed"))

	subs, err := store.ListSubscribers()
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "Alice Renamed", subs[0].Title)
}

func TestSettings(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.UpsertSubscriber("12345", "private", ""))

	// Unset falls back.
	val, err := store.GetSetting("12345", SettingWeatherMode, ModeBoth)
	require.NoError(t, err)
	assert.Equal(t, ModeBoth, val)

	has, err := store.HasSetting("12345", SettingWeatherMode)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, store.SetSetting("12345", SettingWeatherMode, ModeWindy))

	val, err = store.GetSetting("12345", SettingWeatherMode, ModeBoth)
	require.NoError(t, err)
	assert.Equal(t, ModeWindy, val)

	has, err = store.HasSetting("12345", SettingWeatherMode)
	require.NoError(t, err)
	assert.True(t, has)

	// Overwrite.
	require.NoError(t, store.SetSetting("12345", SettingWeatherMode, ModeBMKG))
	val, err = store.GetSetting("12345", SettingWeatherMode, ModeBoth)
	require.NoError(t, err)
	assert.Equal(t, ModeBMKG, val)
}

func TestSaveLocationUpsert(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.UpsertSubscriber("12345", "private", ""))

	id1, err := store.SaveLocation(&Location{
		SubscriberID: "12345",
		Name:         "Banda Aceh",
		NameNorm:     "banda aceh",
		Lat:          5.54,
		Lon:          95.32,
		CreatedBy:    "12345",
	})
	require.NoError(t, err)
	require.Positive(t, id1)

	// Same normalized name refreshes in place and keeps the id.
	id2, err := store.SaveLocation(&Location{
		SubscriberID: "12345",
		Name:         "BANDA ACEH",
		NameNorm:     "banda aceh",
		Lat:          5.55,
		Lon:          95.33,
		RegionCode:   strptr("11.71.01.1001"),
		CreatedBy:    "12345",
	})
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	loc, err := store.GetLocation("12345", id1)
	require.NoError(t, err)
	assert.Equal(t, "BANDA ACEH", loc.Name)
	assert.Equal(t, 5.55, loc.Lat)
	require.NotNil(t, loc.RegionCode)
	assert.Equal(t, "11.71.01.1001", *loc.RegionCode)

	count, err := store.CountLocations("12345")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSaveLocationKeepsRegionCodeOnNilUpdate(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.UpsertSubscriber("12345", "private", ""))

	id, err := store.SaveLocation(&Location{
		SubscriberID: "12345",
		Name:         "Sabang",
		NameNorm:     "sabang",
		Lat:          5.89,
		Lon:          95.32,
		RegionCode:   strptr("11.72.01.1001"),
	})
	require.NoError(t, err)

	// Re-save without a code must not erase the stored one.
	_, err = store.SaveLocation(&Location{
		SubscriberID: "12345",
		Name:         "Sabang",
		NameNorm:     "sabang",
		Lat:          5.89,
		Lon:          95.32,
	})
	require.NoError(t, err)

	loc, err := store.GetLocation("12345", id)
	require.NoError(t, err)
	require.NotNil(t, loc.RegionCode)
	assert.Equal(t, "11.72.01.1001", *loc.RegionCode)
}

func TestDeleteLocation(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.UpsertSubscriber("12345", "private", ""))
	require.NoError(t, store.UpsertSubscriber("67890", "private", ""))

	id, err := store.SaveLocation(&Location{
		SubscriberID: "12345",
		Name:         "Meulaboh",
		NameNorm:     "meulaboh",
		Lat:          4.14,
		Lon:          96.13,
	})
	require.NoError(t, err)

	// Another subscriber cannot delete it.
	err = store.DeleteLocation("67890", id)
	assert.ErrorIs(t, err, ErrLocationNotFound)

	require.NoError(t, store.DeleteLocation("12345", id))
	assert.ErrorIs(t, store.DeleteLocation("12345", id), ErrLocationNotFound)
}

func TestListLocationsScopedToSubscriber(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.UpsertSubscriber("a", "private", ""))
	require.NoError(t, store.UpsertSubscriber("b", "private", ""))

	_, err := store.SaveLocation(&Location{SubscriberID: "a", Name: "Sigli", NameNorm: "sigli", Lat: 5.38, Lon: 95.96})
	require.NoError(t, err)
	_, err = store.SaveLocation(&Location{SubscriberID: "b", Name: "Takengon", NameNorm: "takengon", Lat: 4.63, Lon: 96.84})
	require.NoError(t, err)

	locsA, err := store.ListLocations("a")
	require.NoError(t, err)
	require.Len(t, locsA, 1)
	assert.Equal(t, "Sigli", locsA[0].Name)

	all, err := store.ListAllLocations()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
