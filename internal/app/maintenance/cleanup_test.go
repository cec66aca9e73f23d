package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flightdeck-io/flightdeck/internal/cache"
	"github.com/flightdeck-io/flightdeck/internal/database/testutil"
	"github.com/flightdeck-io/flightdeck/internal/models"
	"github.com/flightdeck-io/flightdeck/internal/services"
)

func TestRunOncePurgesExpiredRecords(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	shares, err := services.NewShareService(db)
	require.NoError(t, err)
	store := cache.NewDatabaseStore(db)

	trial := models.Trial{Name: "Maintenance"}
	require.NoError(t, db.Create(&trial).Error)

	expired := models.ShareLink{TrialID: trial.ID, Token: "expired-token", ExpiresAt: time.Now().Add(-time.Hour)}
	live := models.ShareLink{TrialID: trial.ID, Token: "live-token", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, db.Create(&expired).Error)
	require.NoError(t, db.Create(&live).Error)

	require.NoError(t, store.Set(context.Background(), "stale", []byte("x"), time.Millisecond))
	require.NoError(t, store.Set(context.Background(), "fresh", []byte("y"), time.Hour))
	time.Sleep(5 * time.Millisecond)

	cleaner := NewCleaner(shares, store)
	require.NoError(t, cleaner.RunOnce(context.Background()))

	var links int64
	require.NoError(t, db.Model(&models.ShareLink{}).Count(&links).Error)
	require.EqualValues(t, 1, links)

	_, ok, err := store.Get(context.Background(), "fresh")
	require.NoError(t, err)
	require.True(t, ok)

	var entries int64
	require.NoError(t, db.Model(&models.CacheEntry{}).Count(&entries).Error)
	require.EqualValues(t, 1, entries)
}

func TestStartSchedulesJobs(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	shares, err := services.NewShareService(db)
	require.NoError(t, err)
	store := cache.NewDatabaseStore(db)

	cleaner := NewCleaner(shares, store,
		WithShareSchedule("@every 1h"),
		WithCacheSchedule("@every 1h"),
	)
	require.NoError(t, cleaner.Start())
	<-cleaner.Stop().Done()
}

func TestStartWithoutDependenciesIsNoop(t *testing.T) {
	cleaner := NewCleaner(nil, nil)
	require.NoError(t, cleaner.Start())
	require.NoError(t, cleaner.RunOnce(context.Background()))
}
