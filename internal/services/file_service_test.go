package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flightdeck-io/flightdeck/internal/database/testutil"
)

func TestFileServiceRegisterAndList(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	trials, err := NewTrialService(db)
	require.NoError(t, err)
	files, err := NewFileService(db)
	require.NoError(t, err)

	trial, err := trials.Create(context.Background(), CreateTrialInput{Name: "Documented"})
	require.NoError(t, err)

	_, err = files.Register(context.Background(), RegisterFileInput{
		TrialID:     trial.ID,
		Name:        "flight-plan.pdf",
		ContentType: "application/pdf",
		SizeBytes:   2048,
		URL:         "s3://artefacts/flight-plan.pdf",
	})
	require.NoError(t, err)

	listed, err := files.ListByTrial(context.Background(), trial.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "flight-plan.pdf", listed[0].Name)
}

func TestFileServiceRegisterValidates(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	files, err := NewFileService(db)
	require.NoError(t, err)

	_, err = files.Register(context.Background(), RegisterFileInput{Name: "x", URL: "y"})
	require.Error(t, err)

	_, err = files.Register(context.Background(), RegisterFileInput{TrialID: "missing", Name: "x", URL: "y"})
	require.ErrorIs(t, err, ErrTrialNotFound)
}

func TestFileServiceDelete(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	trials, err := NewTrialService(db)
	require.NoError(t, err)
	files, err := NewFileService(db)
	require.NoError(t, err)

	trial, err := trials.Create(context.Background(), CreateTrialInput{Name: "Cleanup"})
	require.NoError(t, err)

	file, err := files.Register(context.Background(), RegisterFileInput{
		TrialID: trial.ID,
		Name:    "photo.jpg",
		URL:     "s3://artefacts/photo.jpg",
	})
	require.NoError(t, err)

	require.NoError(t, files.Delete(context.Background(), file.ID))
	require.ErrorIs(t, files.Delete(context.Background(), file.ID), ErrFileNotFound)
}
