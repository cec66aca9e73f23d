package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flightdeck-io/flightdeck/internal/database/testutil"
	"github.com/flightdeck-io/flightdeck/internal/models"
)

func TestIncidentServiceReportAndGet(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	trials, err := NewTrialService(db)
	require.NoError(t, err)
	flights, err := NewFlightService(db, nil)
	require.NoError(t, err)
	incidents, err := NewIncidentService(db)
	require.NoError(t, err)

	flight := seedFlight(t, trials, flights)

	incident, err := incidents.Report(context.Background(), ReportIncidentInput{
		FlightID:    flight.ID,
		Date:        time.Date(2026, 5, 2, 10, 15, 0, 0, time.UTC),
		Description: "altimeter dropout during climb",
		Resolution:  "sensor harness reseated",
	})
	require.NoError(t, err)
	require.NotEmpty(t, incident.ID)

	loaded, err := incidents.Get(context.Background(), incident.ID)
	require.NoError(t, err)
	require.Equal(t, "altimeter dropout during climb", loaded.Description)
	require.Equal(t, "sensor harness reseated", loaded.Resolution)

	_, err = incidents.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrIncidentNotFound)
}

func TestIncidentServiceReportValidates(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	incidents, err := NewIncidentService(db)
	require.NoError(t, err)

	_, err = incidents.Report(context.Background(), ReportIncidentInput{Description: "no flight"})
	require.Error(t, err)

	_, err = incidents.Report(context.Background(), ReportIncidentInput{
		FlightID:    "missing",
		Description: "orphan",
	})
	require.ErrorIs(t, err, ErrFlightNotFound)
}

func TestIncidentServiceListByFlightOrdersByDate(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	trials, err := NewTrialService(db)
	require.NoError(t, err)
	flights, err := NewFlightService(db, nil)
	require.NoError(t, err)
	incidents, err := NewIncidentService(db)
	require.NoError(t, err)

	flight := seedFlight(t, trials, flights)

	later := time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC)
	earlier := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err = incidents.Report(context.Background(), ReportIncidentInput{FlightID: flight.ID, Date: later, Description: "second"})
	require.NoError(t, err)
	_, err = incidents.Report(context.Background(), ReportIncidentInput{FlightID: flight.ID, Date: earlier, Description: "first"})
	require.NoError(t, err)

	list, err := incidents.ListByFlight(context.Background(), flight.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "first", list[0].Description)
	require.Equal(t, "second", list[1].Description)
}

func TestFlightDeleteCascadesIncidents(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	trials, err := NewTrialService(db)
	require.NoError(t, err)
	flights, err := NewFlightService(db, nil)
	require.NoError(t, err)
	incidents, err := NewIncidentService(db)
	require.NoError(t, err)

	flight := seedFlight(t, trials, flights)
	_, err = incidents.Report(context.Background(), ReportIncidentInput{FlightID: flight.ID, Description: "gyro spike"})
	require.NoError(t, err)

	require.NoError(t, flights.Delete(context.Background(), flight.ID))

	var count int64
	require.NoError(t, db.Model(&models.Incident{}).Where("flight_id = ?", flight.ID).Count(&count).Error)
	require.Zero(t, count)
}
