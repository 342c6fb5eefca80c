package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadscope/prospect-cli/internal/model"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresWithPool(mock), mock
}

func testRun() *model.Run {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return &model.Run{
		ID: "run-1",
		Params: model.RunParams{
			Center:          model.Coordinates{Lat: 48.8566, Lng: 2.3522},
			RadiusM:         1000,
			MinQualityScore: 3,
			ProximityM:      50,
			NameSimilarity:  0.55,
			ZoneTolerance:   1.10,
		},
		Status:    model.RunStatusCollecting,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestPostgresCreateRun(t *testing.T) {
	store, mock := newMockStore(t)
	run := testRun()

	paramsJSON, err := json.Marshal(run.Params)
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO runs`).
		WithArgs(run.ID, paramsJSON, string(run.Status), run.CreatedAt, run.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = store.CreateRun(context.Background(), run)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateRunStatus(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE runs SET status`).
		WithArgs("fusing", pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := store.UpdateRunStatus(context.Background(), "run-1", model.RunStatusFusing)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateRunStatusNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE runs SET status`).
		WithArgs("complete", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := store.UpdateRunStatus(context.Background(), "missing", model.RunStatusComplete)
	assert.True(t, eris.Is(err, ErrRunNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetRun(t *testing.T) {
	store, mock := newMockStore(t)
	run := testRun()

	paramsJSON, err := json.Marshal(run.Params)
	require.NoError(t, err)

	rows := pgxmock.NewRows([]string{"id", "params", "status", "result", "created_at", "updated_at"}).
		AddRow(run.ID, paramsJSON, string(run.Status), []byte(nil), run.CreatedAt, run.UpdatedAt)
	mock.ExpectQuery(`SELECT id, params, status, result, created_at, updated_at FROM runs WHERE id`).
		WithArgs(run.ID).
		WillReturnRows(rows)

	got, err := store.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, run.Params, got.Params)
	assert.Equal(t, model.RunStatusCollecting, got.Status)
	assert.Nil(t, got.Result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListRunsWithStatus(t *testing.T) {
	store, mock := newMockStore(t)
	run := testRun()
	run.Status = model.RunStatusComplete

	paramsJSON, err := json.Marshal(run.Params)
	require.NoError(t, err)
	resultJSON, err := json.Marshal(&model.RunResult{DirectoryIn: 10, POIIn: 8, MatchedPairs: 5, Fused: 13, Accepted: 7, OutOfZone: 4, LowQuality: 2})
	require.NoError(t, err)

	rows := pgxmock.NewRows([]string{"id", "params", "status", "result", "created_at", "updated_at"}).
		AddRow(run.ID, paramsJSON, string(run.Status), resultJSON, run.CreatedAt, run.UpdatedAt)
	mock.ExpectQuery(`SELECT id, params, status, result, created_at, updated_at FROM runs WHERE status`).
		WithArgs("complete", 50, 0).
		WillReturnRows(rows)

	runs, err := store.ListRuns(context.Background(), RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.NotNil(t, runs[0].Result)
	assert.Equal(t, 5, runs[0].Result.MatchedPairs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveOutput(t *testing.T) {
	store, mock := newMockStore(t)

	result := &model.RunResult{DirectoryIn: 1, POIIn: 1, MatchedPairs: 1, Fused: 1, Accepted: 1}
	rec := model.FusedRecord{Name: "Boulangerie Martin", Sources: []model.Source{model.SourceDirectory, model.SourcePOI}}
	rej := model.Rejection{Name: "Garage Dupont", Reason: model.ReasonOutOfZone}

	resultJSON, _ := json.Marshal(result)
	recJSON, _ := json.Marshal(rec)
	rejJSON, _ := json.Marshal(rej)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE runs SET result`).
		WithArgs(resultJSON, pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`INSERT INTO fused_records`).
		WithArgs("run-1", 0, recJSON).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO rejections`).
		WithArgs("run-1", 0, string(model.ReasonOutOfZone), rejJSON).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := store.SaveOutput(context.Background(), "run-1", result, []model.FusedRecord{rec}, []model.Rejection{rej})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetOutput(t *testing.T) {
	store, mock := newMockStore(t)

	rec := model.FusedRecord{Name: "Boulangerie Martin", Score: 9}
	rej := model.Rejection{Name: "Garage Dupont", Reason: model.LowQualityReason(2), Score: 2}
	recJSON, _ := json.Marshal(rec)
	rejJSON, _ := json.Marshal(rej)

	mock.ExpectQuery(`SELECT record FROM fused_records`).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{"record"}).AddRow(recJSON))
	mock.ExpectQuery(`SELECT entry FROM rejections`).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{"entry"}).AddRow(rejJSON))

	accepted, rejected, err := store.GetOutput(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	require.Len(t, rejected, 1)
	assert.Equal(t, 9, accepted[0].Score)
	assert.True(t, rejected[0].Reason.IsLowQuality())
	assert.NoError(t, mock.ExpectationsWereMet())
}
