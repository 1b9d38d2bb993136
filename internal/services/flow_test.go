package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/smartcv/searchpanel/internal/clients/brightdata"
	"github.com/smartcv/searchpanel/internal/entities"
	"github.com/smartcv/searchpanel/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCollector struct {
	mock.Mock
}

func (m *mockCollector) Submit(ctx context.Context, parameters entities.SearchParameters) (string, error) {
	args := m.Called(ctx, parameters)
	return args.String(0), args.Error(1)
}

func (m *mockCollector) Poll(ctx context.Context, snapshotID string) (*brightdata.SnapshotStatus, error) {
	args := m.Called(ctx, snapshotID)
	return args.Get(0).(*brightdata.SnapshotStatus), args.Error(1)
}

type mockResults struct {
	mock.Mock
}

func (m *mockResults) FetchBySnapshot(ctx context.Context, snapshotID string, limit int) (*entities.ResultSet, error) {
	args := m.Called(ctx, snapshotID, limit)
	return args.Get(0).(*entities.ResultSet), args.Error(1)
}

func searchParams() entities.SearchParameters {
	return entities.SearchParameters{
		Location:        "France",
		Keyword:         "data",
		Country:         "FR",
		TimeRange:       entities.PastWeek,
		JobType:         entities.FullTime,
		ExperienceLevel: entities.MidSenior,
		Remote:          entities.Remote,
		SelectiveSearch: true,
	}
}

func resultSetOf(snapshotID string, rowCount int) *entities.ResultSet {
	resultSet := &entities.ResultSet{
		SnapshotID: snapshotID,
		Columns:    []string{"snapshot_id", "job_title"},
	}
	for i := 0; i < rowCount; i++ {
		resultSet.Rows = append(resultSet.Rows,
			map[string]any{"snapshot_id": snapshotID, "job_title": "Engineer"})
	}
	return resultSet
}

func newTestFlow(collector *mockCollector, results *mockResults) (*Flow, *Sessions, EventBus.Bus) {
	sessions := NewSessions(time.Hour)
	bus := EventBus.New()
	flow := NewFlow(collector, results, sessions, bus, "https://cv.example/")
	return flow, sessions, bus
}

func Test_Flow_Submit_StoresSnapshotAndResetsSession(t *testing.T) {

	assert := assert.New(t)

	collector := &mockCollector{}
	collector.On("Submit", mock.Anything, mock.Anything).Return("abc123", nil)

	flow, sessions, _ := newTestFlow(collector, &mockResults{})

	snapshotID, err := flow.Submit(context.Background(), "session-1", searchParams())
	assert.NoError(err)
	assert.Equal("abc123", snapshotID)

	view := sessions.Get("session-1").View()
	assert.Equal(StateSubmitted, view.State)
	assert.Equal("abc123", view.SnapshotID)
	assert.False(view.ResultsFetched)
	assert.False(view.AutoRefresh)
}

func Test_Flow_Submit_CollectorError_LeavesSessionUntouched(t *testing.T) {

	assert := assert.New(t)

	collector := &mockCollector{}
	collector.On("Submit", mock.Anything, mock.Anything).
		Return("", brightdata.ErrProtocol)

	flow, sessions, _ := newTestFlow(collector, &mockResults{})

	_, err := flow.Submit(context.Background(), "session-1", searchParams())
	assert.ErrorIs(err, brightdata.ErrProtocol)

	view := sessions.Get("session-1").View()
	assert.Equal(StateIdle, view.State)
	assert.Empty(view.SnapshotID)
}

func Test_Flow_Submit_InvalidParameters_DoesNotCallCollector(t *testing.T) {

	collector := &mockCollector{}
	flow, _, _ := newTestFlow(collector, &mockResults{})

	params := searchParams()
	params.Country = "France" // must be a two-letter code

	_, err := flow.Submit(context.Background(), "session-1", params)
	assert.Error(t, err)
	collector.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func Test_Flow_CheckStatus_Ready_ForcesAutoRefreshOff(t *testing.T) {

	assert := assert.New(t)

	collector := &mockCollector{}
	collector.On("Submit", mock.Anything, mock.Anything).Return("abc123", nil)
	collector.On("Poll", mock.Anything, "abc123").
		Return(&brightdata.SnapshotStatus{Status: brightdata.StatusRunning, Progress: intPtr(40)}, nil).Once()
	collector.On("Poll", mock.Anything, "abc123").
		Return(&brightdata.SnapshotStatus{Status: brightdata.StatusReady, Count: intPtr(17)}, nil).Once()

	flow, sessions, _ := newTestFlow(collector, &mockResults{})

	_, err := flow.Submit(context.Background(), "session-1", searchParams())
	require.NoError(t, err)
	require.NoError(t, flow.SetAutoRefresh("session-1", true))

	display, err := flow.CheckStatus(context.Background(), "session-1")
	assert.NoError(err)
	assert.Equal("RUNNING", display.Status)
	assert.False(display.DisableAutoRefresh)
	assert.True(sessions.Get("session-1").AutoRefresh())

	display, err = flow.CheckStatus(context.Background(), "session-1")
	assert.NoError(err)
	assert.Equal("READY", display.Status)
	assert.True(display.DisableAutoRefresh)
	assert.False(sessions.Get("session-1").AutoRefresh())
	assert.Equal(StateReady, sessions.Get("session-1").View().State)
}

func Test_Flow_CheckStatus_Failed_IsTerminal(t *testing.T) {

	collector := &mockCollector{}
	collector.On("Submit", mock.Anything, mock.Anything).Return("abc123", nil)
	collector.On("Poll", mock.Anything, "abc123").
		Return(&brightdata.SnapshotStatus{Status: brightdata.StatusFailed}, nil)

	flow, sessions, bus := newTestFlow(collector, &mockResults{})

	var finished []events.CollectionFinished
	require.NoError(t, bus.Subscribe(events.CollectionFinishedTopic,
		func(event events.CollectionFinished) { finished = append(finished, event) }))

	_, err := flow.Submit(context.Background(), "session-1", searchParams())
	require.NoError(t, err)

	_, err = flow.CheckStatus(context.Background(), "session-1")
	require.NoError(t, err)

	assert.Equal(t, StateFailed, sessions.Get("session-1").View().State)
	require.Len(t, finished, 1)
	assert.Equal(t, "failed", finished[0].Status)
}

func Test_Flow_CheckStatus_PublishesFinishedEventOncePerSnapshot(t *testing.T) {

	collector := &mockCollector{}
	collector.On("Submit", mock.Anything, mock.Anything).Return("abc123", nil)
	collector.On("Poll", mock.Anything, "abc123").
		Return(&brightdata.SnapshotStatus{Status: brightdata.StatusReady}, nil)

	flow, _, bus := newTestFlow(collector, &mockResults{})

	var finished int
	require.NoError(t, bus.Subscribe(events.CollectionFinishedTopic,
		func(event events.CollectionFinished) { finished++ }))

	_, err := flow.Submit(context.Background(), "session-1", searchParams())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = flow.CheckStatus(context.Background(), "session-1")
		require.NoError(t, err)
	}

	assert.Equal(t, 1, finished)
}

func Test_Flow_CheckStatus_WithoutActiveJob_Fails(t *testing.T) {

	flow, _, _ := newTestFlow(&mockCollector{}, &mockResults{})

	_, err := flow.CheckStatus(context.Background(), "session-1")
	assert.ErrorIs(t, err, ErrNoActiveJob)
}

func Test_Flow_FetchResults_BeforeReady_IsRejectedWithoutQuery(t *testing.T) {

	collector := &mockCollector{}
	collector.On("Submit", mock.Anything, mock.Anything).Return("abc123", nil)
	collector.On("Poll", mock.Anything, "abc123").
		Return(&brightdata.SnapshotStatus{Status: brightdata.StatusRunning}, nil)

	results := &mockResults{}
	flow, _, _ := newTestFlow(collector, results)

	_, err := flow.Submit(context.Background(), "session-1", searchParams())
	require.NoError(t, err)
	_, err = flow.CheckStatus(context.Background(), "session-1")
	require.NoError(t, err)

	_, err = flow.FetchResults(context.Background(), "session-1")
	assert.ErrorIs(t, err, ErrNotReady)
	results.AssertNotCalled(t, "FetchBySnapshot", mock.Anything, mock.Anything, mock.Anything)
}

func readySession(t *testing.T, flow *Flow, collector *mockCollector, sessionID string) {
	t.Helper()

	collector.On("Submit", mock.Anything, mock.Anything).Return("abc123", nil)
	collector.On("Poll", mock.Anything, "abc123").
		Return(&brightdata.SnapshotStatus{Status: brightdata.StatusReady, Count: intPtr(17)}, nil)

	_, err := flow.Submit(context.Background(), sessionID, searchParams())
	require.NoError(t, err)
	_, err = flow.CheckStatus(context.Background(), sessionID)
	require.NoError(t, err)
}

func Test_Flow_FetchResults_FetchesOnlyOnce(t *testing.T) {

	assert := assert.New(t)

	collector := &mockCollector{}
	results := &mockResults{}
	results.On("FetchBySnapshot", mock.Anything, "abc123", 25).
		Return(resultSetOf("abc123", 17), nil)

	flow, sessions, _ := newTestFlow(collector, results)
	readySession(t, flow, collector, "session-1")

	for i := 0; i < 5; i++ {
		resultSet, err := flow.FetchResults(context.Background(), "session-1")
		assert.NoError(err)
		assert.Equal(17, resultSet.Len())
	}

	results.AssertNumberOfCalls(t, "FetchBySnapshot", 1)
	assert.Equal(StateFetched, sessions.Get("session-1").View().State)
	assert.True(sessions.Get("session-1").View().ResultsFetched)
}

func Test_Flow_FetchResults_EmptySet_LeavesGuardUnsetForRetry(t *testing.T) {

	assert := assert.New(t)

	collector := &mockCollector{}
	results := &mockResults{}
	results.On("FetchBySnapshot", mock.Anything, "abc123", 25).
		Return(resultSetOf("abc123", 0), nil).Once()
	results.On("FetchBySnapshot", mock.Anything, "abc123", 25).
		Return(resultSetOf("abc123", 3), nil).Once()

	flow, sessions, _ := newTestFlow(collector, results)
	readySession(t, flow, collector, "session-1")

	resultSet, err := flow.FetchResults(context.Background(), "session-1")
	assert.NoError(err)
	assert.True(resultSet.Empty())
	assert.False(sessions.Get("session-1").View().ResultsFetched)
	assert.Equal(StateReady, sessions.Get("session-1").View().State)

	resultSet, err = flow.FetchResults(context.Background(), "session-1")
	assert.NoError(err)
	assert.Equal(3, resultSet.Len())
	results.AssertNumberOfCalls(t, "FetchBySnapshot", 2)
}

func Test_Flow_NewSubmit_DiscardsPreviousRun(t *testing.T) {

	assert := assert.New(t)

	collector := &mockCollector{}
	results := &mockResults{}
	results.On("FetchBySnapshot", mock.Anything, "abc123", 25).
		Return(resultSetOf("abc123", 17), nil)

	flow, sessions, _ := newTestFlow(collector, results)
	readySession(t, flow, collector, "session-1")

	_, err := flow.FetchResults(context.Background(), "session-1")
	require.NoError(t, err)
	require.Equal(t, StateFetched, sessions.Get("session-1").View().State)

	_, err = flow.Submit(context.Background(), "session-1", searchParams())
	require.NoError(t, err)

	view := sessions.Get("session-1").View()
	assert.Equal(StateSubmitted, view.State)
	assert.False(view.ResultsFetched)
	assert.Nil(sessions.Get("session-1").Results())
}

func Test_Flow_ExportCSV_RequiresFetchedResults(t *testing.T) {

	flow, _, _ := newTestFlow(&mockCollector{}, &mockResults{})

	_, _, err := flow.ExportCSV("session-1")
	assert.ErrorIs(t, err, ErrNoResults)
}

func Test_Flow_ExportCSV_ProducesHeaderAndRows(t *testing.T) {

	assert := assert.New(t)

	collector := &mockCollector{}
	results := &mockResults{}
	results.On("FetchBySnapshot", mock.Anything, "abc123", 25).
		Return(resultSetOf("abc123", 17), nil)

	flow, _, _ := newTestFlow(collector, results)
	readySession(t, flow, collector, "session-1")

	_, err := flow.FetchResults(context.Background(), "session-1")
	require.NoError(t, err)

	filename, data, err := flow.ExportCSV("session-1")
	assert.NoError(err)
	assert.Equal("linkedin_jobs_abc123.csv", filename)

	lines := bytes.Count(data, []byte("\n"))
	assert.Equal(18, lines)
}

func Test_Flow_HandoffURL_OnlyFromFetchedState(t *testing.T) {

	assert := assert.New(t)

	collector := &mockCollector{}
	results := &mockResults{}
	results.On("FetchBySnapshot", mock.Anything, "abc123", 25).
		Return(resultSetOf("abc123", 17), nil)

	flow, _, _ := newTestFlow(collector, results)
	readySession(t, flow, collector, "session-1")

	_, err := flow.HandoffURL("session-1")
	assert.ErrorIs(err, ErrNoResults)

	_, err = flow.FetchResults(context.Background(), "session-1")
	require.NoError(t, err)

	handoffURL, err := flow.HandoffURL("session-1")
	assert.NoError(err)
	assert.Equal("https://cv.example/?snapshot=abc123", handoffURL)
}
