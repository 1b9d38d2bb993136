package services

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/smartcv/searchpanel/internal/clients/brightdata"
	"github.com/smartcv/searchpanel/internal/entities"
	"github.com/smartcv/searchpanel/internal/events"
	"github.com/smartcv/searchpanel/internal/logger"
	"github.com/smartcv/searchpanel/internal/metrics"
	"github.com/smartcv/searchpanel/internal/repositories"
)

var (
	ErrNoActiveJob = errors.New("no active collection in this session")
	ErrNotReady    = errors.New("collection is not ready yet")
	ErrNoResults   = errors.New("no results fetched yet")
)

type collectionClient interface {
	Submit(ctx context.Context, parameters entities.SearchParameters) (string, error)
	Poll(ctx context.Context, snapshotID string) (*brightdata.SnapshotStatus, error)
}

type resultsRepository interface {
	FetchBySnapshot(ctx context.Context, snapshotID string, limit int) (*entities.ResultSet, error)
}

// Flow sequences one collection run per session: submit, poll until a
// terminal status, fetch the rows once, export, and hand off to the CV
// generator. Every remote failure leaves the session in its last valid state.
type Flow struct {
	collector  collectionClient
	results    resultsRepository
	sessions   *Sessions
	bus        EventBus.Bus
	handoffURL string
}

func NewFlow(collector collectionClient, results resultsRepository, sessions *Sessions,
	bus EventBus.Bus, handoffURL string) *Flow {

	return &Flow{
		collector:  collector,
		results:    results,
		sessions:   sessions,
		bus:        bus,
		handoffURL: strings.TrimRight(handoffURL, "/"),
	}
}

// Submit triggers a new collection and resets the session around the
// assigned snapshot. Auto-refresh left over from the previous run is shut
// down through the bus. On failure the session keeps its previous run.
func (f *Flow) Submit(ctx context.Context, sessionID string, parameters entities.SearchParameters) (string, error) {

	if err := parameters.Validate(); err != nil {
		return "", err
	}

	snapshotID, err := f.collector.Submit(ctx, parameters)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeCollectorApi).
			Errorf("failed to submit search: %v", err)
		return "", err
	}

	f.sessions.Get(sessionID).BeginSearch(snapshotID)
	f.bus.Publish(events.SearchSubmittedTopic, events.SearchSubmitted{
		SessionID:  sessionID,
		SnapshotID: snapshotID,
	})
	metrics.SubmittedSearches.Inc()
	log.Infof("search submitted, session: %v, snapshot: %v", sessionID, snapshotID)

	return snapshotID, nil
}

// CheckStatus polls the active snapshot and returns the display form of the
// response. Reaching ready forces auto-refresh off and publishes a
// collection-finished event exactly once per snapshot.
func (f *Flow) CheckStatus(ctx context.Context, sessionID string) (DisplayStatus, error) {

	session := f.sessions.Get(sessionID)
	before := session.View()
	if before.SnapshotID == "" {
		return DisplayStatus{}, ErrNoActiveJob
	}

	status, err := f.collector.Poll(ctx, before.SnapshotID)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeCollectorApi).
			Errorf("failed to check snapshot %v: %v", before.SnapshotID, err)
		return DisplayStatus{}, err
	}
	metrics.StatusPolls.Inc()

	state := session.ApplyStatus(status)
	display := FormatStatus(status)

	if display.DisableAutoRefresh && session.TryDisableAutoRefresh() {
		log.Infof("auto-refresh disabled, collection %v has finished", before.SnapshotID)
	}

	if terminal(state) && !terminal(before.State) {
		if state == StateReady {
			metrics.CollectionDuration.Observe(time.Since(before.SubmittedAt).Seconds())
		}
		f.bus.Publish(events.CollectionFinishedTopic, events.CollectionFinished{
			SessionID:  sessionID,
			SnapshotID: before.SnapshotID,
			Status:     string(status.Status),
		})
	}

	return display, nil
}

func terminal(state FlowState) bool {
	return state == StateReady || state == StateFetched || state == StateFailed
}

// SetAutoRefresh toggles the session's auto-refresh flag.
func (f *Flow) SetAutoRefresh(sessionID string, enabled bool) error {

	session := f.sessions.Get(sessionID)
	if session.View().SnapshotID == "" {
		return ErrNoActiveJob
	}

	session.SetAutoRefresh(enabled)
	return nil
}

// FetchResults reads the collected rows once the snapshot is ready. The
// fetch-once guard makes repeated calls return the held ResultSet without
// touching the warehouse again; an empty or failed fetch leaves the guard
// unset so the user can retry.
func (f *Flow) FetchResults(ctx context.Context, sessionID string) (*entities.ResultSet, error) {

	session := f.sessions.Get(sessionID)
	view := session.View()
	if view.SnapshotID == "" {
		return nil, ErrNoActiveJob
	}

	if results := session.Results(); view.ResultsFetched && results != nil {
		return results, nil
	}

	status := session.LastStatus()
	if status == nil || status.Status != brightdata.StatusReady {
		return nil, ErrNotReady
	}

	resultSet, err := f.results.FetchBySnapshot(ctx, view.SnapshotID, repositories.DefaultFetchLimit)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to fetch results for snapshot %v: %v", view.SnapshotID, err)
		return nil, err
	}

	if resultSet.Empty() {
		log.Warnf("no results found for snapshot %v", view.SnapshotID)
		return resultSet, nil
	}

	session.MarkFetched(resultSet)
	metrics.FetchedResultSets.Inc()
	log.Infof("fetched %v results for snapshot %v", resultSet.Len(), view.SnapshotID)

	return resultSet, nil
}

// ExportCSV renders the session's fetched ResultSet as a downloadable CSV.
func (f *Flow) ExportCSV(sessionID string) (string, []byte, error) {

	results := f.sessions.Get(sessionID).Results()
	if results == nil {
		return "", nil, ErrNoResults
	}

	data, err := ToCSV(results)
	if err != nil {
		return "", nil, err
	}

	return ExportFilename(results.SnapshotID), data, nil
}

// HandoffURL builds the deep link into the CV generator for the fetched
// snapshot. Opening it is the browser's business; nothing downstream is
// awaited or tracked.
func (f *Flow) HandoffURL(sessionID string) (string, error) {

	view := f.sessions.Get(sessionID).View()
	if view.SnapshotID == "" {
		return "", ErrNoActiveJob
	}
	if view.State != StateFetched {
		return "", ErrNoResults
	}

	return f.handoffURL + "/?snapshot=" + url.QueryEscape(view.SnapshotID), nil
}

// SessionView exposes the session's observable state to the HTTP surface.
func (f *Flow) SessionView(sessionID string) SessionView {
	return f.sessions.Get(sessionID).View()
}
