package sync

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/commitzapp/commitz/internal/localstore"
	"github.com/commitzapp/commitz/internal/models"
)

// RemoteAPI is the slice of the remote client the engine needs.
// Declared here so tests can substitute an in-memory remote store.
type RemoteAPI interface {
	CreateCommitment(ctx context.Context, title string, commitmentType string, userID string) (models.Commitment, error)
	CollaborativeCommitments(ctx context.Context, userID string) ([]models.Commitment, error)
	UpdateTitle(ctx context.Context, id string, title string) (models.Commitment, error)
	ToggleCompletion(ctx context.Context, commitmentID string, date string, userID string) ([]models.Completion, error)
	Completions(ctx context.Context, commitmentID string, userID string) ([]models.Completion, error)
}

const (
	DefaultPullInterval = 20 * time.Second
	DefaultPushInterval = 30 * time.Second
	DefaultTolerance    = 5 * time.Second

	changeDebounce = time.Second
)

// Engine converges the local store with the remote store for
// collaborative commitments: a full merge at startup, a pull of other
// participants' completions on a short interval and a push of local
// changes on a longer one.
type Engine struct {
	local  *localstore.Store
	remote RemoteAPI
	userID string
	logger *log.Logger

	PullInterval time.Duration
	PushInterval time.Duration
	Tolerance    time.Duration

	inFlight atomic.Bool
	changed  chan struct{}
}

func NewEngine(local *localstore.Store, remoteAPI RemoteAPI, userID string, logger *log.Logger) *Engine {
	return &Engine{
		local:        local,
		remote:       remoteAPI,
		userID:       userID,
		logger:       logger,
		PullInterval: DefaultPullInterval,
		PushInterval: DefaultPushInterval,
		Tolerance:    DefaultTolerance,
		changed:      make(chan struct{}, 1),
	}
}

// Start runs one full reconciliation pass, then services the pull and
// push timers until ctx is cancelled. An in-flight pass is never
// aborted; cancellation only stops scheduling new ones.
func (engine *Engine) Start(ctx context.Context) {
	go engine.run(ctx)
}

func (engine *Engine) run(ctx context.Context) {
	if err := engine.Reconcile(ctx); err != nil {
		engine.logger.Warn("startup reconciliation failed", "error", err)
	}

	pullTicker := time.NewTicker(engine.PullInterval)
	defer pullTicker.Stop()
	pushTicker := time.NewTicker(engine.PushInterval)
	defer pushTicker.Stop()

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-pullTicker.C:
			if err := engine.PullOthers(ctx); err != nil {
				engine.logger.Warn("pull failed", "error", err)
			}
		case <-pushTicker.C:
			if err := engine.PushLocalChanges(ctx); err != nil {
				engine.logger.Warn("push failed", "error", err)
			}
		case <-engine.changed:
			debounce = time.After(changeDebounce)
		case <-debounce:
			debounce = nil
			if err := engine.PushLocalChanges(ctx); err != nil {
				engine.logger.Warn("push after change failed", "error", err)
			}
		}
	}
}

// NotifyChange schedules a debounced push. Safe to call from any
// goroutine; coalesces bursts of toggles into one push.
func (engine *Engine) NotifyChange() {
	select {
	case engine.changed <- struct{}{}:
	default:
	}
}

// Reconcile executes the full merge. The merged tables are computed
// completely before a single atomic local rewrite; a failure anywhere
// before that point leaves the local store untouched.
func (engine *Engine) Reconcile(ctx context.Context) error {
	if !engine.inFlight.CompareAndSwap(false, true) {
		engine.logger.Debug("reconciliation already running, skipping pass")
		return nil
	}
	defer engine.inFlight.Store(false)

	remoteCommitments, err := engine.remote.CollaborativeCommitments(ctx, engine.userID)
	if err != nil {
		return err
	}
	remoteByID := make(map[string]models.Commitment, len(remoteCommitments))
	for _, commitment := range remoteCommitments {
		remoteByID[commitment.ID] = commitment
	}

	localCommitments := engine.local.Commitments()
	localCompletions := engine.local.Completions()

	// Commitments: everything local that is not a synced collaborative
	// record passes through untouched; synced collaborative records are
	// taken from the remote list verbatim. A collaborative commitment
	// missing from the remote list was torn down or left, so it and its
	// completions drop out of the merge.
	mergedCommitments := make([]models.Commitment, 0, len(localCommitments))
	passthrough := make(map[string]bool)
	for _, commitment := range localCommitments {
		if !commitment.IsCollaborative() || commitment.IsLocalOnly() {
			mergedCommitments = append(mergedCommitments, commitment)
			passthrough[commitment.ID] = true
		}
	}
	for _, commitment := range remoteCommitments {
		if engine.local.IsCommitmentDirty(commitment.ID) {
			if localCopy, ok := engine.local.FindCommitment(commitment.ID); ok {
				commitment.Title = localCopy.Title
				commitment.UpdatedAt = localCopy.UpdatedAt
			}
		}
		mergedCommitments = append(mergedCommitments, commitment)
	}

	localByCommitment := make(map[string][]localstore.Completion)
	for _, completion := range localCompletions {
		localByCommitment[completion.CommitmentID] = append(localByCommitment[completion.CommitmentID], completion)
	}

	mergedCompletions := make([]localstore.Completion, 0, len(localCompletions))
	for _, completion := range localCompletions {
		if passthrough[completion.CommitmentID] {
			mergedCompletions = append(mergedCompletions, completion)
		}
	}

	for _, commitment := range remoteCommitments {
		merged, err := engine.mergeCompletions(ctx, commitment, localByCommitment[commitment.ID])
		if err != nil {
			// Fetch failed for this commitment: carry the local rows
			// forward unchanged and try again next pass.
			engine.logger.Warn("completion fetch failed, keeping local rows",
				"commitment", commitment.ID, "error", err)
			mergedCompletions = append(mergedCompletions, localByCommitment[commitment.ID]...)
			continue
		}
		mergedCompletions = append(mergedCompletions, merged...)
	}

	return engine.local.ReplaceAll(mergedCommitments, mergedCompletions)
}

// mergeCompletions resolves one collaborative commitment. My rows are
// reconciled per date against the remote copy; other participants'
// rows are taken wholesale from the remote fetch.
func (engine *Engine) mergeCompletions(ctx context.Context, commitment models.Commitment, localRows []localstore.Completion) ([]localstore.Completion, error) {
	remoteRows, err := engine.remote.Completions(ctx, commitment.ID, "")
	if err != nil {
		return nil, err
	}

	remoteMineByDate := make(map[string]models.Completion)
	remoteOthers := make([]models.Completion, 0)
	for _, row := range remoteRows {
		if row.UserID == engine.userID {
			remoteMineByDate[row.Date] = row
		} else if !row.Deleted {
			remoteOthers = append(remoteOthers, row)
		}
	}

	merged := make([]localstore.Completion, 0, len(localRows)+len(remoteRows))
	seenDates := make(map[string]bool)

	for _, localRow := range localRows {
		if localRow.UserID != engine.userID {
			continue
		}
		seenDates[localRow.Date] = true

		serverRow, hasServerRow := remoteMineByDate[localRow.Date]

		if !localRow.Deleted {
			switch {
			case !hasServerRow:
				merged = append(merged, engine.pushRow(ctx, commitment.ID, localRow))
			case serverRow.Deleted:
				// Remote soft-delete wins unconditionally.
			case absDuration(localRow.UpdatedAt.Sub(serverRow.UpdatedAt)) <= engine.Tolerance:
				localRow.Synced = true
				merged = append(merged, localRow)
			case localRow.UpdatedAt.After(serverRow.UpdatedAt):
				// Both sides active and local is newer; the states
				// already agree, so there is nothing to send.
				localRow.Synced = true
				merged = append(merged, localRow)
			default:
				merged = append(merged, localstore.Completion{Completion: serverRow, Synced: true})
			}
			continue
		}

		// Local tombstone.
		switch {
		case !hasServerRow:
			// Created and deleted offline; the remote side never saw
			// either event, so the tombstone carries no information.
		case serverRow.Deleted:
			// Both sides agree the date is deleted; prune.
		case serverRow.UpdatedAt.Sub(localRow.UpdatedAt) > engine.Tolerance:
			// Remote re-activated the date after the local delete.
			merged = append(merged, localstore.Completion{Completion: serverRow, Synced: true})
		default:
			merged = append(merged, engine.pushRow(ctx, commitment.ID, localRow))
		}
	}

	for _, row := range remoteRows {
		if row.UserID != engine.userID || row.Deleted || seenDates[row.Date] {
			continue
		}
		merged = append(merged, localstore.Completion{Completion: row, Synced: true})
	}

	for _, row := range remoteOthers {
		merged = append(merged, localstore.Completion{Completion: row, Synced: true})
	}

	return merged, nil
}

// pushRow sends one local change as a remote toggle. The row is kept
// either way; a failed push just stays unsynced for the next pass.
func (engine *Engine) pushRow(ctx context.Context, commitmentID string, row localstore.Completion) localstore.Completion {
	if _, err := engine.remote.ToggleCompletion(ctx, commitmentID, row.Date, engine.userID); err != nil {
		engine.logger.Warn("completion push failed",
			"commitment", commitmentID, "date", row.Date, "error", err)
		row.Synced = false
		return row
	}
	row.Synced = true
	return row
}

// PullOthers refreshes other participants' completions only, leaving
// my rows alone. Cheaper than a full pass, run on the short interval.
func (engine *Engine) PullOthers(ctx context.Context) error {
	completions := engine.local.Completions()
	refreshed := make(map[string][]localstore.Completion)

	for _, commitment := range engine.local.CollaborativeCommitments() {
		if commitment.IsLocalOnly() {
			continue
		}
		remoteRows, err := engine.remote.Completions(ctx, commitment.ID, "")
		if err != nil {
			engine.logger.Warn("pull fetch failed", "commitment", commitment.ID, "error", err)
			continue
		}
		others := make([]localstore.Completion, 0)
		for _, row := range remoteRows {
			if row.UserID != engine.userID && !row.Deleted {
				others = append(others, localstore.Completion{Completion: row, Synced: true})
			}
		}
		refreshed[commitment.ID] = others
	}

	if len(refreshed) == 0 {
		return nil
	}

	next := make([]localstore.Completion, 0, len(completions))
	for _, completion := range completions {
		if _, ok := refreshed[completion.CommitmentID]; ok && completion.UserID != engine.userID {
			continue
		}
		next = append(next, completion)
	}
	for _, commitment := range engine.local.CollaborativeCommitments() {
		next = append(next, refreshed[commitment.ID]...)
	}

	return engine.local.ReplaceCompletions(next)
}

// PushLocalChanges sends everything the remote store has not seen:
// local-only collaborative commitments, unpushed title edits, and
// unsynced completion toggles. Each failure is logged and left for
// the next pass.
func (engine *Engine) PushLocalChanges(ctx context.Context) error {
	if !engine.inFlight.CompareAndSwap(false, true) {
		engine.logger.Debug("sync already running, skipping push")
		return nil
	}
	defer engine.inFlight.Store(false)

	for _, commitment := range engine.local.CollaborativeCommitments() {
		if !commitment.IsLocalOnly() {
			continue
		}
		created, err := engine.remote.CreateCommitment(ctx, commitment.Title, commitment.Type, engine.userID)
		if err != nil {
			engine.logger.Warn("commitment push failed", "commitment", commitment.ID, "error", err)
			continue
		}
		if err := engine.local.ReplaceCommitmentID(commitment.ID, created); err != nil {
			return err
		}
		engine.logger.Info("commitment pushed", "local", commitment.ID, "remote", created.ID)
	}

	for _, id := range engine.local.DirtyCommitmentIDs() {
		commitment, ok := engine.local.FindCommitment(id)
		if !ok || !commitment.IsCollaborative() || commitment.IsLocalOnly() {
			continue
		}
		if _, err := engine.remote.UpdateTitle(ctx, id, commitment.Title); err != nil {
			engine.logger.Warn("title push failed", "commitment", id, "error", err)
			continue
		}
		if err := engine.local.ClearDirtyCommitment(id); err != nil {
			return err
		}
	}

	collaborative := make(map[string]bool)
	for _, commitment := range engine.local.CollaborativeCommitments() {
		if !commitment.IsLocalOnly() {
			collaborative[commitment.ID] = true
		}
	}
	for _, completion := range engine.local.UnsyncedCompletions() {
		if completion.UserID != engine.userID || !collaborative[completion.CommitmentID] {
			continue
		}
		if _, err := engine.remote.ToggleCompletion(ctx, completion.CommitmentID, completion.Date, engine.userID); err != nil {
			engine.logger.Warn("completion push failed",
				"commitment", completion.CommitmentID, "date", completion.Date, "error", err)
			continue
		}
		if err := engine.local.MarkCompletionSynced(completion.ID); err != nil {
			return err
		}
	}

	return nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
