package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/commitzapp/commitz/internal/localstore"
	"github.com/commitzapp/commitz/internal/models"
)

var ErrUnknownCommitment = errors.New("unknown commitment")

// Toggler is the completion toggle state machine: a synchronous local
// commit followed, for synced collaborative commitments, by a single
// best-effort remote attempt. A failed remote attempt is not retried
// here; the row stays unsynced and the next engine pass owns it.
type Toggler struct {
	local  *localstore.Store
	remote RemoteAPI
	logger *log.Logger

	// onChange, when set, schedules a debounced push (Engine.NotifyChange).
	onChange func()
}

func NewToggler(local *localstore.Store, remoteAPI RemoteAPI, logger *log.Logger, onChange func()) *Toggler {
	return &Toggler{
		local:    local,
		remote:   remoteAPI,
		logger:   logger,
		onChange: onChange,
	}
}

// Toggle flips the completion state of (commitment, local user, date)
// and reports whether the date is now active. The local write always
// happens first and is never rolled back.
func (toggler *Toggler) Toggle(ctx context.Context, commitmentID string, date string) (bool, error) {
	if _, err := models.ParseDate(date); err != nil {
		return false, fmt.Errorf("invalid date %q: %w", date, err)
	}

	commitment, ok := toggler.local.FindCommitment(commitmentID)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownCommitment, commitmentID)
	}

	userID := toggler.local.UserID()
	row, active, err := toggler.local.Toggle(commitment, userID, date)
	if err != nil {
		return false, err
	}

	if !commitment.IsCollaborative() {
		return active, nil
	}

	synced := false
	if !commitment.IsLocalOnly() {
		if _, remoteErr := toggler.remote.ToggleCompletion(ctx, commitment.ID, date, userID); remoteErr != nil {
			toggler.logger.Warn("remote toggle failed, row left unsynced",
				"commitment", commitment.ID, "date", date, "error", remoteErr)
		} else {
			synced = true
			if row.ID != "" {
				if err := toggler.local.MarkCompletionSynced(row.ID); err != nil {
					return active, err
				}
			}
		}
	}

	if !synced && toggler.onChange != nil {
		toggler.onChange()
	}
	return active, nil
}
