package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/commitzapp/commitz/internal/models"
	"github.com/google/uuid"
)

var ErrCommitmentNotFound = errors.New("commitment not found in local store")

// Completion is the local row: the wire record plus the sync flag that
// marks writes the remote store has not acknowledged yet.
type Completion struct {
	models.Completion
	Synced bool `json:"synced"`
}

type snapshot struct {
	Version     int                 `json:"version"`
	UserID      string              `json:"userId,omitempty"`
	Commitments []models.Commitment `json:"commitments"`
	Completions []Completion        `json:"completions"`

	// IDs of commitments whose title changed locally and has not been
	// pushed yet.
	DirtyCommitments []string `json:"dirtyCommitments,omitempty"`
}

// Store is the device's authoritative copy: two flat tables serialized
// as one JSON blob, rewritten whole on every mutation. There is no
// indexing and no query surface beyond full scans; the reconciliation
// engine always works on complete tables anyway.
type Store struct {
	path string

	mu   sync.Mutex
	data snapshot
}

// Open loads the snapshot at path, starting empty when the file does
// not exist yet.
func Open(path string) (*Store, error) {
	store := &Store{
		path: path,
		data: snapshot{Version: 1},
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("read local store: %w", err)
	}

	if err := json.Unmarshal(raw, &store.data); err != nil {
		return nil, fmt.Errorf("parse local store: %w", err)
	}
	if store.data.Commitments == nil {
		store.data.Commitments = make([]models.Commitment, 0)
	}
	if store.data.Completions == nil {
		store.data.Completions = make([]Completion, 0)
	}
	return store, nil
}

func (store *Store) save() error {
	raw, err := json.MarshalIndent(store.data, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize local store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(store.path), 0o700); err != nil {
		return fmt.Errorf("create local store directory: %w", err)
	}
	if err := os.WriteFile(store.path, raw, 0o600); err != nil {
		return fmt.Errorf("write local store: %w", err)
	}
	return nil
}

func (store *Store) Path() string {
	return store.path
}

func (store *Store) UserID() string {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.data.UserID
}

func (store *Store) SetUserID(userID string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.data.UserID = userID
	return store.save()
}

func (store *Store) Commitments() []models.Commitment {
	store.mu.Lock()
	defer store.mu.Unlock()
	out := make([]models.Commitment, len(store.data.Commitments))
	copy(out, store.data.Commitments)
	return out
}

func (store *Store) Completions() []Completion {
	store.mu.Lock()
	defer store.mu.Unlock()
	out := make([]Completion, len(store.data.Completions))
	copy(out, store.data.Completions)
	return out
}

func (store *Store) FindCommitment(id string) (models.Commitment, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, commitment := range store.data.Commitments {
		if commitment.ID == id {
			return commitment, true
		}
	}
	return models.Commitment{}, false
}

func (store *Store) SelfCommitments() []models.Commitment {
	return store.commitmentsOfType(models.TypeSelf)
}

func (store *Store) CollaborativeCommitments() []models.Commitment {
	return store.commitmentsOfType(models.TypeCollaborative)
}

func (store *Store) commitmentsOfType(commitmentType string) []models.Commitment {
	store.mu.Lock()
	defer store.mu.Unlock()
	out := make([]models.Commitment, 0)
	for _, commitment := range store.data.Commitments {
		if commitment.Type == commitmentType {
			out = append(out, commitment)
		}
	}
	return out
}

// NewLocalCommitment creates a commitment with a client-assigned ID;
// the sync engine swaps in the server ID after the first successful
// push.
func (store *Store) NewLocalCommitment(title string, commitmentType string, ownerID string) (models.Commitment, error) {
	now := time.Now()
	commitment := models.Commitment{
		ID:        models.NewLocalID(),
		Title:     title,
		Type:      commitmentType,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	store.data.Commitments = append(store.data.Commitments, commitment)
	if err := store.save(); err != nil {
		return models.Commitment{}, err
	}
	return commitment, nil
}

// UpsertCommitment inserts or overwrites by ID, used for records the
// remote store handed back.
func (store *Store) UpsertCommitment(commitment models.Commitment) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	for index := range store.data.Commitments {
		if store.data.Commitments[index].ID == commitment.ID {
			store.data.Commitments[index] = commitment
			return store.save()
		}
	}
	store.data.Commitments = append(store.data.Commitments, commitment)
	return store.save()
}

func (store *Store) RenameCommitment(id string, title string) (models.Commitment, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for index := range store.data.Commitments {
		if store.data.Commitments[index].ID != id {
			continue
		}
		store.data.Commitments[index].Title = title
		store.data.Commitments[index].UpdatedAt = time.Now()
		store.markDirty(id)
		if err := store.save(); err != nil {
			return models.Commitment{}, err
		}
		return store.data.Commitments[index], nil
	}
	return models.Commitment{}, ErrCommitmentNotFound
}

func (store *Store) markDirty(id string) {
	for _, dirty := range store.data.DirtyCommitments {
		if dirty == id {
			return
		}
	}
	store.data.DirtyCommitments = append(store.data.DirtyCommitments, id)
}

func (store *Store) DirtyCommitmentIDs() []string {
	store.mu.Lock()
	defer store.mu.Unlock()
	out := make([]string, len(store.data.DirtyCommitments))
	copy(out, store.data.DirtyCommitments)
	return out
}

func (store *Store) IsCommitmentDirty(id string) bool {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, dirty := range store.data.DirtyCommitments {
		if dirty == id {
			return true
		}
	}
	return false
}

func (store *Store) ClearDirtyCommitment(id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	kept := store.data.DirtyCommitments[:0]
	for _, dirty := range store.data.DirtyCommitments {
		if dirty != id {
			kept = append(kept, dirty)
		}
	}
	store.data.DirtyCommitments = kept
	return store.save()
}

// ReplaceCommitmentID swaps a local-only ID for the server-assigned
// one, remapping the commitment's completions in the same write.
func (store *Store) ReplaceCommitmentID(oldID string, replacement models.Commitment) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	found := false
	for index := range store.data.Commitments {
		if store.data.Commitments[index].ID == oldID {
			store.data.Commitments[index] = replacement
			found = true
			break
		}
	}
	if !found {
		return ErrCommitmentNotFound
	}

	for index := range store.data.Completions {
		if store.data.Completions[index].CommitmentID == oldID {
			store.data.Completions[index].CommitmentID = replacement.ID
		}
	}
	for index := range store.data.DirtyCommitments {
		if store.data.DirtyCommitments[index] == oldID {
			store.data.DirtyCommitments[index] = replacement.ID
		}
	}
	return store.save()
}

// RemoveCommitment drops the commitment and its completions from the
// device. Local removal is a hard delete; soft-delete bookkeeping is
// the remote store's concern.
func (store *Store) RemoveCommitment(id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	commitments := store.data.Commitments[:0]
	for _, commitment := range store.data.Commitments {
		if commitment.ID != id {
			commitments = append(commitments, commitment)
		}
	}
	store.data.Commitments = commitments

	completions := store.data.Completions[:0]
	for _, completion := range store.data.Completions {
		if completion.CommitmentID != id {
			completions = append(completions, completion)
		}
	}
	store.data.Completions = completions

	return store.save()
}

func (store *Store) UnsyncedCompletions() []Completion {
	store.mu.Lock()
	defer store.mu.Unlock()
	out := make([]Completion, 0)
	for _, completion := range store.data.Completions {
		if !completion.Synced {
			out = append(out, completion)
		}
	}
	return out
}

func (store *Store) MarkCompletionSynced(id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	for index := range store.data.Completions {
		if store.data.Completions[index].ID == id {
			store.data.Completions[index].Synced = true
			return store.save()
		}
	}
	return nil
}

// IsDateCompleted reports the UI truth for one cell: an active row
// exists for the key. Soft-deleted rows read as not completed.
func (store *Store) IsDateCompleted(commitmentID string, userID string, date string) bool {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, completion := range store.data.Completions {
		if completion.CommitmentID == commitmentID &&
			completion.UserID == userID &&
			completion.Date == date &&
			!completion.Deleted {
			return true
		}
	}
	return false
}

// Toggle flips the (commitment, user, date) cell and persists the
// result synchronously. For self commitments an active row is removed
// outright; for anything synced it is soft-deleted so the deletion can
// be pushed. Returns the resulting row and whether the cell is now
// active; a hard-deleted cell returns a zero row.
func (store *Store) Toggle(commitment models.Commitment, userID string, date string) (Completion, bool, error) {
	now := time.Now()

	store.mu.Lock()
	defer store.mu.Unlock()

	for index := range store.data.Completions {
		row := &store.data.Completions[index]
		if row.CommitmentID != commitment.ID || row.UserID != userID || row.Date != date {
			continue
		}

		if !row.Deleted {
			if commitment.Type == models.TypeSelf {
				store.data.Completions = append(store.data.Completions[:index], store.data.Completions[index+1:]...)
				return Completion{}, false, store.save()
			}
			row.Deleted = true
			row.UpdatedAt = now
			row.Synced = false
			return *row, false, store.save()
		}

		row.Deleted = false
		row.UpdatedAt = now
		row.Synced = false
		return *row, true, store.save()
	}

	created := Completion{
		Completion: models.Completion{
			ID:           uuid.NewString(),
			CommitmentID: commitment.ID,
			UserID:       userID,
			Date:         date,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}
	store.data.Completions = append(store.data.Completions, created)
	return created, true, store.save()
}

// ReplaceAll atomically rewrites both tables with a merged result.
// The reconciliation engine computes the full merged set first and
// commits it in one write, so an interrupted pass never leaves a
// half-merged snapshot on disk.
func (store *Store) ReplaceAll(commitments []models.Commitment, completions []Completion) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.data.Commitments = commitments
	store.data.Completions = completions
	return store.save()
}

// ReplaceCompletions rewrites only the completions table, used by the
// lighter pull-others poll.
func (store *Store) ReplaceCompletions(completions []Completion) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.data.Completions = completions
	return store.save()
}
