package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/commitzapp/commitz/internal/models"
	"github.com/google/uuid"
)

var (
	ErrCommitmentNotFound    = errors.New("commitment not found")
	ErrInvalidShareCode      = errors.New("invalid share code")
	ErrNotCollaborative      = errors.New("challenge is not collaborative")
	ErrChallengeFull         = errors.New("challenge is full")
	ErrForbidden             = errors.New("not a participant of this challenge")
	ErrInvalidTitle          = errors.New("invalid title")
	ErrInvalidCommitmentType = errors.New("invalid commitment type")
	ErrInvalidDate           = errors.New("invalid date")
)

const maxTitleLength = 200

type CommitmentRepository interface {
	FindActiveByID(id string) (models.Commitment, bool, error)
	FindByShareCode(code string) (models.Commitment, bool, error)
	ShareCodeInUse(code string) (bool, error)
	ListActiveByOwner(ownerID string) ([]models.Commitment, error)
	ListActiveCollaborativeByOwner(ownerID string) ([]models.Commitment, error)
	ListActiveCollaborativeByIDs(ids []string) ([]models.Commitment, error)
	Create(commitment *models.Commitment) error
	Save(commitment *models.Commitment) error
	MarkDeleted(id string) error
}

type CompletionRepository interface {
	ListByCommitment(commitmentID string) ([]models.Completion, error)
	ListByCommitmentAndUser(commitmentID string, userID string) ([]models.Completion, error)
	FindByKey(commitmentID string, userID string, date string) (models.Completion, bool, error)
	Create(completion *models.Completion) error
	Save(completion *models.Completion) error
	SoftDeleteByCommitment(commitmentID string) error
	SoftDeleteByCommitmentAndUser(commitmentID string, userID string) error
}

type ParticipantRepository interface {
	CountActive(commitmentID string) (int64, error)
	FindActive(commitmentID string, userID string) (models.Participant, bool, error)
	ListActiveUserIDs(commitmentID string) ([]string, error)
	ListActiveCommitmentIDsByUser(userID string) ([]string, error)
	Enroll(commitmentID string, userID string) error
	EnrollIfBelowCap(commitmentID string, userID string, cap int) (bool, error)
	SoftDeleteByCommitment(commitmentID string) error
	SoftDelete(commitmentID string, userID string) error
}

type UserRepository interface {
	FindOrCreate(userID string) error
}

// CommitmentService owns the remote store's domain rules: commitment
// lifecycle, the join protocol, completion toggling and the
// delete/leave cascades.
type CommitmentService struct {
	commitments  CommitmentRepository
	completions  CompletionRepository
	participants ParticipantRepository
	users        UserRepository
	codes        ShareCodePolicy
}

func NewCommitmentService(
	commitments CommitmentRepository,
	completions CompletionRepository,
	participants ParticipantRepository,
	users UserRepository,
	codes ShareCodePolicy,
) *CommitmentService {
	return &CommitmentService{
		commitments:  commitments,
		completions:  completions,
		participants: participants,
		users:        users,
		codes:        codes,
	}
}

func (service *CommitmentService) Create(title string, commitmentType string, ownerID string) (models.Commitment, error) {
	title = strings.TrimSpace(title)
	if title == "" || len(title) > maxTitleLength {
		return models.Commitment{}, ErrInvalidTitle
	}
	if commitmentType == "" {
		commitmentType = models.TypeSelf
	}
	if !models.IsValidType(commitmentType) {
		return models.Commitment{}, ErrInvalidCommitmentType
	}

	service.ensureUserExists(ownerID)

	commitment := models.Commitment{
		ID:      uuid.NewString(),
		Title:   title,
		Type:    commitmentType,
		OwnerID: ownerID,
	}

	if commitmentType == models.TypeCollaborative || commitmentType == models.TypeShared {
		code, err := GenerateUniqueShareCode(service.codes, service.commitments)
		if err != nil {
			return models.Commitment{}, err
		}
		commitment.ShareCode = code
	}

	if err := service.commitments.Create(&commitment); err != nil {
		return models.Commitment{}, err
	}

	// The creator is a participant of their own collaborative
	// challenge from day one.
	if commitmentType == models.TypeCollaborative {
		if err := service.participants.Enroll(commitment.ID, ownerID); err != nil {
			log.Printf("commitments: enroll creator for %s failed: %v", commitment.ID, err)
		}
	}

	return commitment, nil
}

func (service *CommitmentService) Get(id string) (models.Commitment, error) {
	commitment, found, err := service.commitments.FindActiveByID(id)
	if err != nil {
		return models.Commitment{}, err
	}
	if !found {
		return models.Commitment{}, ErrCommitmentNotFound
	}
	return commitment, nil
}

func (service *CommitmentService) ListForOwner(ownerID string) ([]models.Commitment, error) {
	return service.commitments.ListActiveByOwner(ownerID)
}

// ListCollaborativeForUser returns the union of collaborative
// commitments the user owns and those they joined.
func (service *CommitmentService) ListCollaborativeForUser(userID string) ([]models.Commitment, error) {
	owned, err := service.commitments.ListActiveCollaborativeByOwner(userID)
	if err != nil {
		return nil, err
	}

	joinedIDs, err := service.participants.ListActiveCommitmentIDsByUser(userID)
	if err != nil {
		return nil, err
	}
	joined, err := service.commitments.ListActiveCollaborativeByIDs(joinedIDs)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(owned)+len(joined))
	merged := make([]models.Commitment, 0, len(owned)+len(joined))
	for _, commitment := range append(owned, joined...) {
		if _, duplicate := seen[commitment.ID]; duplicate {
			continue
		}
		seen[commitment.ID] = struct{}{}
		merged = append(merged, commitment)
	}
	return merged, nil
}

// UpdateTitle is last-writer-wins by direct overwrite; titles carry no
// merge logic.
func (service *CommitmentService) UpdateTitle(id string, title string) (models.Commitment, error) {
	title = strings.TrimSpace(title)
	if title == "" || len(title) > maxTitleLength {
		return models.Commitment{}, ErrInvalidTitle
	}

	commitment, err := service.Get(id)
	if err != nil {
		return models.Commitment{}, err
	}

	commitment.Title = title
	if err := service.commitments.Save(&commitment); err != nil {
		return models.Commitment{}, err
	}
	return commitment, nil
}

// RemoveOrLeave soft-deletes. The owner of a collaborative commitment
// tears the whole thing down; a non-owner participant leaves, taking
// only their own rows with them.
func (service *CommitmentService) RemoveOrLeave(id string, userID string) error {
	commitment, err := service.Get(id)
	if err != nil {
		return err
	}

	if !commitment.IsCollaborative() {
		if commitment.OwnerID != userID {
			return ErrForbidden
		}
		if err := service.commitments.MarkDeleted(id); err != nil {
			return err
		}
		return service.completions.SoftDeleteByCommitment(id)
	}

	if commitment.OwnerID == userID {
		if err := service.commitments.MarkDeleted(id); err != nil {
			return err
		}
		if err := service.completions.SoftDeleteByCommitment(id); err != nil {
			return err
		}
		return service.participants.SoftDeleteByCommitment(id)
	}

	_, isParticipant, err := service.participants.FindActive(id, userID)
	if err != nil {
		return err
	}
	if !isParticipant {
		return ErrForbidden
	}

	if err := service.participants.SoftDelete(id, userID); err != nil {
		return err
	}
	return service.completions.SoftDeleteByCommitmentAndUser(id, userID)
}

// RotateShareCode assigns a fresh unique code, invalidating the old
// one for future joins.
func (service *CommitmentService) RotateShareCode(id string) (string, error) {
	commitment, err := service.Get(id)
	if err != nil {
		return "", err
	}

	code, err := GenerateUniqueShareCode(service.codes, service.commitments)
	if err != nil {
		return "", err
	}

	commitment.ShareCode = code
	if err := service.commitments.Save(&commitment); err != nil {
		return "", err
	}
	return code, nil
}

// Join adds the user to a collaborative challenge by code. Re-joining
// while already active is an idempotent success. The cap check and the
// insert run atomically in the repository, so a concurrent second
// joiner cannot slip past the limit; the post-write re-count stays as
// a logged safety net.
func (service *CommitmentService) Join(code string, userID string) (models.Commitment, error) {
	service.ensureUserExists(userID)

	commitment, found, err := service.commitments.FindByShareCode(code)
	if err != nil {
		return models.Commitment{}, err
	}
	if !found || commitment.Deleted {
		return models.Commitment{}, ErrInvalidShareCode
	}
	if !commitment.IsCollaborative() {
		return models.Commitment{}, ErrNotCollaborative
	}

	_, alreadyActive, err := service.participants.FindActive(commitment.ID, userID)
	if err != nil {
		return models.Commitment{}, err
	}
	if alreadyActive {
		return commitment, nil
	}

	enrolled, err := service.participants.EnrollIfBelowCap(commitment.ID, userID, models.MaxParticipants)
	if err != nil {
		return models.Commitment{}, err
	}
	if !enrolled {
		log.Printf("commitments: join rejected, challenge %s is full (user %s)", commitment.ID, userID)
		return models.Commitment{}, ErrChallengeFull
	}

	if count, err := service.participants.CountActive(commitment.ID); err == nil && count > models.MaxParticipants {
		log.Printf("commitments: challenge %s exceeded participant cap, count=%d", commitment.ID, count)
	}

	return commitment, nil
}

// ViewShared resolves a code to its commitment for read-only display.
func (service *CommitmentService) ViewShared(code string) (models.Commitment, error) {
	commitment, found, err := service.commitments.FindByShareCode(code)
	if err != nil {
		return models.Commitment{}, err
	}
	if !found || commitment.Deleted {
		return models.Commitment{}, ErrInvalidShareCode
	}
	return commitment, nil
}

func (service *CommitmentService) Participants(commitmentID string) ([]string, error) {
	if _, err := service.Get(commitmentID); err != nil {
		return nil, err
	}
	return service.participants.ListActiveUserIDs(commitmentID)
}

// ToggleCompletion flips the (commitment, user, date) cell: an active
// row is soft-deleted, a soft-deleted row is restored, a missing row
// is created. It returns the user's full completion list for the
// commitment, deleted rows included.
func (service *CommitmentService) ToggleCompletion(commitmentID string, date string, userID string) ([]models.Completion, error) {
	if _, err := models.ParseDate(date); err != nil {
		return nil, ErrInvalidDate
	}

	if _, err := service.Get(commitmentID); err != nil {
		return nil, err
	}

	service.ensureUserExists(userID)

	existing, found, err := service.completions.FindByKey(commitmentID, userID, date)
	if err != nil {
		return nil, err
	}

	switch {
	case found && !existing.Deleted:
		existing.Deleted = true
		err = service.completions.Save(&existing)
	case found && existing.Deleted:
		existing.Deleted = false
		err = service.completions.Save(&existing)
	default:
		completion := models.Completion{
			ID:           uuid.NewString(),
			CommitmentID: commitmentID,
			UserID:       userID,
			Date:         date,
		}
		err = service.completions.Create(&completion)
	}
	if err != nil {
		return nil, err
	}

	return service.completions.ListByCommitmentAndUser(commitmentID, userID)
}

// Completions lists all rows for a commitment, optionally narrowed to
// one user. Soft-deleted rows are included on purpose: the
// reconciliation engine needs to observe deletions.
func (service *CommitmentService) Completions(commitmentID string, userID string) ([]models.Completion, error) {
	if userID != "" {
		return service.completions.ListByCommitmentAndUser(commitmentID, userID)
	}
	return service.completions.ListByCommitment(commitmentID)
}

// ensureUserExists provisions the user row; failures are logged and
// swallowed so a broken user table never blocks commitment traffic.
func (service *CommitmentService) ensureUserExists(userID string) {
	if err := service.users.FindOrCreate(userID); err != nil {
		log.Printf("commitments: ensure user %s exists failed: %v", userID, err)
	}
}

// ErrorMessage renders the user-facing message for a typed failure;
// the full-challenge case must stay distinct and actionable.
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrChallengeFull):
		return fmt.Sprintf("This collaborative challenge is full. Maximum %d participants allowed (creator + 1 other).", models.MaxParticipants)
	case errors.Is(err, ErrInvalidShareCode):
		return "Invalid share code"
	case errors.Is(err, ErrNotCollaborative):
		return "This challenge is not collaborative"
	default:
		return err.Error()
	}
}
