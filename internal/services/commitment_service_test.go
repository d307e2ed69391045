package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/commitzapp/commitz/internal/models"
)

type stubCommitmentRepo struct {
	commitments map[string]models.Commitment
}

func newStubCommitmentRepo() *stubCommitmentRepo {
	return &stubCommitmentRepo{commitments: make(map[string]models.Commitment)}
}

func (stub *stubCommitmentRepo) FindActiveByID(id string) (models.Commitment, bool, error) {
	commitment, ok := stub.commitments[id]
	if !ok || commitment.Deleted {
		return models.Commitment{}, false, nil
	}
	return commitment, true, nil
}

func (stub *stubCommitmentRepo) FindByShareCode(code string) (models.Commitment, bool, error) {
	for _, commitment := range stub.commitments {
		if commitment.ShareCode == code && !commitment.Deleted {
			return commitment, true, nil
		}
	}
	for _, commitment := range stub.commitments {
		if commitment.ShareCode == code {
			return commitment, true, nil
		}
	}
	return models.Commitment{}, false, nil
}

func (stub *stubCommitmentRepo) ShareCodeInUse(code string) (bool, error) {
	for _, commitment := range stub.commitments {
		if commitment.ShareCode == code && !commitment.Deleted {
			return true, nil
		}
	}
	return false, nil
}

func (stub *stubCommitmentRepo) ListActiveByOwner(ownerID string) ([]models.Commitment, error) {
	out := make([]models.Commitment, 0)
	for _, commitment := range stub.commitments {
		if commitment.OwnerID == ownerID && !commitment.Deleted {
			out = append(out, commitment)
		}
	}
	return out, nil
}

func (stub *stubCommitmentRepo) ListActiveCollaborativeByOwner(ownerID string) ([]models.Commitment, error) {
	out := make([]models.Commitment, 0)
	for _, commitment := range stub.commitments {
		if commitment.OwnerID == ownerID && commitment.Type == models.TypeCollaborative && !commitment.Deleted {
			out = append(out, commitment)
		}
	}
	return out, nil
}

func (stub *stubCommitmentRepo) ListActiveCollaborativeByIDs(ids []string) ([]models.Commitment, error) {
	out := make([]models.Commitment, 0)
	for _, id := range ids {
		commitment, ok := stub.commitments[id]
		if ok && commitment.Type == models.TypeCollaborative && !commitment.Deleted {
			out = append(out, commitment)
		}
	}
	return out, nil
}

func (stub *stubCommitmentRepo) Create(commitment *models.Commitment) error {
	stub.commitments[commitment.ID] = *commitment
	return nil
}

func (stub *stubCommitmentRepo) Save(commitment *models.Commitment) error {
	stub.commitments[commitment.ID] = *commitment
	return nil
}

func (stub *stubCommitmentRepo) MarkDeleted(id string) error {
	commitment := stub.commitments[id]
	commitment.Deleted = true
	stub.commitments[id] = commitment
	return nil
}

type stubCompletionRepo struct {
	rows map[string]models.Completion
}

func newStubCompletionRepo() *stubCompletionRepo {
	return &stubCompletionRepo{rows: make(map[string]models.Completion)}
}

func (stub *stubCompletionRepo) ListByCommitment(commitmentID string) ([]models.Completion, error) {
	out := make([]models.Completion, 0)
	for _, row := range stub.rows {
		if row.CommitmentID == commitmentID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (stub *stubCompletionRepo) ListByCommitmentAndUser(commitmentID string, userID string) ([]models.Completion, error) {
	out := make([]models.Completion, 0)
	for _, row := range stub.rows {
		if row.CommitmentID == commitmentID && row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (stub *stubCompletionRepo) FindByKey(commitmentID string, userID string, date string) (models.Completion, bool, error) {
	row, ok := stub.rows[commitmentID+"|"+userID+"|"+date]
	return row, ok, nil
}

func (stub *stubCompletionRepo) Create(completion *models.Completion) error {
	stub.rows[completion.Key()] = *completion
	return nil
}

func (stub *stubCompletionRepo) Save(completion *models.Completion) error {
	stub.rows[completion.Key()] = *completion
	return nil
}

func (stub *stubCompletionRepo) SoftDeleteByCommitment(commitmentID string) error {
	for key, row := range stub.rows {
		if row.CommitmentID == commitmentID {
			row.Deleted = true
			stub.rows[key] = row
		}
	}
	return nil
}

func (stub *stubCompletionRepo) SoftDeleteByCommitmentAndUser(commitmentID string, userID string) error {
	for key, row := range stub.rows {
		if row.CommitmentID == commitmentID && row.UserID == userID {
			row.Deleted = true
			stub.rows[key] = row
		}
	}
	return nil
}

type stubParticipantRepo struct {
	rows map[string]models.Participant
}

func newStubParticipantRepo() *stubParticipantRepo {
	return &stubParticipantRepo{rows: make(map[string]models.Participant)}
}

func participantKey(commitmentID string, userID string) string {
	return commitmentID + "|" + userID
}

func (stub *stubParticipantRepo) CountActive(commitmentID string) (int64, error) {
	var count int64
	for _, row := range stub.rows {
		if row.CommitmentID == commitmentID && !row.Deleted {
			count++
		}
	}
	return count, nil
}

func (stub *stubParticipantRepo) FindActive(commitmentID string, userID string) (models.Participant, bool, error) {
	row, ok := stub.rows[participantKey(commitmentID, userID)]
	if !ok || row.Deleted {
		return models.Participant{}, false, nil
	}
	return row, true, nil
}

func (stub *stubParticipantRepo) ListActiveUserIDs(commitmentID string) ([]string, error) {
	out := make([]string, 0)
	for _, row := range stub.rows {
		if row.CommitmentID == commitmentID && !row.Deleted {
			out = append(out, row.UserID)
		}
	}
	return out, nil
}

func (stub *stubParticipantRepo) ListActiveCommitmentIDsByUser(userID string) ([]string, error) {
	out := make([]string, 0)
	for _, row := range stub.rows {
		if row.UserID == userID && !row.Deleted {
			out = append(out, row.CommitmentID)
		}
	}
	return out, nil
}

func (stub *stubParticipantRepo) Enroll(commitmentID string, userID string) error {
	key := participantKey(commitmentID, userID)
	row, ok := stub.rows[key]
	if ok {
		row.Deleted = false
		stub.rows[key] = row
		return nil
	}
	stub.rows[key] = models.Participant{ID: key, CommitmentID: commitmentID, UserID: userID}
	return nil
}

func (stub *stubParticipantRepo) EnrollIfBelowCap(commitmentID string, userID string, cap int) (bool, error) {
	count, _ := stub.CountActive(commitmentID)
	if count >= int64(cap) {
		return false, nil
	}
	return true, stub.Enroll(commitmentID, userID)
}

func (stub *stubParticipantRepo) SoftDeleteByCommitment(commitmentID string) error {
	for key, row := range stub.rows {
		if row.CommitmentID == commitmentID {
			row.Deleted = true
			stub.rows[key] = row
		}
	}
	return nil
}

func (stub *stubParticipantRepo) SoftDelete(commitmentID string, userID string) error {
	key := participantKey(commitmentID, userID)
	row, ok := stub.rows[key]
	if !ok {
		return nil
	}
	row.Deleted = true
	stub.rows[key] = row
	return nil
}

type stubUserRepo struct {
	created map[string]bool
	err     error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{created: make(map[string]bool)}
}

func (stub *stubUserRepo) FindOrCreate(userID string) error {
	if stub.err != nil {
		return stub.err
	}
	stub.created[userID] = true
	return nil
}

type serviceFixture struct {
	service      *CommitmentService
	commitments  *stubCommitmentRepo
	completions  *stubCompletionRepo
	participants *stubParticipantRepo
	users        *stubUserRepo
}

func newServiceFixture() serviceFixture {
	commitments := newStubCommitmentRepo()
	completions := newStubCompletionRepo()
	participants := newStubParticipantRepo()
	users := newStubUserRepo()
	service := NewCommitmentService(commitments, completions, participants, users, DefaultShareCodePolicy())
	return serviceFixture{
		service:      service,
		commitments:  commitments,
		completions:  completions,
		participants: participants,
		users:        users,
	}
}

func TestCreateCollaborativeAssignsCodeAndEnrollsCreator(t *testing.T) {
	fixture := newServiceFixture()

	commitment, err := fixture.service.Create("Run daily", models.TypeCollaborative, "alice")
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	if len(commitment.ShareCode) != 6 {
		t.Fatalf("Create() shareCode = %q, want 6 characters", commitment.ShareCode)
	}
	for _, char := range commitment.ShareCode {
		if !strings.ContainsRune(NumericAlphabet, char) {
			t.Fatalf("Create() shareCode %q contains non-numeric %q", commitment.ShareCode, char)
		}
	}
	if _, active, _ := fixture.participants.FindActive(commitment.ID, "alice"); !active {
		t.Fatalf("Create() did not enroll creator as participant")
	}
	if !fixture.users.created["alice"] {
		t.Fatalf("Create() did not provision the owner user")
	}
}

func TestCreateSelfHasNoShareCode(t *testing.T) {
	fixture := newServiceFixture()

	commitment, err := fixture.service.Create("Read", models.TypeSelf, "alice")
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	if commitment.ShareCode != "" {
		t.Fatalf("Create() shareCode = %q, want empty for self", commitment.ShareCode)
	}
}

func TestCreateRejectsBlankTitleAndBadType(t *testing.T) {
	fixture := newServiceFixture()

	if _, err := fixture.service.Create("   ", models.TypeSelf, "alice"); !errors.Is(err, ErrInvalidTitle) {
		t.Fatalf("expected ErrInvalidTitle, got %v", err)
	}
	if _, err := fixture.service.Create("ok", "weekly", "alice"); !errors.Is(err, ErrInvalidCommitmentType) {
		t.Fatalf("expected ErrInvalidCommitmentType, got %v", err)
	}
}

func TestJoinIsIdempotentForActiveParticipant(t *testing.T) {
	fixture := newServiceFixture()
	commitment, _ := fixture.service.Create("Run", models.TypeCollaborative, "alice")

	first, err := fixture.service.Join(commitment.ShareCode, "bob")
	if err != nil {
		t.Fatalf("Join() unexpected error: %v", err)
	}
	second, err := fixture.service.Join(commitment.ShareCode, "bob")
	if err != nil {
		t.Fatalf("second Join() unexpected error: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("re-join returned different commitment: %s vs %s", first.ID, second.ID)
	}
	count, _ := fixture.participants.CountActive(commitment.ID)
	if count != 2 {
		t.Fatalf("participant count = %d, want 2", count)
	}
}

func TestJoinRejectsThirdParticipant(t *testing.T) {
	fixture := newServiceFixture()
	commitment, _ := fixture.service.Create("Run", models.TypeCollaborative, "alice")
	if _, err := fixture.service.Join(commitment.ShareCode, "bob"); err != nil {
		t.Fatalf("Join(bob) unexpected error: %v", err)
	}

	_, err := fixture.service.Join(commitment.ShareCode, "carol")
	if !errors.Is(err, ErrChallengeFull) {
		t.Fatalf("expected ErrChallengeFull, got %v", err)
	}

	count, _ := fixture.participants.CountActive(commitment.ID)
	if count != 2 {
		t.Fatalf("rejected join changed state, participant count = %d", count)
	}
	if _, active, _ := fixture.participants.FindActive(commitment.ID, "carol"); active {
		t.Fatalf("rejected joiner has an active participant row")
	}
}

func TestJoinRestoresSoftDeletedParticipant(t *testing.T) {
	fixture := newServiceFixture()
	commitment, _ := fixture.service.Create("Run", models.TypeCollaborative, "alice")
	if _, err := fixture.service.Join(commitment.ShareCode, "bob"); err != nil {
		t.Fatalf("Join(bob) unexpected error: %v", err)
	}
	if err := fixture.service.RemoveOrLeave(commitment.ID, "bob"); err != nil {
		t.Fatalf("RemoveOrLeave(bob) unexpected error: %v", err)
	}

	if _, err := fixture.service.Join(commitment.ShareCode, "bob"); err != nil {
		t.Fatalf("re-join after leave unexpected error: %v", err)
	}
	if _, active, _ := fixture.participants.FindActive(commitment.ID, "bob"); !active {
		t.Fatalf("participant row was not restored")
	}
}

func TestJoinRejectsUnknownCodeAndWrongType(t *testing.T) {
	fixture := newServiceFixture()
	self, _ := fixture.service.Create("Read", models.TypeSelf, "alice")
	self.ShareCode = "999999"
	_ = fixture.commitments.Save(&self)

	if _, err := fixture.service.Join("000000", "bob"); !errors.Is(err, ErrInvalidShareCode) {
		t.Fatalf("expected ErrInvalidShareCode, got %v", err)
	}
	if _, err := fixture.service.Join("999999", "bob"); !errors.Is(err, ErrNotCollaborative) {
		t.Fatalf("expected ErrNotCollaborative, got %v", err)
	}
}

func TestJoinRejectsDeletedCommitment(t *testing.T) {
	fixture := newServiceFixture()
	commitment, _ := fixture.service.Create("Run", models.TypeCollaborative, "alice")
	if err := fixture.service.RemoveOrLeave(commitment.ID, "alice"); err != nil {
		t.Fatalf("RemoveOrLeave() unexpected error: %v", err)
	}

	if _, err := fixture.service.Join(commitment.ShareCode, "bob"); !errors.Is(err, ErrInvalidShareCode) {
		t.Fatalf("expected ErrInvalidShareCode for deleted commitment, got %v", err)
	}
}

func TestToggleCompletionLifecycle(t *testing.T) {
	fixture := newServiceFixture()
	commitment, _ := fixture.service.Create("Run", models.TypeCollaborative, "alice")

	if _, err := fixture.service.ToggleCompletion(commitment.ID, "2024-01-05", "alice"); err != nil {
		t.Fatalf("first toggle unexpected error: %v", err)
	}
	row, found, _ := fixture.completions.FindByKey(commitment.ID, "alice", "2024-01-05")
	if !found || row.Deleted {
		t.Fatalf("after first toggle: found=%v deleted=%v, want active row", found, row.Deleted)
	}
	createdID := row.ID

	if _, err := fixture.service.ToggleCompletion(commitment.ID, "2024-01-05", "alice"); err != nil {
		t.Fatalf("second toggle unexpected error: %v", err)
	}
	row, _, _ = fixture.completions.FindByKey(commitment.ID, "alice", "2024-01-05")
	if !row.Deleted {
		t.Fatalf("after second toggle: row still active, want soft-deleted")
	}

	if _, err := fixture.service.ToggleCompletion(commitment.ID, "2024-01-05", "alice"); err != nil {
		t.Fatalf("third toggle unexpected error: %v", err)
	}
	row, _, _ = fixture.completions.FindByKey(commitment.ID, "alice", "2024-01-05")
	if row.Deleted {
		t.Fatalf("after third toggle: row deleted, want restored")
	}
	if row.ID != createdID {
		t.Fatalf("restore created a new row %s, want reuse of %s", row.ID, createdID)
	}
}

func TestToggleCompletionRejectsBadDate(t *testing.T) {
	fixture := newServiceFixture()
	commitment, _ := fixture.service.Create("Run", models.TypeCollaborative, "alice")

	if _, err := fixture.service.ToggleCompletion(commitment.ID, "05/01/2024", "alice"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestRemoveOrLeaveOwnerTearsDownEverything(t *testing.T) {
	fixture := newServiceFixture()
	commitment, _ := fixture.service.Create("Run", models.TypeCollaborative, "alice")
	_, _ = fixture.service.Join(commitment.ShareCode, "bob")
	_, _ = fixture.service.ToggleCompletion(commitment.ID, "2024-01-05", "alice")
	_, _ = fixture.service.ToggleCompletion(commitment.ID, "2024-01-06", "bob")

	if err := fixture.service.RemoveOrLeave(commitment.ID, "alice"); err != nil {
		t.Fatalf("RemoveOrLeave(owner) unexpected error: %v", err)
	}

	if _, found, _ := fixture.commitments.FindActiveByID(commitment.ID); found {
		t.Fatalf("commitment still active after owner teardown")
	}
	for _, row := range fixture.completions.rows {
		if !row.Deleted {
			t.Fatalf("completion %s survived owner teardown", row.ID)
		}
	}
	count, _ := fixture.participants.CountActive(commitment.ID)
	if count != 0 {
		t.Fatalf("active participants after teardown = %d, want 0", count)
	}
}

func TestRemoveOrLeaveParticipantTakesOnlyOwnRows(t *testing.T) {
	fixture := newServiceFixture()
	commitment, _ := fixture.service.Create("Run", models.TypeCollaborative, "alice")
	_, _ = fixture.service.Join(commitment.ShareCode, "bob")
	_, _ = fixture.service.ToggleCompletion(commitment.ID, "2024-01-05", "alice")
	_, _ = fixture.service.ToggleCompletion(commitment.ID, "2024-01-06", "bob")

	if err := fixture.service.RemoveOrLeave(commitment.ID, "bob"); err != nil {
		t.Fatalf("RemoveOrLeave(participant) unexpected error: %v", err)
	}

	if _, found, _ := fixture.commitments.FindActiveByID(commitment.ID); !found {
		t.Fatalf("commitment was deleted by a leaving participant")
	}
	aliceRow, _, _ := fixture.completions.FindByKey(commitment.ID, "alice", "2024-01-05")
	if aliceRow.Deleted {
		t.Fatalf("owner's completion was deleted by a leaving participant")
	}
	bobRow, _, _ := fixture.completions.FindByKey(commitment.ID, "bob", "2024-01-06")
	if !bobRow.Deleted {
		t.Fatalf("leaver's completion was not deleted")
	}
	if _, active, _ := fixture.participants.FindActive(commitment.ID, "bob"); active {
		t.Fatalf("leaver still has an active participant row")
	}
}

func TestRemoveOrLeaveRejectsStranger(t *testing.T) {
	fixture := newServiceFixture()
	commitment, _ := fixture.service.Create("Run", models.TypeCollaborative, "alice")

	if err := fixture.service.RemoveOrLeave(commitment.ID, "mallory"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestErrorMessageKeepsFullChallengeDistinct(t *testing.T) {
	message := ErrorMessage(ErrChallengeFull)
	if !strings.Contains(message, "full") || !strings.Contains(message, "2") {
		t.Fatalf("ErrorMessage(ErrChallengeFull) = %q, want message naming the cap", message)
	}
	if message == ErrorMessage(ErrInvalidShareCode) {
		t.Fatalf("full-challenge message must differ from invalid-code message")
	}
}
