package db

import (
	"github.com/commitzapp/commitz/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ParticipantRepository struct {
	database *gorm.DB
}

func NewParticipantRepository(database *gorm.DB) *ParticipantRepository {
	return &ParticipantRepository{database: database}
}

func (repo *ParticipantRepository) CountActive(commitmentID string) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.Participant{}).
		Where("commitment_id = ? AND deleted = ?", commitmentID, false).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *ParticipantRepository) FindActive(commitmentID string, userID string) (models.Participant, bool, error) {
	participant := models.Participant{}
	result := repo.database.
		Where("commitment_id = ? AND user_id = ? AND deleted = ?", commitmentID, userID, false).
		Limit(1).
		Find(&participant)
	if result.Error != nil {
		return models.Participant{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Participant{}, false, nil
	}
	return participant, true, nil
}

func (repo *ParticipantRepository) ListActiveUserIDs(commitmentID string) ([]string, error) {
	userIDs := make([]string, 0)
	if err := repo.database.Model(&models.Participant{}).
		Where("commitment_id = ? AND deleted = ?", commitmentID, false).
		Order("created_at ASC, id ASC").
		Pluck("user_id", &userIDs).Error; err != nil {
		return nil, err
	}
	return userIDs, nil
}

func (repo *ParticipantRepository) ListActiveCommitmentIDsByUser(userID string) ([]string, error) {
	commitmentIDs := make([]string, 0)
	if err := repo.database.Model(&models.Participant{}).
		Where("user_id = ? AND deleted = ?", userID, false).
		Pluck("commitment_id", &commitmentIDs).Error; err != nil {
		return nil, err
	}
	return commitmentIDs, nil
}

// Enroll restores a soft-deleted row for the user or creates a fresh
// one. Restoring never resurrects historical completions.
func (repo *ParticipantRepository) Enroll(commitmentID string, userID string) error {
	return enrollInTx(repo.database, commitmentID, userID)
}

// EnrollIfBelowCap runs the cap check and the enroll inside one
// transaction, so two concurrent joiners serialize on the write lock
// and the second one observes the first one's row.
func (repo *ParticipantRepository) EnrollIfBelowCap(commitmentID string, userID string, cap int) (bool, error) {
	enrolled := false
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Participant{}).
			Where("commitment_id = ? AND deleted = ?", commitmentID, false).
			Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(cap) {
			return nil
		}
		if err := enrollInTx(tx, commitmentID, userID); err != nil {
			return err
		}
		enrolled = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return enrolled, nil
}

func enrollInTx(tx *gorm.DB, commitmentID string, userID string) error {
	existing := models.Participant{}
	result := tx.
		Where("commitment_id = ? AND user_id = ? AND deleted = ?", commitmentID, userID, true).
		Limit(1).
		Find(&existing)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return tx.Model(&existing).Updates(map[string]any{"deleted": false}).Error
	}

	participant := models.Participant{
		ID:           uuid.NewString(),
		CommitmentID: commitmentID,
		UserID:       userID,
	}
	return tx.Create(&participant).Error
}

func (repo *ParticipantRepository) SoftDeleteByCommitment(commitmentID string) error {
	return repo.database.Model(&models.Participant{}).
		Where("commitment_id = ? AND deleted = ?", commitmentID, false).
		Updates(map[string]any{"deleted": true}).Error
}

func (repo *ParticipantRepository) SoftDelete(commitmentID string, userID string) error {
	return repo.database.Model(&models.Participant{}).
		Where("commitment_id = ? AND user_id = ? AND deleted = ?", commitmentID, userID, false).
		Updates(map[string]any{"deleted": true}).Error
}
