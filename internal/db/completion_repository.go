package db

import (
	"github.com/commitzapp/commitz/internal/models"
	"gorm.io/gorm"
)

type CompletionRepository struct {
	database *gorm.DB
}

func NewCompletionRepository(database *gorm.DB) *CompletionRepository {
	return &CompletionRepository{database: database}
}

// ListByCommitment returns every row for the commitment, soft-deleted
// ones included, so clients can observe deletions during reconciliation.
func (repo *CompletionRepository) ListByCommitment(commitmentID string) ([]models.Completion, error) {
	completions := make([]models.Completion, 0)
	if err := repo.database.
		Where("commitment_id = ?", commitmentID).
		Order("date ASC, id ASC").
		Find(&completions).Error; err != nil {
		return nil, err
	}
	return completions, nil
}

func (repo *CompletionRepository) ListByCommitmentAndUser(commitmentID string, userID string) ([]models.Completion, error) {
	completions := make([]models.Completion, 0)
	if err := repo.database.
		Where("commitment_id = ? AND user_id = ?", commitmentID, userID).
		Order("date ASC, id ASC").
		Find(&completions).Error; err != nil {
		return nil, err
	}
	return completions, nil
}

// FindByKey looks up the single row for a (commitment, user, date)
// natural key regardless of its deleted flag.
func (repo *CompletionRepository) FindByKey(commitmentID string, userID string, date string) (models.Completion, bool, error) {
	completion := models.Completion{}
	result := repo.database.
		Where("commitment_id = ? AND user_id = ? AND date = ?", commitmentID, userID, date).
		Limit(1).
		Find(&completion)
	if result.Error != nil {
		return models.Completion{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Completion{}, false, nil
	}
	return completion, true, nil
}

func (repo *CompletionRepository) Create(completion *models.Completion) error {
	return repo.database.Create(completion).Error
}

func (repo *CompletionRepository) Save(completion *models.Completion) error {
	return repo.database.Save(completion).Error
}

func (repo *CompletionRepository) SoftDeleteByCommitment(commitmentID string) error {
	return repo.database.Model(&models.Completion{}).
		Where("commitment_id = ? AND deleted = ?", commitmentID, false).
		Updates(map[string]any{"deleted": true}).Error
}

func (repo *CompletionRepository) SoftDeleteByCommitmentAndUser(commitmentID string, userID string) error {
	return repo.database.Model(&models.Completion{}).
		Where("commitment_id = ? AND user_id = ? AND deleted = ?", commitmentID, userID, false).
		Updates(map[string]any{"deleted": true}).Error
}
