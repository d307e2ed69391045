package db

import (
	"github.com/commitzapp/commitz/internal/models"
	"gorm.io/gorm"
)

type CommitmentRepository struct {
	database *gorm.DB
}

func NewCommitmentRepository(database *gorm.DB) *CommitmentRepository {
	return &CommitmentRepository{database: database}
}

func (repo *CommitmentRepository) FindActiveByID(id string) (models.Commitment, bool, error) {
	commitment := models.Commitment{}
	result := repo.database.
		Where("id = ? AND deleted = ?", id, false).
		Limit(1).
		Find(&commitment)
	if result.Error != nil {
		return models.Commitment{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Commitment{}, false, nil
	}
	return commitment, true, nil
}

// FindByShareCode matches any commitment holding the code, deleted or
// not; callers that need a live record check Deleted themselves.
func (repo *CommitmentRepository) FindByShareCode(code string) (models.Commitment, bool, error) {
	commitment := models.Commitment{}
	result := repo.database.
		Where("share_code = ?", code).
		Order("deleted ASC, updated_at DESC").
		Limit(1).
		Find(&commitment)
	if result.Error != nil {
		return models.Commitment{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Commitment{}, false, nil
	}
	return commitment, true, nil
}

func (repo *CommitmentRepository) ShareCodeInUse(code string) (bool, error) {
	var count int64
	if err := repo.database.Model(&models.Commitment{}).
		Where("share_code = ? AND deleted = ?", code, false).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (repo *CommitmentRepository) ListActiveByOwner(ownerID string) ([]models.Commitment, error) {
	commitments := make([]models.Commitment, 0)
	if err := repo.database.
		Where("owner_id = ? AND deleted = ?", ownerID, false).
		Order("created_at DESC, id DESC").
		Find(&commitments).Error; err != nil {
		return nil, err
	}
	return commitments, nil
}

func (repo *CommitmentRepository) ListActiveCollaborativeByOwner(ownerID string) ([]models.Commitment, error) {
	commitments := make([]models.Commitment, 0)
	if err := repo.database.
		Where("owner_id = ? AND type = ? AND deleted = ?", ownerID, models.TypeCollaborative, false).
		Order("created_at DESC, id DESC").
		Find(&commitments).Error; err != nil {
		return nil, err
	}
	return commitments, nil
}

func (repo *CommitmentRepository) ListActiveCollaborativeByIDs(ids []string) ([]models.Commitment, error) {
	commitments := make([]models.Commitment, 0)
	if len(ids) == 0 {
		return commitments, nil
	}
	if err := repo.database.
		Where("id IN ? AND type = ? AND deleted = ?", ids, models.TypeCollaborative, false).
		Order("created_at DESC, id DESC").
		Find(&commitments).Error; err != nil {
		return nil, err
	}
	return commitments, nil
}

func (repo *CommitmentRepository) Create(commitment *models.Commitment) error {
	return repo.database.Create(commitment).Error
}

func (repo *CommitmentRepository) Save(commitment *models.Commitment) error {
	return repo.database.Save(commitment).Error
}

func (repo *CommitmentRepository) MarkDeleted(id string) error {
	return repo.database.Model(&models.Commitment{}).
		Where("id = ? AND deleted = ?", id, false).
		Updates(map[string]any{"deleted": true}).Error
}
