package repositories

import (
	"errors"
	"strings"

	"github.com/orgdesk/inbox/backend/internal/models"
	"gorm.io/gorm"
)

// MessageRepository defines the storage operations for messages. Text
// filtering happens in the database; audience filtering is applied in-process
// by the service over the returned rows.
type MessageRepository interface {
	Create(message *models.Message) error
	Save(message *models.Message) error
	GetByID(id uint) (*models.Message, error)
	// Search returns messages matching the optional case-insensitive
	// substring criteria over target type, target and value, newest id
	// first.
	Search(criteria string) ([]models.Message, error)
	// SearchAfter behaves like Search but only returns messages with an id
	// strictly above the watermark.
	SearchAfter(criteria string, afterID uint) ([]models.Message, error)
	Delete(id uint) error
}

type postgresMessageRepository struct {
	db *gorm.DB
}

func NewPostgresMessageRepository(db *gorm.DB) MessageRepository {
	return &postgresMessageRepository{db: db}
}

func (r *postgresMessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

func (r *postgresMessageRepository) Save(message *models.Message) error {
	return r.db.Save(message).Error
}

func (r *postgresMessageRepository) GetByID(id uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Where("id = ?", id).First(&message).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *postgresMessageRepository) Search(criteria string) ([]models.Message, error) {
	return r.search(criteria, 0)
}

func (r *postgresMessageRepository) SearchAfter(criteria string, afterID uint) ([]models.Message, error) {
	return r.search(criteria, afterID)
}

func (r *postgresMessageRepository) search(criteria string, afterID uint) ([]models.Message, error) {
	query := r.db.Model(&models.Message{})
	if criteria != "" {
		pattern := "%" + strings.ToLower(criteria) + "%"
		query = query.Where(
			"LOWER(target_type) LIKE ? OR LOWER(target) LIKE ? OR LOWER(value) LIKE ?",
			pattern, pattern, pattern)
	}
	if afterID > 0 {
		query = query.Where("id > ?", afterID)
	}
	var messages []models.Message
	err := query.Order("id DESC").Find(&messages).Error
	return messages, err
}

func (r *postgresMessageRepository) Delete(id uint) error {
	return r.db.Delete(&models.Message{}, id).Error
}
