package repositories

import (
	"errors"

	"github.com/orgdesk/inbox/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReadCursorRepository persists the per-user "last read message" watermark.
type ReadCursorRepository interface {
	// Get returns the cursor for the login, 0 when no row exists yet.
	Get(login string) (uint, error)
	// AdvanceTo moves the cursor forward to messageID if it is above the
	// stored value. The operation is a single atomic upsert and never
	// rewinds the cursor, so concurrent overlapping requests are safe.
	AdvanceTo(login string, messageID uint) error
}

type postgresReadCursorRepository struct {
	db *gorm.DB
}

func NewPostgresReadCursorRepository(db *gorm.DB) ReadCursorRepository {
	return &postgresReadCursorRepository{db: db}
}

func (r *postgresReadCursorRepository) Get(login string) (uint, error) {
	var cursor models.ReadCursor
	err := r.db.Where("login = ?", login).First(&cursor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return cursor.LastReadMessageID, nil
}

func (r *postgresReadCursorRepository) AdvanceTo(login string, messageID uint) error {
	// INSERT .. ON CONFLICT keeping the greater of the stored and proposed
	// values. The CASE form runs identically on PostgreSQL and SQLite.
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "login"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_read_message_id": gorm.Expr(
				"CASE WHEN excluded.last_read_message_id > read_cursors.last_read_message_id" +
					" THEN excluded.last_read_message_id ELSE read_cursors.last_read_message_id END"),
		}),
	}).Create(&models.ReadCursor{Login: login, LastReadMessageID: messageID}).Error
}
