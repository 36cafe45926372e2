package postgres

import (
	"time"

	tokenDatamodel "github.com/frahmantamala/staff-portal/internal/core/datamodel/token"
	"gorm.io/gorm"
)

type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Issue(t *tokenDatamodel.Token) error {
	return r.db.Create(t).Error
}

func (r *TokenRepository) FindByValue(value string) (*tokenDatamodel.Token, error) {
	var t tokenDatamodel.Token
	err := r.db.Where("token = ?", value).First(&t).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TokenRepository) FindAllForOwner(userID string) ([]*tokenDatamodel.Token, error) {
	var tokens []*tokenDatamodel.Token
	err := r.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&tokens).Error
	return tokens, err
}

func (r *TokenRepository) DeleteByOwner(userID string) error {
	return r.db.Where("user_id = ?", userID).Delete(&tokenDatamodel.Token{}).Error
}

func (r *TokenRepository) DeleteByValue(value string) error {
	return r.db.Where("token = ?", value).Delete(&tokenDatamodel.Token{}).Error
}

func (r *TokenRepository) DeleteCreatedBefore(cutoff time.Time) (int64, error) {
	res := r.db.Where("created_at < ?", cutoff).Delete(&tokenDatamodel.Token{})
	return res.RowsAffected, res.Error
}
