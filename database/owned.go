package database

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound covers both missing rows and rows owned by someone else.
var ErrNotFound = errors.New("not found")

// FindOwned loads the row with the given primary key if ownerID owns it.
func FindOwned[T any](db *gorm.DB, id any, ownerID uint, preloads ...string) (*T, error) {
	var out T
	q := db
	for _, p := range preloads {
		q = q.Preload(p)
	}
	err := q.Where("id = ? AND owner_id = ?", id, ownerID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOwned returns every row owned by ownerID, newest first.
func ListOwned[T any](db *gorm.DB, ownerID uint) ([]T, error) {
	var out []T
	err := db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&out).Error
	return out, err
}

// DeleteOwned deletes the row if ownerID owns it.
func DeleteOwned[T any](db *gorm.DB, id any, ownerID uint) error {
	var model T
	res := db.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
