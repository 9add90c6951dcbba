package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"vendas-backend/models"
)

// ErrReferenced is returned when a delete is blocked by a RESTRICT relation.
var ErrReferenced = errors.New("record is still referenced")

type ReferencedError struct {
	Table string
	Child string
	Count int64
}

func (e *ReferencedError) Error() string {
	return fmt.Sprintf("cannot delete from %s: %d row(s) in %s still reference it", e.Table, e.Count, e.Child)
}

func (e *ReferencedError) Unwrap() error { return ErrReferenced }

// Delete removes the row id from table applying models.Relations: restricted
// children block the delete, cascaded children go with it and set-null
// references are cleared. Everything runs in one transaction.
func Delete(db *gorm.DB, table string, id uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Table(table).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return deleteRows(tx, table, []uuid.UUID{id})
	})
}

func deleteRows(tx *gorm.DB, table string, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	relations := models.RelationsOf(table)

	for _, rel := range relations {
		if rel.Policy != models.Restrict {
			continue
		}
		var count int64
		if err := tx.Table(rel.Child).Where(rel.ForeignKey+" IN ?", ids).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &ReferencedError{Table: table, Child: rel.Child, Count: count}
		}
	}

	for _, rel := range relations {
		switch rel.Policy {
		case models.Cascade:
			var childIDs []uuid.UUID
			if err := tx.Table(rel.Child).Where(rel.ForeignKey+" IN ?", ids).Pluck("id", &childIDs).Error; err != nil {
				return err
			}
			if err := deleteRows(tx, rel.Child, childIDs); err != nil {
				return err
			}
		case models.SetNull:
			stmt := fmt.Sprintf("UPDATE %s SET %s = NULL WHERE %s IN ?", rel.Child, rel.ForeignKey, rel.ForeignKey)
			if err := tx.Exec(stmt, ids).Error; err != nil {
				return err
			}
		}
	}

	return tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE id IN ?", table), ids).Error
}
