package repository

import (
	"errors"

	"github.com/Jefferson1994/AppControlBarberias/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CounterRepository guards the per-(establishment, emission point) receipt
// counters. This is the one place where correctness depends on the locking
// discipline of the underlying transaction rather than application logic:
// the row is read FOR UPDATE so concurrent allocators for the same key
// serialize, and the lock is held until the caller's transaction commits.
type CounterRepository interface {
	// NextSequenceTx reads-or-creates the counter row for the key under a
	// row lock, increments it by exactly 1, and returns the new value.
	// Gaps can appear only when the enclosing transaction rolls back.
	NextSequenceTx(tx *gorm.DB, establishmentCode, emissionPointCode string) (int64, error)
}

type counterRepo struct{ db *gorm.DB }

func NewCounterRepository(db *gorm.DB) CounterRepository { return &counterRepo{db: db} }

func (r *counterRepo) NextSequenceTx(tx *gorm.DB, establishmentCode, emissionPointCode string) (int64, error) {
	var counter model.ReceiptCounter
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("establishment_code = ? AND emission_point_code = ?", establishmentCode, emissionPointCode).
		First(&counter).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		counter = model.ReceiptCounter{
			EstablishmentCode:  establishmentCode,
			EmissionPointCode:  emissionPointCode,
			LastSequenceNumber: 1,
		}
		// A concurrent first allocation for the same key races on insert;
		// the unique index turns the loser into a retryable conflict.
		if err := tx.Create(&counter).Error; err != nil {
			return 0, err
		}
		return 1, nil
	case err != nil:
		return 0, err
	}

	counter.LastSequenceNumber++
	if err := tx.Save(&counter).Error; err != nil {
		return 0, err
	}
	return counter.LastSequenceNumber, nil
}
