package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Jefferson1994/AppControlBarberias/internal/apierror"
	"github.com/Jefferson1994/AppControlBarberias/internal/repository"

	"gorm.io/gorm"
)

// SequenceService allocates gap-free sequential receipt numbers per
// (establishment, emission point) pair, formatted EEE-PPP-NNNNNNNNN.
// Allocation happens inside the sale's transaction: the counter row lock is
// held until commit, so two concurrent allocations for the same key can never
// return the same number. Gaps appear only when a transaction rolls back.
type SequenceService interface {
	AllocateTx(tx *gorm.DB, establishmentCode, emissionPointCode string) (string, error)
}

type sequenceService struct {
	counters repository.CounterRepository
}

func NewSequenceService(counters repository.CounterRepository) SequenceService {
	return &sequenceService{counters: counters}
}

func (s *sequenceService) AllocateTx(tx *gorm.DB, establishmentCode, emissionPointCode string) (string, error) {
	est := padCode(establishmentCode)
	point := padCode(emissionPointCode)
	if len(est) != 3 || len(point) != 3 {
		return "", apierror.E(apierror.KindMissingEmissionCodes,
			"establishment and emission point codes must be 3 digits")
	}

	seq, err := s.counters.NextSequenceTx(tx, est, point)
	if err != nil {
		// Two first allocations for a brand-new key race on the insert; the
		// counter's unique index rejects the loser. Retryable by the caller.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", apierror.E(apierror.KindConflict,
				"concurrent receipt allocation for this emission point, retry the sale")
		}
		return "", err
	}
	return fmt.Sprintf("%s-%s-%09d", est, point, seq), nil
}

// padCode left-pads short numeric codes with zeros ("1" → "001").
func padCode(code string) string {
	if len(code) >= 3 {
		return code
	}
	return strings.Repeat("0", 3-len(code)) + code
}
