// Package matching decides whether a parsed GEDCOM individual is the same
// person as an existing record. Matching is boolean and first-match-wins:
// an earlier scored variant proved hard to debug, so candidates either
// match or they do not, and no weighting is applied.
package matching

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/jwoglom/djtree/pkg/gedcom"
	"github.com/jwoglom/djtree/pkg/models"
	"github.com/jwoglom/djtree/pkg/normalizers"
	"github.com/jwoglom/djtree/pkg/tracing"
)

// Service finds existing persons for parsed individuals.
type Service struct {
	logger ectologger.Logger
}

func NewService(logger ectologger.Logger) *Service {
	return &Service{logger: logger}
}

// FindMatch returns the first person in pool that matches the individual
// record, or nil when none does. Strict mode requires an exact first name
// and the same birth year; lenient mode also accepts curated nickname
// equivalents and a birth year within two years.
func (s *Service) FindMatch(ctx context.Context, rec *gedcom.Record, pool []*models.Person, strict bool) *models.Person {
	ctx, span := tracing.StartSpan(ctx, "matching.Service.FindMatch")
	defer span.End()

	if len(pool) == 0 {
		return nil
	}

	first, _, last := normalizers.ParseName(rec.Field("NAME"))

	var birthDate *time.Time
	if birt := rec.Sub("BIRT"); birt != nil {
		birthDate = normalizers.ParseDate(birt["DATE"])
	}

	for _, person := range pool {
		if s.isMatch(person, first, last, birthDate, strict) {
			s.logger.WithContext(ctx).WithFields(map[string]any{
				"xref":      rec.Xref,
				"person_id": person.ID,
			}).Debug("Matched individual to existing person")
			return person
		}
	}

	return nil
}

// isMatch checks the candidate's names; when a name matches and both sides
// carry a birth date, the dates must also agree. A failed date check moves
// on rather than rejecting the candidate pool outright.
func (s *Service) isMatch(person *models.Person, first, last string, birthDate *time.Time, strict bool) bool {
	for _, name := range person.Names {
		if !namesMatch(first, last, name.First, name.Last, strict) {
			continue
		}

		if birthDate != nil && person.Birth != nil && !person.Birth.Date.IsZero() {
			if !datesMatch(*birthDate, person.Birth.Date, strict) {
				continue
			}
		}

		return true
	}

	return false
}

func namesMatch(first1, last1, first2, last2 string, strict bool) bool {
	first1 = normalizers.ApplyChain(first1, "lowercase", "trim")
	first2 = normalizers.ApplyChain(first2, "lowercase", "trim")
	last1 = normalizers.ApplyChain(last1, "lowercase", "trim")
	last2 = normalizers.ApplyChain(last2, "lowercase", "trim")

	// Both sides need a first and last name to say anything useful
	if first1 == "" || first2 == "" || last1 == "" || last2 == "" {
		return false
	}

	if last1 != last2 {
		return false
	}

	if first1 == first2 {
		return true
	}

	if !strict && isNickname(first1, first2) {
		return true
	}

	return false
}

func datesMatch(date1, date2 time.Time, strict bool) bool {
	if date1.Equal(date2) {
		return true
	}

	yearDiff := date1.Year() - date2.Year()
	if yearDiff < 0 {
		yearDiff = -yearDiff
	}

	if strict {
		return yearDiff == 0
	}
	return yearDiff <= 2
}
