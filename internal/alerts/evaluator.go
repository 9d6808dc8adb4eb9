package alerts

import (
	"time"

	"go.uber.org/zap"

	"github.com/projectpsu986-droid/pet-monitoring/internal/infrastructure/log"
	"github.com/projectpsu986-droid/pet-monitoring/internal/sysconfig"
	"github.com/projectpsu986-droid/pet-monitoring/internal/timeslot"
)

// Evaluator turns raw timeslot samples into alert candidates. It never writes;
// dedup and persistence belong to the Ingestor.
type Evaluator struct {
	inspector *timeslot.Inspector
	reader    *timeslot.Reader
	resolver  *sysconfig.Resolver
}

func NewEvaluator(inspector *timeslot.Inspector, reader *timeslot.Reader, resolver *sysconfig.Resolver) *Evaluator {
	return &Evaluator{
		inspector: inspector,
		reader:    reader,
		resolver:  resolver,
	}
}

// TargetDay truncates an instant to its calendar day.
func TargetDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// dailyCreatedAt stamps a day-scoped alert at the end of its target day so a
// backfilled day sorts where it happened, not when it was computed.
func dailyCreatedAt(day time.Time) time.Time {
	return day.Add(23*time.Hour + 59*time.Minute)
}

// DailyCandidates computes the full set of alerts for one calendar day:
// the day-bounded absence check plus the eating and excretion counts. A day
// with no samples still counts zero eat and excrete episodes, so an explicit
// re-evaluation of an empty day reports the missed behavior. A failure on one
// cat is logged and skipped so the rest of the batch still evaluates.
func (e *Evaluator) DailyCandidates(day time.Time) ([]Candidate, error) {
	return e.dailyCandidates(day, true)
}

// BehaviorCandidates is DailyCandidates restricted to the eating and
// excretion checks. Absence is left to the realtime evaluator.
func (e *Evaluator) BehaviorCandidates(day time.Time) ([]Candidate, error) {
	return e.dailyCandidates(day, false)
}

func (e *Evaluator) dailyCandidates(day time.Time, includeAbsence bool) ([]Candidate, error) {
	day = TargetDay(day)
	chans, err := e.inspector.Channels(true)
	if err != nil {
		return nil, err
	}

	createdAt := dailyCreatedAt(day)
	var out []Candidate
	for _, cc := range chans {
		eff, err := e.resolver.ForCat(cc.Channel.Prefix)
		if err != nil {
			log.Default().Warn("skipping cat in daily alert evaluation",
				zap.String("cat", cc.Cat.Name), zap.Error(err))
			continue
		}
		slots, err := e.reader.FetchRange(cc.Channel, day, day.AddDate(0, 0, 1))
		if err != nil {
			log.Default().Warn("skipping cat in daily alert evaluation",
				zap.String("cat", cc.Cat.Name), zap.Error(err))
			continue
		}

		if includeAbsence {
			// Reference is the newest sample within the day, end of day when
			// the day carries no samples at all. A cat never once found stays
			// silent: that is a data gap, not an absence.
			reference := day.AddDate(0, 0, 1)
			if len(slots) > 0 {
				reference = slots[len(slots)-1].Time
			}
			lastFound, err := e.reader.LastFoundTime(cc.Channel)
			if err != nil {
				log.Default().Warn("skipping cat in daily alert evaluation",
					zap.String("cat", cc.Cat.Name), zap.Error(err))
				continue
			}
			if lastFound != nil {
				threshold := time.Duration(eff.AbsenceHours) * time.Hour
				if absent := reference.Sub(*lastFound); absent >= threshold {
					out = append(out, Candidate{
						CatName:   cc.Cat.Name,
						Color:     cc.Channel.Prefix,
						Type:      TypeNoCat,
						Message:   absenceMessage(cc.Cat.Name, int(absent.Hours()), eff.AbsenceHours),
						AlertDate: day,
						CreatedAt: createdAt,
					})
				}
			}
		}

		eatCount := timeslot.CountTransitions(slots, timeslot.ActivityEat)
		excreteCount := timeslot.CountTransitions(slots, timeslot.ActivityExcrete)

		if eatCount < eff.MinEatPerDay {
			out = append(out, Candidate{
				CatName:   cc.Cat.Name,
				Color:     cc.Channel.Prefix,
				Type:      TypeNoEating,
				Message:   noEatingMessage(cc.Cat.Name, eatCount, eff.MinEatPerDay),
				AlertDate: day,
				CreatedAt: createdAt,
			})
		}
		if excreteCount < eff.MinExcretePerDay {
			out = append(out, Candidate{
				CatName:   cc.Cat.Name,
				Color:     cc.Channel.Prefix,
				Type:      TypeLowExcrete,
				Message:   lowExcreteMessage(cc.Cat.Name, excreteCount, eff.MinExcretePerDay),
				AlertDate: day,
				CreatedAt: createdAt,
			})
		} else if excreteCount > eff.MaxExcretePerDay {
			out = append(out, Candidate{
				CatName:   cc.Cat.Name,
				Color:     cc.Channel.Prefix,
				Type:      TypeHighExcrete,
				Message:   highExcreteMessage(cc.Cat.Name, excreteCount, eff.MaxExcretePerDay),
				AlertDate: day,
				CreatedAt: createdAt,
			})
		}
	}
	return out, nil
}

// RealtimeAbsence computes no_cat candidates as of now: a cat whose last
// found sample is at least the absence threshold behind the reference instant
// alerts for today. A cat never seen at all stays silent.
func (e *Evaluator) RealtimeAbsence(now time.Time) ([]Candidate, error) {
	chans, err := e.inspector.Channels(true)
	if err != nil {
		return nil, err
	}

	today := TargetDay(now)
	var out []Candidate
	for _, cc := range chans {
		eff, err := e.resolver.ForCat(cc.Channel.Prefix)
		if err != nil {
			log.Default().Warn("skipping cat in absence evaluation",
				zap.String("cat", cc.Cat.Name), zap.Error(err))
			continue
		}
		lastFound, err := e.reader.LastFoundTime(cc.Channel)
		if err != nil {
			log.Default().Warn("skipping cat in absence evaluation",
				zap.String("cat", cc.Cat.Name), zap.Error(err))
			continue
		}
		if lastFound == nil {
			continue
		}

		absent := now.Sub(*lastFound)
		threshold := time.Duration(eff.AbsenceHours) * time.Hour
		if absent >= threshold {
			out = append(out, Candidate{
				CatName:   cc.Cat.Name,
				Color:     cc.Channel.Prefix,
				Type:      TypeNoCat,
				Message:   absenceMessage(cc.Cat.Name, int(absent.Hours()), eff.AbsenceHours),
				AlertDate: today,
				CreatedAt: now,
			})
		}
	}
	return out, nil
}
