package event

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"github.com/thanseerjelani/dashforge-dashboard-sub000/internal/model"
)

// DefaultMaxOccurrences caps how many occurrences a single recurrence
// rule may derive when the rule itself sets no end.
const DefaultMaxOccurrences = 100

// Expand derives concrete occurrences from base's recurrence rule.
// The base event itself is not included in the result: a rule with
// Count=4 yields exactly 4 derived events after the base.
//
// Each occurrence copies every field of the base except:
//   - ID: freshly generated
//   - Start/End: shifted to the occurrence time, duration preserved
//   - Recurrence: nil (occurrences do not themselves recur)
//
// Monthly and yearly rules follow RFC 5545 semantics: months lacking
// the anchor day (e.g. Jan 31 + 1 month) are skipped, not drifted.
func Expand(base model.Event, maxOccurrences int) ([]model.Event, error) {
	r := base.Recurrence
	if r == nil {
		return nil, nil
	}
	if maxOccurrences <= 0 {
		maxOccurrences = DefaultMaxOccurrences
	}

	freq, err := frequency(r.Type)
	if err != nil {
		return nil, err
	}

	opt := rrule.ROption{
		Freq:     freq,
		Interval: r.Interval,
		Dtstart:  base.Start,
	}
	if r.Until != nil {
		opt.Until = *r.Until
	}
	switch {
	case r.Count > 0:
		// +1 because the rule's first occurrence is the base itself.
		opt.Count = r.Count + 1
	case r.Until == nil:
		opt.Count = maxOccurrences + 1
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("build recurrence rule: %w", err)
	}

	times := rule.All()
	dur := base.Duration()

	out := make([]model.Event, 0, len(times))
	for _, t := range times {
		// The rule's first occurrence is the base start itself
		// (possibly truncated to second precision by the rrule
		// engine); only strictly later times become occurrences.
		if !t.After(base.Start) {
			continue
		}
		if len(out) >= maxOccurrences {
			break
		}
		occ := base
		occ.ID = uuid.NewString()
		occ.Start = t
		occ.End = t.Add(dur)
		occ.Recurrence = nil
		out = append(out, occ)
	}
	return out, nil
}

func frequency(t model.RecurrenceType) (rrule.Frequency, error) {
	switch t {
	case model.RecurDaily:
		return rrule.DAILY, nil
	case model.RecurWeekly:
		return rrule.WEEKLY, nil
	case model.RecurMonthly:
		return rrule.MONTHLY, nil
	case model.RecurYearly:
		return rrule.YEARLY, nil
	default:
		return 0, fmt.Errorf("unknown recurrence type %q", t)
	}
}
