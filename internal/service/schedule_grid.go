package service

import (
	"sort"

	"github.com/uniplan/timetable-api/pkg/config"
)

// Weekdays the generator places lessons on, Monday through Friday.
const (
	firstTeachingDay = 1
	lastTeachingDay  = 5
)

// TimeSlot is one candidate position in the weekly grid. Day is 1 (Monday)
// through 5 (Friday); minutes are offsets from midnight.
type TimeSlot struct {
	Day         int
	StartMinute int
	EndMinute   int
}

// placement is a lesson candidate pinned to a slot, used while generating
// and when scoring the finished week.
type placement struct {
	TemplateID string
	SubjectID  string
	GroupID    string
	TeacherID  string
	AudienceID string
	Slot       TimeSlot
}

// buildWeekSlots expands the configured teaching window into the flat list of
// candidate slots, day by day. Successive slots within a day are separated by
// the break duration; a slot is kept only if the whole lesson fits before the
// end of the teaching day.
func buildWeekSlots(cfg config.GeneratorConfig) []TimeSlot {
	dayStart := int(cfg.DayStart.Minutes())
	dayEnd := int(cfg.DayEnd.Minutes())
	lesson := int(cfg.LessonDuration.Minutes())
	pause := int(cfg.BreakDuration.Minutes())

	var slots []TimeSlot
	for day := firstTeachingDay; day <= lastTeachingDay; day++ {
		for start := dayStart; start+lesson <= dayEnd; start += lesson + pause {
			slots = append(slots, TimeSlot{Day: day, StartMinute: start, EndMinute: start + lesson})
		}
	}
	return slots
}

// overlaps reports whether two half-open minute intervals intersect.
// Touching intervals (one ends exactly when the other starts) do not overlap.
func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// conflictsWith reports whether the candidate collides with an already placed
// lesson: same day, overlapping time, and a shared group, teacher or room.
func conflictsWith(existing placement, candidate placement) bool {
	if existing.Slot.Day != candidate.Slot.Day {
		return false
	}
	if !overlaps(existing.Slot.StartMinute, existing.Slot.EndMinute, candidate.Slot.StartMinute, candidate.Slot.EndMinute) {
		return false
	}
	return existing.GroupID == candidate.GroupID ||
		existing.TeacherID == candidate.TeacherID ||
		existing.AudienceID == candidate.AudienceID
}

// hasConflict scans the placed lessons for a collision with the candidate.
func hasConflict(placed []placement, candidate placement) bool {
	for _, p := range placed {
		if conflictsWith(p, candidate) {
			return true
		}
	}
	return false
}

type dayActorKey struct {
	day   int
	actor string
}

// scheduleQuality scores a finished week. The score starts at zero and each
// idle gap longer than the configured threshold in a teacher's day subtracts
// penalty points, so a fully compact week scores 0 and anything worse goes
// negative. Lessons are also bucketed per group and day, but group gaps do
// not currently affect the score.
func scheduleQuality(placed []placement, cfg config.GeneratorConfig) int {
	gapThreshold := int(cfg.GapPenaltyAfter.Minutes())
	penalty := cfg.GapPenaltyPoints

	byTeacherDay := make(map[dayActorKey][]placement)
	byGroupDay := make(map[dayActorKey][]placement)
	for _, p := range placed {
		tk := dayActorKey{day: p.Slot.Day, actor: p.TeacherID}
		gk := dayActorKey{day: p.Slot.Day, actor: p.GroupID}
		byTeacherDay[tk] = append(byTeacherDay[tk], p)
		byGroupDay[gk] = append(byGroupDay[gk], p)
	}

	score := 0
	for _, day := range byTeacherDay {
		if len(day) < 2 {
			continue
		}
		sort.Slice(day, func(i, j int) bool { return day[i].Slot.StartMinute < day[j].Slot.StartMinute })
		for i := 1; i < len(day); i++ {
			if day[i].Slot.StartMinute-day[i-1].Slot.EndMinute > gapThreshold {
				score -= penalty
			}
		}
	}

	return score
}
