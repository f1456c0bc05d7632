package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniplan/timetable-api/pkg/config"
)

func defaultGridConfig() config.GeneratorConfig {
	return config.GeneratorConfig{
		DayStart:         8 * time.Hour,
		DayEnd:           20 * time.Hour,
		LessonDuration:   85 * time.Minute,
		BreakDuration:    10 * time.Minute,
		GapPenaltyAfter:  2 * time.Hour,
		GapPenaltyPoints: 10,
	}
}

func TestBuildWeekSlots(t *testing.T) {
	slots := buildWeekSlots(defaultGridConfig())

	// 7 lessons of 85 minutes with 10 minute breaks fit into 08:00-20:00;
	// an 8th would start 19:05 and run past the end of the day.
	require.Len(t, slots, 35)

	perDay := make(map[int]int)
	for _, slot := range slots {
		perDay[slot.Day]++
		assert.Equal(t, 85, slot.EndMinute-slot.StartMinute)
		assert.LessOrEqual(t, slot.EndMinute, 20*60)
	}
	for day := 1; day <= 5; day++ {
		assert.Equal(t, 7, perDay[day], "day %d", day)
	}

	first := slots[0]
	assert.Equal(t, 1, first.Day)
	assert.Equal(t, 8*60, first.StartMinute)
	assert.Equal(t, 8*60+85, first.EndMinute)

	// Last slot of Monday starts at 17:30 and ends 18:55.
	monday := slots[:7]
	last := monday[len(monday)-1]
	assert.Equal(t, 17*60+30, last.StartMinute)
	assert.Equal(t, 18*60+55, last.EndMinute)
}

func TestOverlaps(t *testing.T) {
	assert.True(t, overlaps(480, 565, 500, 585))
	assert.True(t, overlaps(500, 585, 480, 565))
	assert.True(t, overlaps(480, 565, 480, 565))

	// Touching intervals do not overlap.
	assert.False(t, overlaps(480, 565, 565, 650))
	assert.False(t, overlaps(565, 650, 480, 565))
	assert.False(t, overlaps(480, 565, 700, 785))
}

func TestConflictsWithSharedResources(t *testing.T) {
	base := placement{
		GroupID:    "g1",
		TeacherID:  "t1",
		AudienceID: "a1",
		Slot:       TimeSlot{Day: 1, StartMinute: 480, EndMinute: 565},
	}

	sameSlot := TimeSlot{Day: 1, StartMinute: 500, EndMinute: 585}

	sameGroup := placement{GroupID: "g1", TeacherID: "t2", AudienceID: "a2", Slot: sameSlot}
	sameTeacher := placement{GroupID: "g2", TeacherID: "t1", AudienceID: "a2", Slot: sameSlot}
	sameAudience := placement{GroupID: "g2", TeacherID: "t2", AudienceID: "a1", Slot: sameSlot}
	disjoint := placement{GroupID: "g2", TeacherID: "t2", AudienceID: "a2", Slot: sameSlot}

	assert.True(t, conflictsWith(base, sameGroup))
	assert.True(t, conflictsWith(base, sameTeacher))
	assert.True(t, conflictsWith(base, sameAudience))
	assert.False(t, conflictsWith(base, disjoint))

	// Same resources on another day never conflict.
	otherDay := placement{GroupID: "g1", TeacherID: "t1", AudienceID: "a1", Slot: TimeSlot{Day: 2, StartMinute: 480, EndMinute: 565}}
	assert.False(t, conflictsWith(base, otherDay))

	assert.True(t, hasConflict([]placement{disjoint, sameGroup}, base))
	assert.False(t, hasConflict([]placement{disjoint}, base))
}

func TestScheduleQualityPenalisesTeacherGaps(t *testing.T) {
	cfg := defaultGridConfig()

	// Compact day: back to back lessons, no penalty.
	compact := []placement{
		{TeacherID: "t1", GroupID: "g1", Slot: TimeSlot{Day: 1, StartMinute: 480, EndMinute: 565}},
		{TeacherID: "t1", GroupID: "g1", Slot: TimeSlot{Day: 1, StartMinute: 575, EndMinute: 660}},
	}
	assert.Equal(t, 0, scheduleQuality(compact, cfg))

	// A teacher idle for more than two hours between lessons costs points.
	gapped := []placement{
		{TeacherID: "t1", GroupID: "g1", Slot: TimeSlot{Day: 1, StartMinute: 480, EndMinute: 565}},
		{TeacherID: "t1", GroupID: "g2", Slot: TimeSlot{Day: 1, StartMinute: 700, EndMinute: 785}},
	}
	assert.Equal(t, -10, scheduleQuality(gapped, cfg))
}

func TestScheduleQualityIgnoresGroupGaps(t *testing.T) {
	cfg := defaultGridConfig()

	// The group sits idle for over two hours, but its two lessons are
	// taught by different teachers, so no teacher-day bucket has a gap.
	placed := []placement{
		{TeacherID: "t1", GroupID: "g1", Slot: TimeSlot{Day: 1, StartMinute: 480, EndMinute: 565}},
		{TeacherID: "t2", GroupID: "g1", Slot: TimeSlot{Day: 1, StartMinute: 700, EndMinute: 785}},
	}
	assert.Equal(t, 0, scheduleQuality(placed, cfg))
}

func TestScheduleQualityAccumulatesAcrossDaysAndTeachers(t *testing.T) {
	cfg := defaultGridConfig()

	placed := []placement{
		{TeacherID: "t1", GroupID: "g1", Slot: TimeSlot{Day: 1, StartMinute: 480, EndMinute: 565}},
		{TeacherID: "t1", GroupID: "g2", Slot: TimeSlot{Day: 1, StartMinute: 700, EndMinute: 785}},
		{TeacherID: "t2", GroupID: "g3", Slot: TimeSlot{Day: 2, StartMinute: 480, EndMinute: 565}},
		{TeacherID: "t2", GroupID: "g4", Slot: TimeSlot{Day: 2, StartMinute: 700, EndMinute: 785}},
	}
	assert.Equal(t, -20, scheduleQuality(placed, cfg))
}

func TestMondayOfWeek(t *testing.T) {
	loc := time.UTC

	// Wednesday 2025-03-12 -> Monday 2025-03-10.
	wednesday := time.Date(2025, 3, 12, 15, 30, 0, 0, loc)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, loc), mondayOfWeek(wednesday))

	// Monday maps to itself at midnight.
	monday := time.Date(2025, 3, 10, 9, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, loc), mondayOfWeek(monday))

	// Sunday belongs to the week that started six days earlier.
	sunday := time.Date(2025, 3, 16, 23, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, loc), mondayOfWeek(sunday))
}
