package conflict

import (
	"testing"
	"time"

	bookingModel "office-portal/models/booking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func window() (time.Time, time.Time) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	return day.Add(8 * time.Hour), day.Add(20 * time.Hour)
}

func TestSweepSlotsEmptyDay(t *testing.T) {
	open, close := window()
	slots := sweepSlots(nil, open, close, 60)
	require.Len(t, slots, 1)
	assert.Equal(t, open, slots[0].Start)
	assert.Equal(t, open.Add(time.Hour), slots[0].End)
}

func TestSweepSlotsEmitsOneSlotPerGap(t *testing.T) {
	open, close := window()
	reservations := []reservedInterval{
		{start: open.Add(2 * time.Hour), end: open.Add(3 * time.Hour)}, // 10:00-11:00
		{start: open.Add(5 * time.Hour), end: open.Add(6 * time.Hour)}, // 13:00-14:00
	}
	slots := sweepSlots(reservations, open, close, 60)
	require.Len(t, slots, 3)
	// One fixed-length slot at the head of each qualifying gap.
	assert.Equal(t, open, slots[0].Start)
	assert.Equal(t, open.Add(3*time.Hour), slots[1].Start)
	assert.Equal(t, open.Add(6*time.Hour), slots[2].Start)
	for _, s := range slots {
		assert.Equal(t, time.Hour, s.End.Sub(s.Start))
	}
}

func TestSweepSlotsSkipsShortGaps(t *testing.T) {
	open, close := window()
	reservations := []reservedInterval{
		{start: open.Add(30 * time.Minute), end: close},
	}
	slots := sweepSlots(reservations, open, close, 60)
	assert.Empty(t, slots, "a 30-minute gap cannot host a 60-minute slot")
}

func TestSweepSlotsCapsAtFive(t *testing.T) {
	open, close := window()
	// Eleven 30-minute reservations each followed by a 30-minute gap.
	var reservations []reservedInterval
	for i := 0; i < 11; i++ {
		start := open.Add(time.Duration(i) * time.Hour).Add(30 * time.Minute)
		reservations = append(reservations, reservedInterval{start: start, end: start.Add(30 * time.Minute)})
	}
	slots := sweepSlots(reservations, open, close, 30)
	assert.Len(t, slots, 5)
}

func TestSweepSlotsCursorNeverMovesBackward(t *testing.T) {
	open, close := window()
	// The second reservation is nested inside the first; its earlier end must
	// not pull the cursor back and fabricate an occupied slot.
	reservations := []reservedInterval{
		{start: open, end: open.Add(4 * time.Hour)},                    // 08:00-12:00
		{start: open.Add(time.Hour), end: open.Add(2 * time.Hour)},     // 09:00-10:00 nested
		{start: open.Add(5 * time.Hour), end: open.Add(6 * time.Hour)}, // 13:00-14:00
	}
	slots := sweepSlots(reservations, open, close, 60)
	require.NotEmpty(t, slots)
	for _, s := range slots {
		for _, r := range reservations {
			overlap := s.Start.Before(r.end) && r.start.Before(s.End)
			assert.False(t, overlap, "slot %v overlaps reservation %v", s, r)
		}
	}
	assert.Equal(t, open.Add(4*time.Hour), slots[0].Start)
}

func TestSweepSlotsRespectsWindowClose(t *testing.T) {
	open, close := window()
	reservations := []reservedInterval{
		{start: open, end: close.Add(-30 * time.Minute)},
	}
	slots := sweepSlots(reservations, open, close, 60)
	assert.Empty(t, slots)

	reservations = []reservedInterval{
		{start: open, end: close.Add(-time.Hour)},
	}
	slots = sweepSlots(reservations, open, close, 60)
	require.Len(t, slots, 1)
	assert.False(t, slots[0].End.After(close))
}

func TestFindRoomSlotsUsesWorkingWindow(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	room := seedRoom(t, db, "Boardroom")

	// A meeting before the working window must not affect suggestions.
	seedMeeting(t, db, room.ID, at(6, 0), at(7, 0))

	slots, err := svc.FindRoomSlots(room.ID, at(12, 0), 60)
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	assert.Equal(t, at(8, 0), slots[0].Start)
	for _, s := range slots {
		assert.False(t, s.Start.Before(at(8, 0)))
		assert.False(t, s.End.After(at(20, 0)))
	}
}

func TestFindVehicleSlotsOpenEndedBlocksRestOfDay(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	vehicle := seedVehicle(t, db, "AB-1234")

	booking := bookingModel.VehicleBooking{
		VehicleID: vehicle.ID,
		Driver:    "Kamal",
		StartTime: at(10, 0),
		CreatedBy: "seed@example.com",
	}
	require.NoError(t, db.Create(&booking).Error)

	// Only the gap before the pickup is usable; the open-ended booking blocks
	// everything after 10:00.
	slots, err := svc.FindVehicleSlots(vehicle.ID, at(12, 0), 60)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, at(8, 0), slots[0].Start)
	assert.Equal(t, at(9, 0), slots[0].End)
}
