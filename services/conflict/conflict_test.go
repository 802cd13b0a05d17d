package conflict

import (
	"testing"
	"time"

	bookingModel "office-portal/models/booking"
	roomModel "office-portal/models/room"
	vehicleModel "office-portal/models/vehicle"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&roomModel.Room{},
		&vehicleModel.Vehicle{},
		&bookingModel.RoomMeeting{},
		&bookingModel.VehicleBooking{},
	))
	return db
}

func seedRoom(t *testing.T, db *gorm.DB, name string) roomModel.Room {
	t.Helper()
	room := roomModel.Room{Name: name, Capacity: 8, Active: true}
	require.NoError(t, db.Create(&room).Error)
	return room
}

func seedVehicle(t *testing.T, db *gorm.DB, plate string) vehicleModel.Vehicle {
	t.Helper()
	vehicle := vehicleModel.Vehicle{Name: "Van " + plate, PlateNumber: plate, Seats: 7, Active: true}
	require.NoError(t, db.Create(&vehicle).Error)
	return vehicle
}

func seedMeeting(t *testing.T, db *gorm.DB, roomID uint, start, end time.Time) bookingModel.RoomMeeting {
	t.Helper()
	meeting := bookingModel.RoomMeeting{
		RoomID:    roomID,
		Title:     "Standup",
		StartTime: start,
		EndTime:   end,
		CreatedBy: "seed@example.com",
	}
	require.NoError(t, db.Create(&meeting).Error)
	return meeting
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 9, 1, hour, minute, 0, 0, time.UTC)
}

func TestFindRoomConflictsOverlap(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	room := seedRoom(t, db, "Boardroom")
	seedMeeting(t, db, room.ID, at(10, 0), at(11, 0))

	cases := []struct {
		name     string
		start    time.Time
		end      time.Time
		conflict bool
	}{
		{"identical interval", at(10, 0), at(11, 0), true},
		{"contained", at(10, 15), at(10, 45), true},
		{"straddles start", at(9, 30), at(10, 30), true},
		{"straddles end", at(10, 30), at(11, 30), true},
		{"surrounds", at(9, 0), at(12, 0), true},
		{"back to back before", at(9, 0), at(10, 0), false},
		{"back to back after", at(11, 0), at(12, 0), false},
		{"disjoint", at(14, 0), at(15, 0), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			conflicts, err := svc.FindRoomConflicts(room.ID, tc.start, tc.end, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.conflict, len(conflicts) > 0)
		})
	}
}

func TestFindRoomConflictsOverlapIsSymmetric(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	roomA := seedRoom(t, db, "A")
	roomB := seedRoom(t, db, "B")

	// Meeting X on room A, meeting Y's interval queried both ways.
	xStart, xEnd := at(10, 0), at(11, 0)
	yStart, yEnd := at(10, 30), at(11, 30)
	seedMeeting(t, db, roomA.ID, xStart, xEnd)
	seedMeeting(t, db, roomB.ID, yStart, yEnd)

	fromA, err := svc.FindRoomConflicts(roomA.ID, yStart, yEnd, nil)
	require.NoError(t, err)
	fromB, err := svc.FindRoomConflicts(roomB.ID, xStart, xEnd, nil)
	require.NoError(t, err)
	assert.Equal(t, len(fromA) > 0, len(fromB) > 0)
}

func TestFindRoomConflictsIgnoresOtherRooms(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	roomA := seedRoom(t, db, "A")
	roomB := seedRoom(t, db, "B")
	seedMeeting(t, db, roomA.ID, at(10, 0), at(11, 0))

	conflicts, err := svc.FindRoomConflicts(roomB.ID, at(10, 0), at(11, 0), nil)
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestFindRoomConflictsExcludesSelf(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	room := seedRoom(t, db, "Boardroom")
	meeting := seedMeeting(t, db, room.ID, at(10, 0), at(11, 0))

	// Editing a meeting against its own interval must not self-conflict.
	conflicts, err := svc.FindRoomConflicts(room.ID, at(10, 0), at(11, 0), &meeting.ID)
	require.NoError(t, err)
	assert.Empty(t, conflicts)

	conflicts, err = svc.FindRoomConflicts(room.ID, at(10, 0), at(11, 0), nil)
	require.NoError(t, err)
	assert.Len(t, conflicts, 1)
}

func TestFindVehicleConflictsOpenEnded(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	vehicle := seedVehicle(t, db, "AB-1234")

	// Open-ended booking starting at 09:00.
	booking := bookingModel.VehicleBooking{
		VehicleID: vehicle.ID,
		Driver:    "Kamal",
		StartTime: at(9, 0),
		CreatedBy: "seed@example.com",
	}
	require.NoError(t, db.Create(&booking).Error)

	// Anything after the start conflicts until the vehicle comes back.
	end := at(15, 0)
	conflicts, err := svc.FindVehicleConflicts(vehicle.ID, at(14, 0), &end, nil)
	require.NoError(t, err)
	assert.Len(t, conflicts, 1)
	assert.Nil(t, conflicts[0].End)

	// An open-ended query against the same vehicle conflicts too.
	conflicts, err = svc.FindVehicleConflicts(vehicle.ID, at(14, 0), nil, nil)
	require.NoError(t, err)
	assert.Len(t, conflicts, 1)
}

func TestFindVehicleConflictsReturnedBookingIsInert(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	vehicle := seedVehicle(t, db, "AB-1234")

	booking := bookingModel.VehicleBooking{
		VehicleID: vehicle.ID,
		Driver:    "Kamal",
		StartTime: at(9, 0),
		Returned:  true,
		CreatedBy: "seed@example.com",
	}
	require.NoError(t, db.Create(&booking).Error)

	end := at(15, 0)
	conflicts, err := svc.FindVehicleConflicts(vehicle.ID, at(14, 0), &end, nil)
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestFindVehicleConflictsBoundedBooking(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	vehicle := seedVehicle(t, db, "AB-1234")

	bookingEnd := at(11, 0)
	booking := bookingModel.VehicleBooking{
		VehicleID: vehicle.ID,
		Driver:    "Kamal",
		StartTime: at(9, 0),
		EndTime:   &bookingEnd,
		CreatedBy: "seed@example.com",
	}
	require.NoError(t, db.Create(&booking).Error)

	end := at(12, 0)
	conflicts, err := svc.FindVehicleConflicts(vehicle.ID, at(11, 0), &end, nil)
	require.NoError(t, err)
	assert.Empty(t, conflicts, "back-to-back intervals must not conflict")

	conflicts, err = svc.FindVehicleConflicts(vehicle.ID, at(10, 30), &end, nil)
	require.NoError(t, err)
	assert.Len(t, conflicts, 1)
}

func TestFreeRooms(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	roomA := seedRoom(t, db, "A")
	roomB := seedRoom(t, db, "B")
	roomC := seedRoom(t, db, "C")
	seedMeeting(t, db, roomA.ID, at(10, 0), at(11, 0))

	free, err := svc.FreeRooms(at(10, 0), at(11, 0), &roomC.ID)
	require.NoError(t, err)
	require.Len(t, free, 1)
	assert.Equal(t, roomB.ID, free[0].ID)
}

func TestFreeVehiclesSkipsInactive(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	active := seedVehicle(t, db, "AB-1234")
	inactive := vehicleModel.Vehicle{Name: "Old van", PlateNumber: "ZZ-0000", Seats: 4, Active: false}
	require.NoError(t, db.Create(&inactive).Error)

	end := at(11, 0)
	free, err := svc.FreeVehicles(at(10, 0), &end, nil)
	require.NoError(t, err)
	require.Len(t, free, 1)
	assert.Equal(t, active.ID, free[0].ID)
}
