package bookingflow

import (
	"testing"
	"time"

	"office-portal/logger"
	auditModel "office-portal/models/audit"
	bookingModel "office-portal/models/booking"
	notificationModel "office-portal/models/notification"
	roomModel "office-portal/models/room"
	userModel "office-portal/models/user"
	vehicleModel "office-portal/models/vehicle"
	auditService "office-portal/services/audit"
	"office-portal/services/conflict"
	"office-portal/services/notifier"
	"office-portal/types"
	bookingTypes "office-portal/types/booking"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupFlow(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&userModel.User{},
		&roomModel.Room{},
		&vehicleModel.Vehicle{},
		&bookingModel.BookingRequest{},
		&bookingModel.RoomMeeting{},
		&bookingModel.VehicleBooking{},
		&notificationModel.Notification{},
		&auditModel.AuditLog{},
	))

	auditSvc := auditService.NewService(db, logger.NewAsyncLogger(db))
	flow := NewService(db, conflict.NewService(db), notifier.NewDispatcher(db), auditSvc)
	return flow, db
}

var (
	staffActor = types.AuthUser{ID: 1, Email: "rahim@example.com", Name: "Rahim", Role: "staff"}
	adminActor = types.AuthUser{ID: 2, Email: "admin@example.com", Name: "Admin", Role: "admin"}
)

func seedUsers(t *testing.T, db *gorm.DB) {
	t.Helper()
	users := []userModel.User{
		{Email: staffActor.Email, PasswordHash: "x", Name: staffActor.Name, Role: staffActor.Role, Active: true},
		{Email: adminActor.Email, PasswordHash: "x", Name: adminActor.Name, Role: adminActor.Role, Active: true},
	}
	require.NoError(t, db.Create(&users).Error)
}

func seedResources(t *testing.T, db *gorm.DB) (roomModel.Room, vehicleModel.Vehicle) {
	t.Helper()
	room := roomModel.Room{Name: "Boardroom", Capacity: 10, Active: true}
	require.NoError(t, db.Create(&room).Error)
	vehicle := vehicleModel.Vehicle{Name: "Van", PlateNumber: "AB-1234", Seats: 7, Active: true}
	require.NoError(t, db.Create(&vehicle).Error)
	return room, vehicle
}

func startAt(hour int) time.Time {
	return time.Date(2026, 9, 2, hour, 0, 0, 0, time.UTC)
}

func submitRoomRequest(t *testing.T, flow *Service, roomID uint, start time.Time, end *time.Time) *bookingModel.BookingRequest {
	t.Helper()
	title := "Planning"
	request, err := flow.Submit(staffActor, bookingTypes.SubmitRequest{
		RequestType:    "room",
		RoomID:         &roomID,
		Title:          &title,
		RequestedStart: start,
		RequestedEnd:   end,
	})
	require.NoError(t, err)
	return request
}

func TestSubmitCreatesPendingRequest(t *testing.T) {
	flow, db := setupFlow(t)
	seedUsers(t, db)
	room, _ := seedResources(t, db)

	end := startAt(11)
	request := submitRoomRequest(t, flow, room.ID, startAt(10), &end)
	assert.Equal(t, bookingModel.StatusPending, request.Status)
	assert.Equal(t, staffActor.ID, request.RequesterID)
	require.NotNil(t, request.RoomID)
	assert.Equal(t, room.ID, *request.RoomID)

	// The back office gets an in-app notification.
	var count int64
	require.NoError(t, db.Model(&notificationModel.Notification{}).Count(&count).Error)
	assert.Greater(t, count, int64(0))
}

func TestSubmitUnknownRoomFails(t *testing.T) {
	flow, db := setupFlow(t)
	seedUsers(t, db)

	missing := uint(99)
	_, err := flow.Submit(staffActor, bookingTypes.SubmitRequest{
		RequestType:    "room",
		RoomID:         &missing,
		RequestedStart: startAt(10),
	})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "room_id", validationErr.Field)
}

func TestApproveMaterializesRoomMeeting(t *testing.T) {
	flow, db := setupFlow(t)
	seedUsers(t, db)
	room, _ := seedResources(t, db)

	end := startAt(11)
	request := submitRoomRequest(t, flow, room.ID, startAt(10), &end)

	approved, err := flow.Approve(adminActor, request.ID, bookingTypes.ApproveRequest{})
	require.NoError(t, err)
	assert.Equal(t, bookingModel.StatusApproved, approved.Status)
	require.NotNil(t, approved.RespondedAt)

	var meetings []bookingModel.RoomMeeting
	require.NoError(t, db.Find(&meetings).Error)
	require.Len(t, meetings, 1)
	assert.Equal(t, room.ID, meetings[0].RoomID)
	assert.Equal(t, startAt(10), meetings[0].StartTime.UTC())
	assert.Equal(t, startAt(11), meetings[0].EndTime.UTC())
	assert.Equal(t, "Planning", meetings[0].Title)
}

func TestApproveWithoutEndUsesDefaultDuration(t *testing.T) {
	flow, db := setupFlow(t)
	seedUsers(t, db)
	room, _ := seedResources(t, db)

	request := submitRoomRequest(t, flow, room.ID, startAt(10), nil)
	_, err := flow.Approve(adminActor, request.ID, bookingTypes.ApproveRequest{})
	require.NoError(t, err)

	var meeting bookingModel.RoomMeeting
	require.NoError(t, db.First(&meeting).Error)
	assert.Equal(t, time.Hour, meeting.EndTime.Sub(meeting.StartTime))
}

func TestApproveRequiresAdmin(t *testing.T) {
	flow, db := setupFlow(t)
	seedUsers(t, db)
	room, _ := seedResources(t, db)

	request := submitRoomRequest(t, flow, room.ID, startAt(10), nil)
	_, err := flow.Approve(staffActor, request.ID, bookingTypes.ApproveRequest{})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestApproveTwiceFails(t *testing.T) {
	flow, db := setupFlow(t)
	seedUsers(t, db)
	room, _ := seedResources(t, db)

	request := submitRoomRequest(t, flow, room.ID, startAt(10), nil)
	_, err := flow.Approve(adminActor, request.ID, bookingTypes.ApproveRequest{})
	require.NoError(t, err)

	_, err = flow.Approve(adminActor, request.ID, bookingTypes.ApproveRequest{})
	assert.ErrorIs(t, err, ErrAlreadyHandled)
}

func TestApproveBlockedByConflict(t *testing.T) {
	flow, db := setupFlow(t)
	seedUsers(t, db)
	room, _ := seedResources(t, db)

	// The slot fills up between submission and the admin decision.
	end := startAt(11)
	request := submitRoomRequest(t, flow, room.ID, startAt(10), &end)
	meeting := bookingModel.RoomMeeting{
		RoomID:    room.ID,
		Title:     "Already there",
		StartTime: startAt(10).Add(30 * time.Minute),
		EndTime:   startAt(12),
		CreatedBy: "other@example.com",
	}
	require.NoError(t, db.Create(&meeting).Error)

	_, err := flow.Approve(adminActor, request.ID, bookingTypes.ApproveRequest{})
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.NotEmpty(t, conflictErr.Conflicts)

	// The request stays pending and nothing new materialized.
	reloaded, err := flow.Get(adminActor, request.ID)
	require.NoError(t, err)
	assert.Equal(t, bookingModel.StatusPending, reloaded.Status)
}

func TestRejectRequiresReason(t *testing.T) {
	flow, db := setupFlow(t)
	seedUsers(t, db)
	room, _ := seedResources(t, db)

	request := submitRoomRequest(t, flow, room.ID, startAt(10), nil)
	_, err := flow.Reject(adminActor, request.ID, bookingTypes.RejectRequest{})
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)

	rejected, err := flow.Reject(adminActor, request.ID, bookingTypes.RejectRequest{RejectionReason: "Room reserved for visitors"})
	require.NoError(t, err)
	assert.Equal(t, bookingModel.StatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
}

func TestCounterWithNoChangesFails(t *testing.T) {
	flow, db := setupFlow(t)
	seedUsers(t, db)
	room, _ := seedResources(t, db)

	request := submitRoomRequest(t, flow, room.ID, startAt(10), nil)

	// Same room, same start: not a proposal.
	sameStart := request.RequestedStart
	_, err := flow.Counter(adminActor, request.ID, bookingTypes.CounterRequest{
		CounterRoomID: request.RoomID,
		CounterStart:  &sameStart,
		CounterReason: "try this",
	})
	assert.ErrorIs(t, err, ErrNoChanges)

	// All-nil counter fields mean "unchanged" too.
	_, err = flow.Counter(adminActor, request.ID, bookingTypes.CounterRequest{CounterReason: "try this"})
	assert.ErrorIs(t, err, ErrNoChanges)
}

func TestCounterResourceMustMatchRequestType(t *testing.T) {
	flow, db := setupFlow(t)
	seedUsers(t, db)
	room, vehicle := seedResources(t, db)

	// A vehicle proposed against a room request would never materialize.
	roomRequest := submitRoomRequest(t, flow, room.ID, startAt(10), nil)
	_, err := flow.Counter(adminActor, roomRequest.ID, bookingTypes.CounterRequest{
		CounterVehicleID: &vehicle.ID,
		CounterReason:    "take the van instead",
	})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "counter_vehicle_id", validationErr.Field)

	reloaded, err := flow.Get(adminActor, roomRequest.ID)
	require.NoError(t, err)
	assert.Equal(t, bookingModel.StatusPending, reloaded.Status)

	// And the reverse for a vehicle request.
	driver := "Kamal"
	vehicleRequest, err := flow.Submit(staffActor, bookingTypes.SubmitRequest{
		RequestType:    "vehicle",
		VehicleID:      &vehicle.ID,
		Driver:         &driver,
		RequestedStart: startAt(9),
	})
	require.NoError(t, err)

	_, err = flow.Counter(adminActor, vehicleRequest.ID, bookingTypes.CounterRequest{
		CounterRoomID: &room.ID,
		CounterReason: "meet here instead",
	})
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "counter_room_id", validationErr.Field)
}

func TestCounterAcceptMaterializesCounterFields(t *testing.T) {
	flow, db := setupFlow(t)
	seedUsers(t, db)
	room, _ := seedResources(t, db)
	otherRoom := roomModel.Room{Name: "Annex", Capacity: 4, Active: true}
	require.NoError(t, db.Create(&otherRoom).Error)

	request := submitRoomRequest(t, flow, room.ID, startAt(10), nil)

	counterStart := startAt(14)
	counterEnd := startAt(16)
	countered, err := flow.Counter(adminActor, request.ID, bookingTypes.CounterRequest{
		CounterRoomID: &otherRoom.ID,
		CounterStart:  &counterStart,
		CounterEnd:    &counterEnd,
		CounterReason: "boardroom is taken",
	})
	require.NoError(t, err)
	assert.Equal(t, bookingModel.StatusCounterProposed, countered.Status)

	accepted, err := flow.AcceptCounter(staffActor, request.ID)
	require.NoError(t, err)
	assert.Equal(t, bookingModel.StatusCounterAccepted, accepted.Status)

	var meeting bookingModel.RoomMeeting
	require.NoError(t, db.First(&meeting).Error)
	assert.Equal(t, otherRoom.ID, meeting.RoomID)
	assert.Equal(t, counterStart, meeting.StartTime.UTC())
	assert.Equal(t, counterEnd, meeting.EndTime.UTC())
}

func TestAcceptCounterOnlyByRequester(t *testing.T) {
	flow, db := setupFlow(t)
	seedUsers(t, db)
	room, _ := seedResources(t, db)

	request := submitRoomRequest(t, flow, room.ID, startAt(10), nil)
	counterStart := startAt(14)
	_, err := flow.Counter(adminActor, request.ID, bookingTypes.CounterRequest{
		CounterStart:  &counterStart,
		CounterReason: "later works better",
	})
	require.NoError(t, err)

	_, err = flow.AcceptCounter(adminActor, request.ID)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestRejectCounterReopensRequest(t *testing.T) {
	flow, db := setupFlow(t)
	seedUsers(t, db)
	room, _ := seedResources(t, db)

	request := submitRoomRequest(t, flow, room.ID, startAt(10), nil)
	counterStart := startAt(14)
	_, err := flow.Counter(adminActor, request.ID, bookingTypes.CounterRequest{
		CounterStart:  &counterStart,
		CounterReason: "later works better",
	})
	require.NoError(t, err)

	rejected, err := flow.RejectCounter(staffActor, request.ID)
	require.NoError(t, err)
	assert.Equal(t, bookingModel.StatusCounterRejected, rejected.Status)

	// A counter-rejected request can still be approved or rejected, but not
	// countered again.
	_, err = flow.Counter(adminActor, request.ID, bookingTypes.CounterRequest{
		CounterStart:  &counterStart,
		CounterReason: "one more try",
	})
	assert.ErrorIs(t, err, ErrAlreadyHandled)

	approved, err := flow.Approve(adminActor, request.ID, bookingTypes.ApproveRequest{})
	require.NoError(t, err)
	assert.Equal(t, bookingModel.StatusApproved, approved.Status)

	// Approval after a rejected counter uses the original fields.
	var meeting bookingModel.RoomMeeting
	require.NoError(t, db.First(&meeting).Error)
	assert.Equal(t, startAt(10), meeting.StartTime.UTC())
}

func TestCancelFromPendingAndRejected(t *testing.T) {
	flow, db := setupFlow(t)
	seedUsers(t, db)
	room, _ := seedResources(t, db)

	pending := submitRoomRequest(t, flow, room.ID, startAt(10), nil)
	cancelled, err := flow.Cancel(staffActor, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, bookingModel.StatusCancelled, cancelled.Status)

	second := submitRoomRequest(t, flow, room.ID, startAt(12), nil)
	_, err = flow.Reject(adminActor, second.ID, bookingTypes.RejectRequest{RejectionReason: "no"})
	require.NoError(t, err)
	cancelled, err = flow.Cancel(staffActor, second.ID)
	require.NoError(t, err)
	assert.Equal(t, bookingModel.StatusCancelled, cancelled.Status)
}

func TestCancelApprovedFails(t *testing.T) {
	flow, db := setupFlow(t)
	seedUsers(t, db)
	room, _ := seedResources(t, db)

	request := submitRoomRequest(t, flow, room.ID, startAt(10), nil)
	_, err := flow.Approve(adminActor, request.ID, bookingTypes.ApproveRequest{})
	require.NoError(t, err)

	_, err = flow.Cancel(staffActor, request.ID)
	assert.ErrorIs(t, err, ErrAlreadyHandled)
}

func TestCancelByStrangerFails(t *testing.T) {
	flow, db := setupFlow(t)
	seedUsers(t, db)
	room, _ := seedResources(t, db)

	request := submitRoomRequest(t, flow, room.ID, startAt(10), nil)
	stranger := types.AuthUser{ID: 77, Email: "other@example.com", Name: "Other", Role: "staff"}
	_, err := flow.Cancel(stranger, request.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestVehicleRequestMaterializesOpenEnded(t *testing.T) {
	flow, db := setupFlow(t)
	seedUsers(t, db)
	_, vehicle := seedResources(t, db)

	driver := "Kamal"
	request, err := flow.Submit(staffActor, bookingTypes.SubmitRequest{
		RequestType:    "vehicle",
		VehicleID:      &vehicle.ID,
		Driver:         &driver,
		RequestedStart: startAt(9),
	})
	require.NoError(t, err)

	_, err = flow.Approve(adminActor, request.ID, bookingTypes.ApproveRequest{})
	require.NoError(t, err)

	var booking bookingModel.VehicleBooking
	require.NoError(t, db.First(&booking).Error)
	assert.Equal(t, vehicle.ID, booking.VehicleID)
	assert.Equal(t, "Kamal", booking.Driver)
	assert.Nil(t, booking.EndTime)
	assert.False(t, booking.Returned)
}

func TestListScopesToOwnRequests(t *testing.T) {
	flow, db := setupFlow(t)
	seedUsers(t, db)
	room, _ := seedResources(t, db)

	submitRoomRequest(t, flow, room.ID, startAt(10), nil)

	other := types.AuthUser{ID: 77, Email: "other@example.com", Name: "Other", Role: "staff"}
	mine, err := flow.List(other)
	require.NoError(t, err)
	assert.Empty(t, mine)

	all, err := flow.List(adminActor)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
