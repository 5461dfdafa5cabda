package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"school-backend/errs"
	"school-backend/keylock"
	"school-backend/model"
	"school-backend/util"
)

// AttendanceRules are the school's check-in conventions.
type AttendanceRules struct {
	// LateAfter is the HH:MM:SS after which a check-in counts as late.
	LateAfter string
	// DefaultLocation is stored when a check-in names no location.
	DefaultLocation string
}

type AttendanceController struct {
	attendance AttendanceStore
	teachers   TeacherStore
	rules      AttendanceRules
	locks      *keylock.Storage
	now        clock
	loc        *time.Location
}

// NewAttendanceController wires the attendance handlers. Days and clock
// readings are taken in loc; nil means the local zone. Check-in and
// check-out of one teacher are serialized.
func NewAttendanceController(attendance AttendanceStore, teachers TeacherStore, rules AttendanceRules, loc *time.Location) *AttendanceController {
	return &AttendanceController{
		attendance: attendance,
		teachers:   teachers,
		rules:      rules,
		locks:      keylock.New(),
		now:        time.Now,
		loc:        orLocal(loc),
	}
}

func (ac *AttendanceController) HandleListAttendance(w http.ResponseWriter, r *http.Request) {
	records, err := ac.attendance.List(r.Context())
	ac.writeJoined(w, r, records, err)
}

func (ac *AttendanceController) HandleListByTeacher(w http.ResponseWriter, r *http.Request) {
	teacherID, err := model.ParseID(chi.URLParam(r, "teacherId"))
	if err != nil {
		util.WriteError(w, r, err)
		return
	}
	records, err := ac.attendance.ListByTeacher(r.Context(), teacherID)
	ac.writeJoined(w, r, records, err)
}

func (ac *AttendanceController) HandleListByDate(w http.ResponseWriter, r *http.Request) {
	records, err := ac.attendance.ListByDate(r.Context(), chi.URLParam(r, "date"))
	ac.writeJoined(w, r, records, err)
}

// writeJoined answers with records that still have a teacher, each carrying
// that teacher.
func (ac *AttendanceController) writeJoined(w http.ResponseWriter, r *http.Request, records []model.Attendance, err error) {
	if err != nil {
		util.WriteError(w, r, err)
		return
	}
	teachers, err := ac.teachers.List(r.Context())
	if err != nil {
		util.WriteError(w, r, err)
		return
	}
	byID := make(map[primitive.ObjectID]model.Teacher, len(teachers))
	for _, t := range teachers {
		byID[t.Id] = t
	}

	joined := make([]model.Attendance, 0, len(records))
	for _, rec := range records {
		teacher, ok := byID[rec.TeacherID]
		if !ok {
			continue
		}
		rec.Teacher = &teacher
		joined = append(joined, rec)
	}
	util.WriteSuccessResponse(w, r, http.StatusOK, joined)
}

func (ac *AttendanceController) HandleGetAttendance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		util.WriteError(w, r, err)
		return
	}
	record, err := ac.attendance.Get(r.Context(), id)
	if err != nil {
		util.WriteError(w, r, err)
		return
	}
	ac.writeWithTeacher(w, r, http.StatusOK, record)
}

// writeWithTeacher attaches the record's teacher when it still exists.
func (ac *AttendanceController) writeWithTeacher(w http.ResponseWriter, r *http.Request, status int, record *model.Attendance) {
	teacher, err := ac.teachers.Get(r.Context(), record.TeacherID)
	switch {
	case err == nil:
		record.Teacher = teacher
	case !errs.IsNotFound(err):
		util.WriteError(w, r, err)
		return
	}
	util.WriteSuccessResponse(w, r, status, record)
}

// HandleCreateAttendance stores a hand-entered record for an existing
// teacher.
func (ac *AttendanceController) HandleCreateAttendance(w http.ResponseWriter, r *http.Request) {
	var record model.Attendance
	if err := util.DecodeJSON(r, &record); err != nil {
		util.WriteError(w, r, err)
		return
	}
	if record.TeacherID.IsZero() {
		util.WriteError(w, r, errs.Invalid("teacherId must be a valid id"))
		return
	}
	if _, err := ac.teachers.Get(r.Context(), record.TeacherID); err != nil {
		util.WriteError(w, r, err)
		return
	}
	record.Stamp(storeTime(ac.now()))
	if err := ac.attendance.Insert(r.Context(), &record); err != nil {
		util.WriteError(w, r, err)
		return
	}
	ac.writeWithTeacher(w, r, http.StatusCreated, &record)
}

func (ac *AttendanceController) HandleUpdateAttendance(w http.ResponseWriter, r *http.Request) {
	record, err := updateDoc[model.Attendance](r, ac.attendance, &model.AttendancePatch{}, ac.now)
	if err != nil {
		util.WriteError(w, r, err)
		return
	}
	ac.writeWithTeacher(w, r, http.StatusOK, record)
}

func (ac *AttendanceController) HandleDeleteAttendance(w http.ResponseWriter, r *http.Request) {
	handleDelete[model.Attendance](w, r, ac.attendance, "Attendance record deleted successfully")
}

// CheckRequest is the optional body of a check-in or check-out.
type CheckRequest struct {
	Location *string `json:"location"`
	Notes    *string `json:"notes"`
}

func nonEmpty(s *string) bool {
	return s != nil && *s != ""
}

func (ac *AttendanceController) HandleCheckIn(w http.ResponseWriter, r *http.Request) {
	teacherID, err := model.ParseID(chi.URLParam(r, "teacherId"))
	if err != nil {
		util.WriteError(w, r, err)
		return
	}
	var body CheckRequest
	if err := util.DecodeOptionalJSON(r, &body); err != nil {
		util.WriteError(w, r, err)
		return
	}
	record, err := ac.CheckIn(r.Context(), teacherID, body)
	if err != nil {
		util.WriteError(w, r, err)
		return
	}
	util.WriteSuccessResponse(w, r, http.StatusCreated, record)
}

// CheckIn opens today's record for the teacher. A teacher checks in at
// most once per day.
func (ac *AttendanceController) CheckIn(ctx context.Context, teacherID primitive.ObjectID, body CheckRequest) (*model.Attendance, error) {
	unlock := ac.locks.Lock(teacherID.Hex())
	defer unlock()

	teacher, err := ac.teachers.Get(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	now := ac.now()
	local := now.In(ac.loc)
	today := local.Format(model.DateLayout)
	_, err = ac.attendance.FindForDay(ctx, teacherID, today)
	if err == nil {
		return nil, errs.Invalid("Teacher already checked in today")
	}
	if !errs.IsNotFound(err) {
		return nil, err
	}

	location := ac.rules.DefaultLocation
	if nonEmpty(body.Location) {
		location = *body.Location
	}
	notes := body.Notes
	if !nonEmpty(notes) {
		notes = nil
	}
	record := model.CheckIn(teacherID, today, local.Format(model.ClockLayout), ac.rules.LateAfter, notes, location)
	record.Stamp(storeTime(now))
	if err := ac.attendance.Insert(ctx, record); err != nil {
		return nil, err
	}
	record.Teacher = teacher
	zerolog.Ctx(ctx).Info().Str("teacherId", teacherID.Hex()).Str("status", *record.Status).Msg("CheckIn: teacher checked in")
	return record, nil
}

func (ac *AttendanceController) HandleCheckOut(w http.ResponseWriter, r *http.Request) {
	teacherID, err := model.ParseID(chi.URLParam(r, "teacherId"))
	if err != nil {
		util.WriteError(w, r, err)
		return
	}
	var body CheckRequest
	if err := util.DecodeOptionalJSON(r, &body); err != nil {
		util.WriteError(w, r, err)
		return
	}
	record, err := ac.CheckOut(r.Context(), teacherID, body)
	if err != nil {
		util.WriteError(w, r, err)
		return
	}
	util.WriteSuccessResponse(w, r, http.StatusOK, record)
}

// CheckOut closes today's record and stores the hours worked.
func (ac *AttendanceController) CheckOut(ctx context.Context, teacherID primitive.ObjectID, body CheckRequest) (*model.Attendance, error) {
	unlock := ac.locks.Lock(teacherID.Hex())
	defer unlock()

	now := ac.now()
	local := now.In(ac.loc)
	record, err := ac.attendance.FindForDay(ctx, teacherID, local.Format(model.DateLayout))
	if errs.IsNotFound(err) {
		return nil, errs.Invalid("No check-in record found for today")
	}
	if err != nil {
		return nil, err
	}
	if record.CheckOutTime != nil {
		return nil, errs.Invalid("Teacher already checked out today")
	}
	if record.CheckInTime == nil {
		return nil, errs.Invalid("Attendance record has no check-in time")
	}

	checkOut := local.Format(model.ClockLayout)
	hours, err := model.WorkingHours(*record.CheckInTime, checkOut)
	if err != nil {
		return nil, err
	}
	var notes interface{}
	switch {
	case nonEmpty(body.Notes):
		notes = *body.Notes
	case nonEmpty(record.Notes):
		notes = *record.Notes
	}
	updated, err := ac.attendance.Update(ctx, record.Id, bson.M{
		"checkOutTime": checkOut,
		"workingHours": hours,
		"notes":        notes,
		"updatedAt":    storeTime(now),
	})
	if err != nil {
		return nil, err
	}

	teacher, err := ac.teachers.Get(ctx, teacherID)
	switch {
	case err == nil:
		updated.Teacher = teacher
	case !errs.IsNotFound(err):
		return nil, err
	}
	zerolog.Ctx(ctx).Info().Str("teacherId", teacherID.Hex()).Float64("workingHours", hours).Msg("CheckOut: teacher checked out")
	return updated, nil
}
