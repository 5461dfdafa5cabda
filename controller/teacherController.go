package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"school-backend/model"
	"school-backend/util"
)

type TeacherStore interface {
	Collection[model.Teacher]
}

type AttendanceStore interface {
	Collection[model.Attendance]
	ListByTeacher(ctx context.Context, teacherID primitive.ObjectID) ([]model.Attendance, error)
	ListByDate(ctx context.Context, date string) ([]model.Attendance, error)
	FindForDay(ctx context.Context, teacherID primitive.ObjectID, date string) (*model.Attendance, error)
	DeleteByTeacher(ctx context.Context, teacherID primitive.ObjectID) (int64, error)
}

type TeacherController struct {
	teachers   TeacherStore
	attendance AttendanceStore
	now        clock
}

func NewTeacherController(teachers TeacherStore, attendance AttendanceStore) *TeacherController {
	return &TeacherController{teachers: teachers, attendance: attendance, now: time.Now}
}

func (tc *TeacherController) HandleListTeachers(w http.ResponseWriter, r *http.Request) {
	handleList[model.Teacher](w, r, tc.teachers)
}

func (tc *TeacherController) HandleGetTeacher(w http.ResponseWriter, r *http.Request) {
	handleGet[model.Teacher](w, r, tc.teachers)
}

func (tc *TeacherController) HandleCreateTeacher(w http.ResponseWriter, r *http.Request) {
	var teacher model.Teacher
	if err := util.DecodeJSON(r, &teacher); err != nil {
		util.WriteError(w, r, err)
		return
	}
	teacher.Stamp(storeTime(tc.now()))
	if err := tc.teachers.Insert(r.Context(), &teacher); err != nil {
		util.WriteError(w, r, err)
		return
	}
	util.WriteSuccessResponse(w, r, http.StatusCreated, teacher)
}

func (tc *TeacherController) HandleUpdateTeacher(w http.ResponseWriter, r *http.Request) {
	handleUpdate[model.Teacher](w, r, tc.teachers, &model.TeacherPatch{}, tc.now)
}

// HandleDeleteTeacher removes the teacher's attendance records and then the
// teacher.
func (tc *TeacherController) HandleDeleteTeacher(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		util.WriteError(w, r, err)
		return
	}

	removed, err := tc.attendance.DeleteByTeacher(r.Context(), id)
	if err != nil {
		util.WriteError(w, r, err)
		return
	}
	zerolog.Ctx(r.Context()).Debug().Str("teacherId", id.Hex()).Int64("records", removed).Msg("HandleDeleteTeacher: attendance removed")

	if err := tc.teachers.Delete(r.Context(), id); err != nil {
		util.WriteError(w, r, err)
		return
	}
	util.WriteMessage(w, r, "Teacher deleted successfully")
}
