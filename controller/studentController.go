package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"school-backend/keylock"
	"school-backend/model"
	"school-backend/rollnumber"
	"school-backend/util"
)

type StudentStore interface {
	Collection[model.Student]
	rollnumber.Finder
}

type InvoiceStore interface {
	Collection[model.Invoice]
	DeleteByStudent(ctx context.Context, studentID string) (int64, error)
}

type StudentController struct {
	students StudentStore
	invoices InvoiceStore
	rolls    rollnumber.Allocator
	locks    *keylock.Storage
	now      clock
	loc      *time.Location
}

// NewStudentController wires the student handlers. When locks is non-nil,
// roll number allocation and the insert that uses it run under a per-year
// lock. Roll number years follow the calendar in loc; nil means the local
// zone.
func NewStudentController(students StudentStore, invoices InvoiceStore, rolls rollnumber.Allocator, locks *keylock.Storage, loc *time.Location) *StudentController {
	return &StudentController{
		students: students,
		invoices: invoices,
		rolls:    rolls,
		locks:    locks,
		now:      time.Now,
		loc:      orLocal(loc),
	}
}

func (sc *StudentController) year(now time.Time) string {
	return rollnumber.Year(now.In(sc.loc))
}

func (sc *StudentController) HandleListStudents(w http.ResponseWriter, r *http.Request) {
	handleList[model.Student](w, r, sc.students)
}

func (sc *StudentController) HandleGetStudent(w http.ResponseWriter, r *http.Request) {
	handleGet[model.Student](w, r, sc.students)
}

func (sc *StudentController) HandleNextRollNumber(w http.ResponseWriter, r *http.Request) {
	roll, err := sc.rolls.Peek(r.Context(), sc.year(sc.now()))
	if err != nil {
		util.WriteError(w, r, err)
		return
	}
	util.WriteSuccessResponse(w, r, http.StatusOK, struct {
		RollNumber string `json:"rollNumber"`
	}{RollNumber: roll})
}

func (sc *StudentController) HandleCreateStudent(w http.ResponseWriter, r *http.Request) {
	var in model.NewStudent
	if err := util.DecodeJSON(r, &in); err != nil {
		util.WriteError(w, r, err)
		return
	}
	student, err := sc.CreateStudent(r.Context(), in)
	if err != nil {
		util.WriteError(w, r, err)
		return
	}
	util.WriteSuccessResponse(w, r, http.StatusCreated, student)
}

// CreateStudent validates in, assigns the next roll number of the current
// year and inserts the student.
func (sc *StudentController) CreateStudent(ctx context.Context, in model.NewStudent) (*model.Student, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := sc.now()
	year := sc.year(now)
	if sc.locks != nil {
		unlock := sc.locks.Lock(year)
		defer unlock()
	}

	roll, err := sc.rolls.Allocate(ctx, year)
	if err != nil {
		return nil, err
	}
	student := in.Student(roll, storeTime(now))
	if err := sc.students.Insert(ctx, student); err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Info().Str("id", student.Id.Hex()).Str("rollNumber", roll).Msg("CreateStudent: student created")
	return student, nil
}

func (sc *StudentController) HandleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	handleUpdate[model.Student](w, r, sc.students, &model.StudentPatch{}, sc.now)
}

// HandleDeleteStudent removes the student's invoices and then the student.
// The two deletes are independent; a failure between them leaves the
// student without invoices.
func (sc *StudentController) HandleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		util.WriteError(w, r, err)
		return
	}

	removed, err := sc.invoices.DeleteByStudent(r.Context(), id.Hex())
	if err != nil {
		util.WriteError(w, r, err)
		return
	}
	zerolog.Ctx(r.Context()).Debug().Str("studentId", id.Hex()).Int64("invoices", removed).Msg("HandleDeleteStudent: invoices removed")

	if err := sc.students.Delete(r.Context(), id); err != nil {
		util.WriteError(w, r, err)
		return
	}
	util.WriteMessage(w, r, "Student deleted successfully")
}
