package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"school-backend/middleware"
	"school-backend/util"
)

type Controllers struct {
	Students   *StudentController
	Invoices   *InvoiceController
	FeeItems   *FeeItemController
	Teachers   *TeacherController
	Attendance *AttendanceController
	Health     *HealthController
}

func NewRouter(logger zerolog.Logger, c Controllers) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recover)
	router.Use(middleware.CORS())

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		util.WriteErrorResponse(w, r, http.StatusNotFound, "Route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		util.WriteErrorResponse(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	router.Route("/api", func(router chi.Router) {
		router.Get("/health", c.Health.HandleHealth)

		router.Route("/students", func(router chi.Router) {
			router.Get("/", c.Students.HandleListStudents)
			router.Post("/", c.Students.HandleCreateStudent)
			router.Get("/next-roll-number", c.Students.HandleNextRollNumber)
			router.Get("/export", c.Students.HandleExportStudents)
			router.Post("/import", c.Students.HandleImportStudents)
			router.Get("/{id}", c.Students.HandleGetStudent)
			router.Put("/{id}", c.Students.HandleUpdateStudent)
			router.Delete("/{id}", c.Students.HandleDeleteStudent)
		})

		router.Route("/invoices", func(router chi.Router) {
			router.Get("/", c.Invoices.HandleListInvoices)
			router.Post("/", c.Invoices.HandleCreateInvoice)
			router.Get("/{id}", c.Invoices.HandleGetInvoice)
			router.Put("/{id}", c.Invoices.HandleUpdateInvoice)
			router.Delete("/{id}", c.Invoices.HandleDeleteInvoice)
		})

		router.Route("/fee-items", func(router chi.Router) {
			router.Get("/", c.FeeItems.HandleListFeeItems)
			router.Post("/", c.FeeItems.HandleCreateFeeItem)
			router.Get("/{id}", c.FeeItems.HandleGetFeeItem)
			router.Put("/{id}", c.FeeItems.HandleUpdateFeeItem)
			router.Delete("/{id}", c.FeeItems.HandleDeleteFeeItem)
		})

		router.Post("/initialize", c.FeeItems.HandleInitialize)

		router.Route("/teachers", func(router chi.Router) {
			router.Get("/", c.Teachers.HandleListTeachers)
			router.Post("/", c.Teachers.HandleCreateTeacher)
			router.Get("/{id}", c.Teachers.HandleGetTeacher)
			router.Put("/{id}", c.Teachers.HandleUpdateTeacher)
			router.Delete("/{id}", c.Teachers.HandleDeleteTeacher)
		})

		router.Route("/attendance", func(router chi.Router) {
			router.Get("/", c.Attendance.HandleListAttendance)
			router.Post("/", c.Attendance.HandleCreateAttendance)
			router.Get("/teacher/{teacherId}", c.Attendance.HandleListByTeacher)
			router.Get("/date/{date}", c.Attendance.HandleListByDate)
			router.Post("/check-in/{teacherId}", c.Attendance.HandleCheckIn)
			router.Post("/check-out/{teacherId}", c.Attendance.HandleCheckOut)
			router.Get("/{id}", c.Attendance.HandleGetAttendance)
			router.Put("/{id}", c.Attendance.HandleUpdateAttendance)
			router.Delete("/{id}", c.Attendance.HandleDeleteAttendance)
		})
	})

	return router
}
