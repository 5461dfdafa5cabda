package controller

import (
	"bytes"
	"net/http"

	"github.com/rs/zerolog"

	"school-backend/errs"
	"school-backend/spreadsheet"
	"school-backend/util"
)

const maxImportSize = 10 << 20

type importResponse struct {
	Message       string `json:"message"`
	ImportedCount int    `json:"importedCount"`
	Skipped       int    `json:"skipped"`
}

func (sc *StudentController) HandleExportStudents(w http.ResponseWriter, r *http.Request) {
	students, err := sc.students.List(r.Context())
	if err != nil {
		util.WriteError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := spreadsheet.WriteStudents(&buf, students); err != nil {
		util.WriteError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", spreadsheet.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="students.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("HandleExportStudents: failed to write workbook")
	}
}

// HandleImportStudents creates one student per spreadsheet row through the
// ordinary create path. Rows failing validation are counted as skipped; a
// store failure stops the import.
func (sc *StudentController) HandleImportStudents(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		util.WriteError(w, r, errs.Invalidf("invalid upload: %v", err))
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		util.WriteError(w, r, errs.Invalid("file is required"))
		return
	}
	defer file.Close()

	rows, err := spreadsheet.ReadStudents(file)
	if err != nil {
		util.WriteError(w, r, err)
		return
	}

	logger := zerolog.Ctx(r.Context())
	resp := importResponse{Message: "Import successful"}
	for i, row := range rows {
		if _, err := sc.CreateStudent(r.Context(), row); err != nil {
			if errs.IsInvalid(err) {
				logger.Warn().Err(err).Int("row", i+2).Msg("HandleImportStudents: skipping row")
				resp.Skipped++
				continue
			}
			util.WriteError(w, r, err)
			return
		}
		resp.ImportedCount++
	}
	util.WriteSuccessResponse(w, r, http.StatusOK, resp)
}
