package model

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"school-backend/errs"
)

const AttendanceCollection = "attendance"

// Attendance statuses set by check-in.
const (
	AttendancePresent = "present"
	AttendanceLate    = "late"
)

// Day and clock layouts of Date, CheckInTime and CheckOutTime.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04:05"
)

// Attendance is one teacher's record for one day. CheckOutTime stays null
// until the teacher checks out. Teacher is filled from the teachers
// collection when a record is returned and is never stored.
type Attendance struct {
	Id           primitive.ObjectID `json:"id" bson:"_id"`
	TeacherID    primitive.ObjectID `json:"teacherId" bson:"teacherId"`
	Date         *string            `json:"date,omitempty" bson:"date,omitempty"`
	CheckInTime  *string            `json:"checkInTime,omitempty" bson:"checkInTime,omitempty"`
	CheckOutTime *string            `json:"checkOutTime" bson:"checkOutTime"`
	Status       *string            `json:"status,omitempty" bson:"status,omitempty"`
	WorkingHours *float64           `json:"workingHours,omitempty" bson:"workingHours,omitempty"`
	Notes        *string            `json:"notes,omitempty" bson:"notes,omitempty"`
	Location     *string            `json:"location,omitempty" bson:"location,omitempty"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`

	Teacher *Teacher `json:"teacher,omitempty" bson:"-"`

	Extra map[string]interface{} `json:"-" bson:"-"`
}

// attendanceDrop are request keys an attendance body never sets.
var attendanceDrop = map[string]bool{
	"id":        true,
	"_id":       true,
	"createdAt": true,
	"updatedAt": true,
	"teacher":   true,
}

func (a Attendance) MarshalJSON() ([]byte, error) {
	type attendance Attendance
	return encodeWithExtra(attendance(a), a.Extra, idKeys)
}

func (a *Attendance) UnmarshalJSON(data []byte) error {
	type attendance Attendance
	var in attendance
	extra, err := decodeWithExtra(data, &in, attendanceDrop)
	if err != nil {
		return err
	}
	*a = Attendance(in)
	a.Extra = extra
	return nil
}

func (a Attendance) MarshalBSON() ([]byte, error) {
	type attendance Attendance
	return marshalBSONWithExtra(attendance(a), a.Extra, idKeys)
}

func (a *Attendance) UnmarshalBSON(data []byte) error {
	type attendance Attendance
	var in attendance
	extra, err := unmarshalBSONWithExtra(data, &in)
	if err != nil {
		return err
	}
	*a = Attendance(in)
	a.Extra = extra
	return nil
}

func (a *Attendance) Stamp(now time.Time) {
	a.Id = primitive.NewObjectID()
	a.CreatedAt = now
	a.UpdatedAt = now
}

// CheckIn builds the record of a teacher arriving at clock on day. Arrivals
// after lateAfter are late.
func CheckIn(teacherID primitive.ObjectID, day, clock, lateAfter string, notes *string, location string) *Attendance {
	status := AttendancePresent
	if clock > lateAfter {
		status = AttendanceLate
	}
	hours := 0.0
	record := &Attendance{
		TeacherID:    teacherID,
		Date:         &day,
		CheckInTime:  &clock,
		Status:       &status,
		WorkingHours: &hours,
		Notes:        notes,
		Location:     &location,
	}
	if notes == nil {
		record.Extra = map[string]interface{}{"notes": nil}
	}
	return record
}

// WorkingHours is the time between two clock readings of the same day in
// hours, rounded to two decimals.
func WorkingHours(checkIn, checkOut string) (float64, error) {
	in, err := time.Parse(ClockLayout, checkIn)
	if err != nil {
		return 0, errs.Invalidf("invalid check-in time %q", checkIn)
	}
	out, err := time.Parse(ClockLayout, checkOut)
	if err != nil {
		return 0, errs.Invalidf("invalid check-out time %q", checkOut)
	}
	return math.Round(out.Sub(in).Hours()*100) / 100, nil
}

// AttendancePatch is a field-level update. A teacherId is stored as an
// ObjectID.
type AttendancePatch struct {
	TeacherID    *string  `json:"teacherId,omitempty" bson:"-"`
	Date         *string  `json:"date,omitempty" bson:"date,omitempty"`
	CheckInTime  *string  `json:"checkInTime,omitempty" bson:"checkInTime,omitempty"`
	CheckOutTime *string  `json:"checkOutTime,omitempty" bson:"checkOutTime,omitempty"`
	Status       *string  `json:"status,omitempty" bson:"status,omitempty"`
	WorkingHours *float64 `json:"workingHours,omitempty" bson:"workingHours,omitempty"`
	Notes        *string  `json:"notes,omitempty" bson:"notes,omitempty"`
	Location     *string  `json:"location,omitempty" bson:"location,omitempty"`

	Extra map[string]interface{} `json:"-" bson:"-"`
}

func (p *AttendancePatch) UnmarshalJSON(data []byte) error {
	type patch AttendancePatch
	var in patch
	extra, err := decodeWithExtra(data, &in, attendanceDrop)
	if err != nil {
		return err
	}
	*p = AttendancePatch(in)
	p.Extra = extra
	return nil
}

func (p AttendancePatch) SetDoc(now time.Time) (bson.M, error) {
	if _, ok := p.Extra["teacherId"]; ok {
		return nil, errs.Invalid("teacherId must be an id string")
	}
	set, err := setDoc(p, p.Extra, now)
	if err != nil {
		return nil, err
	}
	if p.TeacherID != nil {
		id, err := ParseID(*p.TeacherID)
		if err != nil {
			return nil, err
		}
		set["teacherId"] = id
	}
	return set, nil
}
