package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const StudentCollection = "students"

type Student struct {
	Id            primitive.ObjectID `json:"id" bson:"_id"`
	Name          string             `json:"name" bson:"name"`
	Grade         string             `json:"grade" bson:"grade"`
	RollNumber    string             `json:"rollNumber" bson:"rollNumber"`
	FatherName    *string            `json:"fatherName" bson:"fatherName"`
	MotherName    *string            `json:"motherName" bson:"motherName"`
	ParentEmail   string             `json:"parentEmail" bson:"parentEmail"`
	ParentPhone   string             `json:"parentPhone" bson:"parentPhone"`
	Address       string             `json:"address" bson:"address"`
	AdmissionDate string             `json:"admissionDate" bson:"admissionDate"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`

	// Extra keeps fields other clients of the database wrote on the document.
	Extra map[string]interface{} `json:"-" bson:"-"`
}

func (s Student) MarshalJSON() ([]byte, error) {
	type student Student
	return encodeWithExtra(student(s), s.Extra, idKeys)
}

func (s Student) MarshalBSON() ([]byte, error) {
	type student Student
	return marshalBSONWithExtra(student(s), s.Extra, idKeys)
}

func (s *Student) UnmarshalBSON(data []byte) error {
	type student Student
	var in student
	extra, err := unmarshalBSONWithExtra(data, &in)
	if err != nil {
		return err
	}
	*s = Student(in)
	s.Extra = extra
	return nil
}

// NewStudent is the whitelisted body of a create request. Anything else the
// caller sends is dropped.
type NewStudent struct {
	Name          string  `json:"name" validate:"required"`
	Grade         string  `json:"grade" validate:"required"`
	FatherName    *string `json:"fatherName"`
	MotherName    *string `json:"motherName"`
	ParentEmail   string  `json:"parentEmail" validate:"required"`
	ParentPhone   string  `json:"parentPhone" validate:"required"`
	Address       string  `json:"address" validate:"required"`
	AdmissionDate string  `json:"admissionDate" validate:"required"`
}

func (n NewStudent) Validate() error {
	return validateStruct(n)
}

// Student builds the document to insert.
func (n NewStudent) Student(rollNumber string, now time.Time) *Student {
	return &Student{
		Id:            primitive.NewObjectID(),
		Name:          n.Name,
		Grade:         n.Grade,
		RollNumber:    rollNumber,
		FatherName:    n.FatherName,
		MotherName:    n.MotherName,
		ParentEmail:   n.ParentEmail,
		ParentPhone:   n.ParentPhone,
		Address:       n.Address,
		AdmissionDate: n.AdmissionDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// StudentPatch carries the fields of an update request; absent fields keep
// their stored value. Other keys pass through, and an explicit null clears
// the stored value.
type StudentPatch struct {
	Name          *string `json:"name,omitempty" bson:"name,omitempty"`
	Grade         *string `json:"grade,omitempty" bson:"grade,omitempty"`
	RollNumber    *string `json:"rollNumber,omitempty" bson:"rollNumber,omitempty"`
	FatherName    *string `json:"fatherName,omitempty" bson:"fatherName,omitempty"`
	MotherName    *string `json:"motherName,omitempty" bson:"motherName,omitempty"`
	ParentEmail   *string `json:"parentEmail,omitempty" bson:"parentEmail,omitempty"`
	ParentPhone   *string `json:"parentPhone,omitempty" bson:"parentPhone,omitempty"`
	Address       *string `json:"address,omitempty" bson:"address,omitempty"`
	AdmissionDate *string `json:"admissionDate,omitempty" bson:"admissionDate,omitempty"`

	Extra map[string]interface{} `json:"-" bson:"-"`
}

func (p *StudentPatch) UnmarshalJSON(data []byte) error {
	type patch StudentPatch
	var in patch
	extra, err := decodeWithExtra(data, &in, reserved)
	if err != nil {
		return err
	}
	*p = StudentPatch(in)
	p.Extra = extra
	return nil
}

func (p StudentPatch) SetDoc(now time.Time) (bson.M, error) {
	return setDoc(p, p.Extra, now)
}
