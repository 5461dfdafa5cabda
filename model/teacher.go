package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const TeacherCollection = "teachers"

// Teacher is stored as the caller sent it. The typed fields are the ones
// the admin screens read; verificationCard and anything else pass through
// in Extra.
type Teacher struct {
	Id              primitive.ObjectID `json:"id" bson:"_id"`
	Name            *string            `json:"name,omitempty" bson:"name,omitempty"`
	Email           *string            `json:"email,omitempty" bson:"email,omitempty"`
	DateOfBirth     *string            `json:"dateOfBirth,omitempty" bson:"dateOfBirth,omitempty"`
	DateOfJoining   *string            `json:"dateOfJoining,omitempty" bson:"dateOfJoining,omitempty"`
	FatherName      *string            `json:"fatherName,omitempty" bson:"fatherName,omitempty"`
	Age             *int               `json:"age,omitempty" bson:"age,omitempty"`
	MobileNumber    *string            `json:"mobileNumber,omitempty" bson:"mobileNumber,omitempty"`
	EmergencyNumber *string            `json:"emergencyNumber,omitempty" bson:"emergencyNumber,omitempty"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`

	Extra map[string]interface{} `json:"-" bson:"-"`
}

func (t Teacher) MarshalJSON() ([]byte, error) {
	type teacher Teacher
	return encodeWithExtra(teacher(t), t.Extra, idKeys)
}

func (t *Teacher) UnmarshalJSON(data []byte) error {
	type teacher Teacher
	var in teacher
	extra, err := decodeWithExtra(data, &in, reserved)
	if err != nil {
		return err
	}
	*t = Teacher(in)
	t.Extra = extra
	return nil
}

func (t Teacher) MarshalBSON() ([]byte, error) {
	type teacher Teacher
	return marshalBSONWithExtra(teacher(t), t.Extra, idKeys)
}

func (t *Teacher) UnmarshalBSON(data []byte) error {
	type teacher Teacher
	var in teacher
	extra, err := unmarshalBSONWithExtra(data, &in)
	if err != nil {
		return err
	}
	*t = Teacher(in)
	t.Extra = extra
	return nil
}

func (t *Teacher) Stamp(now time.Time) {
	t.Id = primitive.NewObjectID()
	t.CreatedAt = now
	t.UpdatedAt = now
}

type TeacherPatch struct {
	Name            *string `json:"name,omitempty" bson:"name,omitempty"`
	Email           *string `json:"email,omitempty" bson:"email,omitempty"`
	DateOfBirth     *string `json:"dateOfBirth,omitempty" bson:"dateOfBirth,omitempty"`
	DateOfJoining   *string `json:"dateOfJoining,omitempty" bson:"dateOfJoining,omitempty"`
	FatherName      *string `json:"fatherName,omitempty" bson:"fatherName,omitempty"`
	Age             *int    `json:"age,omitempty" bson:"age,omitempty"`
	MobileNumber    *string `json:"mobileNumber,omitempty" bson:"mobileNumber,omitempty"`
	EmergencyNumber *string `json:"emergencyNumber,omitempty" bson:"emergencyNumber,omitempty"`

	Extra map[string]interface{} `json:"-" bson:"-"`
}

func (p *TeacherPatch) UnmarshalJSON(data []byte) error {
	type patch TeacherPatch
	var in patch
	extra, err := decodeWithExtra(data, &in, reserved)
	if err != nil {
		return err
	}
	*p = TeacherPatch(in)
	p.Extra = extra
	return nil
}

func (p TeacherPatch) SetDoc(now time.Time) (bson.M, error) {
	return setDoc(p, p.Extra, now)
}
