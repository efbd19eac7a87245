package model

import "math"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Verdict labels derived from BMI.
const (
	VerdictUnderweight  = "Underweight"
	VerdictNormalWeight = "Normal weight"
	VerdictOverweight   = "Overweight"
	VerdictObesity      = "Obesity"
)

// Patient is the record document as persisted: the caller-supplied
// fields plus the two derived fields. BMI and Verdict are stored
// literally and only recomputed when height or weight changes.
type Patient struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Age        int     `json:"age"`
	BloodGroup string  `json:"blood_group"`
	Gender     Gender  `json:"gender"`
	Phone      string  `json:"phone"`
	Email      string  `json:"email"`
	Address    string  `json:"address"`
	Doctor     string  `json:"doctor"`
	Salary     float64 `json:"salary"`
	Height     float64 `json:"height"`
	Weight     float64 `json:"weight"`
	BMI        float64 `json:"bmi"`
	Verdict    string  `json:"verdict"`
}

type CreatePatientRequest struct {
	ID         string  `json:"id" binding:"required"`
	Name       string  `json:"name" binding:"required"`
	Age        int     `json:"age" binding:"required,gt=0,lt=120"`
	BloodGroup string  `json:"blood_group" binding:"required"`
	Gender     Gender  `json:"gender" binding:"required,oneof=male female other"`
	Phone      string  `json:"phone" binding:"required"`
	Email      string  `json:"email" binding:"required"`
	Address    string  `json:"address" binding:"required"`
	Doctor     string  `json:"doctor" binding:"required"`
	Salary     float64 `json:"salary" binding:"required,gt=0"`
	Height     float64 `json:"height" binding:"required,gt=0"`
	Weight     float64 `json:"weight" binding:"required,gt=0"`
}

// UpdatePatientRequest is a partial record. A nil field is left
// untouched on the target; JSON null binds to nil as well, so an
// explicit null is indistinguishable from an absent key.
type UpdatePatientRequest struct {
	Name       *string  `json:"name"`
	Age        *int     `json:"age" binding:"omitempty,gt=0,lt=120"`
	BloodGroup *string  `json:"blood_group"`
	Gender     *Gender  `json:"gender" binding:"omitempty,oneof=male female other"`
	Phone      *string  `json:"phone"`
	Email      *string  `json:"email"`
	Address    *string  `json:"address"`
	Doctor     *string  `json:"doctor"`
	Salary     *float64 `json:"salary" binding:"omitempty,gt=0"`
	Height     *float64 `json:"height" binding:"omitempty,gt=0"`
	Weight     *float64 `json:"weight" binding:"omitempty,gt=0"`
}

// ComputeBMI returns weight_kg / (height_cm/100)^2 rounded to two
// decimal places. Callers must enforce height > 0 first.
func ComputeBMI(heightCm, weightKg float64) float64 {
	meters := heightCm / 100
	return math.Round(weightKg/(meters*meters)*100) / 100
}

// VerdictFor classifies a BMI value. The ladder is evaluated in order
// and intentionally leaves [24.9, 25.0) falling through to Obesity; do
// not close the gap without product sign-off.
func VerdictFor(bmi float64) string {
	switch {
	case bmi < 18.5:
		return VerdictUnderweight
	case bmi < 24.9:
		return VerdictNormalWeight
	case bmi >= 25 && bmi < 29.9:
		return VerdictOverweight
	default:
		return VerdictObesity
	}
}

// Derive recomputes the stored BMI and verdict from the current height
// and weight.
func (p *Patient) Derive() {
	p.BMI = ComputeBMI(p.Height, p.Weight)
	p.Verdict = VerdictFor(p.BMI)
}

// NewPatient builds a record from a validated create request with the
// derived fields filled in.
func NewPatient(req *CreatePatientRequest) *Patient {
	p := &Patient{
		ID:         req.ID,
		Name:       req.Name,
		Age:        req.Age,
		BloodGroup: req.BloodGroup,
		Gender:     req.Gender,
		Phone:      req.Phone,
		Email:      req.Email,
		Address:    req.Address,
		Doctor:     req.Doctor,
		Salary:     req.Salary,
		Height:     req.Height,
		Weight:     req.Weight,
	}
	p.Derive()
	return p
}

// ApplyUpdate merges the present fields of req into p. BMI and verdict
// are recomputed from the post-merge height/weight only when height or
// weight was among the updated fields; otherwise the stored derived
// fields are left exactly as they were.
func (p *Patient) ApplyUpdate(req *UpdatePatientRequest) {
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Age != nil {
		p.Age = *req.Age
	}
	if req.BloodGroup != nil {
		p.BloodGroup = *req.BloodGroup
	}
	if req.Gender != nil {
		p.Gender = *req.Gender
	}
	if req.Phone != nil {
		p.Phone = *req.Phone
	}
	if req.Email != nil {
		p.Email = *req.Email
	}
	if req.Address != nil {
		p.Address = *req.Address
	}
	if req.Doctor != nil {
		p.Doctor = *req.Doctor
	}
	if req.Salary != nil {
		p.Salary = *req.Salary
	}
	if req.Height != nil {
		p.Height = *req.Height
	}
	if req.Weight != nil {
		p.Weight = *req.Weight
	}

	if req.Height != nil || req.Weight != nil {
		p.Derive()
	}
}
