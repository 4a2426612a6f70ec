package patient

import "time"

// Patient is a laboratory patient record. Record numbers are assigned by
// the front desk and are free-form.
type Patient struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Age          int        `json:"age,omitempty"`
	Sex          string     `json:"sex,omitempty"`
	RecordNumber string     `json:"record_number,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	Email        string     `json:"email,omitempty"`
	Address      string     `json:"address,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}
