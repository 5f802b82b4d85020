package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment record.
type EnrollmentStatus string

// Possible enrollment statuses. PAID is terminal; REJECTED records may be
// superseded by a fresh attempt.
const (
	EnrollmentStatusPending  EnrollmentStatus = "PENDING"
	EnrollmentStatusPaid     EnrollmentStatus = "PAID"
	EnrollmentStatusRejected EnrollmentStatus = "REJECTED"
)

// Modality selects whether the course bundle includes printed material.
type Modality string

const (
	ModalityWithMaterial    Modality = "COM_MATERIAL"
	ModalityWithoutMaterial Modality = "SEM_MATERIAL"
)

// Valid reports whether the modality is one of the known values.
func (m Modality) Valid() bool {
	return m == ModalityWithMaterial || m == ModalityWithoutMaterial
}

// PaymentMethod is the buyer-selected charge instrument.
type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "cartao"
	PaymentMethodBoleto PaymentMethod = "boleto"
	PaymentMethodPix    PaymentMethod = "pix"
)

// Valid reports whether the payment method is one of the known values.
func (p PaymentMethod) Valid() bool {
	return p == PaymentMethodCard || p == PaymentMethodBoleto || p == PaymentMethodPix
}

// Enrollment is one buyer's registration, keyed by the email/CPF identity
// cluster. At most one record exists per buyer.
type Enrollment struct {
	ID        string           `db:"id" json:"id"`
	Name      string           `db:"name" json:"name"`
	Email     string           `db:"email" json:"email"`
	CPF       string           `db:"cpf" json:"cpf"`
	Phone     string           `db:"phone" json:"phone"`
	Modality  Modality         `db:"modality" json:"modality"`
	Amount    float64          `db:"amount" json:"amount"`
	Status    EnrollmentStatus `db:"status" json:"status"`
	PaymentID *string          `db:"payment_id" json:"payment_id,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// EnrollmentFilter provides filters for the admin listing.
type EnrollmentFilter struct {
	Status    EnrollmentStatus
	Modality  Modality
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
