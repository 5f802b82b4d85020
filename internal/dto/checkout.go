package dto

import "github.com/mlima-cursos/matricula-api/internal/models"

// RegisterRequest is the public checkout payload posted by the enrollment form.
type RegisterRequest struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	CPF             string `json:"cpf" validate:"required,cpf"`
	Phone           string `json:"phone"`
	Modality        string `json:"modality" validate:"required"`
	PaymentMethod   string `json:"paymentMethod" validate:"required"`
	Installments    int    `json:"installments"`
	Token           string `json:"token"`
	PaymentMethodID string `json:"paymentMethodId"`
	Coupon          string `json:"coupon"`
}

// PixData carries the scannable code and copy-paste string for PIX charges.
type PixData struct {
	QRCodeBase64    string `json:"qrCodeBase64,omitempty"`
	QRCodeCopyPaste string `json:"qrCodeCopyPaste,omitempty"`
}

// RegisterResponse is the public checkout response. The field names mirror the
// contract the enrollment front-end already consumes.
type RegisterResponse struct {
	Success   bool     `json:"success"`
	Resume    bool     `json:"resume,omitempty"`
	PaymentID string   `json:"paymentId"`
	Status    string   `json:"status"`
	Amount    float64  `json:"valor"`
	Message   string   `json:"message,omitempty"`
	Payment   *PixData `json:"payment,omitempty"`
}

// StatusResponse reports the processor-side state of one payment reference.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ExistingResponse describes a prior enrollment for an identity cluster.
type ExistingResponse struct {
	Exists    bool                    `json:"exists"`
	Status    models.EnrollmentStatus `json:"status,omitempty"`
	Modality  models.Modality         `json:"modality,omitempty"`
	PaymentID string                  `json:"paymentId,omitempty"`
	Amount    float64                 `json:"amount,omitempty"`
}
