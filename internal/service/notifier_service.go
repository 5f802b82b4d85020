package service

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"

	"github.com/mlima-cursos/matricula-api/internal/models"
	"github.com/mlima-cursos/matricula-api/pkg/config"
)

// NotifierService sends the enrollment confirmation email once a payment is
// approved. Sending is best-effort; callers decide how to react to failures.
type NotifierService struct {
	cfg config.SMTPConfig
}

// NewNotifierService constructs the notifier.
func NewNotifierService(cfg config.SMTPConfig) *NotifierService {
	return &NotifierService{cfg: cfg}
}

// SendConfirmation emails the buyer that the enrollment is confirmed.
func (s *NotifierService) SendConfirmation(enrollment *models.Enrollment) error {
	modality := "sem material impresso"
	if enrollment.Modality == models.ModalityWithMaterial {
		modality = "com material impresso"
	}

	e := email.NewEmail()
	e.From = s.cfg.From
	e.To = []string{enrollment.Email}
	e.Subject = "Matrícula confirmada - Curso de Matemática"
	e.Text = []byte(fmt.Sprintf(
		"Olá %s,\n\n"+
			"Sua matrícula no Curso de Matemática (%s) foi confirmada.\n"+
			"Valor pago: R$ %.2f\n\n"+
			"Em breve você receberá as instruções de acesso.\n\n"+
			"Equipe Curso de Matemática",
		enrollment.Name, modality, enrollment.Amount,
	))

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	}

	if err := e.Send(addr, auth); err != nil {
		return fmt.Errorf("send confirmation to %s: %w", enrollment.Email, err)
	}
	return nil
}
