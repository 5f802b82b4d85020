package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mlima-cursos/matricula-api/internal/dto"
	"github.com/mlima-cursos/matricula-api/internal/gateway"
	"github.com/mlima-cursos/matricula-api/internal/models"
	"github.com/mlima-cursos/matricula-api/internal/validation"
	appErrors "github.com/mlima-cursos/matricula-api/pkg/errors"
)

type enrollmentStore interface {
	FindByIdentity(ctx context.Context, email, cpf string) (*models.Enrollment, error)
	FindByPaymentID(ctx context.Context, paymentID string) (*models.Enrollment, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Update(ctx context.Context, enrollment *models.Enrollment) error
	UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error
	AttachPayment(ctx context.Context, id, paymentID string) error
}

type paymentGateway interface {
	CreateCharge(ctx context.Context, req gateway.ChargeRequest) (*gateway.Charge, error)
	GetCharge(ctx context.Context, id string) (*gateway.Charge, error)
}

type priceQuoter interface {
	Quote(ctx context.Context, modality models.Modality, coupon string) (float64, error)
	InvalidatePaidCount(ctx context.Context)
}

type confirmationSender interface {
	SendConfirmation(enrollment *models.Enrollment) error
}

type paymentRecorder interface {
	RecordPaymentTransition(method, outcome string)
	RecordNotification(sent bool)
}

// CheckoutService drives the enrollment checkout flow: it reconciles the
// buyer's current record with the processor, charges the selected method and
// keeps the record's status in sync with the payment outcome.
type CheckoutService struct {
	store    enrollmentStore
	gateway  paymentGateway
	pricing  priceQuoter
	notifier confirmationSender
	metrics  paymentRecorder
	logger   *zap.Logger
}

// NewCheckoutService constructs the checkout service.
func NewCheckoutService(store enrollmentStore, gw paymentGateway, pricing priceQuoter, notifier confirmationSender, metrics paymentRecorder, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		store:    store,
		gateway:  gw,
		pricing:  pricing,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
	}
}

// Register processes one checkout submission. A buyer is identified by the
// email/CPF cluster and owns at most one record; depending on that record's
// state the call resumes a pending payment, refuses a duplicate or issues a
// fresh charge.
func (s *CheckoutService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	modality := models.Modality(req.Modality)
	if !modality.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "modalidade inválida")
	}
	method := models.PaymentMethod(req.PaymentMethod)
	if !method.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "forma de pagamento inválida")
	}
	if method == models.PaymentMethodCard {
		if req.Token == "" || req.PaymentMethodID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "dados do cartão incompletos")
		}
		if req.Installments < 1 || req.Installments > 12 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "número de parcelas inválido")
		}
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	cpf := validation.NormalizeCPF(req.CPF)

	amount, err := s.pricing.Quote(ctx, modality, req.Coupon)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.FindByIdentity(ctx, email, cpf)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	if existing != nil && existing.Status == models.EnrollmentStatusPaid {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Matrícula já confirmada para este CPF ou e-mail")
	}

	if existing != nil && existing.Status == models.EnrollmentStatusPending && existing.PaymentID != nil {
		resp, handled, err := s.resumePending(ctx, existing, modality, method)
		if handled || err != nil {
			return resp, err
		}
	}

	record, err := s.upsertAttempt(ctx, existing, req, email, cpf, modality, amount)
	if err != nil {
		return nil, err
	}

	charge, err := s.gateway.CreateCharge(ctx, gateway.ChargeRequest{
		Amount:       amount,
		Description:  fmt.Sprintf("Curso Matemática - %s", modality),
		PayerName:    req.Name,
		PayerEmail:   email,
		CPF:          cpf,
		Method:       string(method),
		Token:        req.Token,
		Installments: req.Installments,
		CardBrandID:  req.PaymentMethodID,
		Metadata: map[string]interface{}{
			"enrollment_id": record.ID,
			"name":          req.Name,
			"email":         email,
			"cpf":           cpf,
			"phone":         req.Phone,
			"modality":      string(modality),
			"method":        string(method),
		},
	})
	if err != nil {
		s.logger.Error("charge_create_failed",
			zap.String("enrollment_id", record.ID),
			zap.String("method", string(method)),
			zap.Error(err))
		return nil, appErrors.Clone(appErrors.ErrUpstreamUnavailable, "Não foi possível processar o pagamento")
	}

	if err := s.store.AttachPayment(ctx, record.ID, charge.ID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to link payment")
	}
	record.PaymentID = &charge.ID

	switch {
	case charge.Status == gateway.StatusApproved:
		s.markPaid(ctx, record, string(method))
		return &dto.RegisterResponse{
			Success:   true,
			PaymentID: charge.ID,
			Status:    charge.Status,
			Amount:    amount,
			Message:   "Pagamento aprovado",
		}, nil

	case gateway.Failed(charge.Status):
		if err := s.store.UpdateStatus(ctx, record.ID, models.EnrollmentStatusRejected); err != nil {
			s.logger.Error("mark_rejected_failed", zap.String("enrollment_id", record.ID), zap.Error(err))
		}
		s.metrics.RecordPaymentTransition(string(method), "rejected")
		s.logger.Info("payment_rejected",
			zap.String("enrollment_id", record.ID),
			zap.String("payment_id", charge.ID),
			zap.String("method", string(method)))
		return nil, appErrors.Clone(appErrors.ErrPaymentRejected, "Pagamento recusado pela operadora")

	default:
		return &dto.RegisterResponse{
			Success:   true,
			PaymentID: charge.ID,
			Status:    charge.Status,
			Amount:    amount,
			Message:   "Aguardando confirmação do pagamento",
			Payment:   pixData(charge),
		}, nil
	}
}

// resumePending checks the processor-side state of an open attempt. It either
// finishes the flow (handled=true), or rejects the stale attempt and lets the
// caller fall through to a fresh charge.
func (s *CheckoutService) resumePending(ctx context.Context, existing *models.Enrollment, modality models.Modality, method models.PaymentMethod) (*dto.RegisterResponse, bool, error) {
	charge, err := s.gateway.GetCharge(ctx, *existing.PaymentID)
	if err != nil {
		s.logger.Warn("payment_lookup_failed",
			zap.String("enrollment_id", existing.ID),
			zap.String("payment_id", *existing.PaymentID),
			zap.Error(err))
		return nil, false, nil
	}

	switch {
	case charge.Status == gateway.StatusApproved:
		s.markPaid(ctx, existing, string(method))
		return &dto.RegisterResponse{
			Success:   true,
			Resume:    true,
			PaymentID: charge.ID,
			Status:    charge.Status,
			Amount:    existing.Amount,
			Message:   "Pagamento já aprovado",
		}, true, nil

	case gateway.InProgress(charge.Status):
		if existing.Modality != modality {
			if err := s.store.UpdateStatus(ctx, existing.ID, models.EnrollmentStatusRejected); err != nil {
				return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to supersede attempt")
			}
			s.logger.Info("attempt_superseded",
				zap.String("enrollment_id", existing.ID),
				zap.String("reason", "modality_changed"))
			return nil, false, nil
		}
		s.logger.Info("attempt_resumed",
			zap.String("enrollment_id", existing.ID),
			zap.String("payment_id", charge.ID),
			zap.String("charge_status", charge.Status))
		return &dto.RegisterResponse{
			Success:   true,
			Resume:    true,
			PaymentID: charge.ID,
			Status:    charge.Status,
			Amount:    existing.Amount,
			Message:   "Pagamento em andamento",
			Payment:   pixData(charge),
		}, true, nil

	case gateway.Failed(charge.Status):
		if err := s.store.UpdateStatus(ctx, existing.ID, models.EnrollmentStatusRejected); err != nil {
			return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to supersede attempt")
		}
		s.logger.Info("attempt_superseded",
			zap.String("enrollment_id", existing.ID),
			zap.String("reason", charge.Status))
		return nil, false, nil
	}

	return nil, false, nil
}

func (s *CheckoutService) upsertAttempt(ctx context.Context, existing *models.Enrollment, req dto.RegisterRequest, email, cpf string, modality models.Modality, amount float64) (*models.Enrollment, error) {
	if existing == nil {
		record := &models.Enrollment{
			Name:     req.Name,
			Email:    email,
			CPF:      cpf,
			Phone:    req.Phone,
			Modality: modality,
			Amount:   amount,
			Status:   models.EnrollmentStatusPending,
		}
		if err := s.store.Create(ctx, record); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
		}
		s.logger.Info("attempt_created",
			zap.String("enrollment_id", record.ID),
			zap.String("modality", string(modality)))
		return record, nil
	}

	existing.Name = req.Name
	existing.Email = email
	existing.CPF = cpf
	existing.Phone = req.Phone
	existing.Modality = modality
	existing.Amount = amount
	existing.Status = models.EnrollmentStatusPending
	existing.PaymentID = nil
	if err := s.store.Update(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment")
	}
	return existing, nil
}

// CheckStatus polls the processor for a payment reference. Anything short of
// approval is reported back untouched; an approved charge confirms the local
// record, rebuilding it from the charge metadata when the reference was never
// persisted.
func (s *CheckoutService) CheckStatus(ctx context.Context, paymentID string) (*dto.StatusResponse, error) {
	charge, err := s.gateway.GetCharge(ctx, paymentID)
	if err != nil {
		s.logger.Warn("payment_lookup_failed", zap.String("payment_id", paymentID), zap.Error(err))
		return nil, appErrors.Clone(appErrors.ErrUpstreamUnavailable, "Não foi possível consultar o pagamento")
	}

	if charge.Status != gateway.StatusApproved {
		return &dto.StatusResponse{Status: charge.Status}, nil
	}

	record, err := s.store.FindByPaymentID(ctx, paymentID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
		}
		record = s.rebuildFromMetadata(ctx, charge)
		if record == nil {
			return &dto.StatusResponse{Status: charge.Status, Message: "Matrícula confirmada!"}, nil
		}
	}

	if record.Status == models.EnrollmentStatusPaid {
		return &dto.StatusResponse{Status: charge.Status, Message: "Pagamento já processado."}, nil
	}

	s.markPaid(ctx, record, metadataString(charge.Metadata, "method"))
	return &dto.StatusResponse{Status: charge.Status, Message: "Matrícula confirmada!"}, nil
}

// rebuildFromMetadata recovers the enrollment for a charge whose reference was
// never stored, matching the buyer's identity cluster first so an existing row
// is updated rather than duplicated. Returns nil when the metadata is too
// sparse to identify the buyer.
func (s *CheckoutService) rebuildFromMetadata(ctx context.Context, charge *gateway.Charge) *models.Enrollment {
	email := metadataString(charge.Metadata, "email")
	cpf := metadataString(charge.Metadata, "cpf")
	if email == "" && cpf == "" {
		s.logger.Warn("orphan_payment", zap.String("payment_id", charge.ID))
		return nil
	}

	modality := models.Modality(metadataString(charge.Metadata, "modality"))
	if !modality.Valid() {
		modality = models.ModalityWithoutMaterial
	}

	record, err := s.store.FindByIdentity(ctx, email, cpf)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		s.logger.Error("rebuild_enrollment_failed", zap.String("payment_id", charge.ID), zap.Error(err))
		return nil
	}

	if record == nil {
		record = &models.Enrollment{
			Name:     metadataString(charge.Metadata, "name"),
			Email:    email,
			CPF:      cpf,
			Phone:    metadataString(charge.Metadata, "phone"),
			Modality: modality,
			Amount:   charge.Amount,
			Status:   models.EnrollmentStatusPending,
		}
		if err := s.store.Create(ctx, record); err != nil {
			s.logger.Error("rebuild_enrollment_failed", zap.String("payment_id", charge.ID), zap.Error(err))
			return nil
		}
	} else {
		record.Modality = modality
		record.Amount = charge.Amount
		if err := s.store.Update(ctx, record); err != nil {
			s.logger.Error("rebuild_enrollment_failed", zap.String("payment_id", charge.ID), zap.Error(err))
			return nil
		}
	}

	if err := s.store.AttachPayment(ctx, record.ID, charge.ID); err != nil {
		s.logger.Error("rebuild_enrollment_failed", zap.String("payment_id", charge.ID), zap.Error(err))
	}
	record.PaymentID = &charge.ID

	s.logger.Info("enrollment_rebuilt",
		zap.String("enrollment_id", record.ID),
		zap.String("payment_id", charge.ID))
	return record
}

// Existing reports whether the identity cluster already has a record, so the
// front-end can adjust the form before submission.
func (s *CheckoutService) Existing(ctx context.Context, email, cpf string) (*dto.ExistingResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	cpf = validation.NormalizeCPF(cpf)

	record, err := s.store.FindByIdentity(ctx, email, cpf)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &dto.ExistingResponse{Exists: false}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	resp := &dto.ExistingResponse{
		Exists:   true,
		Status:   record.Status,
		Modality: record.Modality,
		Amount:   record.Amount,
	}
	if record.PaymentID != nil {
		resp.PaymentID = *record.PaymentID
	}
	return resp, nil
}

func (s *CheckoutService) markPaid(ctx context.Context, record *models.Enrollment, method string) {
	if err := s.store.UpdateStatus(ctx, record.ID, models.EnrollmentStatusPaid); err != nil {
		s.logger.Error("mark_paid_failed", zap.String("enrollment_id", record.ID), zap.Error(err))
		return
	}
	record.Status = models.EnrollmentStatusPaid
	record.UpdatedAt = time.Now().UTC()

	s.pricing.InvalidatePaidCount(ctx)
	s.metrics.RecordPaymentTransition(method, "approved")
	s.logger.Info("payment_approved",
		zap.String("enrollment_id", record.ID),
		zap.String("method", method))

	snapshot := *record
	go func() {
		if err := s.notifier.SendConfirmation(&snapshot); err != nil {
			s.logger.Warn("notify_failed",
				zap.String("enrollment_id", snapshot.ID),
				zap.Error(err))
			s.metrics.RecordNotification(false)
			return
		}
		s.metrics.RecordNotification(true)
	}()
}

func pixData(charge *gateway.Charge) *dto.PixData {
	if charge.QRCode == "" && charge.QRCodeBase64 == "" {
		return nil
	}
	return &dto.PixData{
		QRCodeBase64:    charge.QRCodeBase64,
		QRCodeCopyPaste: charge.QRCode,
	}
}

func metadataString(metadata map[string]interface{}, key string) string {
	if metadata == nil {
		return ""
	}
	if v, ok := metadata[key].(string); ok {
		return v
	}
	return ""
}
