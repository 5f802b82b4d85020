package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"

	"github.com/mlima-cursos/matricula-api/pkg/config"
)

// Card charges carry the brand id picked by the front-end; boleto and pix use
// fixed processor method identifiers.
const (
	methodCard       = "cartao"
	methodBoleto     = "boleto"
	boletoMethodID   = "bolbradesco"
	pixMethodID      = "pix"
	identificationBR = "CPF"
)

// MercadoPago implements the payment gateway against the Mercado Pago API.
type MercadoPago struct {
	payments payment.Client
}

// NewMercadoPago builds a gateway client from the configured credentials.
func NewMercadoPago(cfg config.MercadoPagoConfig) (*MercadoPago, error) {
	mpCfg, err := mpconfig.New(cfg.AccessToken, mpconfig.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	if err != nil {
		return nil, fmt.Errorf("mercado pago config: %w", err)
	}
	return &MercadoPago{payments: payment.NewClient(mpCfg)}, nil
}

// CreateCharge issues a new payment for the given attempt.
func (g *MercadoPago) CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	body := payment.Request{
		TransactionAmount: req.Amount,
		Description:       req.Description,
		Payer: &payment.PayerRequest{
			Email:     req.PayerEmail,
			FirstName: firstName(req.PayerName),
			Identification: &payment.IdentificationRequest{
				Type:   identificationBR,
				Number: req.CPF,
			},
		},
		Metadata: req.Metadata,
	}

	switch req.Method {
	case methodCard:
		body.Token = req.Token
		body.Installments = req.Installments
		body.PaymentMethodID = req.CardBrandID
	case methodBoleto:
		body.PaymentMethodID = boletoMethodID
	default:
		body.PaymentMethodID = pixMethodID
	}

	res, err := g.payments.Create(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	return fromResponse(res), nil
}

// GetCharge fetches the current state of a payment by its reference.
func (g *MercadoPago) GetCharge(ctx context.Context, id string) (*Charge, error) {
	numericID, err := strconv.Atoi(id)
	if err != nil {
		return nil, fmt.Errorf("invalid payment reference %q: %w", id, err)
	}

	res, err := g.payments.Get(ctx, numericID)
	if err != nil {
		return nil, fmt.Errorf("get payment %s: %w", id, err)
	}
	return fromResponse(res), nil
}

func fromResponse(res *payment.Response) *Charge {
	return &Charge{
		ID:           strconv.Itoa(res.ID),
		Status:       res.Status,
		Amount:       res.TransactionAmount,
		QRCode:       res.PointOfInteraction.TransactionData.QRCode,
		QRCodeBase64: res.PointOfInteraction.TransactionData.QRCodeBase64,
		Metadata:     res.Metadata,
	}
}

func firstName(full string) string {
	if i := strings.IndexByte(full, ' '); i > 0 {
		return full[:i]
	}
	return full
}
