package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mlima-cursos/matricula-api/internal/dto"
	"github.com/mlima-cursos/matricula-api/internal/validation"
	appErrors "github.com/mlima-cursos/matricula-api/pkg/errors"
)

type fakeCheckout struct {
	registerResp *dto.RegisterResponse
	registerErr  error
	statusResp   *dto.StatusResponse
	statusErr    error
	existingResp *dto.ExistingResponse
	existingErr  error
}

func (f *fakeCheckout) Register(context.Context, dto.RegisterRequest) (*dto.RegisterResponse, error) {
	return f.registerResp, f.registerErr
}

func (f *fakeCheckout) CheckStatus(context.Context, string) (*dto.StatusResponse, error) {
	return f.statusResp, f.statusErr
}

func (f *fakeCheckout) Existing(context.Context, string, string) (*dto.ExistingResponse, error) {
	return f.existingResp, f.existingErr
}

func newCheckoutRouter(t *testing.T, svc *fakeCheckout) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	validate := validator.New()
	require.NoError(t, validation.RegisterCPF(validate))

	h := NewCheckoutHandler(svc, validate, zap.NewNop())

	router := gin.New()
	router.POST("/enrollment/register", h.Register)
	router.GET("/enrollment/status/:paymentId", h.Status)
	router.GET("/enrollment/existing", h.Existing)
	return router
}

func registerPayload() map[string]interface{} {
	return map[string]interface{}{
		"name":          "Maria Souza",
		"email":         "maria@example.com",
		"cpf":           "529.982.247-25",
		"phone":         "11999990000",
		"modality":      "COM_MATERIAL",
		"paymentMethod": "pix",
	}
}

func performJSON(t *testing.T, router *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestRegisterCreated(t *testing.T) {
	svc := &fakeCheckout{
		registerResp: &dto.RegisterResponse{
			Success:   true,
			PaymentID: "1001",
			Status:    "pending",
			Amount:    799,
		},
	}
	router := newCheckoutRouter(t, svc)

	recorder := performJSON(t, router, http.MethodPost, "/enrollment/register", registerPayload())
	assert.Equal(t, http.StatusCreated, recorder.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "1001", resp["paymentId"])
	assert.Equal(t, 799.0, resp["valor"])
}

func TestRegisterResumeReturnsOK(t *testing.T) {
	svc := &fakeCheckout{
		registerResp: &dto.RegisterResponse{
			Success:   true,
			Resume:    true,
			PaymentID: "1001",
			Status:    "pending",
			Amount:    799,
		},
	}
	router := newCheckoutRouter(t, svc)

	recorder := performJSON(t, router, http.MethodPost, "/enrollment/register", registerPayload())
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestRegisterInvalidCPF(t *testing.T) {
	router := newCheckoutRouter(t, &fakeCheckout{})

	payload := registerPayload()
	payload["cpf"] = "111.111.111-11"

	recorder := performJSON(t, router, http.MethodPost, "/enrollment/register", payload)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "CPF inválido", resp["message"])
}

func TestRegisterConflict(t *testing.T) {
	svc := &fakeCheckout{registerErr: appErrors.Clone(appErrors.ErrConflict, "Matrícula já confirmada para este CPF ou e-mail")}
	router := newCheckoutRouter(t, svc)

	recorder := performJSON(t, router, http.MethodPost, "/enrollment/register", registerPayload())
	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestRegisterPaymentRejected(t *testing.T) {
	svc := &fakeCheckout{registerErr: appErrors.ErrPaymentRejected}
	router := newCheckoutRouter(t, svc)

	recorder := performJSON(t, router, http.MethodPost, "/enrollment/register", registerPayload())
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRegisterUpstreamFailure(t *testing.T) {
	svc := &fakeCheckout{registerErr: appErrors.ErrUpstreamUnavailable}
	router := newCheckoutRouter(t, svc)

	recorder := performJSON(t, router, http.MethodPost, "/enrollment/register", registerPayload())
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}

func TestStatusEndpoint(t *testing.T) {
	svc := &fakeCheckout{statusResp: &dto.StatusResponse{Status: "approved", Message: "Pagamento aprovado"}}
	router := newCheckoutRouter(t, svc)

	recorder := performJSON(t, router, http.MethodGet, "/enrollment/status/1001", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	var resp dto.StatusResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, "approved", resp.Status)
}

func TestExistingRequiresIdentity(t *testing.T) {
	router := newCheckoutRouter(t, &fakeCheckout{})

	recorder := performJSON(t, router, http.MethodGet, "/enrollment/existing", nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestExistingFound(t *testing.T) {
	svc := &fakeCheckout{existingResp: &dto.ExistingResponse{Exists: true, Status: "PENDING", PaymentID: "1001"}}
	router := newCheckoutRouter(t, svc)

	recorder := performJSON(t, router, http.MethodGet, "/enrollment/existing?email=maria@example.com", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	var resp dto.ExistingResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.True(t, resp.Exists)
	assert.Equal(t, "1001", resp.PaymentID)
}
