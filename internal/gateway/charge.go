package gateway

// Processor-side payment states. The in-progress set are the states a buyer
// may resume; the failed set are the states that allow a fresh attempt.
const (
	StatusApproved               = "approved"
	StatusPending                = "pending"
	StatusInProcess              = "in_process"
	StatusProcessing             = "processing"
	StatusPendingWaitingTransfer = "pending_waiting_transfer"
	StatusRejected               = "rejected"
	StatusCancelled              = "cancelled"
	StatusRefunded               = "refunded"
)

// InProgress reports whether a charge is still awaiting completion upstream.
func InProgress(status string) bool {
	switch status {
	case StatusPending, StatusInProcess, StatusProcessing, StatusPendingWaitingTransfer:
		return true
	}
	return false
}

// Failed reports whether a charge reached a state that permits a new attempt.
func Failed(status string) bool {
	switch status {
	case StatusRejected, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// ChargeRequest describes one charge attempt sent to the processor.
type ChargeRequest struct {
	Amount      float64
	Description string
	PayerName   string
	PayerEmail  string
	CPF         string

	Method       string
	Token        string
	Installments int
	CardBrandID  string

	Metadata map[string]interface{}
}

// Charge is the processor's view of one payment attempt.
type Charge struct {
	ID           string
	Status       string
	Amount       float64
	QRCode       string
	QRCodeBase64 string
	Metadata     map[string]interface{}
}
