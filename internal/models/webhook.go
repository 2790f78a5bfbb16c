package models

// Asaas webhook event names relevant to the enrollment lifecycle. The
// provider sends many more; unhandled ones are acknowledged and ignored.
const (
	AsaasPaymentCreated   = "PAYMENT_CREATED"
	AsaasPaymentConfirmed = "PAYMENT_CONFIRMED"
	AsaasPaymentReceived  = "PAYMENT_RECEIVED"
	AsaasPaymentOverdue   = "PAYMENT_OVERDUE"
	AsaasPaymentRefunded  = "PAYMENT_REFUNDED"
)

// AsaasWebhookEvent is the payload posted by the Asaas payment gateway.
// externalReference carries the simplified enrollment's external UUID.
type AsaasWebhookEvent struct {
	Event   string       `json:"event" validate:"required"`
	Payment AsaasPayment `json:"payment"`
}

// AsaasPayment is the payment fragment of a webhook event.
type AsaasPayment struct {
	ID                string  `json:"id"`
	ExternalReference string  `json:"externalReference"`
	Value             float64 `json:"value"`
	BillingType       string  `json:"billingType"`
}
