package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v78/webhook"
)

const testWebhookSecret = "whsec_test_secret"

func signedPayload(t *testing.T, payload string) (string, []byte) {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
	})
	return signed.Header, signed.Payload
}

func TestStripeGateway_NotConfigured(t *testing.T) {
	g := NewStripeGateway("", "", "", "http://localhost")
	assert.False(t, g.Configured())

	_, err := g.CreateCheckoutSession(context.Background(), CheckoutRequest{UserID: "u"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = g.ParseWebhook([]byte("{}"), "sig")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestStripeGateway_ParseWebhook_CheckoutCompleted(t *testing.T) {
	g := NewStripeGateway("", testWebhookSecret, "", "")
	header, payload := signedPayload(t, `{
		"id": "evt_1",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_1", "object": "checkout.session", "client_reference_id": "user-1", "customer": "cus_123"}}
	}`)

	event, err := g.ParseWebhook(payload, header)
	require.NoError(t, err)
	assert.Equal(t, EventCheckoutCompleted, event.Kind)
	assert.Equal(t, "user-1", event.UserID)
	assert.Equal(t, "cus_123", event.CustomerID)
}

func TestStripeGateway_ParseWebhook_SubscriptionDeleted(t *testing.T) {
	g := NewStripeGateway("", testWebhookSecret, "", "")
	header, payload := signedPayload(t, `{
		"id": "evt_2",
		"object": "event",
		"type": "customer.subscription.deleted",
		"data": {"object": {"id": "sub_1", "object": "subscription", "customer": "cus_123"}}
	}`)

	event, err := g.ParseWebhook(payload, header)
	require.NoError(t, err)
	assert.Equal(t, EventSubscriptionCancelled, event.Kind)
	assert.Equal(t, "cus_123", event.CustomerID)
}

func TestStripeGateway_ParseWebhook_Ignored(t *testing.T) {
	g := NewStripeGateway("", testWebhookSecret, "", "")
	header, payload := signedPayload(t, `{"id": "evt_3", "object": "event", "type": "invoice.paid", "data": {"object": {}}}`)

	event, err := g.ParseWebhook(payload, header)
	require.NoError(t, err)
	assert.Equal(t, EventIgnored, event.Kind)
}

func TestStripeGateway_ParseWebhook_BadSignature(t *testing.T) {
	g := NewStripeGateway("", testWebhookSecret, "", "")

	_, err := g.ParseWebhook([]byte(`{"type": "checkout.session.completed"}`), "t=1,v1=deadbeef")
	assert.Error(t, err)
}
