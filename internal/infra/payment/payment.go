// Package payment holds the payment verifiers the booking flow trusts when
// confirming an appointment.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	mppayment "github.com/mercadopago/sdk-go/pkg/payment"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/payment"
)

// ======================================================
// HMAC
// ======================================================

// HMACVerifier checks gateway callbacks signed as
// hex(HMAC-SHA256(secret, orderID + "|" + paymentID)).
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

func (v *HMACVerifier) Sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func (v *HMACVerifier) VerifySignature(_ context.Context, orderID, paymentID, signature string) (bool, error) {
	if len(v.secret) == 0 {
		return false, errors.New("payment secret not configured")
	}
	if orderID == "" || paymentID == "" || signature == "" {
		return false, nil
	}
	expected := v.Sign(orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature)), nil
}

// ======================================================
// MercadoPago
// ======================================================

// paymentGetter is the part of the MercadoPago payment client we use.
type paymentGetter interface {
	Get(ctx context.Context, id int) (*mppayment.Response, error)
}

// MercadoPagoVerifier asks MercadoPago for the payment and accepts it when
// it is approved and references our order. The signature argument is not
// used; the provider lookup is the proof.
type MercadoPagoVerifier struct {
	client paymentGetter
}

func NewMercadoPagoVerifier(accessToken string) (*MercadoPagoVerifier, error) {
	cfg, err := mpconfig.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}
	return &MercadoPagoVerifier{client: mppayment.NewClient(cfg)}, nil
}

func (v *MercadoPagoVerifier) VerifySignature(ctx context.Context, orderID, paymentID, _ string) (bool, error) {
	id, err := strconv.Atoi(paymentID)
	if err != nil {
		return false, nil
	}

	p, err := v.client.Get(ctx, id)
	if err != nil {
		return false, fmt.Errorf("mercadopago get payment %d: %w", id, err)
	}

	return p.Status == "approved" && p.ExternalReference == orderID, nil
}

var (
	_ domain.Verifier = (*HMACVerifier)(nil)
	_ domain.Verifier = (*MercadoPagoVerifier)(nil)
)
