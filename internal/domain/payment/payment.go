package payment

import "context"

// Verifier checks that a provider callback really paid for orderID.
type Verifier interface {
	VerifySignature(ctx context.Context, orderID, paymentID, signature string) (bool, error)
}
