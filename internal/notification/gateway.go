package notification

import "context"

//go:generate mockgen -source=gateway.go -destination=mock/gateway_mock.go -package=mock

// Gateway delivers text messages out-of-band. The pickup flow depends only
// on success/failure; delivery guarantees beyond that are the provider's
// problem.
type Gateway interface {
	SendText(ctx context.Context, phoneNumber, message string) error
}
