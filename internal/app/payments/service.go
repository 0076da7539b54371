package payments

import (
	"context"
	"fmt"
	"time"

	"tunebox/internal/logging"
	"tunebox/internal/models"
	"tunebox/internal/payment"
)

// Store captures the persistence the premium checkout needs.
type Store interface {
	GetUser(ctx context.Context, id int64) (models.User, error)
	GrantPremium(ctx context.Context, rec models.PaymentRecord) (models.User, bool, error)
}

// Gateway signs outbound requests and authenticates callbacks.
type Gateway interface {
	PaymentURL(req payment.PaymentRequest) (string, string, error)
	VerifyCallback(params map[string]string) (payment.Callback, error)
}

// Outcome values reported by Confirm.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Checkout is the redirect a client follows to pay.
type Checkout struct {
	PaymentURL string `json:"payment_url"`
	TxnRef     string `json:"txn_ref"`
}

// Confirmation is the result of a verified callback.
type Confirmation struct {
	Status       string       `json:"status"`
	ResponseCode string       `json:"response_code,omitempty"`
	User         *models.User `json:"user,omitempty"`
	// Replayed is set when the transaction had already been applied.
	Replayed bool `json:"replayed,omitempty"`
}

// Service runs the premium payment protocol.
type Service interface {
	Initiate(ctx context.Context, userID int64, clientIP string) (Checkout, error)
	Confirm(ctx context.Context, params map[string]string) (Confirmation, error)
}

type service struct {
	store   Store
	gateway Gateway
	now     func() time.Time
}

// New constructs a payments Service.
func New(store Store, gateway Gateway) Service {
	return &service{store: store, gateway: gateway, now: time.Now}
}

func (s *service) Initiate(ctx context.Context, userID int64, clientIP string) (Checkout, error) {
	if err := ctx.Err(); err != nil {
		return Checkout{}, err
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return Checkout{}, err
	}

	url, ref, err := s.gateway.PaymentURL(payment.PaymentRequest{
		UserID:   user.ID,
		ClientIP: clientIP,
		Now:      s.now(),
	})
	if err != nil {
		return Checkout{}, fmt.Errorf("build payment url: %w", err)
	}

	logging.WithContext(ctx).Info().Int64("user_id", user.ID).Str("txn_ref", ref).Msg("payment initiated")
	return Checkout{PaymentURL: url, TxnRef: ref}, nil
}

// Confirm applies a gateway callback. The signature is checked before any
// field is read; only a verified success code mutates state.
func (s *service) Confirm(ctx context.Context, params map[string]string) (Confirmation, error) {
	if err := ctx.Err(); err != nil {
		return Confirmation{}, err
	}

	cb, err := s.gateway.VerifyCallback(params)
	if err != nil {
		logging.WithContext(ctx).Warn().Err(err).Str("txn_ref", params[payment.ParamTxnRef]).Msg("payment callback rejected")
		return Confirmation{}, err
	}

	if !cb.Succeeded() {
		logging.WithContext(ctx).Info().Str("txn_ref", cb.TxnRef).Str("response_code", cb.ResponseCode).Msg("payment not settled")
		return Confirmation{Status: StatusFailed, ResponseCode: cb.ResponseCode}, nil
	}

	userID, err := payment.ParseTxnRef(cb.TxnRef)
	if err != nil {
		return Confirmation{}, err
	}

	user, replayed, err := s.store.GrantPremium(ctx, models.PaymentRecord{
		TxnRef:       cb.TxnRef,
		UserID:       userID,
		Amount:       cb.Amount,
		ResponseCode: cb.ResponseCode,
	})
	if err != nil {
		return Confirmation{}, err
	}

	event := logging.WithContext(ctx).Info().Int64("user_id", user.ID).Str("txn_ref", cb.TxnRef)
	if replayed {
		event.Msg("payment callback replayed")
	} else {
		event.Msg("premium granted")
	}

	return Confirmation{
		Status:       StatusSuccess,
		ResponseCode: cb.ResponseCode,
		User:         &user,
		Replayed:     replayed,
	}, nil
}
