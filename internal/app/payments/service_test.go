package payments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tunebox/internal/models"
	"tunebox/internal/payment"
	"tunebox/internal/store"
)

const secret = "F9DLIS2039DSHAS0B9SI3GYBAMXERSLZ"

type fakeStore struct {
	users   map[int64]models.User
	ledger  map[string]bool
	granted []models.PaymentRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:  map[int64]models.User{7: {ID: 7, Username: "u7", Active: true}},
		ledger: map[string]bool{},
	}
}

func (f *fakeStore) GetUser(_ context.Context, id int64) (models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return models.User{}, store.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeStore) GrantPremium(_ context.Context, rec models.PaymentRecord) (models.User, bool, error) {
	user, ok := f.users[rec.UserID]
	if !ok {
		return models.User{}, false, store.ErrUserNotFound
	}
	if f.ledger[rec.TxnRef] {
		return user, true, nil
	}
	f.ledger[rec.TxnRef] = true
	f.granted = append(f.granted, rec)
	user.IsPremium = true
	f.users[rec.UserID] = user
	return user, false, nil
}

func newService(t *testing.T, fs *fakeStore) *service {
	t.Helper()
	gw, err := payment.NewGateway(payment.Config{
		TmnCode:    "9PL9DZW7",
		HashSecret: secret,
		PaymentURL: "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:  "http://localhost:5173/premium/vnpay_return",
		Amount:     50000,
	})
	require.NoError(t, err)
	svc := New(fs, gw).(*service)
	svc.now = func() time.Time { return time.Unix(1690000000, 0) }
	return svc
}

func callback(code string) map[string]string {
	params := map[string]string{
		payment.ParamAmount:       "5000000",
		payment.ParamTmnCode:      "9PL9DZW7",
		payment.ParamTxnRef:       "7_1690000000",
		payment.ParamResponseCode: code,
		payment.ParamOrderInfo:    "Premium subscription for user 7",
	}
	params[payment.ParamSecureHash] = payment.Sign(secret, payment.Canonicalize(params, false))
	return params
}

func TestInitiate(t *testing.T) {
	svc := newService(t, newFakeStore())

	checkout, err := svc.Initiate(context.Background(), 7, "203.0.113.9")
	require.NoError(t, err)
	assert.Equal(t, "7_1690000000", checkout.TxnRef)
	assert.Contains(t, checkout.PaymentURL, "vnp_SecureHash=")
	assert.Contains(t, checkout.PaymentURL, "vnp_IpAddr=203.0.113.9")
}

func TestInitiateUnknownUser(t *testing.T) {
	svc := newService(t, newFakeStore())
	_, err := svc.Initiate(context.Background(), 99, "")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestConfirmSuccessGrantsPremium(t *testing.T) {
	fs := newFakeStore()
	svc := newService(t, fs)

	result, err := svc.Confirm(context.Background(), callback(payment.SuccessCode))
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, result.Status)
	require.NotNil(t, result.User)
	assert.True(t, result.User.IsPremium)
	assert.True(t, fs.users[7].IsPremium)
	require.Len(t, fs.granted, 1)
	assert.Equal(t, int64(50000), fs.granted[0].Amount)
}

func TestConfirmTamperedCallbackChangesNothing(t *testing.T) {
	fs := newFakeStore()
	svc := newService(t, fs)

	params := callback(payment.SuccessCode)
	params[payment.ParamTxnRef] = "8_1690000000"

	_, err := svc.Confirm(context.Background(), params)
	assert.ErrorIs(t, err, payment.ErrInvalidSignature)
	assert.False(t, fs.users[7].IsPremium)
	assert.Empty(t, fs.granted)
}

func TestConfirmFailedCodeChangesNothing(t *testing.T) {
	fs := newFakeStore()
	svc := newService(t, fs)

	result, err := svc.Confirm(context.Background(), callback("24"))
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, "24", result.ResponseCode)
	assert.Nil(t, result.User)
	assert.Empty(t, fs.granted)
}

func TestConfirmReplayIsIdempotent(t *testing.T) {
	fs := newFakeStore()
	svc := newService(t, fs)

	_, err := svc.Confirm(context.Background(), callback(payment.SuccessCode))
	require.NoError(t, err)
	second, err := svc.Confirm(context.Background(), callback(payment.SuccessCode))
	require.NoError(t, err)

	assert.True(t, second.Replayed)
	assert.Len(t, fs.granted, 1)
}

func TestConfirmDeletedUserIsNotFound(t *testing.T) {
	fs := newFakeStore()
	delete(fs.users, 7)
	svc := newService(t, fs)

	_, err := svc.Confirm(context.Background(), callback(payment.SuccessCode))
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}
