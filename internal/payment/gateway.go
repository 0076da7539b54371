// Package payment speaks the signed redirect/callback protocol of the
// VNPay-style payment gateway used for premium subscriptions.
//
// Both directions share one serialization rule: parameters sorted by key,
// each key and value query-escaped (space as '+'), joined with '&'. The
// outbound request signs every parameter including empty ones; the inbound
// callback drops empty values before recomputing. The signature is a hex
// HMAC-SHA512 keyed with the merchant hash secret.
package payment

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Gateway parameter names.
const (
	ParamVersion        = "vnp_Version"
	ParamCommand        = "vnp_Command"
	ParamTmnCode        = "vnp_TmnCode"
	ParamAmount         = "vnp_Amount"
	ParamCurrCode       = "vnp_CurrCode"
	ParamTxnRef         = "vnp_TxnRef"
	ParamOrderInfo      = "vnp_OrderInfo"
	ParamOrderType      = "vnp_OrderType"
	ParamLocale         = "vnp_Locale"
	ParamReturnURL      = "vnp_ReturnUrl"
	ParamIPAddr         = "vnp_IpAddr"
	ParamCreateDate     = "vnp_CreateDate"
	ParamResponseCode   = "vnp_ResponseCode"
	ParamSecureHash     = "vnp_SecureHash"
	ParamSecureHashType = "vnp_SecureHashType"
)

const (
	// SuccessCode is the response code the gateway sends for a settled payment.
	SuccessCode = "00"

	protocolVersion  = "2.1.0"
	commandPay       = "pay"
	orderTypeOther   = "other"
	createDateLayout = "20060102150405"
	minorUnits       = 100
)

var (
	// ErrInvalidSignature rejects a callback whose signature does not match
	// its parameters. Nothing about the callback may be trusted after this.
	ErrInvalidSignature = errors.New("invalid payment signature")
	// ErrInvalidTxnRef signals a transaction reference not of the form
	// "<userID>_<unix>".
	ErrInvalidTxnRef = errors.New("invalid transaction reference")
)

// Config carries merchant credentials and request defaults.
type Config struct {
	TmnCode    string
	HashSecret string
	PaymentURL string
	ReturnURL  string
	Amount     int64
	Currency   string
	Locale     string
	Location   *time.Location
}

// Gateway builds signed payment URLs and verifies callbacks.
type Gateway struct {
	cfg Config
}

// NewGateway validates cfg and returns a Gateway.
func NewGateway(cfg Config) (*Gateway, error) {
	var problems []string
	if cfg.TmnCode == "" {
		problems = append(problems, "tmn code is required")
	}
	if cfg.HashSecret == "" {
		problems = append(problems, "hash secret is required")
	}
	if _, err := url.ParseRequestURI(cfg.PaymentURL); err != nil {
		problems = append(problems, "payment url is invalid")
	}
	if cfg.ReturnURL == "" {
		problems = append(problems, "return url is required")
	}
	if cfg.Amount <= 0 {
		problems = append(problems, "amount must be positive")
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("payment config: %s", strings.Join(problems, "; "))
	}
	if cfg.Currency == "" {
		cfg.Currency = "VND"
	}
	if cfg.Locale == "" {
		cfg.Locale = "vn"
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Gateway{cfg: cfg}, nil
}

// Amount is the configured price in major currency units.
func (g *Gateway) Amount() int64 {
	return g.cfg.Amount
}

// Canonicalize serializes params in the gateway's signing order. Empty
// values are kept only when keepEmpty is set.
func Canonicalize(params map[string]string, keepEmpty bool) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" && !keepEmpty {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[k]))
	}
	return b.String()
}

// Sign returns the hex HMAC-SHA512 of data under secret.
func Sign(secret, data string) string {
	return hex.EncodeToString(mac(secret, data))
}

func mac(secret, data string) []byte {
	h := hmac.New(sha512.New, []byte(secret))
	h.Write([]byte(data))
	return h.Sum(nil)
}

// TxnRef forms the per-request transaction reference for a user.
func TxnRef(userID int64, at time.Time) string {
	return fmt.Sprintf("%d_%d", userID, at.Unix())
}

// ParseTxnRef extracts the user id embedded by TxnRef.
func ParseTxnRef(ref string) (int64, error) {
	idPart, tsPart, ok := strings.Cut(ref, "_")
	if !ok {
		return 0, ErrInvalidTxnRef
	}
	userID, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrInvalidTxnRef
	}
	if _, err := strconv.ParseInt(tsPart, 10, 64); err != nil {
		return 0, ErrInvalidTxnRef
	}
	return userID, nil
}

// PaymentRequest describes one checkout attempt.
type PaymentRequest struct {
	UserID   int64
	ClientIP string
	Now      time.Time
}

// PaymentURL returns the signed redirect URL and the transaction reference
// it carries.
func (g *Gateway) PaymentURL(req PaymentRequest) (string, string, error) {
	if req.UserID <= 0 {
		return "", "", errors.New("user id is required")
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	ref := TxnRef(req.UserID, now)

	params := map[string]string{
		ParamVersion:    protocolVersion,
		ParamCommand:    commandPay,
		ParamTmnCode:    g.cfg.TmnCode,
		ParamAmount:     strconv.FormatInt(g.cfg.Amount*minorUnits, 10),
		ParamCurrCode:   g.cfg.Currency,
		ParamTxnRef:     ref,
		ParamOrderInfo:  fmt.Sprintf("Premium subscription for user %d", req.UserID),
		ParamOrderType:  orderTypeOther,
		ParamLocale:     g.cfg.Locale,
		ParamReturnURL:  g.cfg.ReturnURL,
		ParamIPAddr:     req.ClientIP,
		ParamCreateDate: now.In(g.cfg.Location).Format(createDateLayout),
	}

	query := Canonicalize(params, true)
	signed := query + "&" + ParamSecureHash + "=" + Sign(g.cfg.HashSecret, query)
	return g.cfg.PaymentURL + "?" + signed, ref, nil
}

// Callback is the verified content of a gateway callback.
type Callback struct {
	TxnRef       string
	ResponseCode string
	// Amount is in major currency units.
	Amount int64
}

// Succeeded reports whether the gateway settled the payment.
func (c Callback) Succeeded() bool {
	return c.ResponseCode == SuccessCode
}

// Verify checks the signature over params. The hash fields are excluded and
// empty values dropped before recomputing.
func Verify(secret string, params map[string]string) error {
	supplied, err := hex.DecodeString(params[ParamSecureHash])
	if err != nil || len(supplied) == 0 {
		return ErrInvalidSignature
	}

	signed := make(map[string]string, len(params))
	for k, v := range params {
		if k == ParamSecureHash || k == ParamSecureHashType {
			continue
		}
		signed[k] = v
	}

	if !hmac.Equal(mac(secret, Canonicalize(signed, false)), supplied) {
		return ErrInvalidSignature
	}
	return nil
}

// VerifyCallback authenticates params and extracts the fields the
// confirmation flow acts on.
func (g *Gateway) VerifyCallback(params map[string]string) (Callback, error) {
	if err := Verify(g.cfg.HashSecret, params); err != nil {
		return Callback{}, err
	}

	cb := Callback{
		TxnRef:       params[ParamTxnRef],
		ResponseCode: params[ParamResponseCode],
	}
	if raw := params[ParamAmount]; raw != "" {
		minor, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Callback{}, fmt.Errorf("parse amount: %w", err)
		}
		cb.Amount = minor / minorUnits
	}
	return cb, nil
}
