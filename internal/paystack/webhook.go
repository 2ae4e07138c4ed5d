package paystack

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
)

const (
	SignatureHeader    = "x-paystack-signature"
	EventChargeSuccess = "charge.success"
)

type Event struct {
	Event string      `json:"event"`
	Data  Transaction `json:"data"`
}

// Sign returns the hex HMAC-SHA512 of body keyed with secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks signature against the exact bytes Paystack sent.
// Re-encoding the payload before checking would break on any key order or
// whitespace difference.
func VerifySignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := Sign(secret, body)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature))))
}

func ParseEvent(body []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// FlexibleID is an id that arrives as a JSON number or a numeric string;
// metadata is echoed back by Paystack in whatever shape it was sent.
type FlexibleID struct {
	Value int64
	Valid bool
}

func NewFlexibleID(v *int64) FlexibleID {
	if v == nil {
		return FlexibleID{}
	}
	return FlexibleID{Value: *v, Valid: true}
}

func (f FlexibleID) Ptr() *int64 {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

func (f FlexibleID) IsZero() bool {
	return !f.Valid
}

func (f FlexibleID) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(f.Value, 10)), nil
}

func (f *FlexibleID) UnmarshalJSON(b []byte) error {
	*f = FlexibleID{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	s := strings.Trim(string(b), `"`)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		// Unparseable metadata is dropped rather than failing the event.
		return nil
	}
	*f = FlexibleID{Value: v, Valid: true}
	return nil
}
