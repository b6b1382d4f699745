// Package payhere implements the PayHere gateway notification contract:
// md5 signature verification and the gateway's status code vocabulary.
package payhere

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/landsalelk/payments-backend/internal/models"
)

// Gateway status codes as delivered in status_code.
const (
	StatusSuccess    = "2"
	StatusPending    = "0"
	StatusCanceled   = "-1"
	StatusFailed     = "-2"
	StatusChargeback = "-3"
)

const Provider = "payhere"

// Verify checks the md5sig on a notification:
//
//	md5sig = MD5(merchant_id + order_id + amount + currency + status_code + MD5(secret))
//
// with both digests hex-encoded and upper-cased. The comparison is
// constant-time even though both sides are server-derived.
func Verify(n models.Notification, merchantID, merchantSecret string) bool {
	if merchantID == "" || merchantSecret == "" {
		return false
	}
	if n.MerchantID != merchantID {
		return false
	}
	secretHash := md5Upper(merchantSecret)
	expected := md5Upper(merchantID + n.OrderID + n.Amount + n.Currency + n.StatusCode + secretHash)
	got := strings.ToUpper(n.Signature)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}

// Sign computes a valid md5sig for the given notification fields. Used by
// checkout-session construction and tests.
func Sign(n models.Notification, merchantID, merchantSecret string) string {
	secretHash := md5Upper(merchantSecret)
	return md5Upper(merchantID + n.OrderID + n.Amount + n.Currency + n.StatusCode + secretHash)
}

func md5Upper(s string) string {
	sum := md5.Sum([]byte(s))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}
