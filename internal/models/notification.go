package models

import "strconv"

// Notification is a PayHere server-to-server callback as received, before
// any validation. Fields keep the gateway's string representation so the
// signature can be computed over the exact wire values.
type Notification struct {
	MerchantID  string `json:"merchant_id"`
	OrderID     string `json:"order_id"`
	PaymentID   string `json:"payment_id"`
	Amount      string `json:"payhere_amount"`
	Currency    string `json:"payhere_currency"`
	StatusCode  string `json:"status_code"`
	Signature   string `json:"md5sig"`
	UserID      string `json:"custom_1"`
	ContextID   string `json:"custom_2"` // property id or payment type, depending on flow
}

// AmountValue parses the gateway amount string. Missing or malformed
// amounts come back as 0.
func (n Notification) AmountValue() float64 {
	v, err := strconv.ParseFloat(n.Amount, 64)
	if err != nil {
		return 0
	}
	return v
}

// Cents converts a major-unit amount to cents for storage.
func Cents(amount float64) int64 {
	return int64(amount*100 + 0.5)
}
