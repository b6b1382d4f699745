package models

import "strings"

type OrderKind string

const (
	OrderHire          OrderKind = "hire"
	OrderBoost         OrderKind = "boost"
	OrderVerify        OrderKind = "verify"
	OrderAgent         OrderKind = "agent"
	OrderDigital       OrderKind = "digital"
	OrderWalletDeposit OrderKind = "wallet_deposit"
	OrderUnknown       OrderKind = "unknown"
)

// Order is the decoded form of a PayHere order identifier. The raw id is a
// structured string like HIRE_<listingId>_<ts> or
// DIGITAL_<PRODUCT_TYPE>_<propertyId>_<ts>; it is parsed once here and the
// mutators only ever see this struct.
type Order struct {
	Kind        OrderKind
	Raw         string
	ListingID   string // hire orders
	ProductType string // digital orders, lower-cased
}

// ParseOrder decodes an order id. paymentType is the gateway's custom
// payment-type field; wallet deposits are keyed off it because their order
// ids carry no recognized prefix.
func ParseOrder(orderID, paymentType string) Order {
	o := Order{Kind: OrderUnknown, Raw: orderID}
	parts := strings.Split(orderID, "_")

	switch parts[0] {
	case "HIRE":
		if len(parts) >= 2 {
			o.Kind = OrderHire
			o.ListingID = parts[1]
		}
	case "BOOST":
		o.Kind = OrderBoost
	case "VERIFY":
		o.Kind = OrderVerify
	case "AGENT":
		o.Kind = OrderAgent
	case "DIGITAL":
		o.Kind = OrderDigital
		// product type sits between the prefix and the trailing
		// property id + timestamp tokens
		if len(parts) > 3 {
			o.ProductType = strings.ToLower(strings.Join(parts[1:len(parts)-2], "_"))
		}
	}

	if o.Kind == OrderUnknown && paymentType == "wallet_deposit" {
		o.Kind = OrderWalletDeposit
	}
	return o
}
