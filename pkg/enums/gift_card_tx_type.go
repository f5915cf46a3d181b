package enums

// GiftCardTransactionType labels the append-only gift card ledger rows.
type GiftCardTransactionType string

const (
	GiftCardTransactionPurchase   GiftCardTransactionType = "purchase"
	GiftCardTransactionRedemption GiftCardTransactionType = "redemption"
)

var validGiftCardTransactionTypes = []GiftCardTransactionType{
	GiftCardTransactionPurchase,
	GiftCardTransactionRedemption,
}

// String implements fmt.Stringer.
func (g GiftCardTransactionType) String() string {
	return string(g)
}

// IsValid reports whether the value is a known GiftCardTransactionType.
func (g GiftCardTransactionType) IsValid() bool {
	for _, candidate := range validGiftCardTransactionTypes {
		if candidate == g {
			return true
		}
	}
	return false
}
