package enums

// InventoryTransactionReason labels why ingredient stock moved.
type InventoryTransactionReason string

const (
	InventoryReasonUsage   InventoryTransactionReason = "usage"
	InventoryReasonRestock InventoryTransactionReason = "restock"
)

var validInventoryTransactionReasons = []InventoryTransactionReason{
	InventoryReasonUsage,
	InventoryReasonRestock,
}

// String implements fmt.Stringer.
func (i InventoryTransactionReason) String() string {
	return string(i)
}

// IsValid reports whether the value is a known InventoryTransactionReason.
func (i InventoryTransactionReason) IsValid() bool {
	for _, candidate := range validInventoryTransactionReasons {
		if candidate == i {
			return true
		}
	}
	return false
}
