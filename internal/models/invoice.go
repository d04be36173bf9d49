package models

import "github.com/shopspring/decimal"

// Invoice is the billed summary of a completed stay.
// Items never change after creation; only Paid does.
type Invoice struct {
	ID        int64      `json:"id"`
	BookingID int64      `json:"booking_id"`
	Items     []LineItem `json:"items"`
	Paid      bool       `json:"paid"`
}

// Total sums all line items.
func (i *Invoice) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range i.Items {
		total = total.Add(item.Amount)
	}
	return total
}

// Clone returns a copy that shares no slices with i. Slices are never nil.
func (i *Invoice) Clone() Invoice {
	c := *i
	c.Items = make([]LineItem, len(i.Items))
	copy(c.Items, i.Items)
	return c
}
