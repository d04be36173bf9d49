package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Amount renders d as a JSON number with every digit kept.
func Amount(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// MarshalJSON writes the amount as a JSON number.
func (li LineItem) MarshalJSON() ([]byte, error) {
	type plain LineItem
	return json.Marshal(struct {
		plain
		Amount json.Number `json:"amount"`
	}{plain(li), Amount(li.Amount)})
}

// MarshalJSON writes the nightly price as a JSON number.
func (r Room) MarshalJSON() ([]byte, error) {
	type plain Room
	return json.Marshal(struct {
		plain
		Price json.Number `json:"price"`
	}{plain(r), Amount(r.Price)})
}
