package money

import "encoding/json"

// wireMoney is the JSON wire shape for a Money value.
type wireMoney struct {
	Currency string `json:"currency,omitempty"`
	Amount   string `json:"amount"`
}

// MarshalJSON implements json.Marshaler. Amounts are not rounded on the wire;
// callers that want the 2dp-banker's-rounded presentation call Round first.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireMoney{Currency: m.cur, Amount: m.value.String()})
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Money) UnmarshalJSON(b []byte) error {
	var w wireMoney
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	v, err := decimalFromString(w.Amount)
	if err != nil {
		return err
	}
	m.value = v
	m.cur = w.Currency
	return nil
}
