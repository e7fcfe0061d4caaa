package domain

// Line carries the inputs of one order row and the values derived from them.
// Monetary fields keep full float precision; rounding happens at display.
type Line struct {
	Rate           float64 `json:"rate"`
	Quantity       float64 `json:"quantity"`
	GSTRate        float64 `json:"gst"`
	DiscPercent    float64 `json:"disc"`
	DiscAmount     float64 `json:"disc_amt"`
	SplDiscPercent float64 `json:"spl_disc"`
	SplDiscAmount  float64 `json:"spl_disc_amt"`

	Amount        float64 `json:"amount"`
	NetRate       float64 `json:"net_rate"`
	TaxableAmount float64 `json:"taxable_amount"`
	SGST          float64 `json:"sgst"`
	CGST          float64 `json:"cgst"`
	IGST          float64 `json:"igst"`
	GrossAmount   float64 `json:"gross_amount"`
}

// TaxTotal is the sum of the line's tax components.
func (l Line) TaxTotal() float64 {
	return l.SGST + l.CGST + l.IGST
}

// Totals are derived from the lines and never stored independently.
type Totals struct {
	Quantity         float64 `json:"quantity"`
	AmountWithoutTax float64 `json:"amount_without_tax"`
	SGST             float64 `json:"sgst"`
	CGST             float64 `json:"cgst"`
	IGST             float64 `json:"igst"`
	Amount           float64 `json:"amount"`
}

// Jurisdiction decides the tax split. Known is false until a customer (or
// the distributor's own state) is available; tax stays zero until then.
type Jurisdiction struct {
	Home  bool `json:"home"`
	Known bool `json:"known"`
}
