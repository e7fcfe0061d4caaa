package service

import (
	"github.com/smallbiznis/orderdesk/internal/backend"
	"github.com/smallbiznis/orderdesk/internal/order/domain"
	"github.com/smallbiznis/orderdesk/internal/order/format"
	taxdomain "github.com/smallbiznis/orderdesk/internal/tax/domain"
)

// FromRows rebuilds an order from the backend's one-row-per-line result.
// Header fields and the stored totals come from the first row.
func FromRows(rows []backend.Record) domain.Order {
	var order domain.Order
	if len(rows) == 0 {
		return order
	}
	first := rows[0]

	order.Header = domain.Header{
		OrderNumber:  first.String("order_no"),
		OrderDate:    format.FromOracleTimestamp(first.String("order_date")),
		VoucherType:  first.String("voucher_type"),
		Status:       first.String("status"),
		Executive:    first.String("executive"),
		CustomerCode: first.String("customer_code"),
		CustomerName: first.String("customer_name"),
		Remarks:      first.String("remarks"),
	}
	order.Totals = taxdomain.Totals{
		Quantity:         first.Float("total_quantity"),
		AmountWithoutTax: first.Float("total_amount_without_tax"),
		SGST:             first.Float("total_sgst_amount"),
		CGST:             first.Float("total_cgst_amount"),
		IGST:             first.Float("total_igst_amount"),
		Amount:           first.Float("total_amount"),
	}

	order.Lines = make([]domain.Line, 0, len(rows))
	for _, row := range rows {
		order.Lines = append(order.Lines, lineFromRow(row))
	}
	return order
}

func lineFromRow(row backend.Record) domain.Line {
	rate := row.Float("rate")
	amount := row.Float("amount")

	netRate := row.Float("net_rate")
	if netRate == 0 {
		netRate = rate
	}
	gross := row.Float("gross_amount")
	if gross == 0 {
		gross = amount
	}

	return domain.Line{
		ID:       row.String("id"),
		ItemCode: row.String("item_code"),
		ItemName: row.String("item_name"),
		HSN:      row.String("hsn"),
		UOM:      row.String("uom"),
		Line: taxdomain.Line{
			Rate:           rate,
			Quantity:       row.Float("quantity"),
			GSTRate:        row.Float("gst"),
			DiscPercent:    row.Float("disc_percentage"),
			DiscAmount:     row.Float("disc_amount"),
			SplDiscPercent: row.Float("spl_disc_percentage"),
			SplDiscAmount:  row.Float("spl_disc_amount"),
			Amount:         amount,
			NetRate:        netRate,
			TaxableAmount:  amount - row.Float("disc_amount") - row.Float("spl_disc_amount"),
			SGST:           row.Float("sgst"),
			CGST:           row.Float("cgst"),
			IGST:           row.Float("igst"),
			GrossAmount:    gross,
		},
		DeliveryDate: format.FromOracleTimestamp(row.String("delivery_date")),
		DeliveryMode: row.String("delivery_mode"),
	}
}

type orderPayload struct {
	OrderNo               string        `json:"order_no"`
	OrderDate             *string       `json:"order_date"`
	VoucherType           string        `json:"voucher_type"`
	Status                string        `json:"status"`
	Executive             string        `json:"executive,omitempty"`
	CustomerCode          string        `json:"customer_code,omitempty"`
	CustomerName          string        `json:"customer_name,omitempty"`
	Remarks               string        `json:"remarks,omitempty"`
	TotalQuantity         float64       `json:"total_quantity"`
	TotalAmountWithoutTax float64       `json:"total_amount_without_tax"`
	TotalSGSTAmount       float64       `json:"total_sgst_amount"`
	TotalCGSTAmount       float64       `json:"total_cgst_amount"`
	TotalIGSTAmount       float64       `json:"total_igst_amount"`
	TotalAmount           float64       `json:"total_amount"`
	Items                 []itemPayload `json:"items"`
}

type itemPayload struct {
	ItemCode          string  `json:"item_code"`
	ItemName          string  `json:"item_name"`
	HSN               string  `json:"hsn"`
	GST               float64 `json:"gst"`
	SGST              float64 `json:"sgst"`
	CGST              float64 `json:"cgst"`
	IGST              float64 `json:"igst"`
	DeliveryDate      *string `json:"delivery_date"`
	DeliveryMode      string  `json:"delivery_mode"`
	Quantity          float64 `json:"quantity"`
	UOM               string  `json:"uom"`
	Rate              float64 `json:"rate"`
	Amount            float64 `json:"amount"`
	NetRate           float64 `json:"net_rate"`
	GrossAmount       float64 `json:"gross_amount"`
	DiscPercentage    float64 `json:"disc_percentage"`
	DiscAmount        float64 `json:"disc_amount"`
	SplDiscPercentage float64 `json:"spl_disc_percentage"`
	SplDiscAmount     float64 `json:"spl_disc_amount"`
}

// toPayload shapes a computed order for POST /orders. Dates go out as
// YYYY-MM-DD, or null when they cannot be read.
func toPayload(o domain.Order) orderPayload {
	p := orderPayload{
		OrderNo:               o.OrderNumber,
		OrderDate:             storageDate(o.OrderDate),
		VoucherType:           o.VoucherType,
		Status:                o.Status,
		Executive:             o.Executive,
		CustomerCode:          o.CustomerCode,
		CustomerName:          o.CustomerName,
		Remarks:               o.Remarks,
		TotalQuantity:         o.Totals.Quantity,
		TotalAmountWithoutTax: o.Totals.AmountWithoutTax,
		TotalSGSTAmount:       o.Totals.SGST,
		TotalCGSTAmount:       o.Totals.CGST,
		TotalIGSTAmount:       o.Totals.IGST,
		TotalAmount:           o.Totals.Amount,
		Items:                 make([]itemPayload, 0, len(o.Lines)),
	}
	for _, l := range o.Lines {
		p.Items = append(p.Items, itemPayload{
			ItemCode:          l.ItemCode,
			ItemName:          l.ItemName,
			HSN:               l.HSN,
			GST:               l.GSTRate,
			SGST:              l.SGST,
			CGST:              l.CGST,
			IGST:              l.IGST,
			DeliveryDate:      storageDate(l.DeliveryDate),
			DeliveryMode:      l.DeliveryMode,
			Quantity:          l.Quantity,
			UOM:               l.UOM,
			Rate:              l.Rate,
			Amount:            l.Amount,
			NetRate:           l.NetRate,
			GrossAmount:       l.GrossAmount,
			DiscPercentage:    l.DiscPercent,
			DiscAmount:        l.DiscAmount,
			SplDiscPercentage: l.SplDiscPercent,
			SplDiscAmount:     l.SplDiscAmount,
		})
	}
	return p
}

func storageDate(display string) *string {
	if display == "" {
		return nil
	}
	v, ok := format.ToStorageDate(format.ToDisplayDate(display))
	if !ok {
		return nil
	}
	return &v
}
