package pdf

import (
	"bytes"
	"context"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// VoucherData is a sales-order voucher with every amount already formatted.
type VoucherData struct {
	CompanyName  string
	VoucherType  string
	OrderNumber  string
	OrderDate    string
	Status       string
	CustomerName string
	CustomerCode string
	Executive    string
	Remarks      string

	Items []VoucherItem

	TotalQuantity    string
	AmountWithoutTax string
	SGST             string
	CGST             string
	IGST             string
	Total            string
}

type VoucherItem struct {
	ItemCode     string
	ItemName     string
	HSN          string
	GST          string
	Quantity     string
	UOM          string
	Rate         string
	Discount     string
	NetRate      string
	Tax          string
	Amount       string
	DeliveryDate string
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

var (
	headerText = props.Text{Style: fontstyle.Bold, Size: 8}
	cellText   = props.Text{Size: 8}
	amountText = props.Text{Size: 8, Align: align.Right}
	boldAmount = props.Text{Size: 8, Align: align.Right, Style: fontstyle.Bold}
)

func (p *PDFProvider) GenerateVoucher(ctx context.Context, v VoucherData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	if v.CompanyName != "" {
		m.AddRow(10,
			text.NewCol(12, v.CompanyName, props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Center}),
		)
	}
	m.AddRow(10,
		text.NewCol(12, v.VoucherType, props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Left}),
	)

	m.AddRow(22,
		col.New(6).Add(
			text.New("Order number: "+v.OrderNumber, props.Text{Top: 0}),
			text.New("Date: "+v.OrderDate, props.Text{Top: 5}),
			text.New("Status: "+v.Status, props.Text{Top: 10}),
		),
		col.New(6).Add(
			text.New("Customer", props.Text{Style: fontstyle.Bold}),
			text.New(v.CustomerName, props.Text{Top: 5}),
			text.New(v.CustomerCode, props.Text{Top: 10}),
			text.New(v.Executive, props.Text{Top: 15}),
		),
	)

	m.AddRow(8,
		text.NewCol(1, "Code", headerText),
		text.NewCol(2, "Item", headerText),
		text.NewCol(1, "HSN", headerText),
		text.NewCol(1, "GST %", headerText),
		text.NewCol(1, "Qty", headerText),
		text.NewCol(1, "Rate", headerText),
		text.NewCol(1, "Disc", headerText),
		text.NewCol(1, "Net rate", headerText),
		text.NewCol(1, "Tax", headerText),
		text.NewCol(1, "Amount", headerText),
		text.NewCol(1, "Delivery", headerText),
	)
	m.AddRow(1, line.NewCol(12))

	for _, item := range v.Items {
		m.AddRow(8,
			text.NewCol(1, item.ItemCode, cellText),
			text.NewCol(2, item.ItemName, cellText),
			text.NewCol(1, item.HSN, cellText),
			text.NewCol(1, item.GST, amountText),
			text.NewCol(1, item.Quantity+" "+item.UOM, amountText),
			text.NewCol(1, item.Rate, amountText),
			text.NewCol(1, item.Discount, amountText),
			text.NewCol(1, item.NetRate, amountText),
			text.NewCol(1, item.Tax, amountText),
			text.NewCol(1, item.Amount, amountText),
			text.NewCol(1, item.DeliveryDate, cellText),
		)
	}
	m.AddRow(1, line.NewCol(12))

	totals := []struct {
		label, value string
	}{
		{"Total quantity", v.TotalQuantity},
		{"Amount without tax", v.AmountWithoutTax},
		{"SGST", v.SGST},
		{"CGST", v.CGST},
		{"IGST", v.IGST},
	}
	for _, t := range totals {
		m.AddRow(6,
			col.New(8),
			text.NewCol(2, t.label, cellText),
			text.NewCol(2, t.value, amountText),
		)
	}
	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "Total", headerText),
		text.NewCol(2, v.Total, boldAmount),
	)

	if v.Remarks != "" {
		m.AddRow(12,
			text.NewCol(12, "Remarks: "+v.Remarks, props.Text{Size: 8, Top: 4}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}
