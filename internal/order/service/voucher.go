package service

import (
	"context"
	"io"
	"strconv"

	"github.com/smallbiznis/orderdesk/internal/order/domain"
	"github.com/smallbiznis/orderdesk/internal/order/format"
	"github.com/smallbiznis/orderdesk/internal/providers/pdf"
	"go.uber.org/zap"
)

// Voucher renders the stored order as a PDF sales-order voucher.
func (s *Service) Voucher(ctx context.Context, clientID, orderNumber string) (io.Reader, error) {
	order, err := s.Get(ctx, clientID, orderNumber)
	if err != nil {
		return nil, err
	}

	r, err := s.pdf.GenerateVoucher(ctx, s.voucherData(order))
	if err != nil {
		s.log.Error("failed to render voucher", zap.String("order_number", order.OrderNumber), zap.Error(err))
		return nil, err
	}
	s.metrics.RecordVoucher()
	return r, nil
}

func (s *Service) voucherData(o domain.Order) pdf.VoucherData {
	cfg := s.cfg.Get()
	money := func(v float64) string { return format.FormatMoney(cfg.CurrencySymbol, v) }

	voucherType := o.VoucherType
	if voucherType == "" {
		voucherType = cfg.VoucherType
	}

	data := pdf.VoucherData{
		CompanyName:      cfg.CompanyName,
		VoucherType:      voucherType,
		OrderNumber:      o.OrderNumber,
		OrderDate:        o.OrderDate,
		Status:           o.Status,
		CustomerName:     o.CustomerName,
		CustomerCode:     o.CustomerCode,
		Executive:        o.Executive,
		Remarks:          o.Remarks,
		TotalQuantity:    number(o.Totals.Quantity),
		AmountWithoutTax: money(o.Totals.AmountWithoutTax),
		SGST:             money(o.Totals.SGST),
		CGST:             money(o.Totals.CGST),
		IGST:             money(o.Totals.IGST),
		Total:            money(o.Totals.Amount),
		Items:            make([]pdf.VoucherItem, 0, len(o.Lines)),
	}
	for _, l := range o.Lines {
		data.Items = append(data.Items, pdf.VoucherItem{
			ItemCode:     l.ItemCode,
			ItemName:     l.ItemName,
			HSN:          l.HSN,
			GST:          number(l.GSTRate),
			Quantity:     number(l.Quantity),
			UOM:          l.UOM,
			Rate:         money(l.Rate),
			Discount:     money(l.DiscAmount + l.SplDiscAmount),
			NetRate:      money(l.NetRate),
			Tax:          money(l.TaxTotal()),
			Amount:       money(l.GrossAmount),
			DeliveryDate: l.DeliveryDate,
		})
	}
	return data
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
