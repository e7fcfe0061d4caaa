package service

import (
	taxdomain "github.com/smallbiznis/orderdesk/internal/tax/domain"
)

// ComputeLine recomputes every derived field of line. Negative inputs are
// treated as zero and discounts never take the taxable amount below zero.
//
// A discount percent, when set, replaces the discount amount. The special
// discount applies to the amount left after the regular discount. GST is
// charged on what remains.
func ComputeLine(line taxdomain.Line, j taxdomain.Jurisdiction) taxdomain.Line {
	line.Rate = nonNegative(line.Rate)
	line.Quantity = nonNegative(line.Quantity)
	line.GSTRate = nonNegative(line.GSTRate)
	line.DiscPercent = clampPercent(line.DiscPercent)
	line.DiscAmount = nonNegative(line.DiscAmount)
	line.SplDiscPercent = clampPercent(line.SplDiscPercent)
	line.SplDiscAmount = nonNegative(line.SplDiscAmount)

	line.Amount = line.Rate * line.Quantity

	if line.DiscPercent > 0 {
		line.DiscAmount = line.Amount * line.DiscPercent / 100
	}
	line.DiscAmount = min(line.DiscAmount, line.Amount)

	afterDisc := line.Amount - line.DiscAmount
	if line.SplDiscPercent > 0 {
		line.SplDiscAmount = afterDisc * line.SplDiscPercent / 100
	}
	line.SplDiscAmount = min(line.SplDiscAmount, afterDisc)

	line.TaxableAmount = nonNegative(afterDisc - line.SplDiscAmount)
	if line.Quantity > 0 {
		line.NetRate = line.TaxableAmount / line.Quantity
	} else {
		line.NetRate = line.Rate
	}

	line.SGST, line.CGST, line.IGST = 0, 0, 0
	if j.Known {
		taxTotal := line.TaxableAmount * line.GSTRate / 100
		if j.Home {
			line.SGST = taxTotal / 2
			line.CGST = taxTotal / 2
		} else {
			line.IGST = taxTotal
		}
	}
	line.GrossAmount = line.TaxableAmount + line.TaxTotal()
	return line
}

// Sum aggregates computed lines into order totals.
func Sum(lines []taxdomain.Line) taxdomain.Totals {
	var t taxdomain.Totals
	for _, l := range lines {
		t.Quantity += l.Quantity
		t.AmountWithoutTax += l.TaxableAmount
		t.SGST += l.SGST
		t.CGST += l.CGST
		t.IGST += l.IGST
		t.Amount += l.GrossAmount
	}
	return t
}

func nonNegative(v float64) float64 {
	if v < 0 || v != v {
		return 0
	}
	return v
}

func clampPercent(v float64) float64 {
	return min(nonNegative(v), 100)
}
