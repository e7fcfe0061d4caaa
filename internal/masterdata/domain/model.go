package domain

import (
	"strings"

	"github.com/smallbiznis/orderdesk/internal/backend"
)

// Kind names a master-data resource; the value is its backend path.
type Kind string

const (
	KindCustomer    Kind = "customer"
	KindDistributor Kind = "distributors"
	KindCorporate   Kind = "corporates"
	KindStockItem   Kind = "stock_item"
)

type kindDef struct {
	codeField     string
	nameField     string
	requiredField string
	requiredLabel string
}

var kinds = map[Kind]kindDef{
	KindCustomer:    {codeField: "customer_code", nameField: "customer_name", requiredField: "customer_name", requiredLabel: "Customer Name"},
	KindDistributor: {codeField: "usercode", nameField: "username", requiredField: "username", requiredLabel: "Distributor Name"},
	KindCorporate:   {codeField: "usercode", nameField: "username", requiredField: "username", requiredLabel: "Corporate name"},
	KindStockItem:   {codeField: "item_code", nameField: "item_name", requiredField: "item_name", requiredLabel: "Item Name"},
}

// ParseKind accepts the backend path and a few singular spellings.
func ParseKind(raw string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "customer", "customers":
		return KindCustomer, true
	case "distributor", "distributors":
		return KindDistributor, true
	case "corporate", "corporates":
		return KindCorporate, true
	case "stock_item", "stock_items", "stock-item", "stock-items":
		return KindStockItem, true
	default:
		return "", false
	}
}

func (k Kind) RequiredField() string { return kinds[k].requiredField }

// Entry is one normalized master-data record.
type Entry struct {
	Kind   Kind           `json:"kind"`
	Code   string         `json:"code"`
	Name   string         `json:"name"`
	State  string         `json:"state,omitempty"`
	Fields backend.Record `json:"fields"`
}

func NewEntry(kind Kind, rec backend.Record) Entry {
	def := kinds[kind]
	code := rec.String(def.codeField)
	if code == "" {
		code = firstOf(rec, "code", "id")
	}
	name := rec.String(def.nameField)
	if name == "" && kind == KindStockItem {
		name = rec.String("stock_item_name")
	}
	return Entry{
		Kind:   kind,
		Code:   code,
		Name:   name,
		State:  strings.TrimSpace(rec.String("state")),
		Fields: rec,
	}
}

type Customer struct {
	Code         string `json:"customer_code"`
	Name         string `json:"customer_name"`
	MobileNumber string `json:"mobile_number,omitempty"`
	CustomerType string `json:"customer_type,omitempty"`
	Email        string `json:"email,omitempty"`
	State        string `json:"state,omitempty"`
}

type Account struct {
	Code         string `json:"usercode"`
	Username     string `json:"username"`
	Email        string `json:"email,omitempty"`
	MobileNumber string `json:"mobile_number,omitempty"`
	State        string `json:"state,omitempty"`
}

type StockItem struct {
	Code string  `json:"item_code"`
	Name string  `json:"stock_item_name"`
	HSN  string  `json:"hsn,omitempty"`
	GST  float64 `json:"gst"`
	UOM  string  `json:"uom,omitempty"`
	Rate float64 `json:"rate"`
}

// Password fields from the backend are never carried over.
func (e Entry) Customer() Customer {
	return Customer{
		Code:         e.Code,
		Name:         e.Name,
		MobileNumber: e.Fields.String("mobile_number"),
		CustomerType: e.Fields.String("customer_type"),
		Email:        e.Fields.String("email"),
		State:        e.State,
	}
}

func (e Entry) Account() Account {
	return Account{
		Code:         e.Code,
		Username:     e.Name,
		Email:        e.Fields.String("email"),
		MobileNumber: e.Fields.String("mobile_number"),
		State:        e.State,
	}
}

func (e Entry) StockItem() StockItem {
	return StockItem{
		Code: e.Code,
		Name: e.Name,
		HSN:  e.Fields.String("hsn"),
		GST:  e.Fields.Float("gst"),
		UOM:  e.Fields.String("uom"),
		Rate: e.Fields.Float("rate"),
	}
}

func firstOf(rec backend.Record, keys ...string) string {
	for _, k := range keys {
		if v := rec.String(k); v != "" {
			return v
		}
	}
	return ""
}
