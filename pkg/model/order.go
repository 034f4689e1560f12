// pkg/model/order.go
package model

import (
	"fmt"
	"time"
)

// Order is one cleaned sales order
type Order struct {
	OrderID        int64
	PurchaseDate   time.Time
	CustomerID     int64
	Product        string
	Category       string
	Quantity       float64
	UnitPrice      float64
	DeliveryStatus string
}

// Total returns quantity × unit price without rounding
func (o Order) Total() float64 {
	return o.Quantity * o.UnitPrice
}

// IsDelivered reports whether the order counts toward revenue
func (o Order) IsDelivered(deliveredToken string) bool {
	return o.DeliveryStatus == deliveredToken
}

// OrdersFromTable projects a fully cleaned table onto typed orders.
// Every required cell must be present and of the nominal type.
func OrdersFromTable(t *Table) ([]Order, error) {
	idx := make(map[string]int, 8)
	for _, name := range []string{
		ColOrderID, ColPurchaseDate, ColCustomerID, ColProduct,
		ColCategory, ColQuantity, ColUnitPrice, ColDeliveryStatus,
	} {
		i, err := t.ColumnIndex(name)
		if err != nil {
			return nil, err
		}
		idx[name] = i
	}

	orders := make([]Order, 0, t.Len())
	for n, row := range t.Rows {
		var o Order
		var ok bool

		if o.OrderID, ok = row[idx[ColOrderID]].Int(); !ok {
			return nil, cellError(n, ColOrderID, row[idx[ColOrderID]])
		}
		if o.PurchaseDate, ok = row[idx[ColPurchaseDate]].Time(); !ok {
			return nil, cellError(n, ColPurchaseDate, row[idx[ColPurchaseDate]])
		}
		if o.CustomerID, ok = row[idx[ColCustomerID]].Int(); !ok {
			return nil, cellError(n, ColCustomerID, row[idx[ColCustomerID]])
		}
		if o.Product, ok = row[idx[ColProduct]].Str(); !ok {
			return nil, cellError(n, ColProduct, row[idx[ColProduct]])
		}
		if o.Category, ok = row[idx[ColCategory]].Str(); !ok {
			return nil, cellError(n, ColCategory, row[idx[ColCategory]])
		}
		if o.Quantity, ok = row[idx[ColQuantity]].Float(); !ok {
			return nil, cellError(n, ColQuantity, row[idx[ColQuantity]])
		}
		if o.UnitPrice, ok = row[idx[ColUnitPrice]].Float(); !ok {
			return nil, cellError(n, ColUnitPrice, row[idx[ColUnitPrice]])
		}
		if o.DeliveryStatus, ok = row[idx[ColDeliveryStatus]].Str(); !ok {
			return nil, cellError(n, ColDeliveryStatus, row[idx[ColDeliveryStatus]])
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func cellError(row int, column string, v Value) error {
	return fmt.Errorf("row %d, column %s: unexpected %s value %q", row, column, v.Kind(), v.String())
}
