// pkg/report/csv.go
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/gidiolindo/Portfolio/pkg/model"
)

// cleanedHeader is the column layout of the cleaned dataset in every output
var cleanedHeader = []string{
	model.ColOrderID, model.ColPurchaseDate, model.ColCustomerID, model.ColProduct, model.ColCategory,
	model.ColQuantity, model.ColUnitPrice, model.ColDeliveryStatus, model.ColTotal,
}

func cleanedRecord(o model.Order) []interface{} {
	return []interface{}{
		o.OrderID, o.PurchaseDate.Format("2006-01-02"), o.CustomerID, o.Product, o.Category,
		o.Quantity, o.UnitPrice, o.DeliveryStatus, o.Total(),
	}
}

// formatAmount renders a money value with two decimals and a dot separator
func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// WriteCleanedCSV writes the cleaned orders with their derived total
func WriteCleanedCSV(w io.Writer, orders []model.Order) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(cleanedHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, o := range orders {
		record := []string{
			strconv.FormatInt(o.OrderID, 10),
			o.PurchaseDate.Format("2006-01-02"),
			strconv.FormatInt(o.CustomerID, 10),
			o.Product,
			o.Category,
			formatNumber(o.Quantity),
			formatAmount(o.UnitPrice),
			o.DeliveryStatus,
			formatAmount(o.Total()),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write order %d: %w", o.OrderID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
