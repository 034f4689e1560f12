// pkg/model/metadata.go
package model

import (
	"fmt"
	"strings"
)

// Column names of the sales order dataset
const (
	ColOrderID        = "order_id"
	ColPurchaseDate   = "purchase_date"
	ColCustomerID     = "customer_id"
	ColProduct        = "product"
	ColCategory       = "category"
	ColQuantity       = "quantity"
	ColUnitPrice      = "unit_price"
	ColDeliveryStatus = "delivery_status"
	ColTotal          = "total"
)

// Delivery status tokens
const (
	StatusDelivered = "Entregue"
	StatusPending   = "Pendente"
	StatusCancelled = "Cancelado"
)

// Category buckets
const (
	CategoryElectronics = "Eletrônicos"
	CategoryAccessories = "Acessórios"
)

// Products sold by the store
var Products = []string{"Smartphone", "Notebook", "Fone de ouvido", "SmartWatch", "Teclado Mecânico"}

// CategoryFor maps a product name to its category bucket
func CategoryFor(product string) string {
	switch product {
	case "Smartphone", "Notebook":
		return CategoryElectronics
	default:
		return CategoryAccessories
	}
}

// ColumnType is the nominal type of a column
type ColumnType int

const (
	TypeString ColumnType = iota
	TypeInt
	TypeFloat
	TypeDate
)

// String returns a string representation of the column type
func (t ColumnType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeDate:
		return "date"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// IsNumeric reports whether the column type holds numbers
func (t ColumnType) IsNumeric() bool {
	return t == TypeInt || t == TypeFloat
}

// TableMetadata contains the structure information for a dataset
type TableMetadata struct {
	Name    string   // Dataset name
	Columns []Column // Column definitions
}

// Column represents metadata about a dataset column
type Column struct {
	Name     string     // Column name
	DataType ColumnType // Nominal type
	Nullable bool       // Whether the raw input may hold missing values
	Derived  bool       // Computed from other columns
}

// OrdersMetadata returns the schema of the sales order dataset
func OrdersMetadata() *TableMetadata {
	return &TableMetadata{
		Name: "sales_orders",
		Columns: []Column{
			{Name: ColOrderID, DataType: TypeInt},
			{Name: ColPurchaseDate, DataType: TypeDate},
			{Name: ColCustomerID, DataType: TypeInt, Nullable: true},
			{Name: ColProduct, DataType: TypeString},
			{Name: ColCategory, DataType: TypeString, Derived: true},
			{Name: ColQuantity, DataType: TypeFloat, Nullable: true},
			{Name: ColUnitPrice, DataType: TypeFloat, Nullable: true},
			{Name: ColDeliveryStatus, DataType: TypeString, Nullable: true},
		},
	}
}

// ColumnNames returns the column names in schema order
func (tm *TableMetadata) ColumnNames() []string {
	names := make([]string, len(tm.Columns))
	for i, col := range tm.Columns {
		names[i] = col.Name
	}
	return names
}

// GetColumnByName returns a column by name (case-insensitive)
// Returns nil if column not found
func (tm *TableMetadata) GetColumnByName(name string) *Column {
	normalizedName := normalizeColumnName(name)
	for i, col := range tm.Columns {
		if normalizeColumnName(col.Name) == normalizedName {
			return &tm.Columns[i]
		}
	}
	return nil
}

// ValidateStructure checks that every declared input column is present and
// the table holds at least one row. Derived columns may be absent.
func (tm *TableMetadata) ValidateStructure(t *Table) error {
	if t == nil {
		return ErrEmptyDataset
	}
	for _, col := range tm.Columns {
		if !col.Derived && !t.HasColumn(col.Name) {
			return fmt.Errorf("%s: %w: %s", tm.Name, ErrMissingColumn, col.Name)
		}
	}
	if t.Len() == 0 {
		return fmt.Errorf("%s: %w", tm.Name, ErrEmptyDataset)
	}
	return nil
}

func normalizeColumnName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// DeriveCategory returns the table with a category column computed from the
// product column. Tables that already carry a category are returned as is.
func DeriveCategory(t *Table) (*Table, error) {
	if t.HasColumn(ColCategory) {
		return t, nil
	}
	idx, err := t.ColumnIndex(ColProduct)
	if err != nil {
		return nil, err
	}
	return t.WithColumn(ColCategory, func(r Row) Value {
		if r[idx].IsMissing() {
			return Missing()
		}
		return Text(CategoryFor(strings.TrimSpace(r[idx].String())))
	}), nil
}
