package source

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"

	"github.com/gidiolindo/Portfolio/pkg/model"
)

func cellAt(t *testing.T, table *model.Table, row int, column string) model.Value {
	t.Helper()
	idx, err := table.ColumnIndex(column)
	require.NoError(t, err)
	return table.Rows[row][idx]
}

func TestSyntheticDefects(t *testing.T) {
	table, err := NewSynthetic(42, 100, zaptest.NewLogger(t)).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 103, table.Len())
	require.NoError(t, model.OrdersMetadata().ValidateStructure(table))

	for i := 5; i <= 10; i++ {
		assert.True(t, cellAt(t, table, i, model.ColQuantity).IsMissing(), "row %d", i)
	}
	for i := 20; i <= 22; i++ {
		assert.True(t, cellAt(t, table, i, model.ColDeliveryStatus).IsMissing(), "row %d", i)
	}
	assert.Equal(t, model.Text("nan"), cellAt(t, table, 30, model.ColCustomerID))
	assert.Equal(t, model.Text("valor_invalido"), cellAt(t, table, 15, model.ColUnitPrice))
	assert.Equal(t, model.Float(50), cellAt(t, table, 70, model.ColQuantity))
	assert.Equal(t, model.Text("5999.9"), cellAt(t, table, 0, model.ColUnitPrice))
	assert.Equal(t, model.Text("8500.0"), cellAt(t, table, 1, model.ColUnitPrice))

	for i := 0; i < 3; i++ {
		assert.Equal(t, table.Rows[i], table.Rows[100+i])
	}
}

func TestSyntheticIsReproducible(t *testing.T) {
	a, err := NewSynthetic(7, 40, nil).Load(context.Background())
	require.NoError(t, err)
	b, err := NewSynthetic(7, 40, nil).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := NewSynthetic(8, 40, nil).Load(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestSyntheticWithoutDefects(t *testing.T) {
	table, err := NewSynthetic(42, 30, nil).WithDefects(false).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 30, table.Len())

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, row := range table.Rows {
		for _, v := range row {
			assert.False(t, v.IsMissing())
		}
		id, _ := cellAt(t, table, i, model.ColOrderID).Int()
		assert.GreaterOrEqual(t, id, int64(1000))
		assert.LessOrEqual(t, id, int64(1100))

		q, _ := cellAt(t, table, i, model.ColQuantity).Int()
		assert.GreaterOrEqual(t, q, int64(1))
		assert.LessOrEqual(t, q, int64(4))

		d, _ := cellAt(t, table, i, model.ColPurchaseDate).Time()
		assert.False(t, d.After(start.AddDate(0, 0, i)))
		assert.False(t, d.Before(start.AddDate(0, 0, i-29)))

		product, _ := cellAt(t, table, i, model.ColProduct).Str()
		assert.Equal(t, model.Text(model.CategoryFor(product)), cellAt(t, table, i, model.ColCategory))
	}
}

func TestSyntheticSmallTableSkipsDefects(t *testing.T) {
	table, err := NewSynthetic(1, 4, nil).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, table.Len())

	_, err = NewSynthetic(1, 0, nil).Load(context.Background())
	assert.Error(t, err)
}

func TestReadCSV(t *testing.T) {
	input := "\ufeffID_Pedido,Data_Compra,ID_Cliente,Produto,Quantidade,Preço_Unitario,Status_Entrega,Notes\n" +
		"1001,2025-03-01,100.0,Smartphone,2,5999.9,Entregue,x\n" +
		"1002,2025-03-02,nan,Teclado Mecânico,,valor_invalido,,y\n"

	table, err := ReadCSV(context.Background(), strings.NewReader(input), ',', zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.NotContains(t, table.Columns, "Notes")
	require.NoError(t, model.OrdersMetadata().ValidateStructure(table))

	assert.Equal(t, model.Text("1001"), cellAt(t, table, 0, model.ColOrderID))
	assert.Equal(t, model.Text(model.CategoryElectronics), cellAt(t, table, 0, model.ColCategory))
	assert.Equal(t, model.Text(model.CategoryAccessories), cellAt(t, table, 1, model.ColCategory))
	assert.True(t, cellAt(t, table, 1, model.ColQuantity).IsMissing())
	assert.True(t, cellAt(t, table, 1, model.ColDeliveryStatus).IsMissing())

	_, err = ReadCSV(context.Background(), strings.NewReader(""), ',', nil)
	assert.ErrorIs(t, err, model.ErrEmptyDataset)
}

func TestCSVRoundTrip(t *testing.T) {
	generated, err := NewSynthetic(42, 20, nil).Load(context.Background())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "orders.csv")
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, generated))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	loaded, err := NewCSVSource(path, nil).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, generated.Len(), loaded.Len())
	assert.ElementsMatch(t, generated.Columns, loaded.Columns)

	for i := range generated.Rows {
		for _, col := range generated.Columns {
			assert.Equal(t, cellAt(t, generated, i, col).String(), cellAt(t, loaded, i, col).String())
		}
	}

	_, err = NewCSVSource(filepath.Join(t.TempDir(), "missing.csv"), nil).Load(context.Background())
	assert.Error(t, err)
}

func TestXLSXSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.xlsx")
	f := excelize.NewFile()
	sheet := "Vendas"
	_, err := f.NewSheet(sheet)
	require.NoError(t, err)
	rows := [][]interface{}{
		{"order_id", "purchase_date", "customer_id", "product", "quantity", "unit_price", "delivery_status"},
		{"1001", "2025-03-01", "101", "Notebook", "1", "8500", "Entregue"},
		{"1002", "2025-03-02", "102", "SmartWatch", "", "2100", "Pendente"},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := NewXLSXSource(path, sheet, zaptest.NewLogger(t)).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, model.Text("Notebook"), cellAt(t, table, 0, model.ColProduct))
	assert.Equal(t, model.Text(model.CategoryAccessories), cellAt(t, table, 1, model.ColCategory))
	assert.True(t, cellAt(t, table, 1, model.ColQuantity).IsMissing())

	_, err = NewXLSXSource(path, "Missing", nil).Load(context.Background())
	assert.Error(t, err)
}

func TestSQLSource(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	day := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT (.+) FROM orders`).
		WillReturnRows(sqlmock.NewRows([]string{
			"ORDER_ID", "PURCHASE_DATE", "CUSTOMER_ID", "PRODUCT", "QUANTITY", "UNIT_PRICE", "DELIVERY_STATUS", "LOADED_AT",
		}).
			AddRow(int64(1001), day, int64(101), "Notebook", 2.0, "8500.00", "Entregue", day).
			AddRow(int64(1002), day, nil, "Smartphone", nil, "valor_invalido", nil, day))

	src := NewSQLSource(sqlx.NewDb(db, "pgx"), "SELECT * FROM orders", zaptest.NewLogger(t))
	table, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.NotContains(t, table.Columns, "LOADED_AT")

	assert.Equal(t, model.Int(1001), cellAt(t, table, 0, model.ColOrderID))
	assert.Equal(t, model.Date(day), cellAt(t, table, 0, model.ColPurchaseDate))
	assert.Equal(t, model.Float(2), cellAt(t, table, 0, model.ColQuantity))
	assert.True(t, cellAt(t, table, 1, model.ColCustomerID).IsMissing())
	assert.Equal(t, model.Text(model.CategoryElectronics), cellAt(t, table, 1, model.ColCategory))
	assert.NoError(t, mock.ExpectationsWereMet())
}
