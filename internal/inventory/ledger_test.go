package inventory

import (
	"bytes"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrovira/fieldops/internal/events"
	"github.com/mrovira/fieldops/internal/model"
)

func newTestLedger(t *testing.T) (*Ledger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return New(log.New(&buf, "", 0), nil, 0), &buf
}

func TestLedger_CreditAndStock(t *testing.T) {
	l, _ := newTestLedger(t)

	require.NoError(t, l.Credit("FIL-G4", 10))
	require.NoError(t, l.Credit("FIL-G4", 5))
	stock, ok := l.Stock("FIL-G4")
	require.True(t, ok)
	assert.Equal(t, 15, stock)

	assert.Error(t, l.Credit("FIL-G4", 0))
	assert.Error(t, l.Credit("FIL-G4", -3))
	assert.Error(t, l.Credit("", 1))
}

func TestLedger_Debit(t *testing.T) {
	l, _ := newTestLedger(t)
	require.NoError(t, l.Credit("FIL-G4", 10))

	l.Debit("FIL-G4", 4)
	stock, _ := l.Stock("FIL-G4")
	assert.Equal(t, 6, stock)
}

func TestLedger_DebitClampsToZero(t *testing.T) {
	l, buf := newTestLedger(t)
	require.NoError(t, l.Credit("FIL-G4", 2))

	l.Debit("FIL-G4", 5)
	stock, _ := l.Stock("FIL-G4")
	assert.Equal(t, 0, stock)
	assert.Contains(t, buf.String(), "clamped to 0")
}

func TestLedger_DebitUnknownMaterialIsNoOp(t *testing.T) {
	l, buf := newTestLedger(t)

	l.Debit("NOPE-1", 3)
	_, ok := l.Stock("NOPE-1")
	assert.False(t, ok)
	assert.Contains(t, buf.String(), "not found in inventory")
}

func TestLedger_DebitUsagesIndependentRows(t *testing.T) {
	l, _ := newTestLedger(t)
	require.NoError(t, l.Credit("FIL-G4", 10))
	require.NoError(t, l.Credit("GAS-R410", 3))

	l.DebitUsages([]model.MaterialUsage{
		{MaterialID: "FIL-G4", Quantity: 2},
		{MaterialID: "NOPE-1", Quantity: 1}, // warning, must not stop the rest
		{MaterialID: "GAS-R410", Quantity: 5},
	})

	fil, _ := l.Stock("FIL-G4")
	gas, _ := l.Stock("GAS-R410")
	assert.Equal(t, 8, fil)
	assert.Equal(t, 0, gas)
}

func TestLedger_DebitPublishesEvents(t *testing.T) {
	bus := events.NewBus(8)
	defer bus.Close()

	debited := make(chan events.Event, 8)
	clamped := make(chan events.Event, 8)
	bus.Subscribe(events.EventStockDebited, func(e events.Event) { debited <- e })
	bus.Subscribe(events.EventStockClamped, func(e events.Event) { clamped <- e })

	l := New(log.New(&bytes.Buffer{}, "", 0), bus, 0)
	require.NoError(t, l.Credit("FIL-G4", 1))
	l.Debit("FIL-G4", 3)

	select {
	case e := <-debited:
		assert.Equal(t, "FIL-G4", e.Data["material_id"])
	case <-time.After(2 * time.Second):
		t.Fatal("missing stock_debited event")
	}
	select {
	case <-clamped:
	case <-time.After(2 * time.Second):
		t.Fatal("missing stock_clamped event")
	}
}

func TestLedger_LowStockWarning(t *testing.T) {
	var buf bytes.Buffer
	l := New(log.New(&buf, "", 0), nil, 5)
	require.NoError(t, l.Credit("FIL-G4", 6))

	l.Debit("FIL-G4", 2)
	assert.Contains(t, buf.String(), "is low")
}

func TestLedger_RecordPurchase(t *testing.T) {
	l, _ := newTestLedger(t)
	require.NoError(t, l.AddCatalogItem(model.MaterialCatalogItem{ID: "FIL-G4", Name: "Filtro G4", Unit: "unidad"}))

	p, err := l.RecordPurchase(model.Purchase{
		MaterialID: "FIL-G4",
		Quantity:   12,
		UnitCost:   3.50,
		Supplier:   "Refripartes SA",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.PurchaseDate.IsZero())

	stock, _ := l.Stock("FIL-G4")
	assert.Equal(t, 12, stock)

	purchases := l.Purchases()
	require.Len(t, purchases, 1)
	assert.Equal(t, p.ID, purchases[0].ID)
}

func TestLedger_RecordPurchaseValidation(t *testing.T) {
	l, _ := newTestLedger(t)

	_, err := l.RecordPurchase(model.Purchase{MaterialID: "", Quantity: 1})
	assert.Error(t, err)
	_, err = l.RecordPurchase(model.Purchase{MaterialID: "FIL-G4", Quantity: 0})
	assert.Error(t, err)
}

func TestLedger_Catalog(t *testing.T) {
	l, _ := newTestLedger(t)
	require.NoError(t, l.AddCatalogItem(model.MaterialCatalogItem{ID: "FIL-G4", Name: "Filtro G4", Unit: "unidad"}))
	require.NoError(t, l.AddCatalogItem(model.MaterialCatalogItem{ID: "GAS-R410", Name: "Gas R410A", Unit: "kg"}))

	assert.Error(t, l.AddCatalogItem(model.MaterialCatalogItem{ID: "FIL-G4", Name: "Duplicado"}))

	items := l.Catalog()
	require.Len(t, items, 2)
	assert.Equal(t, "FIL-G4", items[0].ID)

	require.NoError(t, l.UpdateCatalogItem(model.MaterialCatalogItem{ID: "FIL-G4", Name: "Filtro G4 HQ", Unit: "unidad"}))
	item, ok := l.CatalogItem("FIL-G4")
	require.True(t, ok)
	assert.Equal(t, "Filtro G4 HQ", item.Name)
}

func TestLedger_DeleteCatalogItemRefusedWhileStocked(t *testing.T) {
	l, _ := newTestLedger(t)
	require.NoError(t, l.AddCatalogItem(model.MaterialCatalogItem{ID: "FIL-G4", Name: "Filtro G4"}))
	require.NoError(t, l.Credit("FIL-G4", 2))

	err := l.DeleteCatalogItem("FIL-G4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "in stock")

	l.Debit("FIL-G4", 2)
	assert.NoError(t, l.DeleteCatalogItem("FIL-G4"))
}

func TestLedger_Snapshot(t *testing.T) {
	l, _ := newTestLedger(t)
	require.NoError(t, l.Credit("GAS-R410", 3))
	require.NoError(t, l.Credit("FIL-G4", 7))

	snap := l.Snapshot()
	assert.Equal(t, []model.InventoryItem{
		{MaterialID: "FIL-G4", Stock: 7},
		{MaterialID: "GAS-R410", Stock: 3},
	}, snap)
}
