// Package inventory tracks the material catalog, stock levels, and the
// immutable purchase log. Stock is debited when work orders complete and
// credited by purchases.
package inventory

import (
	"fmt"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/mrovira/fieldops/internal/events"
	"github.com/mrovira/fieldops/internal/model"
)

// Ledger is the in-memory stock ledger. All operations are safe for
// concurrent use.
type Ledger struct {
	mu        sync.Mutex
	catalog   map[string]model.MaterialCatalogItem
	stock     map[string]int
	purchases []model.Purchase

	bus       *events.Bus
	logger    *log.Logger
	warnBelow int
}

// New creates an empty ledger. bus may be nil when no one listens.
func New(logger *log.Logger, bus *events.Bus, warnBelow int) *Ledger {
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}
	return &Ledger{
		catalog:   make(map[string]model.MaterialCatalogItem),
		stock:     make(map[string]int),
		logger:    logger,
		bus:       bus,
		warnBelow: warnBelow,
	}
}

// AddCatalogItem registers a material SKU.
func (l *Ledger) AddCatalogItem(item model.MaterialCatalogItem) error {
	if item.ID == "" || item.Name == "" {
		return fmt.Errorf("catalog item requires id and name")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.catalog[item.ID]; exists {
		return fmt.Errorf("catalog item %q already exists", item.ID)
	}
	l.catalog[item.ID] = item
	return nil
}

// UpdateCatalogItem replaces an existing catalog entry.
func (l *Ledger) UpdateCatalogItem(item model.MaterialCatalogItem) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.catalog[item.ID]; !exists {
		return fmt.Errorf("catalog item %q not found", item.ID)
	}
	l.catalog[item.ID] = item
	return nil
}

// DeleteCatalogItem removes a SKU. Refused while stock remains, so the
// ledger never orphans a positive balance.
func (l *Ledger) DeleteCatalogItem(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.catalog[id]; !exists {
		return fmt.Errorf("catalog item %q not found", id)
	}
	if l.stock[id] > 0 {
		return fmt.Errorf("catalog item %q still has %d unit(s) in stock", id, l.stock[id])
	}
	delete(l.catalog, id)
	return nil
}

// CatalogItem looks up a SKU.
func (l *Ledger) CatalogItem(id string) (model.MaterialCatalogItem, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	item, ok := l.catalog[id]
	return item, ok
}

// Catalog lists all SKUs sorted by ID.
func (l *Ledger) Catalog() []model.MaterialCatalogItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.MaterialCatalogItem, 0, len(l.catalog))
	for _, item := range l.catalog {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Credit increases stock, creating the inventory item if absent.
func (l *Ledger) Credit(materialID string, qty int) error {
	if materialID == "" {
		return fmt.Errorf("material id is required")
	}
	if qty <= 0 {
		return fmt.Errorf("credit quantity must be positive, got %d", qty)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stock[materialID] += qty
	return nil
}

// Debit decreases stock. Underflow clamps to zero with a warning and an
// unknown material is a warning no-op: inventory bookkeeping must never
// block a completed work order.
func (l *Ledger) Debit(materialID string, qty int) {
	if qty <= 0 {
		l.logger.Printf("WARN inventory: ignoring non-positive debit of %d for %s", qty, materialID)
		return
	}

	l.mu.Lock()
	current, exists := l.stock[materialID]
	if !exists {
		l.mu.Unlock()
		l.logger.Printf("WARN inventory: material %s used in task but not found in inventory", materialID)
		return
	}

	newStock := current - qty
	clamped := false
	if newStock < 0 {
		clamped = true
		newStock = 0
	}
	l.stock[materialID] = newStock
	l.mu.Unlock()

	if clamped {
		l.logger.Printf("WARN inventory: stock for %s would go negative (had %d, debit %d), clamped to 0", materialID, current, qty)
		l.publish(events.EventStockClamped, map[string]interface{}{
			"material_id": materialID,
			"had":         current,
			"debit":       qty,
		})
	}
	l.publish(events.EventStockDebited, map[string]interface{}{
		"material_id": materialID,
		"quantity":    qty,
		"stock":       newStock,
	})
	if l.warnBelow > 0 && newStock < l.warnBelow {
		l.logger.Printf("WARN inventory: stock for %s is low (%d < %d)", materialID, newStock, l.warnBelow)
	}
}

// DebitUsages deducts each consumed-material row independently; a warning on
// one row never stops the rest.
func (l *Ledger) DebitUsages(usages []model.MaterialUsage) {
	for _, u := range usages {
		l.Debit(u.MaterialID, u.Quantity)
	}
}

// RecordPurchase appends an immutable purchase log entry and credits stock,
// creating the inventory item for a previously-unknown material.
func (l *Ledger) RecordPurchase(p model.Purchase) (model.Purchase, error) {
	if p.MaterialID == "" {
		return model.Purchase{}, fmt.Errorf("purchase requires a material id")
	}
	if p.Quantity <= 0 {
		return model.Purchase{}, fmt.Errorf("purchase quantity must be positive, got %d", p.Quantity)
	}
	if p.ID == "" {
		id, err := model.GenerateID(model.IDTypePurchase)
		if err != nil {
			return model.Purchase{}, err
		}
		p.ID = id
	}
	if p.PurchaseDate.IsZero() {
		p.PurchaseDate = time.Now().UTC()
	}

	l.mu.Lock()
	l.purchases = append(l.purchases, p)
	l.stock[p.MaterialID] += p.Quantity
	l.mu.Unlock()

	l.publish(events.EventPurchaseRecorded, map[string]interface{}{
		"purchase_id": p.ID,
		"material_id": p.MaterialID,
		"quantity":    p.Quantity,
	})
	return p, nil
}

// Purchases returns the purchase log in insertion order.
func (l *Ledger) Purchases() []model.Purchase {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.Purchase(nil), l.purchases...)
}

// Stock returns the current balance for a material.
func (l *Ledger) Stock(materialID string) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	qty, ok := l.stock[materialID]
	return qty, ok
}

// Snapshot lists all inventory items sorted by material ID.
func (l *Ledger) Snapshot() []model.InventoryItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.InventoryItem, 0, len(l.stock))
	for id, qty := range l.stock {
		out = append(out, model.InventoryItem{MaterialID: id, Stock: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MaterialID < out[j].MaterialID })
	return out
}

func (l *Ledger) publish(t events.EventType, data map[string]interface{}) {
	if l.bus != nil {
		l.bus.Publish(t, data)
	}
}
