package model

import "time"

type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleTechnician Role = "technician"
)

// CanManage reports whether the role may edit catalog data (stores, users,
// materials, templates). Technicians only work their assigned orders.
func (r Role) CanManage() bool {
	return r == RoleSuperAdmin || r == RoleAdmin
}

type User struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Role Role   `yaml:"role"`
}

type Store struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Address      string `yaml:"address"`
	City         string `yaml:"city"`
	ContactName  string `yaml:"contact_name"`
	ContactPhone string `yaml:"contact_phone"`
}

// Equipment is a serviceable asset. ID doubles as the value encoded in the
// QR label on the unit itself.
type Equipment struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	StoreID     string `yaml:"store_id"`
	ServiceType string `yaml:"service_type"`
	Details     string `yaml:"details"`
}

type ToolCategory string

const (
	ToolCategoryElectrical ToolCategory = "electrical"
	ToolCategoryHVAC       ToolCategory = "hvac"
	ToolCategoryGeneral    ToolCategory = "general"
)

type ToolAssignment struct {
	TechnicianID string     `yaml:"technician_id"`
	AssignedAt   time.Time  `yaml:"assigned_at"`
	ReturnedAt   *time.Time `yaml:"returned_at,omitempty"`
}

type Tool struct {
	ID                   string           `yaml:"id"`
	Name                 string           `yaml:"name"`
	Category             ToolCategory     `yaml:"category"`
	Status               ToolStatus       `yaml:"status"`
	AssignedTechnicianID string           `yaml:"assigned_technician_id,omitempty"`
	AssignmentHistory    []ToolAssignment `yaml:"assignment_history,omitempty"`
}

// MaterialCatalogItem is a purchasable material or spare part. ID is the SKU.
type MaterialCatalogItem struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Unit string `yaml:"unit"` // e.g. "unidad", "metros", "kg"
}

type InventoryItem struct {
	MaterialID string `yaml:"material_id"`
	Stock      int    `yaml:"stock"`
}

type Purchase struct {
	ID            string    `yaml:"id"`
	MaterialID    string    `yaml:"material_id"`
	Quantity      int       `yaml:"quantity"`
	UnitCost      float64   `yaml:"unit_cost"`
	Supplier      string    `yaml:"supplier"`
	InvoiceNumber string    `yaml:"invoice_number"`
	PurchaseDate  time.Time `yaml:"purchase_date"`
}
