// Package model defines the entity kinds managed by the console: team
// members, products, and orders, plus the role and order-status enums.
package model

// Role determines route and data visibility for a user.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleManager  Role = "Manager"
	RoleEmployee Role = "Employee"
)

// Roles lists every valid role.
func Roles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleEmployee}
}

// Valid reports whether the role is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// User is a team member. Owned by the session once fetched; read-only for
// every other component.
type User struct {
	ID        string `json:"_id,omitempty"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	ManagerID string `json:"managerId,omitempty"`
}

// Product is a managed product entry.
type Product struct {
	ID          string  `json:"_id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image,omitempty"`
	CreatedBy   string  `json:"createdBy,omitempty"`
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderDelivered OrderStatus = "Delivered"
	OrderCancelled OrderStatus = "Cancelled"
)

// Terminal reports whether the status admits no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// Order is a customer order for a product.
type Order struct {
	ID           string      `json:"_id,omitempty"`
	CustomerName string      `json:"customerName"`
	ProductID    string      `json:"productId"`
	EmployeeID   string      `json:"employeeId,omitempty"`
	Status       OrderStatus `json:"status"`
	CreatedAt    string      `json:"createdAt,omitempty"`
}
