package enum

// ── Order lifecycle (order_status enum in DB) ──

const (
	OrderStatusPending    = "PENDING"
	OrderStatusInProgress = "IN_PROGRESS"
	OrderStatusCompleted  = "COMPLETED"
	OrderStatusArchived   = "ARCHIVED"
)

// ── Relay message types (wire protocol, not stored) ──

const (
	MessageNewOrder          = "NEW_ORDER"
	MessageUpdateOrderStatus = "UPDATE_ORDER_STATUS"
	MessageUpdateCategories  = "UPDATE_CATEGORIES"
	MessageUpdateStock       = "UPDATE_STOCK"
)

// ── Admin credential storage ──

const (
	PasswordSchemePlaintext = "plaintext"
	PasswordSchemeBcrypt    = "bcrypt"
)

// ── Token roles ──

const (
	RoleMenuAdmin = "MENU_ADMIN"
)
