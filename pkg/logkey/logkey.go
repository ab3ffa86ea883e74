package logkey

// Attribute keys shared by every slog call so log lines can be joined across handlers.
const (
	TraceID    = "TRACE_ID"
	ERROR      = "ERROR"
	CartID     = "CART_ID"
	OrderID    = "ORDER_ID"
	ProductID  = "PRODUCT_ID"
	CustomerID = "CUSTOMER_ID"
	UserID     = "USER_ID"
)
