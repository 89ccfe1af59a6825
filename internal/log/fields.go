package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldUserAgent     = "user_agent"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldTransactionID = "transaction_id"
	FieldAmountCents   = "amount_cents"
	FieldCategory      = "category"
	FieldType          = "type"
	FieldCount         = "count"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentBridge  = "bridge"
	ComponentAuth    = "auth"
)

// Operations defines standard operation names
const (
	OpAdd    = "add"
	OpDelete = "delete"
	OpList   = "list"
	OpExport = "export"
	OpImport = "import"
	OpLogin  = "login"
)
