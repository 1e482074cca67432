package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldRecordID    = "record_id"
	FieldRecordDate  = "record_date"
	FieldCategory    = "category"
	FieldAmountCents = "amount_cents"
	FieldPeriod      = "period"
	FieldRows        = "rows"
	FieldMirrorRef   = "mirror_ref"
)

// Standard component names.
const (
	ComponentApp    = "app"
	ComponentHTTP   = "http"
	ComponentLedger = "ledger"
	ComponentStore  = "store"
	ComponentEvents = "events"
	ComponentMirror = "mirror"
	ComponentWorker = "worker"
	ComponentCache  = "cache"
	ComponentConfig = "config"
)

// Standard operation names.
const (
	OpCreate   = "create"
	OpDelete   = "delete"
	OpList     = "list"
	OpExport   = "export"
	OpAppend   = "append"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpRender   = "render"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
