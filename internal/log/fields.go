package log

// Canonical field name constants for structured logging.
const (
	FieldService   = "service"
	FieldComponent = "component"
	FieldRequestID = "request_id"

	// Catalog
	FieldEventID = "event_id"
	FieldQuery   = "query"
	FieldCount   = "count"

	// Booking
	FieldSessionID = "session_id"
	FieldReference = "reference"
	FieldEvent     = "event"
	FieldOldState  = "old_state"
	FieldNewState  = "new_state"
)
