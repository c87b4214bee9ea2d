package shared

// Task types and queue names shared by the API and the worker.
const (
	TaskOverdueReport = "report:overdue"

	QueueDefault  = "default"
	QueueReports  = "reports"
	QueueCritical = "critical"
)

// User roles.
const (
	RoleLibrarian = "LIBRARIAN"
	RolePatron    = "PATRON"
)
