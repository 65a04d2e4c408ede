package api

// Routes served by the web listener.
const (
	IndexPath   = "/"
	MessagePath = "/message"
)

// Routes served by the admin listener.
const (
	VersionPath = "/version"
	HealthPath  = "/health"
	MetricsPath = "/metrics"
)

// Log field names
const (
	Action string = "action"
	Path   string = "path"
	Method string = "method"
)
