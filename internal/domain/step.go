package domain

// HTTPMethod represents an HTTP method (e.g., GET, POST).
type HTTPMethod string

const (
	MethodGet    HTTPMethod = "GET"
	MethodPost   HTTPMethod = "POST"
	MethodPut    HTTPMethod = "PUT"
	MethodDelete HTTPMethod = "DELETE"
)

// BodyType represents the type of payload for a step's request body.
type BodyType string

const (
	BodyNone BodyType = "none"
	BodyJSON BodyType = "json"
	BodyRaw  BodyType = "raw"
)

// Headers is a map representation of HTTP headers.
type Headers map[string]string

// BodySpec describes an HTTP request body.
// Only one of JSON/Raw is typically used depending on Type.
type BodySpec struct {
	Type        BodyType
	JSON        map[string]any
	Raw         string
	ContentType string // Optional override (useful for raw payloads).
}

// ParseMode controls how a step's response body is interpreted.
type ParseMode string

const (
	// ParseJSON expects a well-formed JSON body; a parse failure fails the step.
	ParseJSON ParseMode = "json"

	// ParseOpaque treats the body as raw bytes: no shape requirements, the
	// response is reported as a header dump plus byte count and preview.
	ParseOpaque ParseMode = "opaque"
)

// JSONPathAssertion defines a JSONPath-based check on the response body.
type JSONPathAssertion struct {
	Exists   bool
	Eq       *string
	Contains *string
}

// ExpectSpec defines functional expectations for a step.
type ExpectSpec struct {
	// Status is an exact expected HTTP status code (optional).
	Status *int

	// StatusIn is a set of acceptable status codes (optional).
	// Used where more than one outcome is legitimate, e.g. register: 201 or 409.
	StatusIn []int

	// Success requires a 2xx status (optional shortcut).
	Success bool

	// MaxLatencyMS is a maximum allowed latency in milliseconds (optional).
	MaxLatencyMS *int

	// JSONPath contains JSONPath assertions keyed by expression (optional).
	JSONPath map[string]JSONPathAssertion
}

// ExtractSpec defines variable extraction from responses.
// Map: variableName -> jsonpathExpression. Every rule is required: a failed
// extraction fails the step (e.g. a login response without a token).
type ExtractSpec map[string]string

// StepSpec describes a single smoke step: request, expectations, extraction.
type StepSpec struct {
	Name    string
	Method  HTTPMethod
	URL     string
	Headers Headers
	Body    BodySpec

	Parse ParseMode

	// TimeoutMS bounds this step's wall-clock time. Zero means the shared
	// client default applies.
	TimeoutMS int

	Expect  ExpectSpec
	Extract ExtractSpec
}

// DailyCheck describes the same-day stability probe: one step executed twice,
// with an identifier pulled from each response and compared for equality.
type DailyCheck struct {
	Step StepSpec

	// IDPaths are tried in order on each response; the first JSONPath that
	// yields a non-empty value wins.
	IDPaths []string
}

// Plan is a fully-resolved smoke sequence against one target.
type Plan struct {
	Target  string
	BaseURL string

	// Vars seed the run's variable set (base_url, webhook_url, ...).
	// Steps append to it via their Extract rules (notably the login token).
	Vars Vars

	Steps []StepSpec
	Daily *DailyCheck
}
