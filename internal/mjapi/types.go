package mjapi

// Task status codes returned by the proxy on submission.
const (
	CodeAccepted = 1  // task accepted and queued
	CodeQueued   = 22 // queue full or rate limited; retry later
	CodeInternal = -9 // transport or serialization failure on our side
)

// Result is the synchronous response to a task submission.
type Result struct {
	Code        int    `json:"code"`
	Description string `json:"description"`
	Result      string `json:"result"`
}

// Request is one of the three task variants. Each variant serializes its
// own payload for a distinct submit endpoint.
type Request interface {
	// Path returns the submit endpoint path for this variant.
	Path() string

	// Payload returns the JSON body fields for this variant, excluding
	// state and notifyHook which the client attaches.
	Payload() map[string]any

	// Key returns the correlation state string for this request.
	Key() string
}

// ImagineRequest submits a free-text drawing prompt.
type ImagineRequest struct {
	State  string
	Prompt string
}

func (r ImagineRequest) Path() string { return "/submit/imagine" }
func (r ImagineRequest) Payload() map[string]any {
	return map[string]any{"prompt": r.Prompt}
}
func (r ImagineRequest) Key() string { return r.State }

// ChangeRequest submits an upscale or variation of a previous task, as
// "<taskID> <op>" content (e.g. "1320098173412546 U1").
type ChangeRequest struct {
	State   string
	Content string
}

func (r ChangeRequest) Path() string { return "/submit/simple-change" }
func (r ChangeRequest) Payload() map[string]any {
	return map[string]any{"content": r.Content}
}
func (r ChangeRequest) Key() string { return r.State }

// DescribeRequest submits an image for prompt extraction.
type DescribeRequest struct {
	State  string
	Base64 string
}

func (r DescribeRequest) Path() string { return "/submit/describe" }
func (r DescribeRequest) Payload() map[string]any {
	return map[string]any{"base64": r.Base64}
}
func (r DescribeRequest) Key() string { return r.State }
