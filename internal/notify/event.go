package notify

// Task lifecycle statuses reported by the proxy.
const (
	StatusSubmitted = "SUBMITTED"
	StatusFailure   = "FAILURE"
	StatusSuccess   = "SUCCESS"
)

// Task actions.
const (
	ActionImagine  = "IMAGINE"
	ActionUpscale  = "UPSCALE"
	ActionDescribe = "DESCRIBE"
)

// Event is the webhook payload the proxy posts to /notify. Timestamps are
// Unix milliseconds.
type Event struct {
	State       string `json:"state"`
	Action      string `json:"action"`
	Status      string `json:"status"`
	Description string `json:"description"`
	FailReason  string `json:"failReason"`
	SubmitTime  int64  `json:"submitTime"`
	FinishTime  int64  `json:"finishTime"`
	Prompt      string `json:"prompt"`
	PromptEn    string `json:"promptEn"`
	ImageURL    string `json:"imageUrl"`
	ID          string `json:"id"`
}
