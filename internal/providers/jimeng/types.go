package jimeng

// Wire shapes for the CVSync2Async submit/result endpoints.

type submitRequest struct {
	ReqKey      string `json:"req_key"`
	Prompt      string `json:"prompt"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ForceSingle bool   `json:"force_single"`
}

type submitResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Data      struct {
		TaskID string `json:"task_id"`
	} `json:"data"`
}

type resultRequest struct {
	ReqKey  string `json:"req_key"`
	TaskID  string `json:"task_id"`
	ReqJSON string `json:"req_json"`
}

// resultOptions is marshaled into resultRequest.ReqJSON. The API expects the
// nested options as a JSON string, not an embedded object.
type resultOptions struct {
	ReturnURL bool     `json:"return_url"`
	LogoInfo  logoInfo `json:"logo_info"`
}

type logoInfo struct {
	AddLogo bool `json:"add_logo"`
}

type resultResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Status    string   `json:"status"`
		ImageURLs []string `json:"image_urls"`
	} `json:"data"`
}

// TaskResult is the normalized answer from one result poll.
type TaskResult struct {
	Status    string
	ImageURLs []string
}

// Done reports whether the task finished with at least one downloadable image.
// Every other status, including failure states the API never documents, reads
// as still pending.
func (r *TaskResult) Done() bool {
	return r != nil && r.Status == statusDone && len(r.ImageURLs) > 0
}
