package transport

// Envelope wraps every JSON body the API writes.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// ErrorDetail carries a human-readable message and the offending field, if any.
type ErrorDetail struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// ListMeta accompanies collection responses.
type ListMeta struct {
	Count int `json:"count"`
}

func NewSuccess(data interface{}) Envelope {
	return Envelope{Status: "success", Data: data}
}

// NewList wraps a collection and reports its size in meta.
func NewList(data interface{}, count int) Envelope {
	return Envelope{Status: "success", Data: data, Meta: ListMeta{Count: count}}
}

// NewError returns an error envelope; meta may carry diagnostic context.
func NewError(code string, detail ErrorDetail, meta interface{}) Envelope {
	return Envelope{Status: "error", Code: code, Error: detail, Meta: meta}
}
