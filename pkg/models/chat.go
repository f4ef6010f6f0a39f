package models

// SessionInitRequest is the payload for creating a session from an
// ingested dataset.
type SessionInitRequest struct {
	Name    string   `json:"name"`
	Rows    []Row    `json:"rows"`
	Columns []string `json:"columns"`
}

// SessionInitResponse is returned after session creation.
type SessionInitResponse struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// QueryRequest is one conversational turn against an existing session.
type QueryRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// QueryResponse carries the model's prose and, when a patch was applied,
// the entire current table so the caller can replace its local view
// wholesale rather than reconciling a diff.
type QueryResponse struct {
	SessionID   string `json:"session_id"`
	Message     string `json:"message"`
	UpdatedRows []Row  `json:"updated_rows,omitempty"`
}
