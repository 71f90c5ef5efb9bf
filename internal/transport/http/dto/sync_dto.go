package dto

type SyncRequest struct {
	Kind string `json:"kind,omitempty"`
}

type SyncResponse struct {
	Triggered bool   `json:"triggered"`
	Kind      string `json:"kind"`
}
