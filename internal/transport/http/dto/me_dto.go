package dto

type MeResponse struct {
	ActorID     int64    `json:"actor_id"`
	DisplayName string   `json:"display_name,omitempty"`
	Roles       []string `json:"roles"`
	TokenValid  bool     `json:"token_valid"`
	Source      string   `json:"source"`
}
