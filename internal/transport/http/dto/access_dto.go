package dto

type AccessResponse struct {
	Group   string   `json:"group"`
	Allowed bool     `json:"allowed"`
	Reason  string   `json:"reason,omitempty"`
	Roles   []string `json:"roles,omitempty"`
}
