package usage

// the caller's standing; limit and remaining are -1 when unlimited
type Response struct {
	Allowed        bool   `json:"allowed"`
	Tier           string `json:"tier"`
	Used           int    `json:"used"`
	Limit          int    `json:"limit"`
	Remaining      int    `json:"remaining"`
	Reason         string `json:"reason,omitempty"`
	RequiresSignup bool   `json:"requiresSignup,omitempty"`
	Upgrade        bool   `json:"upgrade,omitempty"`
}
