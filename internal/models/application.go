// internal/models/application.go
package models

// NotAvailable is the sentinel rendered for any display attribute the
// inbound payload did not carry.
const NotAvailable = "N/A"

// Application is the inbound application record as delivered by the
// automation webhook. It is never stored: once posted to the review
// channel the rendered message itself is the source of truth, and the
// applicant id is recovered from it at claim time.
type Application struct {
	ApplicantID   string `json:"user_id"`
	CharacterName string `json:"char_name"`
	RealAge       string `json:"real_age"`
	SteamLink     string `json:"steam_link"`
	SheetRow      string `json:"sheet_row"`
	AvatarURL     string `json:"avatar_url"`

	AISummary  string `json:"ai_summary"`
	AIDecision string `json:"ai_decision"`
	AIContext  string `json:"ai_context"`
	AIRedFlags string `json:"ai_red_flags"`
}

// OrDefault substitutes the sentinel for absent attributes.
func OrDefault(value string) string {
	if value == "" {
		return NotAvailable
	}
	return value
}
