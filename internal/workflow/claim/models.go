// internal/workflow/claim/models.go
package claim

// Step names one stage of the claim workflow. Used for error
// attribution and metrics labels.
type Step string

const (
	StepAuthorizing Step = "authorizing"
	StepResolving   Step = "resolving"
	StepCreating    Step = "creating"
	StepMigrating   Step = "migrating"
	StepClosing     Step = "closing"
)

// Outcome labels one finished claim attempt.
type Outcome string

const (
	OutcomeSuccess          Outcome = "success"
	OutcomeNotAuthorized    Outcome = "not_authorized"
	OutcomeIdentityNotFound Outcome = "identity_not_found"
	OutcomeInProgress       Outcome = "in_progress"
	OutcomeError            Outcome = "error"
)
