package intake

import "github.com/agricred/intake/internal/domain/shared"

// Intake domain errors
var (
	ErrSessionNotFound     = shared.NewDomainError("SESSION_NOT_FOUND", "Intake session not found")
	ErrSubmissionNotFound  = shared.NewDomainError("SUBMISSION_NOT_FOUND", "Submission not found")
	ErrUnknownStep         = shared.NewDomainError("UNKNOWN_STEP", "Unknown wizard step")
	ErrUnknownSection      = shared.NewDomainError("UNKNOWN_SECTION", "Unknown section for this step")
	ErrUnknownEvent        = shared.NewDomainError("UNKNOWN_EVENT", "Unknown event kind")
	ErrValidationFailed    = shared.NewDomainError("VALIDATION_FAILED", "Step data failed validation")
	ErrNotAtFinalStep      = shared.NewDomainError("NOT_AT_FINAL_STEP", "Submission is only possible from the final step")
	ErrAlreadySubmitted    = shared.NewDomainError("ALREADY_SUBMITTED", "Session has already been submitted")
	ErrInvalidDocumentType = shared.NewDomainError("INVALID_DOCUMENT_TYPE", "Unsupported document type")
	ErrUnsupportedFile     = shared.NewDomainError("UNSUPPORTED_FILE", "Proof must be a PDF, JPEG or PNG file")
	ErrDocumentTooLarge    = shared.NewDomainError("DOCUMENT_TOO_LARGE", "Proof document exceeds the upload limit")
	ErrEmptyDocument       = shared.NewDomainError("EMPTY_DOCUMENT", "Proof document is empty")
	ErrTooManySessions     = shared.NewDomainError("TOO_MANY_SESSIONS", "Session capacity reached")
)
