package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidIndex   ErrCode = "INVALID_INDEX"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound    ErrCode = "NOT_FOUND"
	ErrNoQuestions ErrCode = "NO_QUESTIONS"
	ErrNoSession   ErrCode = "NO_ACTIVE_SESSION"

	// ─── Import ────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"
	ErrEmptyFile       ErrCode = "EMPTY_FILE"
	ErrImportFailed    ErrCode = "IMPORT_FAILED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidIndex:
		return "Invalid index."
	case ErrInvalidPayload:
		return "Invalid request payload."

	case ErrNotFound:
		return "Resource not found."
	case ErrNoQuestions:
		return "No questions imported yet. Upload a spreadsheet first."
	case ErrNoSession:
		return "There is no active session."

	case ErrFileRequired:
		return "A file upload is required."
	case ErrUnsupportedFile:
		return "Unsupported file type. Upload an .xlsx or .csv file."
	case ErrFileTooLarge:
		return "File size exceeds the limit."
	case ErrEmptyFile:
		return "The spreadsheet is empty."
	case ErrImportFailed:
		return "The spreadsheet could not be imported."

	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
