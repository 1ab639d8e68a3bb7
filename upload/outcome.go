package upload

// FailureMessage is reported when every backend in the chain came up empty.
const FailureMessage = "❌ All upload services failed. Please try again or use Google Drive/Dropbox."

// Outcome is the normalized result of running the fallback chain. On success
// URL and Service are set; on failure both are nil and Message is
// FailureMessage.
type Outcome struct {
	Success bool    `json:"success"`
	URL     *string `json:"url"`
	Service *string `json:"service"`
	Message string  `json:"message"`
}

// Succeeded builds the outcome for a backend that returned url.
func Succeeded(service, url, message string) Outcome {
	return Outcome{
		Success: true,
		URL:     &url,
		Service: &service,
		Message: message,
	}
}

// Failed builds the aggregate failure outcome.
func Failed() Outcome {
	return Outcome{Message: FailureMessage}
}
