package query

// MsgMissingDateBound is shown when a filter is applied with a blank bound.
const MsgMissingDateBound = "Please fill in both start and end dates to use the filter."

// ValidationError is a client-side rejection of user input. It never
// results in a request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
