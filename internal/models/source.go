package models

// SourceResult is the outcome of querying one search connector.
// A connector never raises: when the remote call failed Err is set and Documents is empty.
type SourceResult struct {
	Source    string
	Documents []Document
	Err       error
	Cached    bool
}

// Available reports whether the connector produced a usable (possibly empty) result
func (r SourceResult) Available() bool {
	return r.Err == nil
}

// Unavailable builds a failed result for the named connector
func Unavailable(source string, err error) SourceResult {
	return SourceResult{Source: source, Err: err}
}

// FetchResult is the outcome of retrieving and extracting one page
type FetchResult struct {
	URL    string
	Text   string
	Err    error
	Cached bool
}

// Available reports whether the page produced non-empty text
func (r FetchResult) Available() bool {
	return r.Err == nil && r.Text != ""
}
