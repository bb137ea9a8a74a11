package usecase

import crerr "github.com/cockroachdb/errors"

var (
	ErrInvalidInput          = crerr.New("invalid input")
	ErrDependencyUnavailable = crerr.New("dependency unavailable")
	// ErrDocumentParse marks a document whose markup could not be read.
	ErrDocumentParse = crerr.New("document parse failed")
	// ErrStructuralAbsence marks a well-formed document missing the event or
	// status node.
	ErrStructuralAbsence = crerr.New("required document structure missing")
	ErrNothingToPersist  = crerr.New("nothing to persist")
)
