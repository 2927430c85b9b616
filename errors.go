package spin

import "errors"

// Root package errors.
var (
	// ErrClipboardHelperMissing is returned when neither wl-copy nor
	// xclip is installed. Callers log it and continue.
	ErrClipboardHelperMissing = errors.New("spin: no clipboard helper found (install wl-copy or xclip)")

	// ErrNoImage is returned when neither an image path nor piped
	// stdin data is provided.
	ErrNoImage = errors.New("spin: no image provided")
)
