package sequence

import "errors"

var (
	// ErrNoScenesAvailable is returned by AddItem when the scene catalog is
	// empty. The UI renders this as a disabled state, not an error dialog.
	ErrNoScenesAvailable = errors.New("no scenes available to add")

	// ErrMalformedImport is returned when an imported payload cannot be
	// parsed or is missing required fields. The import aborts atomically.
	ErrMalformedImport = errors.New("malformed sequence import")

	// ErrSequenceNotFound is returned when no record exists for the id.
	ErrSequenceNotFound = errors.New("sequence not found")

	// ErrItemNotFound is returned when a patch or delete targets an item id
	// that is not in the sequence.
	ErrItemNotFound = errors.New("sequence item not found")

	// ErrBadIndex is returned for reorder indices outside the item list.
	ErrBadIndex = errors.New("reorder index out of range")
)
