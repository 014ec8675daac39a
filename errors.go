package anchorage

import (
	"errors"
)

// Configuration / structural errors. These are fatal: the job aborts
// before any data is read or any partial output is committed.
var ErrCellSizeAssertion = errors.New("coarse cell size assertion failed")
var ErrInvalidDateRange = errors.New("start-date is after end-date")
var ErrMissingInputTable = errors.New("input table not specified")
var ErrMissingOutputTable = errors.New("output table not specified")
var ErrMissingAnchorageTable = errors.New("anchorage table not specified")

// ErrMissingPriorState is not fatal: it is logged as a warning and the
// pipeline proceeds with an empty carry-over state (spec §7).
var ErrMissingPriorState = errors.New("no prior visit-state partition found")
