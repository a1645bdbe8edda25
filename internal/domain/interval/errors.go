package interval

import "errors"

// ErrInvalidConfidenceLevel rejects levels outside (0,1).
var ErrInvalidConfidenceLevel = errors.New("confidence level must be between 0 and 1 exclusive")
