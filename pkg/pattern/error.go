package pattern

// Error is a non-fatal problem worth showing next to the results, such as an
// archive that could not be opened.
type Error struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

func (e *Error) Type() PatternType { return PatternTypeError }
