package domain

// Selection is a selected option index, or no selection at all.
type Selection struct {
	index int
	valid bool
}

// NoAnswer is the selection recorded when time forces advancement.
func NoAnswer() Selection {
	return Selection{index: NoSelection}
}

// NewSelection validates a raw option index from the client. A nil index
// means the player submitted without choosing.
func NewSelection(raw *int) (Selection, error) {
	if raw == nil {
		return NoAnswer(), nil
	}
	if *raw < 0 || *raw >= OptionCount {
		return Selection{}, ErrInvalidOption
	}
	return Selection{index: *raw, valid: true}, nil
}

// Value returns the option index, or NoSelection.
func (s Selection) Value() int {
	if !s.valid {
		return NoSelection
	}
	return s.index
}

// Selected reports whether an option was chosen.
func (s Selection) Selected() bool {
	return s.valid
}
