package profile

// Expansion is the open publication row: a single nullable slot. Opening a
// row closes any other.
type Expansion struct {
	key string
}

// Expanded returns an Expansion with key open.
func Expanded(key string) Expansion {
	return Expansion{key: key}
}

// Toggle opens key, or closes it when it is already open.
func (e Expansion) Toggle(key string) Expansion {
	if e.key == key {
		return Expansion{}
	}
	return Expansion{key: key}
}

// IsOpen reports whether key is the open row.
func (e Expansion) IsOpen(key string) bool {
	return e.key != "" && e.key == key
}

// Key returns the open row, or "" when every row is collapsed.
func (e Expansion) Key() string {
	return e.key
}
