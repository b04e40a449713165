package domain

// ValueObject is an immutable domain concept defined entirely by its attributes.
type ValueObject interface {
	Equals(other ValueObject) bool
}

// StaffID identifies a studio staff member across bounded contexts.
type StaffID struct {
	value string
}

// NewStaffID creates a StaffID from a string.
func NewStaffID(value string) StaffID {
	return StaffID{value: value}
}

// String returns the string representation of the StaffID.
func (s StaffID) String() string {
	return s.value
}

// Equals checks if two StaffIDs are equal.
func (s StaffID) Equals(other ValueObject) bool {
	if o, ok := other.(StaffID); ok {
		return s.value == o.value
	}
	return false
}

// IsEmpty returns true if the StaffID is empty.
func (s StaffID) IsEmpty() bool {
	return s.value == ""
}
