package model

import "fmt"

// Mode classifies an Edit.
type Mode int

const (
	Equal Mode = iota
	Add
	Delete
	Modify
)

// Tag returns the single character shown between the two columns.
func (m Mode) Tag() byte {
	switch m {
	case Add:
		return 'A'
	case Delete:
		return 'D'
	case Modify:
		return 'M'
	default:
		return ' '
	}
}

func (m Mode) String() string {
	switch m {
	case Add:
		return "add"
	case Delete:
		return "delete"
	case Modify:
		return "modify"
	default:
		return "equal"
	}
}

// Range is a 1-based inclusive span of line numbers.
type Range struct {
	Start int
	End   int
}

// Len returns the number of lines the range covers.
func (r Range) Len() int {
	return r.End - r.Start + 1
}

func (r Range) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", r.Start)
	}
	return fmt.Sprintf("%d,%d", r.Start, r.End)
}

// Edit is one hunk of change. Source is nil for additions and Target is nil
// for deletions.
type Edit struct {
	Mode        Mode
	Source      *Range
	Target      *Range
	SourceLines []string
	TargetLines []string
}
