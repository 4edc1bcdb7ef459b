// Package sequence provides DNA/RNA sequence types with validation.
//
// Sequences are validated once at construction time against the IUPAC
// nucleotide alphabet of their declared type and are treated as immutable
// afterwards, so they can be shared freely between scanning goroutines.
package sequence

import (
	"fmt"
	"strings"
)

// SequenceType represents the type of nucleic-acid sequence.
type SequenceType int

const (
	// DNA represents a DNA sequence (A, C, G, T + ambiguity codes)
	DNA SequenceType = iota
	// RNA represents an RNA sequence (A, C, G, U + ambiguity codes)
	RNA
	// Unknown represents an unknown sequence type
	Unknown
)

func (t SequenceType) String() string {
	switch t {
	case DNA:
		return "DNA"
	case RNA:
		return "RNA"
	default:
		return "Unknown"
	}
}

// ParseType maps the single-letter type codes accepted on the command line
// ("d" for DNA, "r" for RNA) to a SequenceType.
func ParseType(code string) (SequenceType, error) {
	switch strings.ToLower(code) {
	case "d", "dna":
		return DNA, nil
	case "r", "rna":
		return RNA, nil
	default:
		return Unknown, &UnknownTypeError{Code: code}
	}
}

// Sequence represents a validated nucleic-acid sequence.
type Sequence struct {
	Bases       string
	ID          string
	Description string
	SeqType     SequenceType
}

// New creates a new sequence of the given type with validation.
func New(bases string, seqType SequenceType) (*Sequence, error) {
	return WithMetadata(bases, "", "", seqType)
}

// WithMetadata creates a new sequence with full metadata.
func WithMetadata(bases, id, description string, seqType SequenceType) (*Sequence, error) {
	normalized := strings.ToUpper(bases)

	if len(normalized) == 0 {
		return nil, &EmptySequenceError{}
	}

	if err := Validate(normalized, seqType); err != nil {
		return nil, err
	}

	return &Sequence{
		Bases:       normalized,
		ID:          id,
		Description: description,
		SeqType:     seqType,
	}, nil
}

// Len returns the length of the sequence.
func (s *Sequence) Len() int {
	return len(s.Bases)
}

// IsValid checks if all bases are valid for the sequence type.
func (s *Sequence) IsValid() bool {
	return Validate(s.Bases, s.SeqType) == nil
}

// Window returns the bases of the half-open interval [start, end).
// The result shares memory with the receiver; no copy is made.
func (s *Sequence) Window(start, end int) (string, error) {
	if start < 0 {
		return "", fmt.Errorf("start index must be non-negative")
	}
	if end <= start {
		return "", fmt.Errorf("end must be greater than start")
	}
	if end > len(s.Bases) {
		return "", fmt.Errorf("end must not exceed sequence length")
	}
	return s.Bases[start:end], nil
}

// CountAmbiguous counts the bases that are not one of the four canonical
// nucleotides of the sequence type.
func (s *Sequence) CountAmbiguous() int {
	count := 0
	for i := 0; i < len(s.Bases); i++ {
		switch s.Bases[i] {
		case 'A', 'C', 'G', 'T', 'U':
		default:
			count++
		}
	}
	return count
}

// String returns a string representation of the sequence.
func (s *Sequence) String() string {
	if s.ID != "" {
		return fmt.Sprintf(">%s\n%s", s.ID, s.Bases)
	}
	return s.Bases
}

// Equal checks equality with another sequence.
func (s *Sequence) Equal(other *Sequence) bool {
	if other == nil {
		return false
	}
	return s.Bases == other.Bases && s.SeqType == other.SeqType
}
