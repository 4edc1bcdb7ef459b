package sequence

import "fmt"

// SequenceError is the base error type for sequence operations.
type SequenceError interface {
	error
	IsSequenceError()
}

// EmptySequenceError is returned when a sequence is empty.
type EmptySequenceError struct{}

func (e *EmptySequenceError) Error() string {
	return "sequence must have at least one base"
}

func (e *EmptySequenceError) IsSequenceError() {}

// InvalidBaseError is returned when a symbol outside the alphabet of the
// declared sequence type is encountered.
type InvalidBaseError struct {
	Position int
	Found    rune
	SeqType  SequenceType
}

func (e *InvalidBaseError) Error() string {
	return fmt.Sprintf("invalid %s base '%c' at position %d", e.SeqType, e.Found, e.Position)
}

func (e *InvalidBaseError) IsSequenceError() {}

// UnknownTypeError is returned for an unrecognised sequence type code.
type UnknownTypeError struct {
	Code string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown sequence type %q (accepted: d - DNA | r - RNA)", e.Code)
}

func (e *UnknownTypeError) IsSequenceError() {}

// IUPAC ambiguity codes shared by both alphabets.
const ambiguityCodes = "RYKMSWBDHVN"

var (
	dnaAlphabet = newAlphabet("ACGT" + ambiguityCodes)
	rnaAlphabet = newAlphabet("ACGU" + ambiguityCodes)
)

func newAlphabet(symbols string) (a [256]bool) {
	for i := 0; i < len(symbols); i++ {
		a[symbols[i]] = true
	}
	return a
}

func alphabetFor(seqType SequenceType) *[256]bool {
	if seqType == RNA {
		return &rnaAlphabet
	}
	return &dnaAlphabet
}

// Validate checks that bases only contains upper-case symbols of the
// alphabet of seqType. Unknown is validated as DNA.
func Validate(bases string, seqType SequenceType) error {
	alpha := alphabetFor(seqType)
	for i := 0; i < len(bases); i++ {
		if !alpha[bases[i]] {
			return &InvalidBaseError{Position: i, Found: rune(bases[i]), SeqType: seqType}
		}
	}
	return nil
}

// IsValidBase checks if a byte is a valid symbol for the sequence type.
func IsValidBase(c byte, seqType SequenceType) bool {
	return alphabetFor(seqType)[c]
}
