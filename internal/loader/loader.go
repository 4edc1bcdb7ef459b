// Package loader reads recombinant and parent sequences from FASTA files.
package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"

	"github.com/Desperadko/rat-prototype/internal/sequence"
)

// Extensions lists the accepted FASTA file extensions, lower case.
var Extensions = []string{".fasta", ".fas", ".fa", ".fna", ".ffn", ".faa", ".mpfa", ".frn"}

// FileNotFoundError is returned when the path does not name a readable file.
type FileNotFoundError struct {
	Path string
	Err  error
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("no file found at filepath: %s", e.Path)
}

func (e *FileNotFoundError) Unwrap() error {
	return e.Err
}

// UnsupportedFormatError is returned when a file is not FASTA.
type UnsupportedFormatError struct {
	Path   string
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("file format should be in FASTA: %s (%s)", e.Path, e.Reason)
}

// SequenceTypeMismatchError is returned when the first record holds symbols
// outside the alphabet of the expected type.
type SequenceTypeMismatchError struct {
	Path     string
	Expected sequence.SequenceType
	Err      error
}

func (e *SequenceTypeMismatchError) Error() string {
	return fmt.Sprintf("wrong type of sequence provided with file: %s, expected type is %s: %v",
		e.Path, e.Expected, e.Err)
}

func (e *SequenceTypeMismatchError) Unwrap() error {
	return e.Err
}

// HasFastaExtension reports whether path ends in one of Extensions,
// ignoring case.
func HasFastaExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Load returns the first record of the FASTA file at path as a sequence of
// type t. Further records are ignored.
func Load(path string, t sequence.SequenceType) (*sequence.Sequence, error) {
	if !HasFastaExtension(path) {
		return nil, &UnsupportedFormatError{Path: path, Reason: "unrecognised extension"}
	}

	fh, err := os.Open(path)
	if err != nil {
		return nil, &FileNotFoundError{Path: path, Err: err}
	}
	defer fh.Close()

	seq, err := Read(fh, t)
	if err != nil {
		var invalid *sequence.InvalidBaseError
		switch {
		case errors.As(err, &invalid):
			return nil, &SequenceTypeMismatchError{Path: path, Expected: t, Err: err}
		case errors.Is(err, errNotFasta):
			return nil, &UnsupportedFormatError{Path: path, Reason: "first line must start with '>'"}
		case errors.Is(err, errNoRecords):
			return nil, &UnsupportedFormatError{Path: path, Reason: "no sequence records"}
		default:
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}
	return seq, nil
}

var (
	errNotFasta  = errors.New("input does not start with a FASTA header")
	errNoRecords = errors.New("no FASTA records")
)

// Read parses the first FASTA record from r as a sequence of type t.
func Read(r io.Reader, t sequence.SequenceType) (*sequence.Sequence, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(1)
	if err != nil || head[0] != '>' {
		if err != nil && err != io.EOF {
			return nil, err
		}
		return nil, errNotFasta
	}

	fr := fasta.NewReader(br, linear.NewSeq("", nil, templateAlphabet(t)))
	s, err := fr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errNoRecords
		}
		return nil, err
	}

	rec, ok := s.(*linear.Seq)
	if !ok {
		return nil, fmt.Errorf("unexpected FASTA record type %T", s)
	}
	if len(rec.Seq) == 0 {
		return nil, errNoRecords
	}

	bases := make([]byte, len(rec.Seq))
	for i, l := range rec.Seq {
		bases[i] = byte(l)
	}
	return sequence.WithMetadata(string(bases), rec.ID, rec.Desc, t)
}

func templateAlphabet(t sequence.SequenceType) alphabet.Alphabet {
	if t == sequence.RNA {
		return alphabet.RNAredundant
	}
	return alphabet.DNAredundant
}
