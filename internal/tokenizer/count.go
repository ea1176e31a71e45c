package tokenizer

import (
	"errors"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/temirov/foldertree/internal/utils"
)

var (
	errNilCounter  = errors.New("nil tokenizer counter")
	errNilEncoding = errors.New("nil tiktoken encoding")
)

// tiktokenCounter counts tokens with a BPE encoding.
type tiktokenCounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

func (counter tiktokenCounter) Name() string {
	return counter.name
}

func (counter tiktokenCounter) CountString(input string) (int, error) {
	if counter.encoding == nil {
		return 0, errNilEncoding
	}
	return len(counter.encoding.Encode(input, nil, nil)), nil
}

// CountResult captures the outcome of counting a byte slice.
type CountResult struct {
	Tokens  int
	Counted bool
}

// CountBytes estimates tokens for the provided data using counter. Binary
// data and invalid UTF-8 are reported as not counted.
func CountBytes(counter Counter, data []byte) (CountResult, error) {
	if counter == nil {
		return CountResult{}, errNilCounter
	}
	if utils.IsBinary(data) || !utf8.Valid(data) {
		return CountResult{Counted: false}, nil
	}
	tokens, err := counter.CountString(string(data))
	if err != nil {
		return CountResult{}, err
	}
	return CountResult{Tokens: tokens, Counted: true}, nil
}
