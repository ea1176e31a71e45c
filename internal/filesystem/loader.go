package filesystem

import (
	"context"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/go-git/go-billy/v5"

	"github.com/temirov/foldertree/internal/folder"
	"github.com/temirov/foldertree/internal/tokenizer"
	"github.com/temirov/foldertree/internal/utils"
)

const (
	errorStatDocumentFormat  = "stat %s: %w"
	errorOpenDocumentFormat  = "open %s: %w"
	errorReadDocumentFormat  = "read %s: %w"
	errorCountTokensFormat   = "count tokens for %s: %w"
	errorCloseDocumentFormat = "close %s: %w"
)

// LoaderOptions selects which parts of a document's content are materialized.
type LoaderOptions struct {
	// IncludeContent keeps the bytes of text documents on the Document.
	IncludeContent bool
	// TokenCounter, when set, counts tokens of text documents.
	TokenCounter tokenizer.Counter
}

// Loader builds documents from files: metadata, sniffed MIME type, binary
// detection, and optionally content and token counts.
type Loader struct {
	filesystem billy.Filesystem
	options    LoaderOptions
}

// NewLoader returns a Loader reading from filesystem.
func NewLoader(filesystem billy.Filesystem, options LoaderOptions) *Loader {
	return &Loader{filesystem: filesystem, options: options}
}

// Load returns the finished document for documentPath. Files that are not
// regular files (links, devices, sockets) only carry their metadata.
func (loader *Loader) Load(ctx context.Context, documentPath string) (*folder.Document, error) {
	if contextError := ctx.Err(); contextError != nil {
		return nil, contextError
	}
	fileInfo, statError := loader.filesystem.Lstat(documentPath)
	if statError != nil {
		return nil, fmt.Errorf(errorStatDocumentFormat, documentPath, statError)
	}

	document := folder.NewDocument(documentPath)
	document.Name = fileInfo.Name()
	document.Bytes = fileInfo.Size()
	document.ModTime = fileInfo.ModTime()
	if !fileInfo.Mode().IsRegular() {
		return document, nil
	}

	// a few bytes past the sniff window keep a rune split at its edge decodable
	readLimit := int64(utils.SniffLength + utf8.UTFMax)
	if loader.options.IncludeContent || loader.options.TokenCounter != nil {
		readLimit = -1
	}
	data, readError := loader.read(documentPath, readLimit)
	if readError != nil {
		return nil, readError
	}

	document.MimeType = utils.DetectMimeType(data)
	document.Binary = utils.IsBinary(data)
	if document.Binary {
		return document, nil
	}
	if loader.options.TokenCounter != nil {
		countResult, countError := tokenizer.CountBytes(loader.options.TokenCounter, data)
		if countError != nil {
			return nil, fmt.Errorf(errorCountTokensFormat, documentPath, countError)
		}
		document.Tokens = countResult.Tokens
	}
	if loader.options.IncludeContent {
		document.Content = data
	}
	return document, nil
}

// read returns the whole file when limit is negative, otherwise at most limit bytes.
func (loader *Loader) read(documentPath string, limit int64) (data []byte, err error) {
	file, openError := loader.filesystem.Open(documentPath)
	if openError != nil {
		return nil, fmt.Errorf(errorOpenDocumentFormat, documentPath, openError)
	}
	defer func() {
		if closeError := file.Close(); closeError != nil && err == nil {
			err = fmt.Errorf(errorCloseDocumentFormat, documentPath, closeError)
		}
	}()

	var reader io.Reader = file
	if limit >= 0 {
		reader = io.LimitReader(file, limit)
	}
	data, readError := io.ReadAll(reader)
	if readError != nil {
		return nil, fmt.Errorf(errorReadDocumentFormat, documentPath, readError)
	}
	return data, nil
}
