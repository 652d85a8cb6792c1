// Package documents loads supported files into chunked, metadata-tagged
// passages ready for embedding.
package documents

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/docuchat/cli/internal/chunker"
	"github.com/docuchat/cli/internal/logger"
)

// ErrUnsupportedType is returned when a single file of an unsupported
// format is requested explicitly. During directory scans unsupported
// files are skipped silently instead.
var ErrUnsupportedType = errors.New("unsupported file type")

// Metadata keys attached to every chunk.
const (
	MetaSourceFile = "source_file"
	MetaFileType   = "file_type"
	MetaFileName   = "file_name"
	MetaChunkIndex = "chunk_index"
)

// Document is a unit of ingested content before chunking.
type Document struct {
	Source   string
	FileType string
	FileName string
	Text     string
}

// Chunk is a bounded passage of a document carrying provenance metadata.
type Chunk struct {
	Content  string
	Index    int
	Metadata map[string]string
}

// Loader reads supported file formats and splits them into chunks.
type Loader struct {
	readers  map[string]Reader
	splitter *chunker.Splitter
}

// NewLoader creates a loader with the default format readers. The
// extension dispatch table is resolved once here, not per file.
func NewLoader(splitter *chunker.Splitter) *Loader {
	return &Loader{
		splitter: splitter,
		readers: map[string]Reader{
			".txt":  TextReader{},
			".md":   TextReader{},
			".pdf":  PDFReader{},
			".docx": WordReader{},
			".doc":  WordReader{},
		},
	}
}

// Register installs or replaces the reader for an extension. Used by
// callers that need a custom format and by tests.
func (l *Loader) Register(ext string, r Reader) {
	l.readers[strings.ToLower(ext)] = r
}

// LoadFile loads and chunks a single file. Unsupported extensions are a
// typed error here because the caller asked for this file specifically.
func (l *Loader) LoadFile(path string) ([]Chunk, error) {
	ext := strings.ToLower(filepath.Ext(path))
	reader, ok := l.readers[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}

	text, err := reader.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	doc := Document{
		Source:   path,
		FileType: ext,
		FileName: filepath.Base(path),
		Text:     text,
	}
	return l.chunkDocument(doc), nil
}

// LoadDirectory recursively loads every supported file under dir. A
// missing directory is a warning, not an error, and a failure on one file
// never aborts the rest of the batch.
func (l *Loader) LoadDirectory(dir string) ([]Chunk, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		logger.Warn("documents directory %s does not exist", dir)
		return nil, nil
	}

	var chunks []Chunk
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("error walking %s: %v", path, err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if _, ok := l.readers[ext]; !ok {
			return nil
		}

		fileChunks, err := l.LoadFile(path)
		if err != nil {
			logger.Warn("error loading %s: %v", path, err)
			return nil
		}
		logger.Info("loaded %d chunks from %s", len(fileChunks), path)
		chunks = append(chunks, fileChunks...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	logger.Info("total chunks loaded: %d", len(chunks))
	return chunks, nil
}

// chunkDocument splits a document and stamps each chunk with provenance.
func (l *Loader) chunkDocument(doc Document) []Chunk {
	parts := l.splitter.Split(doc.Text)
	chunks := make([]Chunk, 0, len(parts))
	for i, part := range parts {
		chunks = append(chunks, Chunk{
			Content: part,
			Index:   i,
			Metadata: map[string]string{
				MetaSourceFile: doc.Source,
				MetaFileType:   doc.FileType,
				MetaFileName:   doc.FileName,
				MetaChunkIndex: strconv.Itoa(i),
			},
		})
	}
	return chunks
}
