package ingestion_engine

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"code.sajari.com/docconv"
	"go.uber.org/zap"

	"github.com/thundersearch/thundersearch/internal/core"
	"github.com/thundersearch/thundersearch/internal/models"
)

const pdfContentType = "application/pdf"

// DirectoryLoader loads PDF documents from a local directory, extracting text
// and page metadata with docconv. Files that fail extraction are logged and
// skipped; they are not fatal to the run.
type DirectoryLoader struct {
	dir string
	log *zap.SugaredLogger
}

var _ core.DocumentSource = (*DirectoryLoader)(nil)

func NewDirectoryLoader(dir string, log *zap.SugaredLogger) *DirectoryLoader {
	return &DirectoryLoader{dir: dir, log: log}
}

func (l *DirectoryLoader) Load(ctx context.Context) ([]models.RawDocument, error) {
	var docs []models.RawDocument
	err := filepath.WalkDir(l.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return nil
		}
		f, openErr := os.Open(path)
		if openErr != nil {
			l.log.Warnw("could not open document, skipping", "path", path, "error", openErr)
			return nil
		}
		defer f.Close()

		res, convErr := docconv.Convert(f, pdfContentType, false)
		if convErr != nil {
			l.log.Warnw("text extraction failed, skipping", "path", path, "error", convErr)
			return nil
		}
		docs = append(docs, models.RawDocument{
			PageContent: res.Body,
			Source:      path,
			Filename:    filepath.Base(path),
			TotalPages:  pageCount(res.Meta),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", l.dir, err)
	}
	return docs, nil
}

// S3Loader loads PDF documents from an object storage bucket prefix. Same
// extraction and skip policy as the directory loader.
type S3Loader struct {
	obj    core.ObjectClient
	bucket string
	prefix string
	log    *zap.SugaredLogger
}

var _ core.DocumentSource = (*S3Loader)(nil)

func NewS3Loader(obj core.ObjectClient, bucket, prefix string, log *zap.SugaredLogger) *S3Loader {
	return &S3Loader{obj: obj, bucket: bucket, prefix: prefix, log: log}
}

func (l *S3Loader) Load(ctx context.Context) ([]models.RawDocument, error) {
	keys, err := l.obj.ListFiles(ctx, l.bucket, l.prefix)
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}

	var docs []models.RawDocument
	for _, key := range keys {
		if !strings.EqualFold(filepath.Ext(key), ".pdf") {
			continue
		}
		data, err := l.obj.GetFile(ctx, l.bucket, key)
		if err != nil {
			l.log.Warnw("could not fetch object, skipping", "bucket", l.bucket, "key", key, "error", err)
			continue
		}
		res, err := docconv.Convert(bytes.NewReader(data), pdfContentType, false)
		if err != nil {
			l.log.Warnw("text extraction failed, skipping", "key", key, "error", err)
			continue
		}
		docs = append(docs, models.RawDocument{
			PageContent: res.Body,
			Source:      key,
			Filename:    filepath.Base(key),
			TotalPages:  pageCount(res.Meta),
		})
	}
	return docs, nil
}

// pageCount pulls the page count out of the extractor's metadata, when the
// underlying tool reports one.
func pageCount(meta map[string]string) int {
	if meta == nil {
		return 0
	}
	if v, ok := meta["Pages"]; ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return 0
}
