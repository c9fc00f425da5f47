package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mkovacevic/portfolioapi/internal/telemetry/tracing"
	"github.com/mkovacevic/portfolioapi/pkg"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	ErrFileNotFound    = errors.New("file not found")
	ErrUnknownKind     = errors.New("unknown upload kind")
	ErrInvalidFilename = errors.New("invalid filename")
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// Kind is an upload destination with its own size and count limits.
type Kind struct {
	Name     string
	MaxSize  int64
	MaxFiles int
}

var kinds = map[string]Kind{
	"images":   {Name: "images", MaxSize: 5 << 20, MaxFiles: 10},
	"projects": {Name: "projects", MaxSize: 10 << 20, MaxFiles: 5},
	"blog":     {Name: "blog", MaxSize: 10 << 20, MaxFiles: 5},
}

func KindByName(name string) (Kind, bool) {
	k, ok := kinds[name]
	return k, ok
}

type TypeNotAllowedError struct {
	ContentType string
}

func (e *TypeNotAllowedError) Error() string {
	return fmt.Sprintf(
		"File type %s not allowed. Allowed types: %s",
		e.ContentType, strings.Join(allowedImageTypes, ", "),
	)
}

type FileTooLargeError struct {
	Size    int64
	MaxSize int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("File size %d exceeds maximum allowed size of %d bytes", e.Size, e.MaxSize)
}

// UploadedFile is what the client gets back for each stored file.
type UploadedFile struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalname"`
	MimeType     string `json:"mimetype"`
	Size         int64  `json:"size"`
	URL          string `json:"url"`
}

// DiskStore keeps uploaded files under <rootPath>/<kind>/.
type DiskStore struct {
	rootPath string
	mutex    sync.RWMutex
}

func NewDiskStore(rootPath string) (*DiskStore, error) {
	if rootPath == "" {
		return nil, errors.New("root path cannot be empty")
	}
	for kindName := range kinds {
		kindDir := filepath.Join(rootPath, kindName)
		exists, err := pkg.PathExists(kindDir, true)
		if err != nil {
			return nil, fmt.Errorf("check uploads dir for %s: %w", kindName, err)
		}
		if exists {
			continue
		}
		if err := os.MkdirAll(kindDir, 0o755); err != nil {
			return nil, fmt.Errorf("create uploads dir for %s: %w", kindName, err)
		}
	}
	return &DiskStore{
		rootPath: rootPath,
	}, nil
}

func (ds *DiskStore) RootPath() string {
	return ds.rootPath
}

// Save stores the file under the kind's directory with a unique name.
// The incoming size is checked against the kind's limit up front, and
// again while copying, so a lying Content-Length cannot get around it.
func (ds *DiskStore) Save(
	ctx context.Context,
	kind Kind,
	originalName string,
	contentType string,
	size int64,
	src io.Reader,
) (_ *UploadedFile, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "diskStore.save")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if !typeAllowed(contentType) {
		return nil, &TypeNotAllowedError{ContentType: contentType}
	}
	if size > kind.MaxSize {
		return nil, &FileTooLargeError{Size: size, MaxSize: kind.MaxSize}
	}

	extension := path.Ext(originalName)
	basename := strings.TrimSuffix(path.Base(originalName), extension)
	if basename == "" || basename == "." {
		basename = "file"
	}
	storedName := fmt.Sprintf("%s-%s%s", basename, uuid.NewString(), extension)

	ds.mutex.Lock()
	defer ds.mutex.Unlock()

	filePath := filepath.Join(ds.rootPath, kind.Name, storedName)
	dst, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	defer func() {
		if closeErr := dst.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	written, err := io.Copy(dst, io.LimitReader(src, kind.MaxSize+1))
	if err != nil {
		_ = os.Remove(filePath)
		return nil, fmt.Errorf("write file: %w", err)
	}
	if written > kind.MaxSize {
		_ = os.Remove(filePath)
		err = &FileTooLargeError{Size: written, MaxSize: kind.MaxSize}
		return nil, err
	}

	log.Tracef("disk store: saved [%s] as [%s/%s]", originalName, kind.Name, storedName)

	return &UploadedFile{
		Filename:     storedName,
		OriginalName: originalName,
		MimeType:     contentType,
		Size:         written,
		URL:          fmt.Sprintf("/uploads/%s/%s", kind.Name, storedName),
	}, nil
}

// Delete removes a stored file by name, looking through all kind
// directories. Names with path separators are rejected.
func (ds *DiskStore) Delete(ctx context.Context, filename string) (err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "diskStore.delete")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if filename == "" || filename != filepath.Base(filename) {
		return ErrInvalidFilename
	}

	ds.mutex.Lock()
	defer ds.mutex.Unlock()

	for kindName := range kinds {
		filePath := filepath.Join(ds.rootPath, kindName, filename)
		if _, statErr := os.Stat(filePath); statErr != nil {
			continue
		}
		if err := os.Remove(filePath); err != nil {
			return fmt.Errorf("remove file: %w", err)
		}
		log.Tracef("disk store: removed [%s/%s]", kindName, filename)
		return nil
	}
	return ErrFileNotFound
}

func typeAllowed(contentType string) bool {
	for _, t := range allowedImageTypes {
		if t == contentType {
			return true
		}
	}
	return false
}
