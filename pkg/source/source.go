package source

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/matzehuels/depviz/pkg/cache"
	errs "github.com/matzehuels/depviz/pkg/errors"
	"github.com/matzehuels/depviz/pkg/httputil"
	"github.com/matzehuels/depviz/pkg/index"
)

// Modes accepted by [New].
const (
	ModeRemote = "remote"
	ModeTest   = "test"
)

// DefaultTTL is how long downloaded indexes stay cached.
const DefaultTTL = 6 * time.Hour

// Source yields index text together with the format it is written in.
type Source interface {
	Fetch(ctx context.Context) (string, index.Format, error)
}

// Options configures remote acquisition. File sources ignore it.
type Options struct {
	Cache   cache.Cache // nil disables caching
	TTL     time.Duration
	Refresh bool // bypass cached archives
	Client  []httputil.Option
}

// New returns the [Source] for mode. repo is a URL for "remote" and a file
// path for "test".
func New(mode, repo string, opts Options) (Source, error) {
	if err := errs.ValidateMode(mode); err != nil {
		return nil, err
	}
	if strings.TrimSpace(repo) == "" {
		return nil, errs.New(errs.ErrCodeInvalidArgument, "repository must not be empty")
	}
	if mode == ModeTest {
		return &File{Path: repo}, nil
	}
	return NewRemote(repo, opts)
}

// File reads a local test repository.
type File struct {
	Path string
}

// Fetch implements [Source].
func (f *File) Fetch(ctx context.Context) (string, index.Format, error) {
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return "", "", errs.Wrap(errs.ErrCodeFileNotFound, err, "test repository %s not found", f.Path)
	}
	if err != nil {
		return "", "", errs.Wrap(errs.ErrCodeInternal, err, "read %s", f.Path)
	}
	return string(data), index.FormatSimple, nil
}
