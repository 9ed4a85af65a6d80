package source

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"

	errs "github.com/matzehuels/depviz/pkg/errors"
	"github.com/matzehuels/depviz/pkg/httputil"
	"github.com/matzehuels/depviz/pkg/index"
)

// IndexMember is the archive entry holding the package index.
const IndexMember = "APKINDEX"

const archiveName = "APKINDEX.tar.gz"

// Remote downloads an APK repository index.
type Remote struct {
	URL     string
	client  *httputil.Client
	refresh bool
}

// NewRemote validates repo and prepares a downloader for it. A repository
// base URL (".../main/x86_64") is completed with APKINDEX.tar.gz; a URL that
// already names a .tar.gz file is used as is.
func NewRemote(repo string, opts Options) (*Remote, error) {
	if err := errs.ValidateURL(repo); err != nil {
		return nil, err
	}
	ttl := opts.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Remote{
		URL:     IndexURL(repo),
		client:  httputil.NewClient(opts.Cache, "apkindex", ttl, opts.Client...),
		refresh: opts.Refresh,
	}, nil
}

// IndexURL returns the archive URL for a repository URL.
func IndexURL(repo string) string {
	u, err := url.Parse(repo)
	if err != nil || strings.HasSuffix(u.Path, ".tar.gz") {
		return repo
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + archiveName
	return u.String()
}

// Fetch implements [Source].
func (r *Remote) Fetch(ctx context.Context) (string, index.Format, error) {
	data, err := r.client.Fetch(ctx, r.URL, r.refresh)
	if err != nil {
		switch {
		case errs.IsNotFound(err):
			// NOT_FOUND is reserved for packages missing from the index.
			err = errs.Wrap(errs.ErrCodeNetwork, err, "repository index not found at %s", r.URL)
		case errs.GetCode(err) == "":
			err = errs.Wrap(errs.ErrCodeNetwork, err, "download %s", r.URL)
		}
		return "", "", err
	}
	text, err := Extract(data)
	if err != nil {
		return "", "", err
	}
	return text, index.FormatStructured, nil
}

// Extract returns the APKINDEX text contained in data.
//
// data may be a gzip-compressed tar archive (the repository layout), an
// uncompressed tar archive, or the plain index text.
func Extract(data []byte) (string, error) {
	if isGzip(data) {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return "", errs.Wrap(errs.ErrCodeArchive, err, "open gzip stream")
		}
		// APK archives concatenate a signature stream and the index stream.
		zr.Multistream(true)
		out, err := io.ReadAll(zr)
		if err != nil {
			return "", errs.Wrap(errs.ErrCodeArchive, err, "decompress archive")
		}
		data = out
	}
	if !isTar(data) {
		return string(data), nil
	}
	return extractMember(data, IndexMember)
}

func extractMember(data []byte, name string) (string, error) {
	tr := tar.NewReader(bytes.NewReader(data))
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return "", errs.New(errs.ErrCodeArchive, "%s not found inside archive", name)
		}
		if err != nil {
			return "", errs.Wrap(errs.ErrCodeArchive, err, "read archive")
		}
		if path.Clean(hdr.Name) != name || hdr.Typeflag != tar.TypeReg {
			continue
		}
		out, err := io.ReadAll(tr)
		if err != nil {
			return "", errs.Wrap(errs.ErrCodeArchive, err, "read %s", name)
		}
		return string(out), nil
	}
}

func isGzip(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}

// isTar checks for the ustar magic at offset 257 of the first header.
func isTar(data []byte) bool {
	return len(data) >= 262 && string(data[257:262]) == "ustar"
}
