// Package asset loads mesh/shape files from either the local filesystem or
// an http(s) URL, so the CLI can compile an OBJ source and load a compiled
// .mesh shape from wherever the caller points it, without the two source
// types needing separate code paths.
package asset

import (
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// MeshFile wraps a streamable local file or remote mesh/shape resource. It
// satisfies io.ReadCloser directly so callers can hand it straight to
// meshio.ReadOBJ or mesh.Restore.
type MeshFile struct {
	io.ReadCloser
	url *url.URL
}

// Path returns the path this file was opened from (a local path or a full
// URL for a remote file).
func (r *MeshFile) Path() string {
	return r.url.String()
}

// RemotePath returns the base filename of a remote file's URL path. For a
// local file it returns the same value as Path().
func (r *MeshFile) RemotePath() string {
	if r.IsRemote() {
		return filepath.Base(r.url.Path)
	}
	return r.Path()
}

// IsRemote reports whether the file is streamed over http/https rather than
// read from the local filesystem.
func (r *MeshFile) IsRemote() bool {
	return r.url.Scheme != ""
}

// Open opens a mesh/shape file for reading. If relTo is non-nil and path
// does not carry its own scheme, path is resolved relative to relTo's
// directory (so an OBJ's usemtl-adjacent .mtl file, or a compiled .mesh
// sitting next to the .obj it was built from, can be located without the
// caller reconstructing the path itself).
//
// http/https URLs are fetched via net/http. The caller must Close the
// returned MeshFile to release the underlying file handle or response body.
func Open(path string, relTo *MeshFile) (*MeshFile, error) {
	// Windows-style paths shouldn't confuse url.Parse.
	u, err := url.Parse(strings.Replace(path, `\`, `/`, -1))
	if err != nil {
		return nil, err
	}

	if u.Scheme == "" && relTo != nil {
		relPath := u.Path
		u, _ = u.Parse(relTo.url.String())
		prefix := u.Path
		if u.Scheme == "" {
			prefix, err = filepath.Abs(relTo.url.String())
			if err != nil {
				return nil, fmt.Errorf("asset: could not resolve absolute path for %s: %s", relTo.url.String(), err.Error())
			}
		}
		u.Path = filepath.Dir(prefix) + "/" + relPath
	}

	var reader io.ReadCloser
	switch u.Scheme {
	case "":
		reader, err = os.Open(filepath.Clean(u.Path))
		if err != nil {
			return nil, err
		}
	case "http", "https":
		resp, err := http.Get(u.String())
		if err != nil {
			return nil, fmt.Errorf("asset: could not fetch %q: %s", u.String(), err)
		}
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("asset: could not fetch %q: status %d", u.String(), resp.StatusCode)
		}
		reader = resp.Body
	default:
		return nil, fmt.Errorf("asset: unsupported scheme %q", u.Scheme)
	}

	return &MeshFile{ReadCloser: reader, url: u}, nil
}

// FromReader wraps an already-open reader (e.g. an in-memory buffer in a
// test) as a MeshFile named name, so it satisfies the same interface as a
// file opened via Open.
func FromReader(name string, source io.Reader) *MeshFile {
	u, _ := url.Parse(name)
	return &MeshFile{ReadCloser: ioutil.NopCloser(source), url: u}
}
