// Package storage is the blob side of the service: a disk-backed images
// bucket addressed by object path and exposed through public URLs.
package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

var ErrBadPath = errors.New("invalid object path")

// Disk stores objects under Root and serves them below BaseURL/images/.
type Disk struct {
	Root    string
	BaseURL string
}

func NewDisk(root, baseURL string) *Disk {
	return &Disk{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}
}

// resolve maps an object path like "public/<uid>/<ts>.png" to a file under
// Root, rejecting anything that escapes it.
func (d *Disk) resolve(path string) (string, error) {
	path = strings.TrimPrefix(path, "/")
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", ErrBadPath
	}
	return filepath.Join(d.Root, clean), nil
}

// Upload writes the object and returns its public URL. Content type is
// carried by the file extension; serving sniffs it from there.
func (d *Disk) Upload(path string, data []byte, _ string) (string, error) {
	full, err := d.resolve(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", err
	}
	return d.PublicURL(path), nil
}

func (d *Disk) PublicURL(path string) string {
	return d.BaseURL + "/images/" + strings.TrimPrefix(path, "/")
}

// Remove deletes objects best-effort: missing objects are not an error,
// and the first real failure is reported after attempting the rest.
func (d *Disk) Remove(paths ...string) error {
	var firstErr error
	for _, p := range paths {
		full, err := d.resolve(p)
		if err == nil {
			err = os.Remove(full)
			if os.IsNotExist(err) {
				err = nil
			}
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// File returns the on-disk location of an object for serving, or an error
// if the object does not exist.
func (d *Disk) File(path string) (string, error) {
	full, err := d.resolve(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(full); err != nil {
		return "", err
	}
	return full, nil
}
