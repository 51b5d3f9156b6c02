// Package screens holds one controller per screen of the app. Every
// controller follows the same shape: fetch-on-focus replaces its lists
// wholesale, mutations are confirmed against the service before the local
// collection changes, and continuations are dropped once the screen's
// context has ended.
package screens

import (
	"context"
	"errors"

	"github.com/isaac-const/upple/internal/remote"
)

// ErrAdminProtected is the client-side pre-check the admin UI makes
// before even asking the service: another administrator cannot be
// deleted from the users screen.
var ErrAdminProtected = errors.New("administrators cannot be deleted")

// ImagePolicy decides whether a failing image-blob deletion blocks the
// post-row deletion. The product is inconsistent about this, so it is a
// caller choice rather than a hard-coded behavior.
type ImagePolicy int

const (
	// ImageBestEffort deletes the row even when the image removal fails.
	ImageBestEffort ImagePolicy = iota
	// ImageRequired aborts the whole deletion when the image removal fails.
	ImageRequired
)

// removeImage deletes a post's stored image, a no-op for posts without
// one. The service does not cascade blob deletes, so this runs before the
// row delete; the two steps are not atomic and a crash in between leaves
// an orphaned object, which is accepted.
func removeImage(ctx context.Context, blobs remote.Blobs, imageURL string) error {
	if imageURL == "" {
		return nil
	}
	path := remote.ObjectPath(imageURL)
	if path == "" {
		return nil
	}
	return blobs.Remove(ctx, path)
}
