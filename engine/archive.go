package engine

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/packdock/packdock/core"
	"github.com/packdock/packdock/mrpack"
	"github.com/packdock/packdock/provider"
)

// fetchArchive downloads the pack archive to the panel-side temp dir and
// opens it. The caller must call the returned cleanup function.
func (e *Engine) fetchArchive(ctx context.Context, ref provider.ArchiveRef) (*mrpack.Archive, func(), error) {
	tmp, err := os.CreateTemp(e.tempDir, "packdock-*.mrpack")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to create archive temp file: %v", core.ErrFetch, err)
	}
	tmpName := tmp.Name()
	removeTemp := func() { _ = os.Remove(tmpName) }

	res, err := core.GetWithUAContext(ctx, ref.URL, "application/x-modrinth-modpack+zip")
	if err != nil {
		_ = tmp.Close()
		removeTemp()
		return nil, nil, fmt.Errorf("%w: failed to download pack archive: %v", core.ErrFetch, err)
	}
	defer res.Body.Close()

	h, err := core.GetHashImpl("sha1")
	if err != nil {
		_ = tmp.Close()
		removeTemp()
		return nil, nil, err
	}
	if _, err := io.Copy(tmp, io.TeeReader(res.Body, h)); err != nil {
		_ = tmp.Close()
		removeTemp()
		return nil, nil, fmt.Errorf("%w: failed to download pack archive: %v", core.ErrFetch, err)
	}
	if err := tmp.Close(); err != nil {
		removeTemp()
		return nil, nil, fmt.Errorf("%w: failed to download pack archive: %v", core.ErrFetch, err)
	}

	if core.WellFormedSHA1(ref.SHA1) {
		actual := hex.EncodeToString(h.Sum(nil))
		if !core.HashesEqual(actual, ref.SHA1) {
			removeTemp()
			return nil, nil, fmt.Errorf("%w: pack archive hash mismatch: got %s, expected %s", core.ErrFetch, actual, ref.SHA1)
		}
	}

	a, err := mrpack.Open(tmpName)
	if err != nil {
		removeTemp()
		return nil, nil, err
	}
	cleanup := func() {
		_ = a.Close()
		removeTemp()
	}
	return a, cleanup, nil
}
