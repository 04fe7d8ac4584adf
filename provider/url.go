package provider

import (
	"context"
	"fmt"
	"net/url"
	"path"

	"github.com/packdock/packdock/core"
)

func init() {
	Providers["url"] = urlProvider{}
}

// urlProvider installs from a direct .mrpack URL. There is no version listing
// behind it, so update checks are unsupported; the recorded version id is
// whatever the index itself declares.
type urlProvider struct{}

func (urlProvider) Resolve(_ context.Context, src Source) (ArchiveRef, error) {
	if src.URL == "" {
		return ArchiveRef{}, fmt.Errorf("url source needs a pack URL")
	}
	u, err := core.ReencodeURL(src.URL)
	if err != nil {
		return ArchiveRef{}, err
	}

	fileName := src.FileName
	if fileName == "" {
		if parsed, err := url.Parse(u); err == nil {
			fileName = path.Base(parsed.Path)
		}
	}

	// No VersionID: the file behind a plain URL can change without notice,
	// so updates always re-diff against it.
	return ArchiveRef{
		URL:      u,
		FileName: fileName,
	}, nil
}

func (urlProvider) Latest(context.Context, Source) (ArchiveRef, error) {
	return ArchiveRef{}, ErrNoUpdateCheck
}
