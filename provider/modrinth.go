package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	modrinthApi "codeberg.org/jmansfield/go-modrinth/modrinth"
	"github.com/mitchellh/mapstructure"

	"github.com/packdock/packdock/core"
)

var mrDefaultClient = modrinthApi.NewClient(&http.Client{})

func init() {
	Providers["modrinth"] = mrProvider{}

	mrDefaultClient.UserAgent = core.UserAgent
}

// mrExtra holds the modrinth-specific source options carried in Source.Extra.
type mrExtra struct {
	// Channel restricts updates to a release channel ("release", "beta",
	// "alpha"). Empty accepts any.
	Channel string `mapstructure:"channel"`
}

type mrProvider struct{}

func parseExtra(src Source) (mrExtra, error) {
	var extra mrExtra
	if src.Extra == nil {
		return extra, nil
	}
	err := mapstructure.Decode(src.Extra, &extra)
	return extra, err
}

func (mrProvider) Resolve(ctx context.Context, src Source) (ArchiveRef, error) {
	if src.VersionID != "" {
		version, err := mrDefaultClient.Versions.Get(src.VersionID)
		if err != nil {
			return ArchiveRef{}, fmt.Errorf("failed to fetch version %s: %v", src.VersionID, err)
		}
		return refFromVersion(version)
	}
	if src.ProjectID == "" {
		return ArchiveRef{}, fmt.Errorf("modrinth source needs a project or version ID")
	}
	return mrProvider{}.Latest(ctx, src)
}

func (mrProvider) Latest(_ context.Context, src Source) (ArchiveRef, error) {
	if src.ProjectID == "" {
		// Installed straight from a version ID; there is no project to list.
		return ArchiveRef{}, ErrNoUpdateCheck
	}
	extra, err := parseExtra(src)
	if err != nil {
		return ArchiveRef{}, fmt.Errorf("invalid modrinth source options: %v", err)
	}

	versions, err := mrDefaultClient.Versions.ListVersions(src.ProjectID, modrinthApi.ListVersionsOptions{})
	if err != nil {
		return ArchiveRef{}, fmt.Errorf("failed to fetch version list for %s: %v", src.ProjectID, err)
	}

	var latest *modrinthApi.Version
	for _, v := range versions {
		if extra.Channel != "" && (v.VersionType == nil || *v.VersionType != extra.Channel) {
			continue
		}
		if latest == nil {
			latest = v
			continue
		}
		if v.DatePublished != nil && latest.DatePublished != nil && v.DatePublished.After(*latest.DatePublished) {
			latest = v
		}
	}
	if latest == nil {
		return ArchiveRef{}, fmt.Errorf("no valid versions found for %s", src.ProjectID)
	}
	return refFromVersion(latest)
}

func refFromVersion(version *modrinthApi.Version) (ArchiveRef, error) {
	if len(version.Files) == 0 {
		return ArchiveRef{}, fmt.Errorf("version doesn't have any files attached")
	}

	var file = version.Files[0]
	// Prefer the primary file, then anything that is actually a pack archive
	for _, v := range version.Files {
		if v.Primary != nil && *v.Primary {
			file = v
		}
	}
	if file.Filename != nil && !strings.HasSuffix(*file.Filename, ".mrpack") {
		for _, v := range version.Files {
			if v.Filename != nil && strings.HasSuffix(*v.Filename, ".mrpack") {
				file = v
				break
			}
		}
	}
	if file.URL == nil || file.Filename == nil || version.ID == nil {
		return ArchiveRef{}, fmt.Errorf("invalid version response")
	}

	// Modrinth URLs must be RFC3986
	u, err := core.ReencodeURL(*file.URL)
	if err != nil {
		u = *file.URL
	}

	return ArchiveRef{
		VersionID: *version.ID,
		URL:       u,
		SHA1:      file.Hashes["sha1"],
		FileName:  *file.Filename,
	}, nil
}
