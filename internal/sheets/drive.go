package sheets

import (
	"context"
	"path"
	"strings"

	"github.com/camly/storefront/internal/domain"
	"github.com/camly/storefront/internal/vntext"
	"github.com/rs/zerolog"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// ImageIndex maps folded product names to image URLs, built from a Drive
// folder so products whose sheet row has no image column still get photos.
type ImageIndex struct {
	byName map[string][]string
}

// NewImageIndex returns an empty index.
func NewImageIndex() *ImageIndex {
	return &ImageIndex{byName: map[string][]string{}}
}

// Add registers an image under a file name; the extension is dropped and
// the rest folded, so "Bánh Kem Dâu.jpg" is found by "banh kem dau".
func (ix *ImageIndex) Add(fileName, imageURL string) {
	name := strings.TrimSuffix(fileName, path.Ext(fileName))
	key := vntext.Fold(strings.TrimSpace(name))
	if key == "" {
		return
	}
	ix.byName[key] = append(ix.byName[key], imageURL)
}

// Len returns the number of distinct names indexed.
func (ix *ImageIndex) Len() int { return len(ix.byName) }

// Lookup finds images for a product name: exact folded match first, then
// files whose name starts with the product name, which covers the common
// "Bánh Kem Dâu 2.jpg" numbering convention.
func (ix *ImageIndex) Lookup(productName string) []string {
	key := vntext.Fold(strings.TrimSpace(productName))
	if key == "" {
		return nil
	}
	if urls, ok := ix.byName[key]; ok {
		return urls
	}
	var out []string
	for name, urls := range ix.byName {
		if strings.HasPrefix(name, key+" ") || strings.HasPrefix(name, key+"-") {
			out = append(out, urls...)
		}
	}
	return out
}

const folderMimeType = "application/vnd.google-apps.folder"

// DriveIndexer walks a public Drive folder and builds an ImageIndex.
type DriveIndexer struct {
	svc *drive.Service
	log zerolog.Logger
}

// NewDriveIndexer builds a Drive client using an API key, which is enough
// for publicly shared folders.
func NewDriveIndexer(ctx context.Context, apiKey string, log zerolog.Logger) (*DriveIndexer, error) {
	svc, err := drive.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, domain.Unavailable(err, "sheets.NewDriveIndexer", "drive api init failed")
	}
	return &DriveIndexer{svc: svc, log: log.With().Str("component", "drive").Logger()}, nil
}

// BuildIndex lists the folder recursively and indexes every image file.
// Subfolder failures are logged and skipped so one broken share does not
// lose the whole index.
func (d *DriveIndexer) BuildIndex(ctx context.Context, folderID string) (*ImageIndex, error) {
	ix := NewImageIndex()
	if err := d.walk(ctx, folderID, ix, 0); err != nil {
		return nil, err
	}
	return ix, nil
}

const maxFolderDepth = 5

func (d *DriveIndexer) walk(ctx context.Context, folderID string, ix *ImageIndex, depth int) error {
	if depth > maxFolderDepth {
		return nil
	}

	pageToken := ""
	for {
		call := d.svc.Files.List().
			Q("'" + folderID + "' in parents and trashed = false").
			Fields("nextPageToken, files(id, name, mimeType)").
			PageSize(1000).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		list, err := call.Do()
		if err != nil {
			if depth == 0 {
				return domain.Unavailable(err, "sheets.BuildIndex", "drive folder listing failed")
			}
			d.log.Warn().Err(err).Str("folder", folderID).Msg("skipping unreadable drive subfolder")
			return nil
		}

		for _, f := range list.Files {
			switch {
			case f.MimeType == folderMimeType:
				if err := d.walk(ctx, f.Id, ix, depth+1); err != nil {
					return err
				}
			case strings.HasPrefix(f.MimeType, "image/"):
				ix.Add(f.Name, DriveThumbnailURL(f.Id))
			}
		}

		pageToken = list.NextPageToken
		if pageToken == "" {
			return nil
		}
	}
}
