package photos

import (
	"context"
	"fmt"

	"github.com/2beens/rundash/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/drive/v3"
)

// DriveFinder finds race photos among the files of one Google Drive folder.
type DriveFinder struct {
	service  *drive.Service
	folderID string
}

func NewDriveFinder(service *drive.Service, folderID string) *DriveFinder {
	return &DriveFinder{
		service:  service,
		folderID: folderID,
	}
}

// FindPhoto returns the web view link of the first file, by name, whose
// name starts with the race photo prefix.
func (f *DriveFinder) FindPhoto(ctx context.Context, raceName string) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "photos.drive.find")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	prefix := PhotoPrefix(raceName)
	span.SetAttributes(attribute.String("photo.prefix", prefix))
	if prefix == "" {
		return "", nil
	}

	var link string
	err = f.service.Files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed = false", f.folderID)).
		Fields("nextPageToken, files(id, name, webViewLink)").
		OrderBy("name").
		Context(ctx).
		Pages(ctx, func(list *drive.FileList) error {
			if link != "" {
				return nil
			}
			for _, file := range list.Files {
				if matches(file.Name, prefix) {
					link = file.WebViewLink
					return nil
				}
			}
			return nil
		})
	if err != nil {
		return "", fmt.Errorf("list drive folder %s: %w", f.folderID, err)
	}

	return link, nil
}
