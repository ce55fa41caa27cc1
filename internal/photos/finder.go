package photos

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"cloud.google.com/go/storage"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// Finder looks up the photo of a race. An empty URL with a nil error
// means there is no photo for it.
type Finder interface {
	FindPhoto(ctx context.Context, raceName string) (string, error)
}

var whitespaceRegex = regexp.MustCompile(`\s+`)

// PhotoPrefix is the file name prefix a race photo is stored under:
// the race name lowercased, whitespace runs replaced by "-".
func PhotoPrefix(raceName string) string {
	return strings.ToLower(whitespaceRegex.ReplaceAllString(strings.TrimSpace(raceName), "-"))
}

func matches(fileName, prefix string) bool {
	return prefix != "" && strings.HasPrefix(strings.ToLower(fileName), prefix)
}

type FinderParams struct {
	DriveEnabled    bool
	DriveFolderID   string
	Bucket          string
	CredentialsFile string
	// ClientOptions replace the credentials file when set.
	ClientOptions []option.ClientOption
}

// NewFinder returns the configured photo backend, Drive first. With
// neither a Drive folder nor a bucket configured it returns a nil Finder.
func NewFinder(ctx context.Context, params FinderParams) (Finder, error) {
	opts := params.ClientOptions
	if len(opts) == 0 && params.CredentialsFile != "" {
		opts = []option.ClientOption{option.WithCredentialsFile(params.CredentialsFile)}
	}

	switch {
	case params.DriveEnabled && params.DriveFolderID != "":
		driveService, err := drive.NewService(ctx, append(opts, option.WithScopes(drive.DriveReadonlyScope))...)
		if err != nil {
			return nil, fmt.Errorf("create drive service: %w", err)
		}
		log.Debugf("race photos: google drive folder %s", params.DriveFolderID)
		return NewDriveFinder(driveService, params.DriveFolderID), nil
	case params.Bucket != "":
		storageClient, err := storage.NewClient(ctx, append(opts, option.WithScopes(storage.ScopeReadOnly))...)
		if err != nil {
			return nil, fmt.Errorf("create storage client: %w", err)
		}
		bucket, prefix, _ := strings.Cut(params.Bucket, "/")
		log.Debugf("race photos: bucket %s, prefix [%s]", bucket, prefix)
		return NewBucketFinder(storageClient, bucket, prefix), nil
	default:
		log.Debugln("race photos: no backend configured")
		return nil, nil
	}
}
