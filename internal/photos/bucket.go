package photos

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"

	"github.com/2beens/rundash/internal/telemetry/tracing"

	"cloud.google.com/go/storage"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/iterator"
)

const publicStorageHost = "storage.googleapis.com"

// BucketFinder finds race photos among the objects under a prefix of
// a Cloud Storage bucket, and links them by their public URL.
type BucketFinder struct {
	client *storage.Client
	bucket string
	prefix string
}

func NewBucketFinder(client *storage.Client, bucket, prefix string) *BucketFinder {
	return &BucketFinder{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

func (f *BucketFinder) FindPhoto(ctx context.Context, raceName string) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "photos.bucket.find")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	prefix := PhotoPrefix(raceName)
	span.SetAttributes(attribute.String("photo.prefix", prefix))
	if prefix == "" {
		return "", nil
	}

	it := f.client.Bucket(f.bucket).Objects(ctx, &storage.Query{Prefix: f.prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return "", nil
		}
		if err != nil {
			return "", fmt.Errorf("list bucket %s: %w", f.bucket, err)
		}
		if matches(path.Base(attrs.Name), prefix) {
			return f.publicURL(attrs.Name), nil
		}
	}
}

func (f *BucketFinder) publicURL(objectName string) string {
	u := url.URL{
		Scheme: "https",
		Host:   publicStorageHost,
		Path:   "/" + f.bucket + "/" + objectName,
	}
	return u.String()
}

func (f *BucketFinder) Close() error {
	return f.client.Close()
}
