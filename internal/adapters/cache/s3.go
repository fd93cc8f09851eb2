package cache

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/jhunt/go-s3"
	"go.trai.ch/pac/internal/core/domain"
)

// s3PartSize is the multipart upload chunk size; S3 rejects parts below 5MiB.
const s3PartSize = 5 * 1024 * 1024

var _ ObjectClient = (*S3Client)(nil)

// S3Client implements ObjectClient for S3-compatible stores.
type S3Client struct {
	client *s3.Client
	bucket string
	region string
}

// NewS3Client connects to the bucket of an object-store entry.
func NewS3Client(entry domain.CacheEntry) (*S3Client, error) {
	creds, _ := entry.Credentials.(domain.AccessKeyPair)
	host, protocol := endpoint(entry.URL)

	client, err := s3.NewClient(&s3.Client{
		AccessKeyID:     creds.AccessKeyID,
		SecretAccessKey: creds.SecretAccessKey,
		Region:          entry.Region,
		Bucket:          entry.Bucket,
		Domain:          host,
		Protocol:        protocol,
	})
	if err != nil {
		return nil, err
	}
	return &S3Client{client: client, bucket: entry.Bucket, region: entry.Region}, nil
}

// endpoint splits a configured URL into host and protocol. URLs without a scheme use https.
func endpoint(url string) (string, string) {
	switch {
	case strings.HasPrefix(url, "http://"):
		return strings.TrimSuffix(strings.TrimPrefix(url, "http://"), "/"), "http"
	case strings.HasPrefix(url, "https://"):
		return strings.TrimSuffix(strings.TrimPrefix(url, "https://"), "/"), "https"
	default:
		return strings.TrimSuffix(url, "/"), "https"
	}
}

func isS3NotFound(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "NoSuchKey") || strings.Contains(msg, "NotFound")
}

// Stat opens the object and closes it unread. The client has no HEAD request.
func (c *S3Client) Stat(ctx context.Context, key string) (bool, error) {
	r, err := c.Get(ctx, key)
	if errors.Is(err, ErrObjectNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	_ = r.Close()
	return true, nil
}

// Get opens the object for reading. The client takes no context, so the request
// runs in the background; a cancelled ctx abandons it and fails later reads of the body.
func (c *S3Client) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		r   io.Reader
		err error
	}
	done := make(chan result, 1)
	go func() {
		r, err := c.client.Get(key)
		done <- result{r: r, err: err}
	}()

	var res result
	select {
	case <-ctx.Done():
		go func() {
			if late := <-done; late.err == nil {
				_ = readCloser(late.r).Close()
			}
		}()
		return nil, ctx.Err()
	case res = <-done:
	}

	if res.err != nil {
		if isS3NotFound(res.err) {
			return nil, ErrObjectNotFound
		}
		return nil, res.err
	}
	return &ctxReadCloser{ctx: ctx, rc: readCloser(res.r)}, nil
}

// Put streams r as a multipart upload. A cancelled ctx stops the upload before
// it is completed, so the object never becomes visible.
func (c *S3Client) Put(ctx context.Context, key string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	upload, err := c.client.NewUpload(key, nil)
	if err != nil {
		return err
	}
	if _, err := upload.Stream(&ctxReadCloser{ctx: ctx, rc: io.NopCloser(r)}, s3PartSize); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return upload.Done()
}

func readCloser(r io.Reader) io.ReadCloser {
	if rc, ok := r.(io.ReadCloser); ok {
		return rc
	}
	return io.NopCloser(r)
}

// ctxReadCloser fails reads once its context is done.
type ctxReadCloser struct {
	ctx context.Context
	rc  io.ReadCloser
}

func (r *ctxReadCloser) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.rc.Read(p)
}

func (r *ctxReadCloser) Close() error {
	return r.rc.Close()
}

// EnsureBucket creates the bucket; a bucket already owned by the caller is fine.
func (c *S3Client) EnsureBucket(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := c.client.CreateBucket(c.bucket, c.region, s3.PrivateACL)
	if err != nil && !strings.Contains(err.Error(), "BucketAlreadyOwnedByYou") {
		return err
	}
	return nil
}
