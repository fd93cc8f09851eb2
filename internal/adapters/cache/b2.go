package cache

import (
	"context"
	"io"
	"sync"

	"github.com/kurin/blazer/b2"
	"go.trai.ch/pac/internal/core/domain"
)

var _ ObjectClient = (*B2Client)(nil)

// B2Client implements ObjectClient for Backblaze B2. The connection is opened on first use.
type B2Client struct {
	keyID  string
	key    string
	bucket string

	mu     sync.Mutex
	client *b2.Client
}

// NewB2Client creates a client for the bucket of an object-store entry.
func NewB2Client(entry domain.CacheEntry) *B2Client {
	creds, _ := entry.Credentials.(domain.AccessKeyPair)
	return &B2Client{keyID: creds.AccessKeyID, key: creds.SecretAccessKey, bucket: entry.Bucket}
}

func (c *B2Client) connect(ctx context.Context) (*b2.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}
	client, err := b2.NewClient(ctx, c.keyID, c.key)
	if err != nil {
		return nil, err
	}
	c.client = client
	return client, nil
}

func (c *B2Client) object(ctx context.Context, key string) (*b2.Object, error) {
	client, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	bucket, err := client.Bucket(ctx, c.bucket)
	if err != nil {
		return nil, err
	}
	return bucket.Object(key), nil
}

// Stat reads the object attributes.
func (c *B2Client) Stat(ctx context.Context, key string) (bool, error) {
	obj, err := c.object(ctx, key)
	if err != nil {
		return false, err
	}
	if _, err := obj.Attrs(ctx); err != nil {
		if b2.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Get opens the object for reading.
func (c *B2Client) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	ok, err := c.Stat(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrObjectNotFound
	}
	obj, err := c.object(ctx, key)
	if err != nil {
		return nil, err
	}
	return obj.NewReader(ctx), nil
}

// Put uploads r; the object becomes visible when the writer is closed.
// A failed copy cancels the upload instead of committing a partial object.
func (c *B2Client) Put(ctx context.Context, key string, r io.Reader) error {
	obj, err := c.object(ctx, key)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := obj.NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		cancel()
		_ = w.Close()
		return err
	}
	return w.Close()
}

// EnsureBucket creates the bucket, or opens it when it already exists.
func (c *B2Client) EnsureBucket(ctx context.Context) error {
	client, err := c.connect(ctx)
	if err != nil {
		return err
	}
	_, err = client.NewBucket(ctx, c.bucket, nil)
	return err
}
