package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/carlmjohnson/requests"
	"github.com/go-logr/logr"
	"github.com/kjk/fileops/atomicfile"
	"github.com/kjk/fileops/csvstore"
	"github.com/kjk/fileops/log"
	"github.com/kjk/fileops/u"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	// ErrConfig is returned by New for missing config fields
	ErrConfig = errors.New("invalid remote config")
	// ErrNoBucket is returned by New if the bucket doesn't exist
	ErrNoBucket = errors.New("bucket doesn't exist")
)

// Config describes an S3-compatible bucket
type Config struct {
	Access   string `yaml:"access"`
	Secret   string `yaml:"secret"`
	Bucket   string `yaml:"bucket"`
	Endpoint string `yaml:"endpoint"`
	Region   string `yaml:"region,omitempty"`
	// use http instead of https, for a local minio server
	Insecure bool `yaml:"insecure,omitempty"`

	RequestTrace io.Writer   `yaml:"-"`
	Logger       logr.Logger `yaml:"-"`
}

// Client mirrors store files to a bucket in S3-compatible storage
type Client struct {
	Client *minio.Client
	Bucket string
	config *Config
	log    logr.Logger
}

func newClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: must provide config", ErrConfig)
	}
	c := config
	if c.Access == "" || c.Secret == "" || c.Bucket == "" || c.Endpoint == "" {
		return nil, fmt.Errorf("%w: must provide all fields in config", ErrConfig)
	}
	mc, err := minio.New(c.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.Access, c.Secret, ""),
		Region: c.Region,
		Secure: !c.Insecure,
	})
	if err != nil {
		return nil, err
	}
	if c.RequestTrace != nil {
		mc.TraceOn(c.RequestTrace)
	}
	l := c.Logger
	if l.GetSink() == nil {
		l = log.Logger().WithName("remote")
	}
	return &Client{
		Client: mc,
		Bucket: c.Bucket,
		config: c,
		log:    l.WithValues("bucket", c.Bucket),
	}, nil
}

// New creates a client and checks that the bucket exists
func New(ctx context.Context, config *Config) (*Client, error) {
	c, err := newClient(config)
	if err != nil {
		return nil, err
	}
	found, err := c.Client.BucketExists(ctx, c.Bucket)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: '%s'", ErrNoBucket, c.Bucket)
	}
	return c, nil
}

// URLBase returns public url of the bucket, ending with "/"
func (c *Client) URLBase() string {
	url := c.Client.EndpointURL()
	return fmt.Sprintf("%s://%s.%s/", url.Scheme, c.Bucket, url.Host)
}

// URLForPath returns public url of remotePath in the bucket
func (c *Client) URLForPath(remotePath string) string {
	return c.URLBase() + strings.TrimPrefix(remotePath, "/")
}

// Exists returns true if remotePath exists in the bucket
func (c *Client) Exists(ctx context.Context, remotePath string) bool {
	_, err := c.Client.StatObject(ctx, c.Bucket, remotePath, minio.StatObjectOptions{})
	return err == nil
}

// Remove deletes remotePath from the bucket
func (c *Client) Remove(ctx context.Context, remotePath string) error {
	c.log.V(1).Info("removing", "remote", remotePath)
	return c.Client.RemoveObject(ctx, c.Bucket, remotePath, minio.RemoveObjectOptions{})
}

func contentTypeFor(remotePath string) string {
	ct := mime.TypeByExtension(filepath.Ext(remotePath))
	if ct == "" {
		ct = "text/csv; charset=utf-8"
	}
	return ct
}

// putOptions returns options for uploading a store file to remotePath.
// A brotli compressed upload gets Content-Encoding: br and the content
// type of the uncompressed file.
func putOptions(remotePath string, compressed bool) minio.PutObjectOptions {
	if !compressed {
		return minio.PutObjectOptions{
			ContentType: contentTypeFor(remotePath),
		}
	}
	return minio.PutObjectOptions{
		ContentType:     contentTypeFor(strings.TrimSuffix(remotePath, ".br")),
		ContentEncoding: "br",
	}
}

// PushStore uploads the file of the store to remotePath
func (c *Client) PushStore(ctx context.Context, s *csvstore.Store, remotePath string) (minio.UploadInfo, error) {
	c.log.V(1).Info("pushing store", "path", s.Path(), "remote", remotePath)
	opts := putOptions(remotePath, false)
	info, err := c.Client.FPutObject(ctx, c.Bucket, remotePath, s.Path(), opts)
	if err != nil {
		c.log.Error(err, "push failed", "path", s.Path(), "remote", remotePath)
		return info, err
	}
	c.log.V(1).Info("pushed store", "remote", remotePath, "size", info.Size)
	return info, nil
}

// PushStoreBrotli uploads the file of the store compressed with brotli.
// The object gets Content-Encoding: br so http clients decompress it transparently.
func (c *Client) PushStoreBrotli(ctx context.Context, s *csvstore.Store, remotePath string) (minio.UploadInfo, error) {
	c.log.V(1).Info("pushing store compressed", "path", s.Path(), "remote", remotePath)
	d, err := os.ReadFile(s.Path())
	if err != nil {
		return minio.UploadInfo{}, err
	}
	// TODO: compress with io.Pipe() to avoid holding both copies in memory
	d, err = u.BrCompressData(d, brotli.BestCompression)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	opts := putOptions(remotePath, true)
	r := bytes.NewReader(d)
	return c.Client.PutObject(ctx, c.Bucket, remotePath, r, int64(len(d)), opts)
}

// PullStore replaces the file of the store with remotePath.
// The local file is only replaced if the whole download succeeds.
func (c *Client) PullStore(ctx context.Context, s *csvstore.Store, remotePath string) error {
	c.log.V(1).Info("pulling store", "path", s.Path(), "remote", remotePath)
	obj, err := c.Client.GetObject(ctx, c.Bucket, remotePath, minio.GetObjectOptions{})
	if err != nil {
		return err
	}
	defer obj.Close()

	n, err := writeStore(s, obj)
	if err != nil {
		c.log.Error(err, "pull failed", "remote", remotePath)
		return err
	}
	c.log.V(1).Info("pulled store", "remote", remotePath, "size", n)
	return nil
}

// writeStore replaces the file of the store with content of r.
// The file is left as it was if reading r fails.
func writeStore(s *csvstore.Store, r io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(s.Path()), 0755); err != nil {
		return 0, err
	}
	return atomicfile.WriteFromReader(s.Path(), r)
}

// DefaultFetchTimeout is used by FetchStore if ctx has no deadline
var DefaultFetchTimeout = time.Minute * 5

// FetchStore downloads url over http into the file of the store.
// The file is left as it was if the request fails or returns non-2xx status.
func FetchStore(ctx context.Context, url string, s *csvstore.Store) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultFetchTimeout)
		defer cancel()
	}
	l := log.Logger().WithName("remote").WithValues("url", url, "path", s.Path())
	l.V(1).Info("fetching store")

	if err := os.MkdirAll(filepath.Dir(s.Path()), 0755); err != nil {
		return err
	}
	f, err := atomicfile.New(s.Path())
	if err != nil {
		return err
	}
	defer f.RemoveIfNotClosed()

	err = requests.
		URL(url).
		ToWriter(f).
		Fetch(ctx)
	if err != nil {
		l.Error(err, "fetch failed")
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	l.V(1).Info("fetched store")
	return nil
}
