package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/diewo77/jurigo/internal/models"
	"github.com/diewo77/jurigo/internal/resilience"
)

// ErrTooLarge is returned by Put when the body exceeds the size limit.
var ErrTooLarge = errors.New("blob: too large")

// Reference is a short-lived URL granting one operation on one key.
type Reference struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Observer receives the outcome of each storage call.
type Observer interface {
	BlobOperation(op string, err error)
}

// Service issues references and serves the endpoints they point to.
type Service struct {
	store    Store
	signer   *Signer
	exec     *resilience.Executor
	baseURL  string
	maxBytes int64
	observer Observer
}

type Options struct {
	BaseURL  string
	MaxBytes int64
	Executor *resilience.Executor
	Observer Observer
}

func NewService(store Store, signer *Signer, opts Options) *Service {
	return &Service{
		store:    store,
		signer:   signer,
		exec:     opts.Executor,
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		maxBytes: opts.MaxBytes,
		observer: opts.Observer,
	}
}

func (s *Service) observe(op string, err error) {
	if s.observer != nil {
		s.observer.BlobOperation(op, err)
	}
}

func (s *Service) reference(op, path, key, contentType string) (Reference, error) {
	token, exp, err := s.signer.Issue(op, key, contentType)
	if err != nil {
		s.observe(op+"_url", err)
		return Reference{}, models.WrapError(models.ErrDependency, "blob."+op+"_url", err)
	}
	s.observe(op+"_url", nil)
	return Reference{
		URL:       s.baseURL + path + "?token=" + url.QueryEscape(token),
		Key:       key,
		ExpiresAt: exp,
	}, nil
}

// UploadURL returns a reference allowing one PUT of key.
func (s *Service) UploadURL(_ context.Context, key, contentType string) (Reference, error) {
	return s.reference(OpUpload, "/blobs/upload", key, contentType)
}

// DownloadURL returns a reference allowing GETs of key until it expires.
func (s *Service) DownloadURL(_ context.Context, key string) (Reference, error) {
	return s.reference(OpDownload, "/blobs/download", key, "")
}

// PublicURL is the stable location recorded on a document. It is not
// readable without a download reference.
func (s *Service) PublicURL(key string) string {
	return s.baseURL + "/blobs/" + key
}

// Delete removes key from storage.
func (s *Service) Delete(ctx context.Context, key string) error {
	err := s.exec.Execute(ctx, "blob.delete", func(ctx context.Context) error {
		return s.store.Delete(ctx, key)
	}, nil)
	s.observe("delete", err)
	if err != nil {
		return models.WrapError(models.ErrDependency, "blob.delete", err)
	}
	return nil
}

// Put stores body under the key granted by an upload token.
func (s *Service) Put(ctx context.Context, token string, body io.Reader) (string, int64, error) {
	claims, err := s.signer.Parse(token, OpUpload)
	if err != nil {
		return "", 0, err
	}
	key := claims.Key()
	reader := body
	if s.maxBytes > 0 {
		reader = io.LimitReader(body, s.maxBytes+1)
	}
	var n int64
	err = s.exec.Execute(ctx, "blob.put", func(ctx context.Context) error {
		var saveErr error
		n, saveErr = s.store.Save(ctx, key, reader)
		return saveErr
	}, nil)
	s.observe("put", err)
	if err != nil {
		return "", 0, models.WrapError(models.ErrDependency, "blob.put", err)
	}
	if s.maxBytes > 0 && n > s.maxBytes {
		_ = s.store.Delete(ctx, key)
		return "", 0, fmt.Errorf("%w: limit %d bytes", ErrTooLarge, s.maxBytes)
	}
	return key, n, nil
}

// missingIsHealthy keeps deleted blobs from tripping the breaker.
func missingIsHealthy(err error) resilience.ErrorClassification {
	return resilience.ErrorClassification{RecordFailure: !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, context.Canceled)}
}

// Open returns the content granted by a download token. A blob that is
// gone is ErrNotFound.
func (s *Service) Open(ctx context.Context, token string) (io.ReadCloser, string, error) {
	claims, err := s.signer.Parse(token, OpDownload)
	if err != nil {
		return nil, "", err
	}
	var rc io.ReadCloser
	err = s.exec.Execute(ctx, "blob.open", func(ctx context.Context) error {
		var openErr error
		rc, openErr = s.store.Open(ctx, claims.Key())
		return openErr
	}, missingIsHealthy)
	s.observe("open", err)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", models.WrapError(models.ErrNotFound, "blob.open", err)
	}
	if err != nil {
		return nil, "", models.WrapError(models.ErrDependency, "blob.open", err)
	}
	return rc, claims.Key(), nil
}
