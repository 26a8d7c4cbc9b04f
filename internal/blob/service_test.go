package blob

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/jurigo/internal/logging"
	"github.com/diewo77/jurigo/internal/models"
	"github.com/diewo77/jurigo/internal/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{ err error }

func (f failingStore) Save(context.Context, string, io.Reader) (int64, error) { return 0, f.err }
func (f failingStore) Open(context.Context, string) (io.ReadCloser, error)    { return nil, f.err }
func (f failingStore) Delete(context.Context, string) error                   { return f.err }

type opRecorder struct{ ops []string }

func (o *opRecorder) BlobOperation(op string, err error) {
	if err != nil {
		op += ":error"
	}
	o.ops = append(o.ops, op)
}

func tokenFrom(t *testing.T, ref Reference) string {
	t.Helper()
	u, err := url.Parse(ref.URL)
	require.NoError(t, err)
	return u.Query().Get("token")
}

func newTestService(t *testing.T, maxBytes int64) (*Service, *opRecorder) {
	t.Helper()
	store, err := NewLocalFS(t.TempDir())
	require.NoError(t, err)
	rec := &opRecorder{}
	svc := NewService(store, NewSigner("k", time.Minute), Options{
		BaseURL:  "https://app.example/",
		MaxBytes: maxBytes,
		Observer: rec,
	})
	return svc, rec
}

func TestUploadThenDownload(t *testing.T) {
	ctx := context.Background()
	svc, rec := newTestService(t, 0)

	up, err := svc.UploadURL(ctx, "companies/c1/kbis/a.pdf", "application/pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(up.URL, "https://app.example/blobs/upload?token="))
	assert.Equal(t, "companies/c1/kbis/a.pdf", up.Key)

	key, n, err := svc.Put(ctx, tokenFrom(t, up), strings.NewReader("pdf-bytes"))
	require.NoError(t, err)
	assert.Equal(t, up.Key, key)
	assert.Equal(t, int64(9), n)

	down, err := svc.DownloadURL(ctx, key)
	require.NoError(t, err)
	rc, gotKey, err := svc.Open(ctx, tokenFrom(t, down))
	require.NoError(t, err)
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "pdf-bytes", string(body))
	assert.Equal(t, key, gotKey)

	assert.Equal(t, []string{"upload_url", "put", "download_url", "open"}, rec.ops)
}

func TestTokensAreBoundToOperation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, 0)

	down, err := svc.DownloadURL(ctx, "k")
	require.NoError(t, err)
	_, _, err = svc.Put(ctx, tokenFrom(t, down), strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = svc.Open(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredToken(t *testing.T) {
	signer := NewSigner("k", time.Minute)
	now := time.Now()
	signer.now = func() time.Time { return now }
	token, _, err := signer.Issue(OpUpload, "k", "")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = signer.Parse(token, OpUpload)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPutTooLarge(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, 4)
	up, err := svc.UploadURL(ctx, "big", "")
	require.NoError(t, err)
	_, _, err = svc.Put(ctx, tokenFrom(t, up), strings.NewReader("12345"))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestStorageFailureIsDependency(t *testing.T) {
	rec := &opRecorder{}
	svc := NewService(failingStore{err: errors.New("disk gone")}, NewSigner("k", time.Minute), Options{Observer: rec})
	err := svc.Delete(context.Background(), "k")
	assert.ErrorIs(t, err, models.ErrDependency)
	assert.Equal(t, []string{"delete:error"}, rec.ops)
}

func TestOpenMissingBlobIsNotFound(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalFS(t.TempDir())
	require.NoError(t, err)
	rec := &opRecorder{}
	exec := resilience.NewExecutor(resilience.Config{
		BreakerEnabled:      true,
		BreakerMinRequests:  2,
		BreakerFailureRatio: 0.5,
		BreakerOpenTimeout:  time.Minute,
	}, logging.Discard())
	svc := NewService(store, NewSigner("k", time.Minute), Options{Observer: rec, Executor: exec})

	// Missing files must not open the breaker.
	down, err := svc.DownloadURL(ctx, "companies/c1/kbis/gone.pdf")
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		_, _, err = svc.Open(ctx, tokenFrom(t, down))
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.NotErrorIs(t, err, models.ErrDependency)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	}
	assert.Contains(t, rec.ops, "open:error")
}

func TestOpenStorageFailureIsDependency(t *testing.T) {
	ctx := context.Background()
	svc := NewService(failingStore{err: errors.New("disk gone")}, NewSigner("k", time.Minute), Options{})
	down, err := svc.DownloadURL(ctx, "k")
	require.NoError(t, err)
	_, _, err = svc.Open(ctx, tokenFrom(t, down))
	assert.ErrorIs(t, err, models.ErrDependency)
	assert.NotErrorIs(t, err, models.ErrNotFound)
}
