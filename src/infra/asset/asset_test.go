package asset_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandai/challonge/src/app/challonge"
	"github.com/sandai/challonge/src/infra/asset"
)

func TestLocal_Load(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bracket.png"), []byte("\x89PNG\r\n\x1a\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes"), []byte("plain words"), 0o600))
	src := asset.Local{Root: dir}
	ctx := context.Background()

	a, err := src.Load(ctx, "bracket.png")
	require.NoError(t, err)
	assert.Equal(t, "bracket.png", a.Name)
	assert.Equal(t, "image/png", a.ContentType)

	notes, err := src.Load(ctx, filepath.Join(dir, "notes"))
	require.NoError(t, err)
	assert.Equal(t, "plain words", string(notes.Content))
	assert.True(t, strings.HasPrefix(notes.ContentType, "text/plain"))

	_, err = src.Load(ctx, "missing.txt")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type mockGetter struct {
	getObjectFunc func(ctx context.Context, in *s3.GetObjectInput) (*s3.GetObjectOutput, error)
}

func (m *mockGetter) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return m.getObjectFunc(ctx, in)
}

func TestObjectStore_Load(t *testing.T) {
	var gotBucket, gotKey string
	getter := &mockGetter{getObjectFunc: func(_ context.Context, in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		gotBucket, gotKey = aws.ToString(in.Bucket), aws.ToString(in.Key)
		if gotKey == "gone.mp4" {
			return nil, errors.New("NoSuchKey")
		}
		return &s3.GetObjectOutput{
			Body:        io.NopCloser(strings.NewReader("video")),
			ContentType: aws.String("video/mp4"),
		}, nil
	}}
	store := asset.NewObjectStore(getter, "default-bucket")
	ctx := context.Background()

	tests := []struct {
		name       string
		ref        string
		wantBucket string
		wantKey    string
		wantErr    bool
	}{
		{name: "explicit bucket", ref: "s3://vods/finals/game1.mp4", wantBucket: "vods", wantKey: "finals/game1.mp4"},
		{name: "default bucket", ref: "r2:///replays/final.mp4", wantBucket: "default-bucket", wantKey: "replays/final.mp4"},
		{name: "missing key", ref: "s3://vods/", wantErr: true},
		{name: "remote failure", ref: "s3://vods/gone.mp4", wantBucket: "vods", wantKey: "gone.mp4", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotBucket, gotKey = "", ""
			a, err := store.Load(ctx, tt.ref)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "video/mp4", a.ContentType)
				assert.Equal(t, "video", string(a.Content))
				assert.Equal(t, filepath.Base(tt.wantKey), a.Name)
			}
			assert.Equal(t, tt.wantBucket, gotBucket)
			assert.Equal(t, tt.wantKey, gotKey)
		})
	}
}

type namedSource string

func (n namedSource) Load(_ context.Context, ref string) (challonge.Asset, error) {
	return challonge.Asset{Name: string(n) + ":" + ref}, nil
}

func TestRouter_Load(t *testing.T) {
	router := asset.NewRouter(namedSource("local")).
		Handle("s3", namedSource("s3")).
		Handle("R2", namedSource("r2"))
	ctx := context.Background()

	tests := []struct {
		ref  string
		want string
	}{
		{"shots/final.png", "local:shots/final.png"},
		{"s3://vods/a.mp4", "s3:s3://vods/a.mp4"},
		{"r2://vods/a.mp4", "r2:r2://vods/a.mp4"},
		{"ftp://host/file", "local:ftp://host/file"},
	}

	for _, tt := range tests {
		a, err := router.Load(ctx, tt.ref)
		require.NoError(t, err)
		assert.Equal(t, tt.want, a.Name)
	}
}
