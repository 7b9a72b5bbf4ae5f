package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string]string
	failPut bool
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: make(map[string]string)}
}

func (f *fakeObjects) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(v))}, nil
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPut {
		return nil, errors.New("bucket is read-only")
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = string(data)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func backends(t *testing.T) map[string]KV {
	t.Helper()

	fileKV, err := NewFileKV(t.TempDir())
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return map[string]KV{
		"file":   fileKV,
		"memory": NewMemoryKV(),
		"redis":  NewRedisKV(client, "test:session:"),
		"s3":     NewS3KV(newFakeObjects(), "portal", "session/"),
	}
}

func TestKVContract(t *testing.T) {
	ctx := context.Background()

	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := kv.Get(ctx, KeyToken)
			require.NoError(t, err)
			assert.False(t, ok, "fresh store must not have a token")

			require.NoError(t, kv.Set(ctx, KeyToken, "t1"))
			require.NoError(t, kv.Set(ctx, KeyRole, "admin"))

			v, ok, err := kv.Get(ctx, KeyToken)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "t1", v)

			require.NoError(t, kv.Set(ctx, KeyToken, "t2"))
			v, _, err = kv.Get(ctx, KeyToken)
			require.NoError(t, err)
			assert.Equal(t, "t2", v)

			require.NoError(t, kv.Delete(ctx, KeyToken))
			require.NoError(t, kv.Delete(ctx, KeyToken), "deleting a missing key is not an error")

			_, ok, err = kv.Get(ctx, KeyToken)
			require.NoError(t, err)
			assert.False(t, ok)

			v, ok, err = kv.Get(ctx, KeyRole)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "admin", v)
		})
	}
}

func TestFileKVSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewFileKV(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, KeyName, "Alice"))

	info, err := os.Stat(first.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, err := NewFileKV(dir)
	require.NoError(t, err)
	v, ok, err := second.Get(ctx, KeyName)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Alice", v)

	require.NoError(t, second.Delete(ctx, KeyName))
	_, err = os.Stat(second.Path())
	assert.True(t, os.IsNotExist(err), "empty session file is removed")
}

func TestFileKVCorruptFile(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFileKV(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(kv.Path(), []byte("{not json"), 0o600))

	ctx := context.Background()
	_, _, err = kv.Get(ctx, KeyToken)
	assert.Error(t, err)

	require.NoError(t, kv.Set(ctx, KeyToken, "tok-1"))
	v, ok, err := kv.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-1", v)
}

func TestFileKVDeleteRemovesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFileKV(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(kv.Path(), []byte(`["token"]`), 0o600))

	require.NoError(t, kv.Delete(context.Background(), KeyName))

	_, err = os.Stat(kv.Path())
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRedisKVUsesPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	kv := NewRedisKV(client, "portal:session:")
	require.NoError(t, kv.Set(context.Background(), KeyRole, "student"))

	got, err := mr.Get("portal:session:role")
	require.NoError(t, err)
	assert.Equal(t, "student", got)
}

func TestS3KVPutFailure(t *testing.T) {
	objects := newFakeObjects()
	objects.failPut = true

	kv := NewS3KV(objects, "portal", "session/")
	assert.Error(t, kv.Set(context.Background(), KeyToken, "t1"))
}

func TestNewKV(t *testing.T) {
	ctx := context.Background()

	kv, err := NewKV(ctx, ServiceConfig{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryKV{}, kv)

	kv, err = NewKV(ctx, ServiceConfig{Backend: BackendFile, Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileKV{}, kv)

	mr := miniredis.RunT(t)
	kv, err = NewKV(ctx, ServiceConfig{Backend: BackendRedis, RedisAddr: mr.Addr(), RedisPrefix: "p:"})
	require.NoError(t, err)
	assert.IsType(t, &RedisKV{}, kv)

	_, err = NewKV(ctx, ServiceConfig{Backend: "etcd"})
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
