package credentials

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStaticToken(t *testing.T) {
	c := NewStatic("T")
	token, err := c.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, "T", token)
}

func TestMultiFallsThroughToFirstSuccess(t *testing.T) {
	failing := Func(func(context.Context) (string, error) { return "", errors.New("no") })
	c := Multi(failing, NewStatic("T"))
	token, err := c.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, "T", token)
}

func TestMultiReturnsLastErrorWhenAllFail(t *testing.T) {
	first := Func(func(context.Context) (string, error) { return "", errors.New("first") })
	second := Func(func(context.Context) (string, error) { return "", errors.New("second") })
	c := Multi(first, second)
	_, err := c.Token(context.Background())
	require.ErrorContains(t, err, "second")
}

func TestMultiFlattensNested(t *testing.T) {
	inner := Multi(NewStatic("A"))
	outer := Multi(inner, NewStatic("B"))
	require.Len(t, outer.(*multi).cs, 2)
}

type fakeTokenService struct {
	calls atomic.Int32
	err   error
	token string
}

func (f *fakeTokenService) Token(context.Context) (string, time.Duration, error) {
	f.calls.Add(1)
	if f.err != nil {
		return "", 0, f.err
	}
	return f.token, time.Minute, nil
}

func TestMetadataCachesUntilExpiry(t *testing.T) {
	svc := &fakeTokenService{token: "M"}
	m := NewMetadataWithService(svc)

	token, err := m.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, "M", token)

	token, err = m.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, "M", token)
	require.Equal(t, int32(1), svc.calls.Load())
}

func TestMetadataRetriesOnFailure(t *testing.T) {
	svc := &fakeTokenService{err: errors.New("not yet bound")}
	m := NewMetadataWithService(svc)
	m.retryWait = time.Millisecond

	_, err := m.Token(context.Background())
	require.Error(t, err)
	require.Equal(t, int32(metadataMaxTries), svc.calls.Load())
}
