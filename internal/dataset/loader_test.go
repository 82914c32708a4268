package dataset

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/goleak"

	"github.com/sells-group/value-bot/internal/fetcher"
	"github.com/sells-group/value-bot/internal/fetcher/mocks"
	"github.com/sells-group/value-bot/internal/model"
)

const sheetCSV = "Name,Value,Demand,Status\nGold Bar,100,8/10,Stable\nSilver Bar,40,3/10,Stable\n"

const sheetURL = "https://sheets.example.com/export?format=csv"

func body(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}

func TestGetOrLoad_CachesFirstSuccess(t *testing.T) {
	f := mocks.NewMockFetcher(t)
	f.On("Download", mock.Anything, sheetURL).Return(body(sheetCSV), nil).Once()

	l := NewLoader(f, Options{URL: sheetURL})
	_, ok := l.Cached()
	assert.False(t, ok)

	first, err := l.GetOrLoad(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, first.Len())

	second, err := l.GetOrLoad(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)

	cached, ok := l.Cached()
	assert.True(t, ok)
	assert.Same(t, first, cached)
}

func TestGetOrLoad_FailureIsNotCached(t *testing.T) {
	f := mocks.NewMockFetcher(t)
	f.On("Download", mock.Anything, sheetURL).Return(nil, errors.New("connection refused")).Once()
	f.On("Download", mock.Anything, sheetURL).Return(body(sheetCSV), nil).Once()

	l := NewLoader(f, Options{URL: sheetURL})

	_, err := l.GetOrLoad(context.Background())
	require.Error(t, err)
	assert.Equal(t, model.KindDataUnavailable, model.KindOf(err))
	_, ok := l.Cached()
	assert.False(t, ok)

	ds, err := l.GetOrLoad(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())

	// Third call is served from the cache; the mock would panic on a third Download.
	_, err = l.GetOrLoad(context.Background())
	require.NoError(t, err)
}

func TestGetOrLoad_SchemaErrorIsDataUnavailable(t *testing.T) {
	f := mocks.NewMockFetcher(t)
	f.On("Download", mock.Anything, sheetURL).Return(body("Name,Value\nGold Bar,100\n"), nil).Once()

	_, err := NewLoader(f, Options{URL: sheetURL}).GetOrLoad(context.Background())
	require.Error(t, err)
	assert.Equal(t, model.KindDataUnavailable, model.KindOf(err))
	assert.Contains(t, err.Error(), "missing required columns")
}

func TestGetOrLoad_MalformedCSV(t *testing.T) {
	f := mocks.NewMockFetcher(t)
	f.On("Download", mock.Anything, sheetURL).Return(body("Name,Value,Demand,Status\n\"Gold,100,8,Stable\n"), nil).Once()

	_, err := NewLoader(f, Options{URL: sheetURL}).GetOrLoad(context.Background())
	require.Error(t, err)
	assert.Equal(t, model.KindDataUnavailable, model.KindOf(err))
}

func TestGetOrLoad_NoURL(t *testing.T) {
	f := mocks.NewMockFetcher(t)
	_, err := NewLoader(f, Options{}).GetOrLoad(context.Background())
	require.Error(t, err)
	assert.Equal(t, model.KindDataUnavailable, model.KindOf(err))
	f.AssertNotCalled(t, "Download", mock.Anything, mock.Anything)
}

func TestGetOrLoad_ConcurrentFirstLoadFetchesOnce(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := mocks.NewMockFetcher(t)
	f.On("Download", mock.Anything, sheetURL).Return(func(context.Context, string) (io.ReadCloser, error) {
		time.Sleep(50 * time.Millisecond)
		return body(sheetCSV), nil
	}).Once()

	l := NewLoader(f, Options{URL: sheetURL})

	const callers = 16
	var wg sync.WaitGroup
	results := make([]*model.Dataset, callers)
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = l.GetOrLoad(context.Background())
		}()
	}
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		assert.Same(t, results[0], results[i])
	}
}

func TestGetOrLoad_CallerContextCancelled(t *testing.T) {
	release := make(chan struct{})
	f := mocks.NewMockFetcher(t)
	f.On("Download", mock.Anything, sheetURL).Return(func(context.Context, string) (io.ReadCloser, error) {
		<-release
		return body(sheetCSV), nil
	}).Once()

	l := NewLoader(f, Options{URL: sheetURL})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := l.GetOrLoad(ctx)
	require.Error(t, err)
	assert.Equal(t, model.KindDataUnavailable, model.KindOf(err))

	// The abandoned fetch still completes and publishes for later callers.
	close(release)
	ds, err := l.GetOrLoad(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
}

func TestGetOrLoad_TimeoutOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	l := NewLoader(fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}), Options{
		URL:     srv.URL,
		Timeout: 50 * time.Millisecond,
	})
	_, err := l.GetOrLoad(context.Background())
	require.Error(t, err)
	assert.Equal(t, model.KindDataUnavailable, model.KindOf(err))
}

func TestGetOrLoad_HTTPStatusThenSuccess(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(sheetCSV))
	}))
	defer srv.Close()

	l := NewLoader(fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}), Options{URL: srv.URL})

	_, err := l.GetOrLoad(context.Background())
	require.Error(t, err)
	assert.Equal(t, model.KindDataUnavailable, model.KindOf(err))

	for range 3 {
		ds, err := l.GetOrLoad(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, ds.Len())
	}
	assert.Equal(t, int32(2), hits.Load())
}

func TestDecode_XLSX(t *testing.T) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Values")
	require.NoError(t, err)
	for _, r := range [][]string{
		{"Name", "Value", "Demand", "Status"},
		{"Gold Bar", "100", "8/10", "Stable"},
	} {
		row := sheet.AddRow()
		for _, c := range r {
			row.AddCell().SetString(c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	ds, err := Decode(context.Background(), &buf, FormatXLSX, "Values")
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())
	assert.Equal(t, int64(100), ds.Item(0).Value)
}

func TestDecode_JSON(t *testing.T) {
	input := `[{"Name":"Gold Bar","Value":100,"Demand":"8/10","Status":"Stable"}]`
	ds, err := Decode(context.Background(), strings.NewReader(input), FormatJSON, "")
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())
	assert.Equal(t, "Gold Bar", ds.Item(0).Name)
}

func TestDecode_JSONKeyedBySheet(t *testing.T) {
	input := `{"values":[{"Name":"Gold Bar","Value":"1,250","Demand":"8/10","Status":"Stable"}]}`
	ds, err := Decode(context.Background(), strings.NewReader(input), FormatJSON, "values")
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())
	assert.Equal(t, int64(1250), ds.Item(0).Value)
}

func TestDecode_UnknownFormat(t *testing.T) {
	_, err := Decode(context.Background(), strings.NewReader(""), Format("parquet"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}
