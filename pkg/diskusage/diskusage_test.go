package diskusage

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_err"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/rrd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleArchive(t *testing.T) []byte {
	t.Helper()
	tb := float64(1 << 40)
	raw, err := rrd.Encode(&rrd.File{
		Step:       3600,
		LastUpdate: time.Unix(1700003600, 0),
		DataSources: []rrd.DS{
			{Name: "total", Type: "GAUGE", Heartbeat: 7200, Max: math.NaN()},
			{Name: "used", Type: "GAUGE", Heartbeat: 7200, Max: math.NaN()},
		},
		Archives: []rrd.RRA{{
			CF: "AVERAGE", Rows: 3, PDPPerRow: 1, XFF: 0.5, CurRow: 2,
			Data: []float64{2 * tb, 0.5 * tb, 2 * tb, math.NaN(), 2 * tb, 0.75 * tb},
		}},
	})
	require.NoError(t, err)
	return raw
}

type mapFetcher map[string][]byte

func (m mapFetcher) Fetch(_ context.Context, group string) ([]byte, error) {
	b, ok := m[group]
	if !ok {
		return nil, ErrResourceNotFound
	}
	return b, nil
}

func TestGroupFromQuery(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "genome", want: "genome"},
		{raw: "Genome", want: "genome"},
		{raw: "Disk%20Usage", wantErr: true},
		{raw: "DiskUsage", want: "diskusage"},
		{raw: "gc_prod-1.2", want: "gc_prod-1.2"},
		{raw: "", wantErr: true},
		{raw: "..%2Fetc%2Fpasswd", wantErr: true},
		{raw: "a..b", wantErr: true},
		{raw: "%zz", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := GroupFromQuery(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, gsc_err.IsCategory(err, gsc_err.CategoryValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResourcePathAndMessages(t *testing.T) {
	assert.Equal(t, "rrd/diskusage.rrd", ResourcePath("diskusage"))
	assert.Equal(t, "File rrd/diskusage.rrd is not a valid RRD archive!", AlertMessage("diskusage"))
	assert.Equal(t, "Failed loading rrd/x.rrd\nboom", FetchFailedMessage("x", errors.New("boom")))
}

func TestDecode(t *testing.T) {
	s, err := Decode("genome", sampleArchive(t))
	require.NoError(t, err)

	assert.Equal(t, "rrd/genome.rrd", s.Path)
	assert.Equal(t, time.Hour, s.Step)
	require.Len(t, s.Lines, 2)
	assert.Equal(t, "total", s.Lines[0].Style.Name)
	assert.Equal(t, "#00ff00", s.Lines[0].Style.Color)
	assert.True(t, s.Lines[0].Style.ShowLines)
	assert.Equal(t, "used", s.Lines[1].Style.Name)
	assert.Equal(t, "#aa0000", s.Lines[1].Style.Color)
	assert.True(t, s.Lines[1].Style.Checked)

	used := s.Lines[1].Points
	require.Len(t, used, 3)
	assert.Equal(t, float64(0.5*(1<<40)), used[0].Value)
	assert.True(t, used[1].Unknown)
	assert.Equal(t, float64(0.75*(1<<40)), used[2].Value)
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode("diskusage", []byte("<html>not found</html>"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotRRD)
	assert.ErrorIs(t, err, rrd.ErrInvalidArchive)
	assert.True(t, gsc_err.IsCategory(err, gsc_err.CategoryParse))
	assert.Equal(t, 1, gsc_err.GetExitCode(err))
	assert.Contains(t, err.Error(), "File rrd/diskusage.rrd is not a valid RRD archive!")
}

func TestLoadSeriesErrors(t *testing.T) {
	_, err := LoadSeries(context.Background(), mapFetcher{}, "ghost")
	assert.True(t, gsc_err.IsCategory(err, gsc_err.CategoryNotFound))

	_, err = LoadSeries(context.Background(), failingFetcher{}, "genome")
	assert.True(t, gsc_err.IsCategory(err, gsc_err.CategoryNetwork))
	assert.Contains(t, err.Error(), "Failed loading rrd/genome.rrd")
}

type failingFetcher struct{}

func (failingFetcher) Fetch(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func TestHTTPFetcher(t *testing.T) {
	archive := sampleArchive(t)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/du/rrd/genome.rrd":
			_, _ = w.Write(archive)
		case "/du/rrd/broken.rrd":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL+"/du/", srv.Client())
	assert.Equal(t, srv.URL+"/du/rrd/genome.rrd", f.URL("genome"))

	body, err := f.Fetch(context.Background(), "genome")
	require.NoError(t, err)
	assert.Equal(t, archive, body)

	_, err = f.Fetch(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrResourceNotFound)

	_, err = f.Fetch(context.Background(), "broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestHTTPFetcherBreakerOpens(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL, srv.Client())
	for i := 0; i < 7; i++ {
		_, err := f.Fetch(context.Background(), "genome")
		require.Error(t, err)
	}
	assert.Equal(t, int32(5), hits.Load())
}

func TestDirFetcher(t *testing.T) {
	dir := t.TempDir()
	archive := sampleArchive(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "genome.rrd"), archive, 0o644))

	f := DirFetcher{Dir: dir}
	body, err := f.Fetch(context.Background(), "genome")
	require.NoError(t, err)
	assert.Equal(t, archive, body)

	_, err = f.Fetch(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrResourceNotFound)
}

func TestNewFetcher(t *testing.T) {
	f := NewFetcher("", "rrd", nil)
	assert.Equal(t, DirFetcher{Dir: "rrd"}, f)

	hf, ok := NewFetcher("http://stats.gsc.example/", "rrd", nil).(*HTTPFetcher)
	require.True(t, ok)
	assert.Equal(t, "http://stats.gsc.example/rrd/genome.rrd", hf.URL("genome"))
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestPageRendersChart(t *testing.T) {
	h := NewHandler(mapFetcher{"genome": sampleArchive(t)}, HandlerOptions{})

	rec := get(t, h, "/diskusage.html?Genome")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, `RRD Datafile: <a href="rrd/genome.rrd">rrd/genome.rrd</a>`)
	assert.Contains(t, body, "<svg")
	assert.Contains(t, body, `data-series="total"`)
	assert.Contains(t, body, `data-series="used"`)
	assert.Contains(t, body, `stroke="#aa0000"`)
	assert.NotContains(t, body, `role="alert"`)
}

func TestPageInvalidArchiveShowsAlert(t *testing.T) {
	h := NewHandler(mapFetcher{"diskusage": []byte("garbage that is not an archive")}, HandlerOptions{})

	rec := get(t, h, "/diskusage.html?diskusage")
	body := rec.Body.String()

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, body, `role="alert"`)
	assert.Contains(t, body, "File rrd/diskusage.rrd is not a valid RRD archive!")
	assert.Contains(t, body, "<script>alert(")
	assert.NotContains(t, body, "<svg")
}

func TestPageMissingGroup(t *testing.T) {
	h := NewHandler(mapFetcher{}, HandlerOptions{})

	rec := get(t, h, "/diskusage.html")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `role="alert"`)
	assert.NotContains(t, rec.Body.String(), "<svg")
}

func TestSeriesAPI(t *testing.T) {
	h := NewHandler(mapFetcher{"genome": sampleArchive(t), "bad": []byte("x")}, HandlerOptions{})

	rec := get(t, h, "/api/series/genome")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var out struct {
		Group string `json:"group"`
		Step  int64  `json:"step"`
		Lines []struct {
			Style  SeriesStyle `json:"style"`
			Points []struct {
				Value   *float64 `json:"value"`
				Unknown bool     `json:"unknown"`
			} `json:"points"`
		} `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "genome", out.Group)
	assert.Equal(t, int64(3600), out.Step)
	require.Len(t, out.Lines, 2)
	assert.Nil(t, out.Lines[1].Points[1].Value)
	assert.True(t, out.Lines[1].Points[1].Unknown)

	rec = get(t, h, "/api/series/bad")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "is not a valid RRD archive!")

	rec = get(t, h, "/api/series/ghost")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRawPassthrough(t *testing.T) {
	archive := sampleArchive(t)
	h := NewHandler(mapFetcher{"genome": archive}, HandlerOptions{})

	rec := get(t, h, "/rrd/genome.rrd")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, archive, rec.Body.Bytes())

	rec = get(t, h, "/rrd/ghost.rrd")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimit(t *testing.T) {
	h := NewHandler(mapFetcher{"genome": sampleArchive(t)}, HandlerOptions{RatePerSecond: 0.001, Burst: 2})

	assert.Equal(t, http.StatusOK, get(t, h, "/rrd/genome.rrd").Code)
	assert.Equal(t, http.StatusOK, get(t, h, "/rrd/genome.rrd").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(t, h, "/rrd/genome.rrd").Code)
}

func TestRenderTable(t *testing.T) {
	s, err := Decode("genome", sampleArchive(t))
	require.NoError(t, err)

	out := RenderTable(s, 2)
	assert.Contains(t, out, "genome")
	assert.Contains(t, out, "total")
	assert.Contains(t, out, "used")
	assert.Contains(t, out, "2.0T")
	assert.Contains(t, out, "768.0G")
	assert.Contains(t, out, "U")
	assert.NotContains(t, out, "512.0G")

	lines := strings.Split(strings.TrimSpace(RenderTable(s, 0)), "\n")
	assert.GreaterOrEqual(t, len(lines), 5)
	assert.Empty(t, RenderTable(nil, 0))
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "512", humanize(512))
	assert.Equal(t, "1.0K", humanize(1024))
	assert.Equal(t, "1.5M", humanize(1.5*1024*1024))
}
