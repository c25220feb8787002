//go:build test_unit

package main

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lwjall "github.com/thog92/go-lwjall"
	"github.com/thog92/go-lwjall/internal/metrics"
)

func TestMetricsServer(t *testing.T) {
	dir := t.TempDir()
	input := writeSilence(t, dir, 9)

	decoded := testutil.ToFloat64(metrics.DecodedBytesTotal)
	opened := testutil.ToFloat64(metrics.StreamsOpenedTotal.WithLabelValues("file"))

	ms, err := startMetricsServer(&lwjall.NullLogger{}, "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { require.NoError(t, ms.Close()) }()

	app := NewApp(&Config{
		Inputs:         []string{input},
		Dump:           filepath.Join(dir, "out.pcm"),
		ChunkSize:      1024,
		ZeroGranuleEOS: true,
	}, &lwjall.NullLogger{})
	require.NoError(t, app.Dump(context.Background()))

	assert.Equal(t, float64(8*128*4), testutil.ToFloat64(metrics.DecodedBytesTotal)-decoded)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.StreamsOpenedTotal.WithLabelValues("file"))-opened)

	resp, err := http.Get("http://" + ms.addr.String() + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "lwjall_decoded_bytes_total")
	assert.Contains(t, string(body), `lwjall_streams_opened_total{kind="file"}`)
}
