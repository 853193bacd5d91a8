package collect

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/faildiff/internal/archive"
	"github.com/dkoosis/faildiff/pkg/failure"
)

func writeZip(t *testing.T, dir, name string, files map[string]string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for entry, body := range files {
		w, err := zw.Create(entry)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

// writeZipBadFirstEntry stores two report entries uncompressed and damages
// the first one's data so it fails its checksum.
func writeZipBadFirstEntry(t *testing.T, dir, name, first, second string) string {
	t.Helper()
	const marker = "DAMAGED-DATA"
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range [][2]string{{"a.xml", first + "<!--" + marker + "-->"}, {"b.xml", second}} {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e[0], Method: zip.Store})
		require.NoError(t, err)
		_, err = w.Write([]byte(e[1]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	data := bytes.Replace(buf.Bytes(), []byte(marker), []byte("damaged-data"), 1)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func suite(cases string) string {
	return `<?xml version="1.0" encoding="UTF-8"?><testsuite>` + cases + `</testsuite>`
}

func TestRun_ConcatenatesInInputOrder(t *testing.T) {
	dir := t.TempDir()
	first := writeZip(t, dir, "first.zip", map[string]string{
		"TEST-a.xml": suite(`<testcase classname="org.apache.spark.sql.A" name="t1"><failure message="m1"/></testcase>
<testcase classname="org.apache.spark.sql.A" name="t2"><error message="m2"/></testcase>`),
	})
	second := writeZip(t, dir, "second.zip", map[string]string{
		"TEST-b.xml": suite(`<testcase classname="org.apache.spark.streaming.B" name="t3"><failure/></testcase>`),
		"notes.txt":  "not a report",
	})

	res, err := Run(context.Background(), []string{first, second}, Options{Workers: 2})
	require.NoError(t, err)
	assert.NoError(t, res.Warnings)
	require.Len(t, res.Records, 3)

	assert.Equal(t, "t1", res.Records[0].TestName)
	assert.Equal(t, "first.zip", res.Records[0].Origin)
	assert.Equal(t, failure.StatusError, res.Records[1].Status)
	assert.Equal(t, "second.zip", res.Records[2].Origin)
	assert.Equal(t, "streaming", res.Records[2].ModuleName)

	require.Len(t, res.Archives, 2)
	assert.Equal(t, 1, res.Archives[0].Entries)
	assert.Equal(t, 1, res.Archives[1].Entries)
}

func TestRun_BadArchiveIsAWarning(t *testing.T) {
	dir := t.TempDir()
	good := writeZip(t, dir, "good.zip", map[string]string{
		"r.xml": suite(`<testcase classname="a.B" name="t"><failure/></testcase>`),
	})
	bad := filepath.Join(dir, "bad.zip")
	require.NoError(t, os.WriteFile(bad, []byte("garbage"), 0o600))

	res, err := Run(context.Background(), []string{bad, good}, Options{})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, 1, res.Readable())

	require.Error(t, res.Warnings)
	assert.True(t, errors.Is(res.Warnings, archive.ErrInvalidArchive))
	var merr *multierror.Error
	require.True(t, errors.As(res.Warnings, &merr))
	assert.Len(t, merr.Errors, 1)
}

func TestArchive_CorruptEntryIsAWarning(t *testing.T) {
	path := writeZipBadFirstEntry(t, t.TempDir(), "r.zip",
		suite(`<testcase classname="a.B" name="lost"><failure/></testcase>`),
		suite(`<testcase classname="a.B" name="kept"><error/></testcase>`))

	out := Archive(path, Options{})
	require.NoError(t, out.Err)
	require.Len(t, out.Records, 1)
	assert.Equal(t, "kept", out.Records[0].TestName)
	assert.Equal(t, 1, out.Entries)
	require.Len(t, out.EntryErrs, 1)
	assert.True(t, errors.Is(out.EntryErrs[0], archive.ErrEntryDecode))

	res, err := Run(context.Background(), []string{path}, Options{})
	require.NoError(t, err)
	assert.Len(t, res.Records, 1)
	assert.True(t, errors.Is(res.Warnings, archive.ErrEntryDecode))
}

func TestRun_AllArchivesInvalid(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.zip")
	require.NoError(t, os.WriteFile(bad, []byte("garbage"), 0o600))

	res, err := Run(context.Background(), []string{bad, filepath.Join(dir, "missing.zip")}, Options{})
	require.ErrorIs(t, err, ErrNoData)
	require.NotNil(t, res)
	assert.Empty(t, res.Records)
	assert.True(t, errors.Is(res.Warnings, archive.ErrNotFound))
}

func TestRun_NoInputsIsNoData(t *testing.T) {
	_, err := Run(context.Background(), nil, Options{})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestRun_ValidArchiveWithoutFailuresIsNotNoData(t *testing.T) {
	path := writeZip(t, t.TempDir(), "clean.zip", map[string]string{
		"r.xml": suite(`<testcase classname="a.B" name="t"/>`),
	})
	res, err := Run(context.Background(), []string{path}, Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Equal(t, 1, res.Readable())
}

func TestRun_CancelledContext(t *testing.T) {
	path := writeZip(t, t.TempDir(), "r.zip", map[string]string{"r.xml": suite("")})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, []string{path}, Options{Workers: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestArchive_CountsMalformedBlocks(t *testing.T) {
	path := writeZip(t, t.TempDir(), "r.zip", map[string]string{
		"r.xml": `<testcase classname="a.B" name="ok"><failure/></testcase><testcase classname="a.B" name="cut"><failure/>`,
	})
	out := Archive(path, Options{})
	require.NoError(t, out.Err)
	assert.Len(t, out.Records, 1)
	assert.Equal(t, 1, out.Malformed)
	assert.Equal(t, "r.zip", out.Origin)
}
