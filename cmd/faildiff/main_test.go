package main

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	failingSuite = `<?xml version="1.0" encoding="UTF-8"?>
<testsuite name="JoinSuite">
  <testcase classname="org.apache.spark.sql.JoinSuite" name="inner join" time="1.5">
    <failure message="expected 3 but got 4">trace</failure>
  </testcase>
  <testcase classname="org.apache.spark.streaming.WindowSuite" name="window" time="0.25">
    <error message="boom">npe</error>
  </testcase>
  <testcase classname="org.apache.spark.sql.JoinSuite" name="outer join" time="0.1"/>
</testsuite>`

	regressedSuite = `<?xml version="1.0" encoding="UTF-8"?>
<testsuite>
  <testcase classname="org.apache.spark.sql.JoinSuite" name="inner join"><failure/></testcase>
  <testcase classname="org.apache.spark.graphx.GraphSuite" name="pagerank"><failure message="diverged"/></testcase>
</testsuite>`

	passingSuite = `<testsuite><testcase classname="a.B" name="ok" time="0.1"/></testsuite>`
)

type result struct {
	code   int
	stdout string
	stderr string
}

// isolate keeps user and working-directory config files out of a test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", dir)
	for _, key := range []string{"FAILDIFF_THEME", "FAILDIFF_FORMAT", "FAILDIFF_LOG_LEVEL", "FAILDIFF_OUTPUT_DIR", "FAILDIFF_WORKERS", "FAILDIFF_NO_COLOR", "NO_COLOR"} {
		t.Setenv(key, "")
	}
	return dir
}

func runCLI(t *testing.T, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, bytes.NewReader(nil), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func writeZip(t *testing.T, path string, files map[string]string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmd := newRootCommand(&app{})
	for _, name := range []string{"analyze", "compare", "browse", "version"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestVersion_PrintsBuildInfo(t *testing.T) {
	isolate(t)
	res := runCLI(t, "version")
	assert.Equal(t, ExitSuccess, res.code)
	assert.Contains(t, res.stdout, "faildiff ")
	assert.Contains(t, res.stdout, "commit")
}

func TestAnalyze_WritesReportsAndExitsOne_When_FailuresFound(t *testing.T) {
	dir := isolate(t)
	zipPath := writeZip(t, filepath.Join(dir, "run.zip"), map[string]string{
		"reports/TEST-join.xml": failingSuite,
	})
	out := filepath.Join(dir, "out")

	res := runCLI(t, "analyze", zipPath, "--output-dir", out, "--format", "llm")

	require.Equal(t, ExitFailure, res.code, res.stderr)
	assert.Contains(t, res.stdout, "SCOPE: FAIL 2 failed tests in 1 archive, 2 modules affected")
	assert.Empty(t, res.stderr)

	rows := readCSV(t, filepath.Join(out, "test_failures.csv"))
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Test Name", "Class Name", "Source File", "Module", "Status", "Message", "Duration (s)", "Zip File"}, rows[0])
	assert.Equal(t, []string{
		"inner join", "org.apache.spark.sql.JoinSuite", "org/apache/spark/sql/Join.scala",
		"sql/core", "failure", "expected 3 but got 4", "1.5", "run.zip",
	}, rows[1])
	assert.Equal(t, "streaming", rows[2][3])

	html, err := os.ReadFile(filepath.Join(out, "test_failures.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "inner join")
}

func TestAnalyze_CustomReportNames(t *testing.T) {
	dir := isolate(t)
	zipPath := writeZip(t, filepath.Join(dir, "run.zip"), map[string]string{"TEST-a.xml": failingSuite})

	res := runCLI(t, "analyze", zipPath, "-o", dir, "--csv-name", "f.csv", "--html-name", "f.html", "--format", "llm")

	require.Equal(t, ExitFailure, res.code, res.stderr)
	assert.FileExists(t, filepath.Join(dir, "f.csv"))
	assert.FileExists(t, filepath.Join(dir, "f.html"))
	assert.NoFileExists(t, filepath.Join(dir, "test_failures.csv"))
}

func TestAnalyze_NoFilesAndExitZero_When_Clean(t *testing.T) {
	dir := isolate(t)
	zipPath := writeZip(t, filepath.Join(dir, "clean.zip"), map[string]string{"TEST-a.xml": passingSuite})

	res := runCLI(t, "analyze", zipPath, "-o", dir, "--format", "llm")

	assert.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "PASS no test failures/errors found in 1 archive")
	assert.NoFileExists(t, filepath.Join(dir, "test_failures.csv"))
	assert.NoFileExists(t, filepath.Join(dir, "test_failures.html"))
}

func TestAnalyze_NoFilesFlag(t *testing.T) {
	dir := isolate(t)
	zipPath := writeZip(t, filepath.Join(dir, "run.zip"), map[string]string{"TEST-a.xml": failingSuite})

	res := runCLI(t, "analyze", zipPath, "-o", dir, "--no-files", "--format", "llm")

	assert.Equal(t, ExitFailure, res.code)
	assert.NoFileExists(t, filepath.Join(dir, "test_failures.csv"))
}

func TestAnalyze_ExitsThree_When_NoArchiveReadable(t *testing.T) {
	dir := isolate(t)
	bogus := filepath.Join(dir, "bogus.zip")
	require.NoError(t, os.WriteFile(bogus, []byte("not a zip"), 0o644))

	res := runCLI(t, "analyze", bogus, filepath.Join(dir, "missing.zip"), "-o", dir, "--format", "llm")

	assert.Equal(t, ExitNoData, res.code)
	assert.Contains(t, res.stderr, "no readable archives")
	assert.NoFileExists(t, filepath.Join(dir, "test_failures.csv"))
}

func TestAnalyze_SkipsBadArchive_When_OthersReadable(t *testing.T) {
	dir := isolate(t)
	good := writeZip(t, filepath.Join(dir, "good.zip"), map[string]string{"TEST-a.xml": failingSuite})
	bogus := filepath.Join(dir, "bogus.zip")
	require.NoError(t, os.WriteFile(bogus, []byte("not a zip"), 0o644))

	res := runCLI(t, "analyze", bogus, good, "-o", dir, "--format", "llm")

	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stdout, "1 archive")
	assert.Contains(t, res.stdout, "WARN bogus.zip")
	assert.Contains(t, res.stdout, "Archives 1/2 readable")
}

func TestAnalyze_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no archives", args: []string{"analyze"}},
		{name: "unknown flag", args: []string{"analyze", "--bogus", "x.zip"}},
		{name: "bad format", args: []string{"analyze", "--format", "xml", "x.zip"}},
		{name: "bad theme", args: []string{"analyze", "--theme", "neon", "x.zip"}},
		{name: "unknown command", args: []string{"explode"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			res := runCLI(t, tt.args...)
			assert.Equal(t, ExitUsage, res.code)
			assert.NotEmpty(t, res.stderr)
		})
	}
}

func TestCompare_Zips_ReportsRegressions(t *testing.T) {
	dir := isolate(t)
	base := writeZip(t, filepath.Join(dir, "base.zip"), map[string]string{"TEST-a.xml": failingSuite})
	head := writeZip(t, filepath.Join(dir, "head.zip"), map[string]string{"TEST-a.xml": regressedSuite})

	res := runCLI(t, "compare", "--baseline-zip", base, "--current-zip", head, "-o", dir, "--format", "json")
	require.Equal(t, ExitFailure, res.code, res.stderr)

	var out struct {
		Patterns []struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		} `json:"patterns"`
		Records map[string][]map[string]any `json:"records"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	require.NotEmpty(t, out.Patterns)
	assert.Equal(t, "summary", out.Patterns[0].Type)
	assert.Contains(t, string(out.Patterns[0].Data), "FAIL 1 new failure (head vs base)")

	require.Len(t, out.Records["new"], 1)
	assert.Equal(t, "pagerank", out.Records["new"][0]["test_name"])
	assert.Equal(t, "diverged", out.Records["new"][0]["message"])
	assert.Contains(t, out.Records["new"][0], "stack_trace")
	require.Len(t, out.Records["fixed"], 1)
	assert.Equal(t, "npe", out.Records["fixed"][0]["stack_trace"])
	assert.Len(t, out.Records["common"], 1)

	rows := readCSV(t, filepath.Join(dir, "comparison.csv"))
	require.Len(t, rows, 4)
	assert.Equal(t, "Category", rows[0][0])
	assert.Equal(t, []string{"NEW FAILURE", "pagerank"}, rows[1][:2])
	assert.Equal(t, []string{"COMMON (Known)", "inner join"}, rows[2][:2])
	assert.Equal(t, []string{"FIXED", "window"}, rows[3][:2])
	assert.FileExists(t, filepath.Join(dir, "comparison.html"))
}

func TestCompare_Directories_FromAnalyzeOutput(t *testing.T) {
	dir := isolate(t)
	baseZip := writeZip(t, filepath.Join(dir, "in", "base.zip"), map[string]string{"TEST-a.xml": regressedSuite})
	headZip := writeZip(t, filepath.Join(dir, "in", "head.zip"), map[string]string{"TEST-a.xml": failingSuite})

	baseDir := filepath.Join(dir, "pr-100")
	headDir := filepath.Join(dir, "pr-101")
	require.Equal(t, ExitFailure, runCLI(t, "analyze", baseZip, "-o", filepath.Join(baseDir, "reports"), "--format", "llm").code)
	require.Equal(t, ExitFailure, runCLI(t, "analyze", headZip, "-o", headDir, "--format", "llm").code)

	res := runCLI(t, "compare", baseDir, headDir, "-o", dir, "--format", "llm")

	require.Equal(t, ExitFailure, res.code, res.stderr)
	assert.Contains(t, res.stdout, "SCOPE: FAIL 1 new failure (pr-101 vs pr-100)")
	assert.Contains(t, res.stdout, "window")
}

func TestCompare_ExitsZero_When_NoNewFailures(t *testing.T) {
	dir := isolate(t)
	base := writeZip(t, filepath.Join(dir, "base.zip"), map[string]string{"TEST-a.xml": failingSuite})
	head := writeZip(t, filepath.Join(dir, "head.zip"), map[string]string{"TEST-a.xml": passingSuite})

	res := runCLI(t, "compare", base, head, "--baseline-name", "main", "--current-name", "feature", "--no-files", "--format", "llm")

	assert.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "PASS no new regressions (feature vs main)")
	assert.NoFileExists(t, filepath.Join(dir, "comparison.csv"))
}

func TestCompare_InputErrors(t *testing.T) {
	dir := isolate(t)
	base := writeZip(t, filepath.Join(dir, "base.zip"), map[string]string{"TEST-a.xml": failingSuite})
	head := writeZip(t, filepath.Join(dir, "head.zip"), map[string]string{"TEST-a.xml": regressedSuite})
	require.Equal(t, ExitFailure, runCLI(t, "compare", base, head, "-o", dir, "--format", "llm").code)

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.MkdirAll(empty, 0o755))
	bogus := filepath.Join(dir, "bogus.zip")
	require.NoError(t, os.WriteFile(bogus, []byte("nope"), 0o644))

	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "one positional", args: []string{"compare", base}, want: ExitUsage},
		{name: "nothing given", args: []string{"compare"}, want: ExitUsage},
		{name: "positional and flags", args: []string{"compare", base, head, "--baseline-zip", base}, want: ExitUsage},
		{name: "dir and zip on one side", args: []string{"compare", "--baseline-dir", empty, "--baseline-zip", base, "--current-zip", head}, want: ExitUsage},
		{name: "missing path", args: []string{"compare", filepath.Join(dir, "nope"), head}, want: ExitUsage},
		{name: "comparison report as input", args: []string{"compare", filepath.Join(dir, "comparison.csv"), head}, want: ExitUsage},
		{name: "directory without report", args: []string{"compare", empty, head}, want: ExitNoData},
		{name: "unreadable zips", args: []string{"compare", "--baseline-zip", bogus, "--current-zip", head}, want: ExitNoData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, append(tt.args, "--no-files", "--format", "llm")...)
			assert.Equal(t, tt.want, res.code, res.stderr)
		})
	}
}

func TestBrowse_RequiresTerminal(t *testing.T) {
	dir := isolate(t)
	zipPath := writeZip(t, filepath.Join(dir, "run.zip"), map[string]string{"TEST-a.xml": failingSuite})

	res := runCLI(t, "browse", zipPath)

	assert.Equal(t, ExitUsage, res.code)
	assert.Contains(t, res.stderr, "terminal")
}

func TestDisplayNames(t *testing.T) {
	assert.Equal(t, "pr-100", csvDisplayName(filepath.Join("runs", "pr-100", "reports", "test_failures.csv")))
	assert.Equal(t, "pr-100", csvDisplayName(filepath.Join("runs", "pr-100", "test_failures.csv")))
	assert.Equal(t, "test_failures", csvDisplayName("test_failures.csv"))
	assert.Equal(t, "base", zipDisplayName([]string{filepath.Join("x", "base.zip")}))
	assert.Equal(t, "base +2", zipDisplayName([]string{"base.zip", "b.zip", "c.zip"}))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitNoData, GetExitCode(NewExitError(ExitNoData, "x")))
	assert.Equal(t, ExitFailure, GetExitCode(outcome(ExitFailure)))
	assert.NoError(t, outcome(ExitSuccess))
	assert.Equal(t, ExitUsage, GetExitCode(assert.AnError))
}
