package junit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/faildiff/pkg/failure"
)

func extract(t *testing.T, xml string) []failure.Record {
	t.Helper()
	records, _ := NewExtractor(nil).Extract(xml, "run.zip")
	return records
}

func TestExtract_SingleFailure(t *testing.T) {
	xml := `<?xml version="1.0" encoding="UTF-8"?>
<testsuite name="JoinSuite" tests="2">
  <testcase classname="org.apache.spark.sql.JoinSuite" name="inner join" time="1.25">
    <failure message="expected 3 but got 4" type="org.scalatest.exceptions.TestFailedException">
      org.scalatest.exceptions.TestFailedException: expected 3 but got 4
        at org.apache.spark.sql.JoinSuite.$anonfun$new$1(JoinSuite.scala:42)
    </failure>
  </testcase>
  <testcase classname="org.apache.spark.sql.JoinSuite" name="outer join" time="0.5"/>
</testsuite>`

	records := extract(t, xml)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "inner join", r.TestName)
	assert.Equal(t, "org.apache.spark.sql.JoinSuite", r.ClassName)
	assert.Equal(t, failure.StatusFailure, r.Status)
	assert.Equal(t, "expected 3 but got 4", r.Message)
	assert.True(t, strings.HasPrefix(r.StackTrace, "org.scalatest.exceptions.TestFailedException"))
	assert.True(t, strings.HasSuffix(r.StackTrace, "(JoinSuite.scala:42)"))
	assert.InDelta(t, 1.25, r.Duration, 1e-9)
	assert.Equal(t, "sql/core", r.ModuleName)
	assert.Equal(t, "org/apache/spark/sql/Join.scala", r.SourceFile)
	assert.Equal(t, "run.zip", r.Origin)
}

func TestExtract_PassingCaseYieldsNothing(t *testing.T) {
	xml := `<testsuite>
  <testcase classname="a.B" name="ok" time="0.1"></testcase>
  <testcase classname="a.B" name="ok2" time="0.1"><system-out>fine</system-out></testcase>
</testsuite>`
	records, stats := NewExtractor(nil).Extract(xml, "x")
	assert.Empty(t, records)
	assert.Equal(t, 2, stats.Cases)
	assert.Equal(t, 0, stats.Failing)
}

func TestExtract_ErrorOutranksFailure(t *testing.T) {
	xml := `<testcase classname="a.B" name="both">
  <failure message="assertion">trace one</failure>
  <error message="boom">trace two</error>
</testcase>`
	records := extract(t, xml)
	require.Len(t, records, 1)
	assert.Equal(t, failure.StatusError, records[0].Status)
	assert.Equal(t, "boom", records[0].Message)
	assert.Equal(t, "trace two", records[0].StackTrace)
}

func TestExtract_SkippedNeedsAbortedKeyword(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		want int
	}{
		{
			name: "intentional skip is dropped",
			xml:  `<testcase classname="a.B" name="t"><skipped message="ignored by tag"/></testcase>`,
			want: 0,
		},
		{
			name: "aborted skip is reported",
			xml:  `<testcase classname="a.B" name="t"><skipped message="Test Aborted: timeout"/></testcase>`,
			want: 1,
		},
		{
			name: "keyword match is case-insensitive and may sit in the body",
			xml:  `<testcase classname="a.B" name="t"><skipped>suite ABORTED after crash</skipped></testcase>`,
			want: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := extract(t, tt.xml)
			require.Len(t, records, tt.want)
			if tt.want == 1 {
				assert.Equal(t, failure.StatusAborted, records[0].Status)
			}
		})
	}
}

func TestExtract_AbortedSelfClosingHasNoTrace(t *testing.T) {
	records := extract(t, `<testcase classname="a.B" name="t"><skipped message="aborted"/></testcase>`)
	require.Len(t, records, 1)
	assert.Equal(t, "aborted", records[0].Message)
	assert.Empty(t, records[0].StackTrace)
}

func TestExtract_MissingAttributesUseDefaults(t *testing.T) {
	records := extract(t, `<testcase time="not-a-number"><failure/></testcase>`)
	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, failure.Unknown, r.TestName)
	assert.Equal(t, failure.Unknown, r.ClassName)
	assert.Equal(t, failure.Unknown, r.ModuleName)
	assert.Zero(t, r.Duration)
	assert.Empty(t, r.Message)
}

func TestExtract_ClassnameBeforeName(t *testing.T) {
	records := extract(t, `<testcase classname="pkg.Suite" name="real name"><failure/></testcase>`)
	require.Len(t, records, 1)
	assert.Equal(t, "real name", records[0].TestName)
	assert.Equal(t, "pkg.Suite.real name", records[0].Key())
}

func TestExtract_MessageFallsBackToBody(t *testing.T) {
	xml := `<testcase classname="a.B" name="t">
  <failure>no attribute here</failure>
  <properties><property message="from elsewhere"/></properties>
</testcase>`
	records := extract(t, xml)
	require.Len(t, records, 1)
	assert.Equal(t, "from elsewhere", records[0].Message)
}

func TestExtract_MessageEntitiesDecoded(t *testing.T) {
	records := extract(t, `<testcase classname="a.B" name="t"><failure message="expected &lt;1&gt; &amp; got &quot;2&quot;"/></testcase>`)
	require.Len(t, records, 1)
	assert.Equal(t, `expected <1> & got "2"`, records[0].Message)
}

func TestExtract_CDATAUnwrapped(t *testing.T) {
	xml := `<testcase classname="a.B" name="t"><error message="npe"><![CDATA[
java.lang.NullPointerException: <null>
	at a.B.t(B.java:10)
]]></error></testcase>`
	records := extract(t, xml)
	require.Len(t, records, 1)
	assert.Equal(t, "java.lang.NullPointerException: <null>\n\tat a.B.t(B.java:10)", records[0].StackTrace)
}

func TestExtract_QuotedGreaterThanInAttribute(t *testing.T) {
	records := extract(t, `<testcase classname="a.B" name="x > y"><failure message="a > b">t</failure></testcase>`)
	require.Len(t, records, 1)
	assert.Equal(t, "x > y", records[0].TestName)
	assert.Equal(t, "a > b", records[0].Message)
}

func TestExtract_Truncation(t *testing.T) {
	longMsg := strings.Repeat("m", 750)
	longTrace := strings.Repeat("t", 2600)
	xml := `<testcase classname="a.B" name="t"><failure message="` + longMsg + `">` + longTrace + `</failure></testcase>`

	records := extract(t, xml)
	require.Len(t, records, 1)
	assert.Len(t, records[0].Message, failure.MaxMessageLen)
	assert.Len(t, records[0].StackTrace, failure.MaxStackTraceLen)
}

func TestExtract_TruncationCountsCharacters(t *testing.T) {
	longMsg := strings.Repeat("é", 600)
	records := extract(t, `<testcase classname="a.B" name="t"><failure message="`+longMsg+`"/></testcase>`)
	require.Len(t, records, 1)
	assert.Equal(t, failure.MaxMessageLen, len([]rune(records[0].Message)))
}

func TestExtract_MalformedBlocksSkipped(t *testing.T) {
	xml := `<testcase classname="a.B" name="good"><failure message="x"/></testcase>
<testcase classname="a.B" name="broken"><failure message="never closed"/>`
	records, stats := NewExtractor(nil).Extract(xml, "r")
	require.Len(t, records, 1)
	assert.Equal(t, "good", records[0].TestName)
	assert.Equal(t, 1, stats.Malformed)
}

func TestExtract_UnterminatedOpenTag(t *testing.T) {
	records, stats := NewExtractor(nil).Extract(`<testcase classname="a.B" name="t"`, "r")
	assert.Empty(t, records)
	assert.Equal(t, 1, stats.Malformed)
}

func TestExtract_TagNamePrefixesIgnored(t *testing.T) {
	xml := `<testcases><testcase classname="a.B" name="t"><errors-count>0</errors-count><failures/></testcase></testcases>`
	assert.Empty(t, extract(t, xml))
}

func TestExtract_DocumentOrder(t *testing.T) {
	xml := `<testcase classname="z.Z" name="first"><failure/></testcase>
<testcase classname="a.A" name="second"><error/></testcase>`
	records := extract(t, xml)
	require.Len(t, records, 2)
	assert.Equal(t, "first", records[0].TestName)
	assert.Equal(t, "second", records[1].TestName)
}

func TestExtract_LineEndingsNormalized(t *testing.T) {
	xml := "<testcase classname=\"a.B\" name=\"t\"><failure message=\"line1&#13;&#10;line2&#13;line3\">at a\r\nat b\rat c</failure></testcase>"
	records := extract(t, xml)
	require.Len(t, records, 1)
	assert.Equal(t, "line1\nline2\nline3", records[0].Message)
	assert.Equal(t, "at a\nat b\nat c", records[0].StackTrace)
}

func TestExtract_TraceEntitiesOutsideCDATAKept(t *testing.T) {
	xml := `<testcase classname="a.B" name="t"><error message="npe">at a.B.&lt;init&gt;(B.java:3)</error></testcase>`
	records := extract(t, xml)
	require.Len(t, records, 1)
	assert.Equal(t, "at a.B.&lt;init&gt;(B.java:3)", records[0].StackTrace)
}

func TestExtract_TimeMustBePlainNumber(t *testing.T) {
	tests := []struct {
		time string
		want float64
	}{
		{time: "1.5", want: 1.5},
		{time: " 2 ", want: 2},
		{time: "1.5s", want: 0},
		{time: "-3", want: 0},
		{time: "NaN", want: 0},
		{time: "", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.time, func(t *testing.T) {
			records := extract(t, `<testcase classname="a.B" name="t" time="`+tt.time+`"><failure/></testcase>`)
			require.Len(t, records, 1)
			assert.InDelta(t, tt.want, records[0].Duration, 1e-9)
		})
	}
}
