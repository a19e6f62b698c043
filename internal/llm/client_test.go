package llm_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techjusticelab/opinion-ingest/internal/llm"
)

const validCaseJSON = `{
  "title": "State v. Doe",
  "court_level": "Court of Appeals",
  "issues": [
    {"issue_summary": "Whether the search was lawful", "taxonomy_case_type": "Criminal", "taxonomy_category": "Search and Seizure"},
    {"issue_summary": "Whether sentencing was proper", "taxonomy_case_type": "Criminal", "taxonomy_category": "Sentencing"}
  ]
}`

func TestExtractSucceedsOnFirstAttempt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content": ` + mustQuote(validCaseJSON) + `}`))
	}))
	defer srv.Close()

	c := llm.NewClient(srv.URL, "test-model", 5*time.Second, nil)
	result, err := c.Extract(context.Background(), "some opinion text")
	require.NoError(t, err)
	assert.Equal(t, "State v. Doe", result.Title)
	assert.Len(t, result.Issues, 2)
}

func TestExtractRetriesOnInvalidJSON(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Write([]byte(`{"content": "not valid json at all"}`))
			return
		}
		w.Write([]byte(`{"content": ` + mustQuote(validCaseJSON) + `}`))
	}))
	defer srv.Close()

	c := llm.NewClient(srv.URL, "test-model", 5*time.Second, nil)
	result, err := c.Extract(context.Background(), "some opinion text")
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, "State v. Doe", result.Title)
}

func TestExtractFailsAfterTwoAttempts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content": "still not json"}`))
	}))
	defer srv.Close()

	c := llm.NewClient(srv.URL, "test-model", 5*time.Second, nil)
	_, err := c.Extract(context.Background(), "some opinion text")
	assert.Error(t, err)
}

func TestExtractRejectsBadEnum(t *testing.T) {
	bad := strings.Replace(validCaseJSON, `"Court of Appeals"`, `"Not A Real Court"`, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content": ` + mustQuote(bad) + `}`))
	}))
	defer srv.Close()

	c := llm.NewClient(srv.URL, "test-model", 5*time.Second, nil)
	_, err := c.Extract(context.Background(), "some opinion text")
	assert.Error(t, err)
}

func TestTruncateSamplesHeadMiddleTail(t *testing.T) {
	text := strings.Repeat("a", 10000) + strings.Repeat("b", 10000) + strings.Repeat("c", 10000)
	out := llm.Truncate(text, 9000)
	assert.True(t, len(out) < len(text))
	assert.True(t, strings.HasPrefix(out, "aaa"))
	assert.True(t, strings.HasSuffix(out, "ccc"))
}

func TestTruncateLeavesShortTextAlone(t *testing.T) {
	text := "short opinion text"
	assert.Equal(t, text, llm.Truncate(text, 9000))
}

func mustQuote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
