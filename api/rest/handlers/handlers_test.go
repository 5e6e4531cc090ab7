package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"doomsday-orchestrator/api/rest/routes"
	"doomsday-orchestrator/core/engine"
	"doomsday-orchestrator/core/guestbook"
	"doomsday-orchestrator/core/orchestrator"
	"doomsday-orchestrator/core/storage/memory"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, opts orchestrator.Options) *httptest.Server {
	t.Helper()
	store := memory.New()
	orch := orchestrator.New(store, engine.NewScripted(20*time.Millisecond), opts, zap.NewNop())
	manager := guestbook.NewManager(store, nil, zap.NewNop())

	r := mux.NewRouter()
	routes.SetupRoutes(r, orch, manager, zap.NewNop())

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doRequest(t *testing.T, srv *httptest.Server, method, path string, body interface{}) (int, map[string]json.RawMessage) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func jsonString(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	var s string
	require.NoError(t, json.Unmarshal(raw, &s))
	return s
}

func validSurvey(sessionID string) map[string]string {
	return map[string]string{
		"session_id": sessionID,
		"name":       "Kim",
		"job_title":  "accountant",
		"strengths":  "spreadsheets",
		"hobbies":    "chess",
	}
}

func TestSubmitSurveyAcceptsAndStartsAnalyzing(t *testing.T) {
	srv := newTestServer(t, orchestrator.Options{})

	status, body := doRequest(t, srv, http.MethodPost, "/survey", validSurvey("s-1"))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "s-1", jsonString(t, body["session_id"]))
	assert.Equal(t, "analyzing", jsonString(t, body["status"]))
}

func TestSubmitSurveyRejectsMissingFields(t *testing.T) {
	srv := newTestServer(t, orchestrator.Options{})

	status, body := doRequest(t, srv, http.MethodPost, "/survey", map[string]string{
		"session_id": "s-1",
		"name":       "Kim",
		"hobbies":    "chess",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	var details []string
	require.NoError(t, json.Unmarshal(body["details"], &details))
	assert.Equal(t, []string{"job_title", "strengths"}, details)
}

func TestSubmitSurveyRequiresSession(t *testing.T) {
	srv := newTestServer(t, orchestrator.Options{})

	status, _ := doRequest(t, srv, http.MethodPost, "/survey", validSurvey(""))
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestResultUnknownSession(t *testing.T) {
	srv := newTestServer(t, orchestrator.Options{})

	status, _ := doRequest(t, srv, http.MethodGet, "/result/nobody", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSurveyLifecycleThroughPolling(t *testing.T) {
	srv := newTestServer(t, orchestrator.Options{})

	status, _ := doRequest(t, srv, http.MethodPost, "/survey", validSurvey("s-life"))
	require.Equal(t, http.StatusOK, status)

	// Immediately after submission the job is provisional.
	status, body := doRequest(t, srv, http.MethodGet, "/result/s-life", nil)
	require.Equal(t, http.StatusAccepted, status)
	assert.Equal(t, "analyzing", jsonString(t, body["status"]))
	assert.NotContains(t, body, "dday")

	require.Eventually(t, func() bool {
		status, body = doRequest(t, srv, http.MethodGet, "/result/s-life", nil)
		return status == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, "completed", jsonString(t, body["status"]))

	var dday int
	require.NoError(t, json.Unmarshal(body["dday"], &dday))
	assert.GreaterOrEqual(t, dday, 0)

	var cards []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body["career_cards"], &cards))
	assert.Len(t, cards, 3)

	var risks []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body["skill_risks"], &risks))
	assert.GreaterOrEqual(t, len(risks), 3)
}

func TestResubmitConflictWhileAnalyzing(t *testing.T) {
	srv := newTestServer(t, orchestrator.Options{RejectResubmit: true})

	status, _ := doRequest(t, srv, http.MethodPost, "/survey", validSurvey("s-busy"))
	require.Equal(t, http.StatusOK, status)

	status, _ = doRequest(t, srv, http.MethodPost, "/survey", validSurvey("s-busy"))
	assert.Equal(t, http.StatusConflict, status)
}

func TestGuestbookPostAndList(t *testing.T) {
	srv := newTestServer(t, orchestrator.Options{})

	ids := make([]string, 3)
	for i := range ids {
		status, body := doRequest(t, srv, http.MethodPost, "/guestbook", map[string]interface{}{
			"session_id": "s-gb",
			"job_title":  "librarian",
			"dday":       5,
			"message":    fmt.Sprintf("entry %d", i),
		})
		require.Equal(t, http.StatusOK, status)
		ids[i] = jsonString(t, body["entry_id"])
		assert.NotEmpty(t, body["created_at"])
	}

	// First page: 2 newest entries and a cursor.
	status, body := doRequest(t, srv, http.MethodGet, "/guestbook?limit=2", nil)
	require.Equal(t, http.StatusOK, status)

	var page []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body["items"], &page))
	require.Len(t, page, 2)
	assert.Equal(t, ids[2], jsonString(t, page[0]["entry_id"]))
	assert.Equal(t, ids[1], jsonString(t, page[1]["entry_id"]))

	var lastKey *string
	require.NoError(t, json.Unmarshal(body["last_key"], &lastKey))
	require.NotNil(t, lastKey)

	// Second page drains the log; the cursor goes null.
	status, body = doRequest(t, srv, http.MethodGet, "/guestbook?limit=2&last_key="+*lastKey, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body["items"], &page))
	require.Len(t, page, 1)
	assert.Equal(t, ids[0], jsonString(t, page[0]["entry_id"]))

	require.NoError(t, json.Unmarshal(body["last_key"], &lastKey))
	assert.Nil(t, lastKey)
}

func TestGuestbookEmptyListIsEmptyArray(t *testing.T) {
	srv := newTestServer(t, orchestrator.Options{})

	status, body := doRequest(t, srv, http.MethodGet, "/guestbook", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "[]", string(body["items"]))
}

func TestGuestbookPostRejectsMissingFields(t *testing.T) {
	srv := newTestServer(t, orchestrator.Options{})

	status, body := doRequest(t, srv, http.MethodPost, "/guestbook", map[string]interface{}{
		"session_id": "s-gb",
		"dday":       5,
	})
	assert.Equal(t, http.StatusBadRequest, status)

	var details []string
	require.NoError(t, json.Unmarshal(body["details"], &details))
	assert.Equal(t, []string{"job_title", "message"}, details)
}

func TestGuestbookListRejectsBadInputs(t *testing.T) {
	srv := newTestServer(t, orchestrator.Options{})

	status, _ := doRequest(t, srv, http.MethodGet, "/guestbook?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doRequest(t, srv, http.MethodGet, "/guestbook?last_key=not-a-cursor", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestReactionRoundTrip(t *testing.T) {
	srv := newTestServer(t, orchestrator.Options{})

	status, body := doRequest(t, srv, http.MethodPost, "/guestbook", map[string]interface{}{
		"session_id": "s-gb",
		"job_title":  "pilot",
		"dday":       2,
		"message":    "see you on the other side",
	})
	require.Equal(t, http.StatusOK, status)
	entryID := jsonString(t, body["entry_id"])

	status, body = doRequest(t, srv, http.MethodPost, "/guestbook/"+entryID+"/reaction", map[string]string{"emoji": "🔥"})
	require.Equal(t, http.StatusOK, status)

	var reactions map[string]int
	require.NoError(t, json.Unmarshal(body["reactions"], &reactions))
	assert.Equal(t, 1, reactions["🔥"])
	assert.Equal(t, 0, reactions["😱"])
	assert.Len(t, reactions, len(guestbook.DefaultEmojis))
}

func TestReactionErrors(t *testing.T) {
	srv := newTestServer(t, orchestrator.Options{})

	status, body := doRequest(t, srv, http.MethodPost, "/guestbook", map[string]interface{}{
		"session_id": "s-gb",
		"job_title":  "pilot",
		"dday":       2,
		"message":    "hold the line",
	})
	require.Equal(t, http.StatusOK, status)
	entryID := jsonString(t, body["entry_id"])

	// Outside the vocabulary.
	status, _ = doRequest(t, srv, http.MethodPost, "/guestbook/"+entryID+"/reaction", map[string]string{"emoji": "🙃"})
	assert.Equal(t, http.StatusBadRequest, status)

	// Unknown entry.
	status, _ = doRequest(t, srv, http.MethodPost, "/guestbook/no-such-entry/reaction", map[string]string{"emoji": "🔥"})
	assert.Equal(t, http.StatusNotFound, status)
}
