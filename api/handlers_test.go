package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/repayment-engine/api"
	"github.com/warp/repayment-engine/store/sqlite"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	archive, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { archive.Close() })

	srv := httptest.NewServer(api.NewRouter(api.NewHandler(archive)))
	t.Cleanup(srv.Close)
	return srv
}

func postSchedule(t *testing.T, srv *httptest.Server, body api.ScheduleRequest, query string) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/api/schedules"+query, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func linearRequest() api.ScheduleRequest {
	return api.ScheduleRequest{
		Principal:   "120000",
		AnnualRate:  "0.02",
		Funding:     "2019-12-31",
		End:         "2020-12-31",
		Granularity: "monthly",
		Style:       "linear",
	}
}

func TestComputeSchedule_Linear(t *testing.T) {
	srv := newTestServer(t)

	resp := postSchedule(t, srv, linearRequest(), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out api.ScheduleResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	assert.Equal(t, "2020-01-01", out.Start)
	assert.Equal(t, "linear", out.Style)
	require.Len(t, out.Installments, 12)
	assert.Equal(t, "2020M01", out.Installments[0].Period)
	assert.Equal(t, "200.00", out.Installments[0].Interest)
	assert.Equal(t, "10000.00", out.Installments[0].Capital)
	assert.Equal(t, "120000.00", out.SumOfCapital)
	require.NotNil(t, out.RunID, "run must be archived")
}

func TestComputeSchedule_InvalidGranularity(t *testing.T) {
	srv := newTestServer(t)

	req := linearRequest()
	req.Granularity = "weekly"
	resp := postSchedule(t, srv, req, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var out api.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "Invalid schedule request", out.Error)
}

func TestComputeSchedule_BadDecimal(t *testing.T) {
	srv := newTestServer(t)

	req := linearRequest()
	req.Principal = "a lot"
	resp := postSchedule(t, srv, req, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestComputeSchedule_CSVFormat(t *testing.T) {
	srv := newTestServer(t)

	resp := postSchedule(t, srv, linearRequest(), "?format=csv")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))

	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 13, "header plus twelve rows")
	assert.Equal(t, "number,period,start,stop,length,interests,capital,whole", lines[0])
}

func TestComputeSchedule_TextFormat(t *testing.T) {
	srv := newTestServer(t)

	resp := postSchedule(t, srv, linearRequest(), "?format=text")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Sum of:")
}

func TestComputeSchedule_WithRateChangeAndGrace(t *testing.T) {
	srv := newTestServer(t)

	req := api.ScheduleRequest{
		Principal:          "120000",
		AnnualRate:         "0.02",
		Funding:            "2019-12-31",
		End:                "2020-12-31",
		Granularity:        "monthly",
		Style:              "balloon",
		FirstRepaymentDate: "2020-07-01",
		Rates:              []api.RateChangeDTO{{Date: "2020-01-15", Rate: "0.04"}},
	}

	resp := postSchedule(t, srv, req, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out api.ScheduleResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "2020-07-01", out.FirstRepaymentDate)
	assert.Equal(t, "309.68", out.Installments[0].Interest)
}

func TestRunArchive_Roundtrip(t *testing.T) {
	srv := newTestServer(t)

	resp := postSchedule(t, srv, linearRequest(), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out api.ScheduleResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotNil(t, out.RunID)

	listResp, err := http.Get(srv.URL + "/api/runs")
	require.NoError(t, err)
	defer listResp.Body.Close()
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var runs []api.RunDTO
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&runs))
	require.Len(t, runs, 1)
	assert.Equal(t, *out.RunID, runs[0].ID)
	assert.Equal(t, "linear", runs[0].Style)

	rowsResp, err := http.Get(srv.URL + "/api/runs/1/rows")
	require.NoError(t, err)
	defer rowsResp.Body.Close()
	require.Equal(t, http.StatusOK, rowsResp.StatusCode)

	var rows []api.InstallmentDTO
	require.NoError(t, json.NewDecoder(rowsResp.Body).Decode(&rows))
	require.Len(t, rows, 12)
	assert.Equal(t, "2020M12", rows[11].Period)
}

func TestGetRun_Unknown(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/runs/404")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
