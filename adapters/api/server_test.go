package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"statdesc/internal/analysis/vartype"
	"statdesc/internal/config"
	"statdesc/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const surveyCSV = "flag;age;level\n1;23;low\n0;35;high\n1;41;medium\n1;35;low\n0;52;high\n"

func newTestServer(t *testing.T, maxUploadMB int) *Server {
	t.Helper()
	cfg := &config.Config{
		Analysis: config.AnalysisConfig{Workers: 2},
		Server:   config.ServerConfig{Port: "0", MaxUploadMB: maxUploadMB, UploadDir: t.TempDir()},
	}
	return NewServer(cfg, nil)
}

func uploadRequest(t *testing.T, target, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(t, 1).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAnalyze_CSV(t *testing.T) {
	rec := httptest.NewRecorder()
	req := uploadRequest(t, "/v1/analyze?ordinal=level:low%7Cmedium%7Chigh&type=age:continuous", "survey.csv", surveyCSV)

	newTestServer(t, 1).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp struct {
		Summary struct {
			Name          string `json:"name"`
			VariableCount int    `json:"variable_count"`
			RecordCount   int    `json:"record_count"`
		} `json:"summary"`
		Results []struct {
			Name   string                     `json:"name"`
			Kind   string                     `json:"kind"`
			Result map[string]json.RawMessage `json:"result"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "survey", resp.Summary.Name)
	assert.Equal(t, 3, resp.Summary.VariableCount)
	assert.Equal(t, 5, resp.Summary.RecordCount)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, "binary", resp.Results[0].Kind)
	assert.Equal(t, "continuous", resp.Results[1].Kind)
	assert.Equal(t, "ordinal", resp.Results[2].Kind)
	assert.JSONEq(t, `"medium"`, string(resp.Results[2].Result["median"]))
}

func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		filename string
		content  string
		status   int
		code     string
	}{
		{"unsupported extension", "/v1/analyze", "notes.txt", "a", http.StatusBadRequest, errors.CodeInvalidInput},
		{"unknown kind", "/v1/analyze?type=age:ratio", "s.csv", surveyCSV, http.StatusBadRequest, errors.CodeConfigInvalid},
		{"malformed type", "/v1/analyze?type=age", "s.csv", surveyCSV, http.StatusBadRequest, errors.CodeConfigInvalid},
		{"unknown column", "/v1/analyze?type=height:discrete", "s.csv", surveyCSV, http.StatusBadRequest, errors.CodeConfigInvalid},
		{"empty file", "/v1/analyze", "s.csv", "", http.StatusBadRequest, errors.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newTestServer(t, 1).ServeHTTP(rec, uploadRequest(t, tt.target, tt.filename, tt.content))

			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestAnalyze_MissingFile(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", nil)

	newTestServer(t, 1).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(errors.NotFound("variable x")))
	assert.Equal(t, http.StatusBadRequest, StatusFor(errors.InvalidInput("bad")))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.InternalError("boom")))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(assert.AnError))
}

func TestParseAssignments(t *testing.T) {
	types, err := ParseTypes([]string{"a:b:binary", " age : Discrete "})
	require.NoError(t, err)
	assert.Equal(t, map[string]vartype.Kind{"a:b": vartype.Binary, "age": vartype.Discrete}, types)

	orderings, err := ParseOrderings([]string{"level:low| mid |high"})
	require.NoError(t, err)
	assert.Equal(t, []string{"low", "mid", "high"}, orderings["level"])

	_, err = ParseOrderings([]string{"level:|"})
	assert.True(t, errors.IsConfigurationError(err))
	_, err = ParseTypes([]string{":binary"})
	assert.True(t, errors.IsConfigurationError(err))
}

func TestWriteError_Codes(t *testing.T) {
	s := newTestServer(t, 1)
	tests := []struct {
		err  error
		code string
	}{
		{errors.NotFound("variable x"), errors.CodeNotFound},
		{errors.Wrap(errors.ConfigInvalid("bad"), "loading"), errors.CodeConfigInvalid},
		{assert.AnError, errors.CodeInternalError},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		s.writeError(rec, tt.err)

		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, tt.code, resp.Code)
		assert.Equal(t, tt.err.Error(), resp.Error)
	}
}
