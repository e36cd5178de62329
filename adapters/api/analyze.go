package api

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"statdesc/adapters/excel"
	"statdesc/domain/stats"
	"statdesc/internal/analysis/vartype"
	"statdesc/internal/dataset"
	"statdesc/internal/errors"
)

// multipart parts beyond the file itself stay small; this is their budget
const formOverhead = 1 << 20

// AnalyzeResponse is the body of a successful POST /v1/analyze
type AnalyzeResponse struct {
	Summary stats.DatasetSummary `json:"summary"`
	Results []dataset.Analysis   `json:"results"`
}

// handleAnalyze accepts a multipart upload in field "file" and returns the
// analysis of every column. Query parameters:
//
//	type=col:kind        overrides the inferred kind (repeatable)
//	ordinal=col:a|b|c    sets the category order (repeatable)
//	sheet=name           selects the XLSX worksheet
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+formOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("no file uploaded: %w", err)))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !supported(ext) {
		s.writeError(w, errors.InvalidInput(fmt.Sprintf("unsupported file type %q, expected one of %s",
			ext, strings.Join(excel.SupportedExtensions(), ", "))))
		return
	}

	query := r.URL.Query()
	types, err := ParseTypes(query["type"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	orderings, err := ParseOrderings(query["ordinal"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	path, err := s.storage.Store(ctx, file, header.Filename)
	if err != nil {
		s.writeError(w, errors.Wrap(err, "failed to store upload"))
		return
	}
	defer func() {
		if err := s.storage.Delete(ctx, path); err != nil {
			s.logger.Warn("[API] %v", err)
		}
	}()

	reader, err := excel.NewDataReader(path, excel.WithSheet(query.Get("sheet")), excel.WithLogger(s.logger))
	if err != nil {
		s.writeError(w, err)
		return
	}

	name := strings.TrimSuffix(filepath.Base(header.Filename), filepath.Ext(header.Filename))
	ds, err := dataset.Load(ctx, name, reader,
		dataset.WithTypeOverrides(types),
		dataset.WithOrderings(orderings),
		dataset.WithLogger(s.logger),
	)
	if err != nil {
		s.writeError(w, err)
		return
	}

	results, err := ds.AnalyzeAll(ctx, s.workers)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info("[API] analyzed %q: %d variables", name, len(results))
	writeJSON(w, http.StatusOK, AnalyzeResponse{Summary: ds.Summary(), Results: results})
}

func supported(ext string) bool {
	for _, known := range excel.SupportedExtensions() {
		if ext == known {
			return true
		}
	}
	return false
}

// ParseTypes reads "col:kind" assignments
func ParseTypes(values []string) (map[string]vartype.Kind, error) {
	types := make(map[string]vartype.Kind, len(values))
	for _, v := range values {
		col, name, err := splitAssignment(v, "type")
		if err != nil {
			return nil, err
		}
		kind, err := vartype.ParseKind(name)
		if err != nil {
			return nil, errors.Wrapf(err, "type for column %q", col)
		}
		types[col] = kind
	}
	return types, nil
}

// ParseOrderings reads "col:a|b|c" category orders
func ParseOrderings(values []string) (map[string][]string, error) {
	orderings := make(map[string][]string, len(values))
	for _, v := range values {
		col, list, err := splitAssignment(v, "ordinal")
		if err != nil {
			return nil, err
		}
		var labels []string
		for _, label := range strings.Split(list, "|") {
			if label = strings.TrimSpace(label); label != "" {
				labels = append(labels, label)
			}
		}
		if len(labels) == 0 {
			return nil, errors.ConfigInvalid(fmt.Sprintf("ordinal for column %q lists no categories", col))
		}
		orderings[col] = labels
	}
	return orderings, nil
}

// column names may contain ':' so the last one separates the value
func splitAssignment(v, param string) (string, string, error) {
	i := strings.LastIndex(v, ":")
	if i <= 0 || i == len(v)-1 {
		return "", "", errors.ConfigInvalid(fmt.Sprintf("%s parameter %q must look like column:value", param, v))
	}
	return strings.TrimSpace(v[:i]), strings.TrimSpace(v[i+1:]), nil
}
