package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/raphaelgruber/chatlens/internal/analyzer"
)

// maxUploadBytes bounds uploaded chat exports (memory threshold for the
// multipart reader; larger parts spill to disk).
const maxUploadBytes = 32 << 20

// saveUpload writes the uploaded "file" part to a temp file, preserving the
// original extension so format dispatch can see it.
func saveUpload(r *http.Request) (path string, cleanup func(), err error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", nil, fmt.Errorf("parse multipart form: %w", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, fmt.Errorf("missing form file: file")
	}
	defer file.Close()

	suffix := filepath.Ext(header.Filename)
	if suffix == "" {
		suffix = ".txt"
	}

	tmp, err := os.CreateTemp("", "chatlens-upload-*"+suffix)
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("close upload: %w", err)
	}

	return tmp.Name(), func() { os.Remove(tmp.Name()) }, nil
}

// filterOptions reads the optional participant/start_date/end_date form
// fields. Dates are ISO (YYYY-MM-DD or full RFC 3339 without zone).
func filterOptions(r *http.Request) (analyzer.FilterOptions, error) {
	opts := analyzer.FilterOptions{Participant: r.FormValue("participant")}

	if v := r.FormValue("start_date"); v != "" {
		t, err := parseISODate(v)
		if err != nil {
			return opts, fmt.Errorf("invalid start_date: %w", err)
		}
		opts.StartDate = &t
	}
	if v := r.FormValue("end_date"); v != "" {
		t, err := parseISODate(v)
		if err != nil {
			return opts, fmt.Errorf("invalid end_date: %w", err)
		}
		opts.EndDate = &t
	}
	return opts, nil
}

func parseISODate(v string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format: %s", v)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
