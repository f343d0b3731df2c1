package conversion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/skillsenselab/mediagate/errors"
)

// fakeProvider is a minimal in-memory job API: create job, upload, poll,
// download.
type fakeProvider struct {
	t   *testing.T
	srv *httptest.Server

	mu             sync.Mutex
	jobCreates     int
	polls          int
	uploads        int
	uploadFilename string
	uploadParams   map[string]string

	// pollJobs is returned per poll in order; the last entry repeats.
	pollJobs     []job
	createdJob   *job
	downloadBody []byte
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()
	f := &fakeProvider{t: t, downloadBody: []byte("%PDF-1.7 converted")}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /jobs", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.jobCreates++

		j := f.defaultCreatedJob()
		if f.createdJob != nil {
			j = *f.createdJob
		}
		writeJob(w, j)
	})
	mux.HandleFunc("GET /jobs/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		idx := f.polls
		f.polls++
		if idx >= len(f.pollJobs) {
			idx = len(f.pollJobs) - 1
		}
		writeJob(w, f.pollJobs[idx])
	})
	mux.HandleFunc("POST /upload", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.uploads++

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			f.t.Errorf("parsing upload form: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.uploadParams = map[string]string{}
		for k := range r.MultipartForm.Value {
			f.uploadParams[k] = r.FormValue(k)
		}
		if _, hdr, err := r.FormFile("file"); err == nil {
			f.uploadFilename = hdr.Filename
		} else {
			f.t.Errorf("missing file field: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("GET /download/{name}", func(w http.ResponseWriter, r *http.Request) {
		w.Write(f.downloadBody)
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeProvider) defaultCreatedJob() job {
	return job{
		ID: "job-1",
		Tasks: []task{{
			ID:   "task-import",
			Name: taskImport,
			Result: &taskResult{Form: &uploadForm{
				URL:        f.srv.URL + "/upload",
				Parameters: map[string]string{"key": "uploads/doc"},
			}},
		}},
	}
}

func (f *fakeProvider) finishedJob(files ...taskFile) job {
	return job{
		ID:     "job-1",
		Status: statusFinished,
		Tasks: []task{
			{ID: "task-export", Name: taskExport, Status: statusFinished,
				Result: &taskResult{Files: files}},
		},
	}
}

func (f *fakeProvider) converter(t *testing.T) *Converter {
	t.Helper()
	c, err := NewConverter(Config{
		URL:          f.srv.URL,
		APIKey:       "test-key",
		PollInterval: time.Millisecond,
		WaitTimeout:  time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("creating converter: %v", err)
	}
	return c
}

func writeJob(w http.ResponseWriter, j job) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": j})
}

func docInput() Input {
	return Input{
		Data:         []byte("document bytes"),
		Filename:     "report.docx",
		TargetFormat: "pdf",
	}
}

func TestConvert_Success(t *testing.T) {
	f := newFakeProvider(t)
	f.pollJobs = []job{
		{ID: "job-1", Status: "processing"},
		f.finishedJob(taskFile{Filename: "report.pdf", URL: f.srv.URL + "/download/report.pdf"}),
	}

	res, err := f.converter(t).Convert(context.Background(), docInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(res.Bytes) != "%PDF-1.7 converted" {
		t.Errorf("unexpected bytes %q", res.Bytes)
	}
	if res.Filename != "report.pdf" {
		t.Errorf("unexpected filename %q", res.Filename)
	}
	if res.MimeType != "application/pdf" {
		t.Errorf("unexpected mime type %q", res.MimeType)
	}
	if f.uploads != 1 {
		t.Errorf("expected one upload, got %d", f.uploads)
	}
	if f.uploadFilename != "report.docx" {
		t.Errorf("expected original filename preserved, got %q", f.uploadFilename)
	}
	if f.uploadParams["key"] != "uploads/doc" {
		t.Errorf("expected form parameters forwarded, got %v", f.uploadParams)
	}
	if f.polls < 2 {
		t.Errorf("expected polling until finished, got %d polls", f.polls)
	}
}

func TestConvert_FilenameFallback(t *testing.T) {
	f := newFakeProvider(t)
	f.pollJobs = []job{
		f.finishedJob(taskFile{URL: f.srv.URL + "/download/out"}),
	}

	res, err := f.converter(t).Convert(context.Background(), docInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Filename != "report.pdf" {
		t.Errorf("expected stem plus target format, got %q", res.Filename)
	}
}

func TestConvert_UnsupportedFormat_NoProviderCall(t *testing.T) {
	f := newFakeProvider(t)
	c := f.converter(t)

	in := docInput()
	in.TargetFormat = "exe"
	_, err := c.Convert(context.Background(), in)
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if f.jobCreates != 0 {
		t.Error("no job should be created for an unsupported format")
	}
}

func TestConvert_EmptyDocument(t *testing.T) {
	f := newFakeProvider(t)

	in := docInput()
	in.Data = nil
	_, err := f.converter(t).Convert(context.Background(), in)
	if appErr, ok := errors.AsAppError(err); !ok || appErr.Code != errors.ErrCodeValidation {
		t.Errorf("expected validation error, got %v", err)
	}
	if f.jobCreates != 0 {
		t.Error("no job should be created for an empty document")
	}
}

func TestConvert_MissingJobID(t *testing.T) {
	f := newFakeProvider(t)
	f.createdJob = &job{}

	_, err := f.converter(t).Convert(context.Background(), docInput())
	if appErr, ok := errors.AsAppError(err); !ok || appErr.Code != errors.ErrCodeUpstream {
		t.Errorf("expected upstream error, got %v", err)
	}
	if f.uploads != 0 {
		t.Error("nothing should be uploaded without a job id")
	}
}

func TestConvert_MissingUploadForm(t *testing.T) {
	f := newFakeProvider(t)
	f.createdJob = &job{
		ID:    "job-1",
		Tasks: []task{{ID: "task-import", Name: taskImport}},
	}

	_, err := f.converter(t).Convert(context.Background(), docInput())
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeUpstream {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if appErr.Details["job_id"] != "job-1" {
		t.Errorf("expected job id in details, got %v", appErr.Details)
	}
}

func TestConvert_JobError_TaskMessageWins(t *testing.T) {
	f := newFakeProvider(t)
	f.pollJobs = []job{{
		ID:      "job-1",
		Status:  statusError,
		Message: "job failed",
		Tasks: []task{
			{Name: taskConvert, Status: statusError, Message: "unsupported page size"},
		},
	}}

	_, err := f.converter(t).Convert(context.Background(), docInput())
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeUpstream {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if appErr.Message != "unsupported page size" {
		t.Errorf("expected the task-level message, got %q", appErr.Message)
	}
	if appErr.Details["job_id"] != "job-1" {
		t.Errorf("expected job id in details, got %v", appErr.Details)
	}
}

func TestConvert_JobError_JobMessageFallback(t *testing.T) {
	f := newFakeProvider(t)
	f.pollJobs = []job{{
		ID:      "job-1",
		Status:  statusError,
		Message: "quota exceeded",
	}}

	_, err := f.converter(t).Convert(context.Background(), docInput())
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Message != "quota exceeded" {
		t.Errorf("expected the job-level message, got %v", err)
	}
}

func TestConvert_JobError_GenericFallback(t *testing.T) {
	f := newFakeProvider(t)
	f.pollJobs = []job{{ID: "job-1", Status: statusError}}

	_, err := f.converter(t).Convert(context.Background(), docInput())
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeUpstream {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if appErr.Message == "" {
		t.Error("expected a generic fallback message")
	}
}

func TestConvert_ExportWithoutFiles(t *testing.T) {
	f := newFakeProvider(t)
	f.pollJobs = []job{f.finishedJob()}

	_, err := f.converter(t).Convert(context.Background(), docInput())
	if appErr, ok := errors.AsAppError(err); !ok || appErr.Code != errors.ErrCodeProcessing {
		t.Errorf("expected processing error, got %v", err)
	}
}

func TestConvert_ExportFileWithoutURL(t *testing.T) {
	f := newFakeProvider(t)
	f.pollJobs = []job{f.finishedJob(taskFile{Filename: "report.pdf"})}

	_, err := f.converter(t).Convert(context.Background(), docInput())
	if appErr, ok := errors.AsAppError(err); !ok || appErr.Code != errors.ErrCodeProcessing {
		t.Errorf("expected processing error, got %v", err)
	}
}

func TestConvert_EmptyDownload(t *testing.T) {
	f := newFakeProvider(t)
	f.downloadBody = nil
	f.pollJobs = []job{
		f.finishedJob(taskFile{Filename: "report.pdf", URL: f.srv.URL + "/download/report.pdf"}),
	}

	_, err := f.converter(t).Convert(context.Background(), docInput())
	if appErr, ok := errors.AsAppError(err); !ok || appErr.Code != errors.ErrCodeProcessing {
		t.Errorf("expected processing error, got %v", err)
	}
}

func TestConvert_WaitTimeout(t *testing.T) {
	f := newFakeProvider(t)
	f.pollJobs = []job{{ID: "job-1", Status: "processing"}}

	c, err := NewConverter(Config{
		URL:          f.srv.URL,
		APIKey:       "test-key",
		PollInterval: time.Millisecond,
		WaitTimeout:  20 * time.Millisecond,
	}, nil)
	if err != nil {
		t.Fatalf("creating converter: %v", err)
	}

	_, err = c.Convert(context.Background(), docInput())
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeUpstream {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if appErr.Details["job_id"] != "job-1" {
		t.Errorf("expected job id in details, got %v", appErr.Details)
	}
}

func TestStem(t *testing.T) {
	cases := map[string]string{
		"report.docx":     "report",
		"archive.tar.gz":  "archive.tar",
		"noextension":     "noextension",
		"":                "document",
		".hidden":         "document",
		"/tmp/slides.ppt": "slides",
	}
	for in, want := range cases {
		if got := stem(in); got != want {
			t.Errorf("stem(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormats(t *testing.T) {
	for _, f := range []string{"pdf", "PDF", ".docx", " txt "} {
		if !IsSupported(f) {
			t.Errorf("expected %q to be supported", f)
		}
	}
	for _, f := range []string{"", "exe", "tar.gz"} {
		if IsSupported(f) {
			t.Errorf("expected %q to be unsupported", f)
		}
	}

	if got := MimeType("docx"); got != "application/vnd.openxmlformats-officedocument.wordprocessingml.document" {
		t.Errorf("unexpected docx mime type %q", got)
	}
	if got := MimeType("mystery"); got != "application/octet-stream" {
		t.Errorf("expected octet-stream fallback, got %q", got)
	}

	formats := SupportedFormats()
	if len(formats) != len(mimeTypes) {
		t.Errorf("expected %d formats, got %d", len(mimeTypes), len(formats))
	}
}
