package httpapi

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tunebox/internal/media"
	"tunebox/internal/store"
)

// Uploads beyond this many bytes spill from memory to temp files.
const multipartMemory = 8 << 20

const dateLayout = "2006-01-02"

// parseForm reads a multipart or urlencoded body capped at maxUploadBytes.
// The returned cleanup removes any temp files the parser created.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) (func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	err := r.ParseMultipartForm(multipartMemory)
	cleanup := func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return cleanup, err
		}
		return cleanup, invalid("malformed form body")
	}
	return cleanup, nil
}

// formFile returns the named upload, or nil when the field is absent.
// The caller closes the returned file via the close func.
func formFile(r *http.Request, field string) (*media.Upload, func(), error) {
	noop := func() {}
	if r.MultipartForm == nil {
		return nil, noop, nil
	}
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, fmt.Errorf("read %s upload: %w", field, err)
	}
	return &media.Upload{Filename: header.Filename, Body: file}, func() { closeFile(file) }, nil
}

func closeFile(f multipart.File) {
	_ = f.Close()
}

// fields pulls typed values out of a parsed form and collects every
// malformed one so a single 400 can name them all.
type fields struct {
	r        *http.Request
	problems []string
}

func formFields(r *http.Request) *fields {
	return &fields{r: r}
}

func (f *fields) has(name string) bool {
	_, ok := f.r.Form[name]
	return ok
}

func (f *fields) str(name string) string {
	return strings.TrimSpace(f.r.FormValue(name))
}

// optionalStr distinguishes an absent field (nil) from an empty one.
func (f *fields) optionalStr(name string) *string {
	if !f.has(name) {
		return nil
	}
	v := f.str(name)
	return &v
}

func (f *fields) int64(name string) int64 {
	raw := f.str(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		f.problems = append(f.problems, name+" must be an integer")
		return 0
	}
	return v
}

func (f *fields) optionalInt64(name string) *int64 {
	if f.str(name) == "" {
		return nil
	}
	v := f.int64(name)
	return &v
}

func (f *fields) int(name string) int {
	return int(f.int64(name))
}

// optionalBool accepts true/false as well as the 1/0 the frontend sends
// for status toggles.
func (f *fields) optionalBool(name string) *bool {
	raw := f.str(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		f.problems = append(f.problems, name+" must be a boolean")
		return nil
	}
	return &v
}

func (f *fields) date(name string) time.Time {
	raw := f.str(name)
	if raw == "" {
		return time.Time{}
	}
	v, err := time.Parse(dateLayout, raw)
	if err != nil {
		f.problems = append(f.problems, name+" must be a YYYY-MM-DD date")
		return time.Time{}
	}
	return v
}

func (f *fields) err() error {
	if len(f.problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", store.ErrInvalidInput, strings.Join(f.problems, "; "))
}

// queryID parses an optional positive integer query parameter.
func queryID(r *http.Request, name string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, invalid("invalid " + name + " parameter")
	}
	return &id, nil
}
