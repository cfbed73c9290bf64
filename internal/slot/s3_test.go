package slot

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// fakeS3 serves path-style GET and PUT for a single bucket.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	fail    bool
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`)
		return
	}

	key := strings.TrimPrefix(r.URL.Path, "/")
	switch r.Method {
	case http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.objects[key] = body
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		data, ok := f.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeS3) object(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	return data, ok
}

func (f *fakeS3) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func newTestS3Slot(t *testing.T, prefix string) (*S3Slot, *fakeS3) {
	t.Helper()

	fake := &fakeS3{objects: make(map[string][]byte)}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client := s3.New(s3.Options{
		Region:                     "us-east-1",
		Credentials:                credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
		BaseEndpoint:               aws.String(srv.URL),
		UsePathStyle:               true,
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
		ResponseChecksumValidation: aws.ResponseChecksumValidationWhenRequired,
	})

	return NewS3SlotWithClient("savedAddresses", "addresses", prefix, client), fake
}

func TestObjectKey(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{prefix: "", want: "savedAddresses.json"},
		{prefix: "team", want: "team/savedAddresses.json"},
		{prefix: "/team/", want: "team/savedAddresses.json"},
		{prefix: "a/b", want: "a/b/savedAddresses.json"},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			if got := objectKey(tt.prefix, "savedAddresses"); got != tt.want {
				t.Errorf("objectKey(%q) = %q, want %q", tt.prefix, got, tt.want)
			}
		})
	}
}

func TestS3Slot_ReadMissing(t *testing.T) {
	s, _ := newTestS3Slot(t, "team")

	got, err := s.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got != nil {
		t.Errorf("Read() = %q, want nil", got)
	}
}

func TestS3Slot_WriteRead(t *testing.T) {
	s, fake := newTestS3Slot(t, "team")
	if s.Key() != "team/savedAddresses.json" {
		t.Errorf("Key() = %q, want team/savedAddresses.json", s.Key())
	}

	data := `[{"id":"1","naam":"Kantoor"}]`
	if err := s.Write([]byte(data)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	stored, ok := fake.object("addresses/team/savedAddresses.json")
	if !ok {
		t.Fatal("object not stored under expected key")
	}
	if string(stored) != data {
		t.Errorf("stored object = %q, want %q", stored, data)
	}

	got, err := s.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != data {
		t.Errorf("Read() = %q, want %q", got, data)
	}
}

func TestS3Slot_Errors(t *testing.T) {
	s, fake := newTestS3Slot(t, "")
	fake.setFail(true)

	if _, err := s.Read(); err == nil {
		t.Error("Read() expected error on access denied")
	}
	if err := s.Write([]byte(`[]`)); err == nil {
		t.Error("Write() expected error on access denied")
	}
}
