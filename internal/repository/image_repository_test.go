package repository

import (
	"context"
	"errors"
	"testing"
)

type stubFetcher struct {
	name  string
	calls []string
}

func (s *stubFetcher) FetchRaw(ctx context.Context, imageURL string) ([]byte, error) {
	s.calls = append(s.calls, imageURL)
	return []byte(s.name), nil
}

type rejectAll struct{}

func (rejectAll) ValidateImageURL(string) error { return errors.New("rejected") }

func TestSourceRepository_Dispatch(t *testing.T) {
	httpF := &stubFetcher{name: "http"}
	blobF := &stubFetcher{name: "blob"}
	repo := NewSourceRepository(httpF, blobF, nil)

	tests := []struct {
		url  string
		want string
	}{
		{"https://example.com/cert.png", "http"},
		{"https://acct.blob.core.windows.net/certs/cert.png", "blob"},
		{"https://ACCT.BLOB.CORE.WINDOWS.NET/certs/cert.png", "blob"},
	}
	for _, tt := range tests {
		got, err := repo.FetchRaw(context.Background(), tt.url)
		if err != nil {
			t.Fatalf("FetchRaw(%s) error: %v", tt.url, err)
		}
		if string(got) != tt.want {
			t.Errorf("FetchRaw(%s) routed to %s, want %s", tt.url, got, tt.want)
		}
	}
}

func TestSourceRepository_BlobDisabled(t *testing.T) {
	repo := NewSourceRepository(&stubFetcher{name: "http"}, nil, nil)
	_, err := repo.FetchRaw(context.Background(), "https://acct.blob.core.windows.net/c/b.png")
	if !errors.Is(err, ErrBlobStorageDisabled) {
		t.Fatalf("expected ErrBlobStorageDisabled, got %v", err)
	}
}

func TestSourceRepository_Validate(t *testing.T) {
	if err := NewSourceRepository(nil, nil, nil).ValidateImageURL(""); !errors.Is(err, ErrInvalidImageURL) {
		t.Errorf("expected ErrInvalidImageURL, got %v", err)
	}
	if err := NewSourceRepository(nil, nil, rejectAll{}).ValidateImageURL("https://example.com/a.png"); err == nil {
		t.Error("expected validator rejection")
	}
}
