// package testing contains shared testing utilities
package testing

import (
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/mwojcik/artistmix/internal/models"
)

// MemStore is an in-memory test double for services.CredentialStore.
type MemStore struct {
	mu          sync.Mutex
	credentials map[string]*models.Credential

	// GetErr, when set, is returned by every Get call.
	GetErr error
	// UpsertCalls counts writes for assertion.
	UpsertCalls int
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{credentials: make(map[string]*models.Credential)}
}

// Put seeds a credential without counting as an Upsert call.
func (s *MemStore) Put(credential *models.Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials[credential.SessionID()] = credential
}

func (s *MemStore) Get(sessionID string) (*models.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	return s.credentials[sessionID], nil
}

func (s *MemStore) Upsert(credential *models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpsertCalls++
	s.credentials[credential.SessionID()] = credential
	return nil
}

func (s *MemStore) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.credentials, sessionID)
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading a response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

var _ io.ReadCloser = (*FCloser)(nil)

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
