package contract_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

type openAPISpec struct {
	Paths      map[string]map[string]json.RawMessage `json:"paths"`
	Components struct {
		Schemas map[string]json.RawMessage `json:"schemas"`
	} `json:"components"`
}

func TestSpecificationIncludesConversationEndpoints(t *testing.T) {
	spec := loadSpec(t, "docs/api/openapi.json")

	requiredPaths := []string{
		"/api/conversations",
		"/api/conversations/{id}",
		"/api/conversations/{id}/read",
		"/api/conversations/{id}/messages",
		"/api/conversations/{id}/files",
		"/api/conversations/{id}/messages/{msgId}",
		"/api/realtime/ws",
	}

	for _, path := range requiredPaths {
		if _, ok := spec.Paths[path]; !ok {
			t.Fatalf("expected spec to contain path %s", path)
		}
	}

	for _, schema := range []string{"Conversation", "Message", "RealtimeEvent"} {
		if _, ok := spec.Components.Schemas[schema]; !ok {
			t.Fatalf("expected spec to contain schema %s", schema)
		}
	}
}

func TestSpecificationIncludesSupportingEndpoints(t *testing.T) {
	spec := loadSpec(t, "docs/api/openapi.json")

	requiredPaths := []string{
		"/api/health",
		"/api/auth/signup",
		"/api/auth/login",
		"/api/auth/logout",
		"/api/auth/google",
		"/api/auth/google/callback",
		"/api/profile",
		"/api/profile/avatar",
		"/api/mentors",
		"/api/users",
		"/api/mentor-requests",
		"/api/mentor-requests/{id}",
		"/api/blogs",
		"/api/blogs/{id}",
		"/api/ai/ask",
		"/api/ai/conversations",
		"/api/subscribe",
	}

	for _, path := range requiredPaths {
		if _, ok := spec.Paths[path]; !ok {
			t.Fatalf("expected spec to contain path %s", path)
		}
	}

	for _, schema := range []string{"RegisterRequest", "AuthResponse", "Profile", "MentorRequest", "BlogPost", "AIConversation"} {
		if _, ok := spec.Components.Schemas[schema]; !ok {
			t.Fatalf("expected spec to contain schema %s", schema)
		}
	}
}

func loadSpec(t *testing.T, relative string) openAPISpec {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("failed to resolve caller")
	}
	base := filepath.Join(filepath.Dir(filename), "..", "..")
	fullPath := filepath.Join(base, relative)

	raw, err := os.ReadFile(fullPath)
	if err != nil {
		t.Fatalf("failed to read %s: %v", fullPath, err)
	}
	var spec openAPISpec
	if err := json.Unmarshal(raw, &spec); err != nil {
		t.Fatalf("failed to unmarshal %s: %v", fullPath, err)
	}
	return spec
}
