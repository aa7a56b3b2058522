package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MockClient is a scripted Client for tests and local development. Responses
// are keyed by capability name; unscripted capabilities fail like an
// unreachable endpoint.
type MockClient struct {
	mu       sync.Mutex
	outputs  map[string]json.RawMessage
	errs     map[string]error
	requests map[string][]*GenerateRequest
}

// Ensure MockClient implements Client.
var _ Client = (*MockClient)(nil)

// NewMockClient creates an empty scripted client.
func NewMockClient() *MockClient {
	return &MockClient{
		outputs:  make(map[string]json.RawMessage),
		errs:     make(map[string]error),
		requests: make(map[string][]*GenerateRequest),
	}
}

// Script sets the output returned for a capability. The value is marshalled
// to JSON, so raw strings and structs both work.
func (m *MockClient) Script(capability string, output any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, err := json.Marshal(output)
	if err != nil {
		panic(fmt.Sprintf("mock script for %s: %v", capability, err))
	}
	m.outputs[capability] = data
	delete(m.errs, capability)
}

// ScriptError makes a capability fail with err.
func (m *MockClient) ScriptError(capability string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[capability] = err
	delete(m.outputs, capability)
}

// Calls returns how many times a capability was invoked.
func (m *MockClient) Calls(capability string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests[capability])
}

// LastRequest returns the most recent request for a capability, or nil.
func (m *MockClient) LastRequest(capability string) *GenerateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	reqs := m.requests[capability]
	if len(reqs) == 0 {
		return nil
	}
	return reqs[len(reqs)-1]
}

// Generate returns the scripted response for the request's capability.
func (m *MockClient) Generate(ctx context.Context, req *GenerateRequest) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[req.Capability] = append(m.requests[req.Capability], req)

	if err, ok := m.errs[req.Capability]; ok {
		return nil, err
	}
	if out, ok := m.outputs[req.Capability]; ok {
		return out, nil
	}
	return nil, fmt.Errorf("no scripted response for capability %q", req.Capability)
}
