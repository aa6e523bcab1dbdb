package forge

import "context"

// MockCreator is a mock implementation of Creator for testing.
type MockCreator struct {
	CreateReleaseFn func(ctx context.Context, r Release) (string, error)
	// Calls records every release passed to CreateRelease.
	Calls []Release
}

// Verify MockCreator implements Creator.
var _ Creator = (*MockCreator)(nil)

// CreateRelease implements Creator.
func (m *MockCreator) CreateRelease(ctx context.Context, r Release) (string, error) {
	m.Calls = append(m.Calls, r)
	if m.CreateReleaseFn != nil {
		return m.CreateReleaseFn(ctx, r)
	}
	return "", nil
}
