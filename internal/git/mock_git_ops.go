package git

import "context"

// MockGitOperations is a mock implementation of Operations for testing.
type MockGitOperations struct {
	TagExistsFn          func(ctx context.Context, name string) (bool, error)
	StageFilesFn         func(ctx context.Context, paths ...string) error
	HasStagedChangesFn   func(ctx context.Context) (bool, error)
	CommitFn             func(ctx context.Context, message string) error
	CreateAnnotatedTagFn func(ctx context.Context, name, message string) error
	PushFn               func(ctx context.Context) error
	PushTagsFn           func(ctx context.Context) error
}

// Verify MockGitOperations implements Operations.
var _ Operations = (*MockGitOperations)(nil)

// TagExists implements Operations.
func (m *MockGitOperations) TagExists(ctx context.Context, name string) (bool, error) {
	if m.TagExistsFn != nil {
		return m.TagExistsFn(ctx, name)
	}
	return false, nil
}

// StageFiles implements Operations.
func (m *MockGitOperations) StageFiles(ctx context.Context, paths ...string) error {
	if m.StageFilesFn != nil {
		return m.StageFilesFn(ctx, paths...)
	}
	return nil
}

// HasStagedChanges implements Operations.
func (m *MockGitOperations) HasStagedChanges(ctx context.Context) (bool, error) {
	if m.HasStagedChangesFn != nil {
		return m.HasStagedChangesFn(ctx)
	}
	return true, nil
}

// Commit implements Operations.
func (m *MockGitOperations) Commit(ctx context.Context, message string) error {
	if m.CommitFn != nil {
		return m.CommitFn(ctx, message)
	}
	return nil
}

// CreateAnnotatedTag implements Operations.
func (m *MockGitOperations) CreateAnnotatedTag(ctx context.Context, name, message string) error {
	if m.CreateAnnotatedTagFn != nil {
		return m.CreateAnnotatedTagFn(ctx, name, message)
	}
	return nil
}

// Push implements Operations.
func (m *MockGitOperations) Push(ctx context.Context) error {
	if m.PushFn != nil {
		return m.PushFn(ctx)
	}
	return nil
}

// PushTags implements Operations.
func (m *MockGitOperations) PushTags(ctx context.Context) error {
	if m.PushTagsFn != nil {
		return m.PushTagsFn(ctx)
	}
	return nil
}
