package invoker

import (
	"context"
	"fmt"
	"time"
)

// MockInvoker is a testing implementation of Invoker.
type MockInvoker struct {
	Response   string
	Err        error
	Delay      time.Duration
	InvokeFunc func(ctx context.Context, req Request) (string, error)
}

func (m *MockInvoker) Invoke(ctx context.Context, req Request) (string, error) {
	if m.InvokeFunc != nil {
		return m.InvokeFunc(ctx, req)
	}
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

// FailingInvoker always fails.
type FailingInvoker struct {
	Err error
}

func (f *FailingInvoker) Invoke(ctx context.Context, req Request) (string, error) {
	if f.Err == nil {
		return "", fmt.Errorf("mock failure")
	}
	return "", f.Err
}
