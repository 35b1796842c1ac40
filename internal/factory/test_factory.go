package factory

import (
	"time"

	"github.com/KingdomVR/kvr-go-database/internal/dependencies/mocks"
	"github.com/KingdomVR/kvr-go-database/internal/services/auth"
	"github.com/KingdomVR/kvr-go-database/internal/services/transfer"
	"github.com/KingdomVR/kvr-go-database/internal/storage/memory"
	"github.com/KingdomVR/kvr-go-database/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
}

// NewTestApp creates an App configured for testing with in-memory
// storage and a mocked clock
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	app := newWithDependencies(store, mockClock, auth.DefaultConfig(), transfer.Config{}, testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
	}
}
