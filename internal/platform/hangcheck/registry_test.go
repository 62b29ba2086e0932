package hangcheck_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen11/lernago/internal/platform/hangcheck"
	"github.com/jsamuelsen11/lernago/mocks"
)

func TestCheckAll_Empty(t *testing.T) {
	t.Parallel()

	r := hangcheck.New()
	results := r.CheckAll(context.Background())

	if results == nil {
		t.Fatal("expected non-nil map, got nil")
	}
	if len(results) != 0 {
		t.Errorf("expected empty map, got %d entries", len(results))
	}
}

func TestCheckAll_MixedFindings(t *testing.T) {
	t.Parallel()

	clean := mocks.NewMockHangChecker(t)
	clean.EXPECT().Name().Return("goroutines")
	clean.EXPECT().CheckHang(mock.Anything).Return(nil)

	stuckErr := errors.New("1 child process still running")
	stuck := mocks.NewMockHangChecker(t)
	stuck.EXPECT().Name().Return("child-processes")
	stuck.EXPECT().CheckHang(mock.Anything).Return(stuckErr)

	r := hangcheck.New()
	r.Register(clean)
	r.Register(stuck)

	results := r.CheckAll(context.Background())

	if results["goroutines"] != nil {
		t.Errorf("goroutines = %v, want nil", results["goroutines"])
	}
	if !errors.Is(results["child-processes"], stuckErr) {
		t.Errorf("child-processes = %v, want %v", results["child-processes"], stuckErr)
	}
}

func TestCheckAll_ConcurrentSafety(t *testing.T) {
	t.Parallel()

	r := hangcheck.New()

	var wg sync.WaitGroup
	const goroutines = 50

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		if i%2 == 0 {
			go func() {
				defer wg.Done()
				c := mocks.NewMockHangChecker(t)
				c.EXPECT().Name().Return("checker").Maybe()
				c.EXPECT().CheckHang(mock.Anything).Return(nil).Maybe()
				r.Register(c)
			}()
		} else {
			go func() {
				defer wg.Done()
				r.CheckAll(context.Background())
			}()
		}
	}

	wg.Wait()
}

func TestGoroutineChecker(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		live    int
		wantErr bool
	}{
		{name: "at baseline", live: 10, wantErr: false},
		{name: "within slack", live: 12, wantErr: false},
		{name: "beyond slack", live: 13, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := hangcheck.NewGoroutineChecker(2).WithCounter(10, func() int { return tt.live })
			err := c.CheckHang(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckHang() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
