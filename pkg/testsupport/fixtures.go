package testsupport

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

func LoadFixture(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func LoadGolden(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// SequentialIDs returns a generator yielding predictable UUIDs
// (00000000-0000-0000-0000-000000000001, ...).
func SequentialIDs() func() uuid.UUID {
	var (
		mu      sync.Mutex
		counter int
	)
	return func() uuid.UUID {
		mu.Lock()
		defer mu.Unlock()
		counter++
		return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", counter))
	}
}

// FixedClock returns a clock that always reports ts.
func FixedClock(ts time.Time) func() time.Time {
	return func() time.Time {
		return ts
	}
}

// SteppingClock starts at ts and advances by step on every call.
func SteppingClock(ts time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	current := ts
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		value := current
		current = current.Add(step)
		return value
	}
}
