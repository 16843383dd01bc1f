package typeid

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type regTestA struct{ X int }
type regTestB struct{ Y, Z float64 }

func TestOfStableAcrossCalls(t *testing.T) {
	a1 := Of[regTestA]()
	a2 := Of[regTestA]()
	b := Of[regTestB]()

	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, b)
}

func TestInfoOfMatchesSize(t *testing.T) {
	info := InfoOf[regTestB]()
	assert.Equal(t, uintptr(16), info.Size)
	assert.Contains(t, info.Name, "regTestB")
}

// TestConcurrentFirstUse registers the same compile-time type
// concurrently from many goroutines, repeated several times, and
// verifies every observed id agrees and every TypeInfo.Size is correct.
func TestConcurrentFirstUse(t *testing.T) {
	type concurrentType struct {
		A, B, C int64
	}

	const goroutines = 64
	const reps = 3

	for rep := 0; rep < reps; rep++ {
		ids := make([]ID, goroutines)
		var wg sync.WaitGroup
		wg.Add(goroutines)
		for i := 0; i < goroutines; i++ {
			go func(i int) {
				defer wg.Done()
				ids[i] = Of[concurrentType]()
			}(i)
		}
		wg.Wait()

		first := ids[0]
		for _, id := range ids {
			assert.Equal(t, first, id)
		}

		info := InfoFor(first)
		assert.NotNil(t, info)
		assert.Equal(t, uintptr(24), info.Size)
	}
}

func TestInfoForUnknownReturnsNil(t *testing.T) {
	assert.Nil(t, InfoFor(ID(1<<32)))
}
