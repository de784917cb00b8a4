package stage

import (
	"testing"

	"github.com/meshforge/scenecore/assert"
)

func TestCanOperateOnZeroValue(t *testing.T) {
	sceneStage := NewManager()
	gotStage := sceneStage.Current()
	assert.Equal(t, Init, gotStage)

	gotStage = sceneStage.Swap(ShutDown)
	assert.Equal(t, Init, gotStage)
}

func TestCanCompareAndSwapOnZeroValue(t *testing.T) {
	sceneStage := NewManager()
	ok := sceneStage.CompareAndSwap(ShutDown, ShutDown)
	assert.Check(t, !ok, "a fresh manager starts at Init")

	ok = sceneStage.CompareAndSwap(Init, ShutDown)
	assert.Check(t, ok, "compare and swap should succeed with correct old value")

	assert.Equal(t, ShutDown, sceneStage.Current())
}

func TestOnlyOneCompareAndSwapSuccess(t *testing.T) {
	successCh := make(chan bool)
	sceneStage := NewManager()

	for i := 0; i < 10; i++ {
		go func() {
			ok := sceneStage.CompareAndSwap(Init, ShuttingDown)
			successCh <- ok
		}()
	}

	successCount := 0
	failureCount := 0
	for i := 0; i < 10; i++ {
		if <-successCh {
			successCount++
		} else {
			failureCount++
		}
	}
	assert.Equal(t, 1, successCount)
	assert.Equal(t, 9, failureCount)
}
