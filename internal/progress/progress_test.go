package progress

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadHook_SmallCorpusIsSilent(t *testing.T) {
	var buf bytes.Buffer
	hook := LoadHook(&buf, 10)
	assert.Nil(t, hook(3))
	assert.Empty(t, buf.String())
}

func TestLoadHook_DrawsBar(t *testing.T) {
	var buf bytes.Buffer
	tick := LoadHook(&buf, 1)(20)
	require.NotNil(t, tick)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tick()
		}()
	}
	wg.Wait()
	assert.NotEmpty(t, buf.String())
}

func TestTracker_FinishError(t *testing.T) {
	var buf bytes.Buffer
	tr := newTracker(&buf, "Loading documents", 2)
	tr.Tick()
	tr.FinishError(errors.New("boom"))
	assert.Contains(t, buf.String(), "Loading documents error: boom")
}
