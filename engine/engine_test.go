package engine

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyokaz/quickvis-go/engine/binding"
	"github.com/kyokaz/quickvis-go/engine/object"
	"github.com/kyokaz/quickvis-go/engine/scene"
)

func TestEngineWiring(t *testing.T) {
	e := NewEngine()
	require.NotNil(t, e.Scene())
	require.NotNil(t, e.Depsgraph())
	require.NotNil(t, e.Bindings())
	assert.Same(t, e.Scene(), e.Depsgraph().Scene())
}

func TestEngineRunQuit(t *testing.T) {
	e := NewEngine(WithTickRate(240))

	ticked := make(chan struct{})
	var once bool
	e.SetTickCallback(func(float32) {
		if !once {
			once = true
			close(ticked)
		}
	})

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	select {
	case <-ticked:
	case <-time.After(2 * time.Second):
		t.Fatal("tick callback never fired")
	}

	e.Quit()
	e.Quit() // idempotent

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Quit")
	}
}

func TestEngineSaveLoadScene(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rig.yaml")

	e := NewEngine(WithScene(scene.NewScene("Rig")))
	cube := object.NewObject(object.WithName("Cube"))
	e.Scene().Add(cube)

	_, err := e.Bindings().CreateBinding(cube, binding.SourceNewEmpty, nil, binding.WithPropertyName("show_cube"))
	require.NoError(t, err)
	require.NoError(t, e.SaveScene(path))

	restored := NewEngine()
	require.NoError(t, restored.LoadScene(path))
	assert.Equal(t, "Rig", restored.Scene().Name())
	assert.Equal(t, 2, restored.Scene().Count())

	// Binding records reconstitute from the loaded drivers.
	controller := restored.Scene().GetByName("Visibility_Controller_show_cube")
	require.NotNil(t, controller)
	require.Len(t, restored.Bindings().Slots(controller), 1)
	require.NoError(t, restored.Bindings().SwapActiveValue(controller, 0))
	assert.False(t, restored.Scene().GetByName("Cube").HideViewport())
}

func TestEngineLoadSceneMissingFile(t *testing.T) {
	e := NewEngine()
	assert.Error(t, e.LoadScene(filepath.Join(t.TempDir(), "absent.yaml")))
}
