package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/gxm/guest"
)

const testKind Kind = "test"

func TestRegistry(t *testing.T) {
	t.Cleanup(func() { Unregister(testKind) })

	var got guest.Memory
	Register(testKind, func(mem guest.Memory) (Backend, error) {
		got = mem
		return kindOnly{}, nil
	})
	assert.True(t, IsRegistered(testKind))
	assert.Contains(t, Backends(), testKind)

	mem := guest.NewHeap(4096)
	b, err := NewBackend(testKind, mem)
	require.NoError(t, err)
	assert.Equal(t, KindOpenGL, b.Kind())
	assert.Same(t, mem, got)
	assert.NotNil(t, MustBackend(testKind, mem))

	assert.Panics(t, func() { Register(testKind, func(guest.Memory) (Backend, error) { return nil, nil }) })
	assert.Panics(t, func() { Register("nil", nil) })

	Unregister(testKind)
	assert.False(t, IsRegistered(testKind))
	_, err = NewBackend(testKind, mem)
	assert.ErrorContains(t, err, "forgotten import")
	assert.Panics(t, func() { MustBackend(testKind, mem) })
}

func TestBackendsSorted(t *testing.T) {
	t.Cleanup(func() {
		Unregister("b-test")
		Unregister("a-test")
	})
	factory := func(guest.Memory) (Backend, error) { return kindOnly{}, nil }
	Register("b-test", factory)
	Register("a-test", factory)

	kinds := Backends()
	ia, ib := -1, -1
	for i, k := range kinds {
		switch k {
		case "a-test":
			ia = i
		case "b-test":
			ib = i
		}
	}
	require.NotEqual(t, -1, ia)
	assert.Less(t, ia, ib)
}

func TestReporterDeduplicates(t *testing.T) {
	r := NewReporter()
	r.Report(KindSoftware, capDraw)
	r.Report(KindSoftware, capDraw)
	r.Report(KindOpenGL, capDraw)

	assert.Equal(t, uint64(3), r.Count())
	assert.ElementsMatch(t, []string{"software/draw", "opengl/draw"}, r.Reported())
	assert.True(t, r.Has(KindSoftware, capDraw))
	assert.False(t, r.Has(KindSoftware, capBindContext))
}

func TestContextBackendData(t *testing.T) {
	c := NewContext()
	assert.Nil(t, c.BackendData())
	assert.Nil(t, c.Target())
	c.SetBackendData(42)
	assert.Equal(t, 42, c.BackendData())
}
