package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackseek/scraper/internal/model"
)

type stubSource struct{ name string }

func (s *stubSource) Name() string                                { return s.name }
func (s *stubSource) Discover(context.Context) ([]string, error)  { return nil, nil }
func (s *stubSource) ParseItem(context.Context, string) (*model.RawHackathon, error) {
	return nil, nil
}

func TestRegistry_PreservesRegistrationOrder(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stubSource{name: "devpost"})
	reg.Register(&stubSource{name: "mlh"})
	reg.Register(&stubSource{name: "unstop"})

	assert.Equal(t, []string{"devpost", "mlh", "unstop"}, reg.Names())

	all := reg.All()
	require.Len(t, all, 3)
	assert.Equal(t, "devpost", all[0].Name())
	assert.Equal(t, "unstop", all[2].Name())
}

func TestRegistry_RegisterReplacesWithoutDuplicating(t *testing.T) {
	reg := NewRegistry()
	first := &stubSource{name: "devpost"}
	second := &stubSource{name: "devpost"}
	reg.Register(first)
	reg.Register(second)

	assert.Equal(t, []string{"devpost"}, reg.Names())
	got, err := reg.Get("devpost")
	require.NoError(t, err)
	assert.Same(t, second, got)
}

func TestRegistry_GetUnknown(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Get("nope")
	assert.Error(t, err)
}

func TestRegistry_Select(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stubSource{name: "devpost"})
	reg.Register(&stubSource{name: "mlh"})

	selected, err := reg.Select([]string{"mlh", "devpost"})
	require.NoError(t, err)
	require.Len(t, selected, 2)
	assert.Equal(t, "mlh", selected[0].Name())

	_, err = reg.Select([]string{"missing"})
	assert.Error(t, err)

	all, err := reg.Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
