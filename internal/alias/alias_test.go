package alias

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/releve-dev/releve/internal/model"
)

func ent(id, aliasOf string) model.Entity {
	return model.Entity{ID: id, AccountID: "acct", Name: id, AliasOfID: aliasOf}
}

func TestPrincipal_NoAlias(t *testing.T) {
	r := NewResolver([]model.Entity{ent("a", "")})
	id, ok := r.Principal("a")
	assert.True(t, ok)
	assert.Equal(t, "a", id)
}

func TestPrincipal_Chain(t *testing.T) {
	r := NewResolver([]model.Entity{
		ent("a", "b"),
		ent("b", "c"),
		ent("c", ""),
	})
	id, ok := r.Principal("a")
	assert.True(t, ok)
	assert.Equal(t, "c", id)
}

func TestPrincipal_CycleFailsClosed(t *testing.T) {
	r := NewResolver([]model.Entity{
		ent("a", "b"),
		ent("b", "c"),
		ent("c", "a"),
	})
	id, ok := r.Principal("b")
	assert.False(t, ok)
	assert.Equal(t, "b", id, "returns the original id unresolved")
}

func TestPrincipal_SelfAliasIgnored(t *testing.T) {
	r := NewResolver([]model.Entity{ent("a", "a")})
	id, ok := r.Principal("a")
	assert.True(t, ok)
	assert.Equal(t, "a", id)
}

func TestPrincipal_UnknownID(t *testing.T) {
	r := NewResolver(nil)
	id, ok := r.Principal("ghost")
	assert.True(t, ok)
	assert.Equal(t, "ghost", id)
}

func TestDiff(t *testing.T) {
	attach, detach := Diff([]string{"a", "b"}, []string{"b", "c"})
	assert.Equal(t, []string{"c"}, attach)
	assert.Equal(t, []string{"a"}, detach)
}

func TestDiff_NoChange(t *testing.T) {
	attach, detach := Diff([]string{"a"}, []string{"a"})
	assert.Empty(t, attach)
	assert.Empty(t, detach)
}

func TestDiff_Empty(t *testing.T) {
	attach, detach := Diff(nil, []string{"x"})
	assert.Equal(t, []string{"x"}, attach)
	assert.Empty(t, detach)

	attach, detach = Diff([]string{"x"}, nil)
	assert.Empty(t, attach)
	assert.Equal(t, []string{"x"}, detach)
}
