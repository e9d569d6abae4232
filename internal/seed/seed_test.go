package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jac3km4/graphmat/internal/objfile"
)

func TestDiscover(t *testing.T) {
	lhs := []objfile.Symbol{
		{Name: "main", Addr: 0x10},
		{Name: "helper", Addr: 0x20},
		{Name: "lhs_only", Addr: 0x30},
	}
	rhs := []objfile.Symbol{
		{Name: "helper", Addr: 0x120},
		{Name: "main", Addr: 0x110},
		{Name: "rhs_only", Addr: 0x130},
	}

	got := Discover(lhs, rhs, "")
	want := [][2]uint64{{0x10, 0x110}, {0x20, 0x120}}
	assert.Equal(t, want, got)
}

func TestDiscoverPrefix(t *testing.T) {
	lhs := []objfile.Symbol{
		{Name: "crypto_init", Addr: 0x10},
		{Name: "main", Addr: 0x20},
	}
	rhs := []objfile.Symbol{
		{Name: "crypto_init", Addr: 0x110},
		{Name: "main", Addr: 0x120},
	}

	got := Discover(lhs, rhs, "crypto_")
	assert.Equal(t, [][2]uint64{{0x10, 0x110}}, got)
}

func TestDiscoverDuplicateNames(t *testing.T) {
	lhs := []objfile.Symbol{
		{Name: "f", Addr: 0x20}, // later duplicate, dropped
		{Name: "f", Addr: 0x10},
	}
	rhs := []objfile.Symbol{
		{Name: "f", Addr: 0x110},
		{Name: "f", Addr: 0x120},
	}

	got := Discover(lhs, rhs, "")
	// Only the lowest-address occurrences pair up; injectivity holds.
	assert.Equal(t, [][2]uint64{{0x10, 0x110}}, got)
}

func TestDiscoverNoOverlap(t *testing.T) {
	lhs := []objfile.Symbol{{Name: "a", Addr: 1}}
	rhs := []objfile.Symbol{{Name: "b", Addr: 2}}
	assert.Empty(t, Discover(lhs, rhs, ""))
}
