package server

import "github.com/StoreStation/VibeCraft/pkg/world"

// newTestWorld builds a fresh flat-generator-backed store so tests never
// share generated columns with each other.
func newTestWorld() *world.Store {
	return world.NewStore(world.NewFlatGenerator())
}
