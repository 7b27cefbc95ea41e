// Package registry provides the server's snapshot of the required
// configuration-phase registries: for each registry id, an ordered list of
// entries (each with an optional NBT payload) and a protocol id lookup.
// The data here is static and in-process only; loading it from the real
// game's JSON registry files is an external concern this package never
// takes on.
package registry

// Entry is one (entryId, optional NBT payload) pair within a registry, in
// the order it must be sent on the wire.
type Entry struct {
	ID  string
	NBT []byte // nil when the entry carries no NBT payload
}

// Snapshot is the registry data the configuration handler consumes.
// ProtocolID turns a registry entry name into its numeric wire id (its
// index in the registry's entry list); no server code calls it.
type Snapshot interface {
	Registries() []string
	Entries(registryID string) []Entry
	ProtocolID(registryID, entryID string) (int32, bool)
}

// RequiredRegistries lists, in the exact order the configuration handler
// must emit them, the registries a vanilla 1.21.x client expects during
// configuration.
var RequiredRegistries = []string{
	"minecraft:dimension_type",
	"minecraft:cat_variant",
	"minecraft:chicken_variant",
	"minecraft:cow_variant",
	"minecraft:frog_variant",
	"minecraft:painting_variant",
	"minecraft:pig_variant",
	"minecraft:wolf_variant",
	"minecraft:wolf_sound_variant",
	"minecraft:worldgen/biome",
	"minecraft:damage_type",
}

type staticSnapshot struct {
	entries map[string][]Entry
	ids     map[string]map[string]int32
}

// Default returns the built-in registry snapshot: one minimal entry set
// per required registry, sufficient for a vanilla client to accept
// configuration without needing real game-data JSON behind it.
func Default() Snapshot {
	s := &staticSnapshot{
		entries: make(map[string][]Entry, len(RequiredRegistries)),
		ids:     make(map[string]map[string]int32, len(RequiredRegistries)),
	}
	for _, reg := range RequiredRegistries {
		names := defaultEntryNames[reg]
		entries := make([]Entry, len(names))
		ids := make(map[string]int32, len(names))
		for i, name := range names {
			entries[i] = Entry{ID: name}
			ids[name] = int32(i)
		}
		s.entries[reg] = entries
		s.ids[reg] = ids
	}
	return s
}

func (s *staticSnapshot) Registries() []string {
	out := make([]string, len(RequiredRegistries))
	copy(out, RequiredRegistries)
	return out
}

func (s *staticSnapshot) Entries(registryID string) []Entry {
	return s.entries[registryID]
}

func (s *staticSnapshot) ProtocolID(registryID, entryID string) (int32, bool) {
	ids, ok := s.ids[registryID]
	if !ok {
		return 0, false
	}
	id, ok := ids[entryID]
	return id, ok
}

// defaultEntryNames holds one representative entry set per required
// registry: enough variety for a client to render tab-completion and
// variant pickers, not a transcription of the full vanilla data pack.
var defaultEntryNames = map[string][]string{
	"minecraft:dimension_type": {
		"minecraft:overworld",
	},
	"minecraft:cat_variant": {
		"minecraft:tabby", "minecraft:black", "minecraft:red", "minecraft:siamese",
	},
	"minecraft:chicken_variant": {
		"minecraft:temperate", "minecraft:warm", "minecraft:cold",
	},
	"minecraft:cow_variant": {
		"minecraft:temperate", "minecraft:warm", "minecraft:cold",
	},
	"minecraft:frog_variant": {
		"minecraft:temperate", "minecraft:warm", "minecraft:cold",
	},
	"minecraft:painting_variant": {
		"minecraft:kebab", "minecraft:aztec", "minecraft:alban", "minecraft:aztec2",
	},
	"minecraft:pig_variant": {
		"minecraft:temperate", "minecraft:warm", "minecraft:cold",
	},
	"minecraft:wolf_variant": {
		"minecraft:pale", "minecraft:ashen", "minecraft:black", "minecraft:chestnut",
	},
	"minecraft:wolf_sound_variant": {
		"minecraft:classic", "minecraft:big",
	},
	"minecraft:worldgen/biome": {
		"minecraft:plains", "minecraft:forest", "minecraft:desert", "minecraft:ocean",
	},
	"minecraft:damage_type": {
		"minecraft:in_fire", "minecraft:generic", "minecraft:fall", "minecraft:drown",
	},
}

// EntityTypeProtocolID maps the entity_type registry names the server
// spawns to their protocol id. Only the kinds the server actually mints
// (players plus the item entities dropped by dig statuses 3/4) are listed.
var EntityTypeProtocolID = map[string]int32{
	"minecraft:player": 128,
	"minecraft:item":   58,
}
