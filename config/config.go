// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package config holds the process-wide tunables consulted
// by the allocator, resource and scene packages, following
// the engine package's Config/DefaultConfig/Configure layout.
package config

const (
	// MaxFrame is the maximum number of frames in flight.
	MaxFrame = 3

	dflMaxResourceContext    = 64
	dflPoolBlock             = 256
	dflBufferChunk           = 1 << 20 // 1MiB
	dflTextBufferFullThresh  = 0.75
	dflTextBufferInitialCap  = 4096
	dflItemListInitialEntries = 512
)

// Config is used to configure the runtime.
type Config struct {
	// The maximum number of concurrently acquired resource
	// contexts (one per rendering thread).
	//
	// Default is 64.
	MaxResourceContext int

	// The number of chunks in the backing block of a Pool
	// allocator created by allocator.NewPoolDefault. A Pool
	// does not grow once created.
	//
	// Default is 256.
	PoolBlock int

	// The size, in bytes, of a Buffer allocator's backing
	// chunk.
	//
	// Default is 1MiB.
	BufferChunk int

	// The fraction of a text render buffer's capacity that,
	// once reached by a single Commit's dirty range, makes
	// Commit upload the whole buffer instead of the exact
	// dirty range. text.New takes the threshold as an
	// argument and does not read this field itself.
	//
	// Default is 0.75.
	TextBufferFullThreshold float64

	// The initial capacity, in glyphs, of a new text render
	// buffer partition. No package reads this field: text.New
	// takes each partition's capacity as an argument.
	//
	// Default is 4096.
	TextBufferInitialCap int

	// The initial number of entries an item list's dense
	// table is sized for.
	//
	// Default is 512.
	ItemListInitialEntries int
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		MaxResourceContext:      dflMaxResourceContext,
		PoolBlock:               dflPoolBlock,
		BufferChunk:             dflBufferChunk,
		TextBufferFullThreshold: dflTextBufferFullThresh,
		TextBufferInitialCap:    dflTextBufferInitialCap,
		ItemListInitialEntries:  dflItemListInitialEntries,
	}
}

var cfg = Default()

// Configure replaces the current configuration with c.
func Configure(c *Config) { cfg = *c }

// Current returns the active configuration.
func Current() Config { return cfg }
