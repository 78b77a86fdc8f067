// Package config loads grid layout presets from JSON files.
//
// A layout file describes a grid as rows of characters ('.' open,
// '#' barrier, 'S' start, 'E' end). Layouts only seed new sessions;
// they are read-only and user-edited grids are never written back.
//
// The Manager caches parsed layouts and always has a default: the
// "classic" layout if present, otherwise the first valid file in the
// directory, otherwise a built-in blank 20x20 grid.
package config
