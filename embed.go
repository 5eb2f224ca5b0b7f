package classclash

import _ "embed"

// DefaultPackJSON is the question pack compiled into the binary so a
// fresh install can host a game without any packs directory.
//
//go:embed packs/classroom.json
var DefaultPackJSON []byte
