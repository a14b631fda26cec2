// Package gamedata provides the embedded card catalog and the enums shared by
// every card copy in the game.
package gamedata

import "embed"

// dataFS embeds all JSON files from this directory at build time.
//
//go:embed *.json
var dataFS embed.FS
