// Package resources embeds the default launch profile definitions.
package resources

import "embed"

//go:embed profiles/*.yaml
var ProfileFiles embed.FS
