// Copyright © 2024 The ELPS authors

// Package docs embeds the tslint user guides for use by the CLI.
package docs

import _ "embed"

//go:embed configuration.md
var ConfigGuide string
