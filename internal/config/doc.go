// Package config handles configuration loading for chatmerge.
//
// # Overview
//
// Configuration is loaded from YAML or TOML files, chosen by extension,
// with environment variable expansion. Values missing from the file keep
// the defaults from Default().
//
// # Configuration File
//
// Locations (in order):
//
//  1. Path from CHATMERGE_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/chatmerge/config.yaml (~/.config when unset)
//
// `chatmerge init` writes the defaults to the second location.
//
// # Environment Variable Expansion
//
//	journal:
//	  path: "${CHATMERGE_DB}"
//
// Syntax: ${VAR_NAME}. Unset variables expand to an empty string.
//
// # Configuration Sections
//
//	merge:
//	  window: "15s"          # how long a sent message stays correlatable
//	  sweep_interval: "30s"  # background purge; "0s" purges on access only
//	  max_records: 0         # 0 is unbounded
//
//	display:
//	  panes: ["main"]
//	  history_limit: 100
//	  color: true
//	  rewrite: false         # redraw merged lines in place (TTY only)
//
//	journal:
//	  enabled: false
//	  path: "~/.local/share/chatmerge/transcript.db"
//
//	input:
//	  format: "coded"        # coded, markdown, plain
//
//	logging:
//	  level: "info"          # debug, info, warn, error
//	  format: "text"         # text, json
//
// The same keys work in TOML under [merge], [display] and so on.
package config
