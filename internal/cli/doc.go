// Package cli implements the hakija command tree: the interactive apply
// wizard, draft inspection, offline validation of application values, the de
// minimis check and the configuration commands. Commands register themselves
// on the root command in init functions.
package cli
