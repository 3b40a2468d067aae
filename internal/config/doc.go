// Package config loads batch manifests and environment defaults.
//
// A manifest is a YAML file listing IPR jobs. It is decoded with yaml.v3
// and then checked against an embedded CUE schema, so structural mistakes
// (missing paths, unknown fields, bad spin names) are reported together
// with the offending field path.
package config
