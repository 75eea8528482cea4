// Package config defines installer settings and provides helpers to load,
// validate and save them in YAML format.
//
// The Config type holds the release repository coordinates, install
// locations and service paths used throughout the pipeline.
package config
