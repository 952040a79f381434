// Package discogs searches the Discogs database for releases using a
// personal access token.
package discogs
