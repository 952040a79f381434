// Package spotify searches the Spotify catalogue for albums using the
// OAuth2 client credentials flow. Tokens live in memory for the lifetime of
// the client and are refreshed by the token source on expiry.
package spotify
