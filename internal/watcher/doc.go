// Package watcher scans images dropped into a directory and writes a result
// sidecar next to each one (or into a separate output directory).
//
// Files are picked up on create and write events and processed once they
// have been quiet for the settle delay, so partially copied photos are not
// read early. Hidden files and unsupported extensions are ignored.
package watcher
