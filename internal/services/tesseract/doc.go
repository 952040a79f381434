// Package tesseract wraps the tesseract OCR command-line tool.
//
// The image is piped through stdin and the recognised text read from stdout,
// so no temporary files are written.
package tesseract
