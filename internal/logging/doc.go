// Package logging provides structured JSON logging for ontosearch, written
// to a size-rotated file under ~/.ontosearch/logs/.
//
// Search results go to stdout and progress to stderr, so by default logs are
// kept out of the terminal. The --debug flag raises the level to debug and
// mirrors log lines to stderr.
package logging
