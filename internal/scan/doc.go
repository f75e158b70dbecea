// Package scan plans fingerprinting work: it walks the configured
// library roots, classifies files by extension, and filters out files
// the store already knows with an unchanged modification time.
package scan
