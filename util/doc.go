// Package util holds small generic helpers used across shellwrap: optional
// values carried as pointers, map helpers, and lenient conversions for the
// loosely typed values found in named parameters.
package util
