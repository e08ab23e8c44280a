// Package magetasks holds the build, test, lint and QA tasks behind the
// Magefile. The QA tasks drive the tcr binary itself: collect unit and
// browser results, then report them against the catalog.
package magetasks
