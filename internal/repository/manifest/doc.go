// Package manifest reads and rewrites the package manifest
// (dappnode_package.json). Only the version and upstream fields are changed;
// every other top-level field keeps its position and its value byte for byte
// apart from re-indentation.
package manifest
