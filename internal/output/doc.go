// Package output appends key=value lines to the files named by the CI runner
// (GITHUB_OUTPUT, GITHUB_ENV) so later workflow steps can read the result.
package output
