// Package installer turns parsed package groups into a plan and drives the
// configured package-manager backend through it.
//
// A Plan has one Step per selected group. Packages that are already installed,
// ignored, or planned by an earlier step are listed as skipped with a reason.
// Execute walks the steps in order: one installer invocation per step for the
// remaining packages, then the step's post-install commands. The first failure
// stops the run; nothing already done is rolled back.
package installer
