// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors for the cmdengine host surfaces.
//
// An ActionableError names the failed operation, the resource involved and
// what the user can do about it. Known failure classes carry a Markdown
// guide that the CLI renders with glamour.
package issue
