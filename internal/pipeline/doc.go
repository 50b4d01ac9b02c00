// Package pipeline turns the artists and predictions datasets into table pages.
//
// Every view is recomputed from the full dataset in four stages:
//
//   - [Join] attaches each artist's prediction (nil when absent)
//   - [Filter] keeps rows matching all non-zero predicates
//   - [Sort] orders rows by a [SortKey] and [Direction], stably
//   - [Paginate] slices the result into pages of [PageSize]
//
// [View] holds the interactive state shared by the CLI, the API and the TUI: changing
// the search term, any filter or the sort key resets the page to 1, and page navigation
// is clamped to the available range.
package pipeline
