// Package ui implements an interactive artist table browser using bubbletea's Elm architecture.
//
// The TUI is a thin shell over [pipeline.View]:
//  1. [TableView] : One page of the filtered, sorted table
//  2. [SearchView] : Live search on name or genre via bubbles/textinput
//  3. [DetailView] : Artist detail with prediction and Spotify info fetched through the cache
//  4. [EnrichView] : Progress while warming the cache for the current page
//
// Hotkeys 1-7 select a sort column and toggle its direction when pressed again. t and g cycle
// the tier and genre filters, ←/→ change page and c clears the Spotify cache.
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Warm-up progress flows through a channel from the tasks Engine, so lookups never block rendering.
package ui
