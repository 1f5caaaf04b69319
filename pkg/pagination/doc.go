// Package pagination turns a browsing query into pages of Pokémon records.
//
// A QueryState describes one browsing session: the mode (list, type or
// search), the page size and the position reached so far. The Planner loads
// the next page for a state and returns the page together with a new state;
// states are values and are never modified in place.
//
//	batch := pagination.NewBatchFetcher(service, pagination.DefaultConfig())
//	planner := pagination.NewPlanner(service, batch)
//
//	st := pagination.NewQueryState("", "fire", sorting.NameAsc, 24)
//	for st.HasMore {
//		page, next, err := planner.NextPage(ctx, st)
//		if err != nil {
//			return err
//		}
//		render(page.Records)
//		st = next
//	}
//
// Detail records for a page are fetched by the BatchFetcher, a fixed-size
// worker pool: at most MaxConcurrency lookups run at once, a failed lookup is
// logged and dropped, and FetchMany returns only after every worker is done.
//
// Modes:
//   - list: pages of the numbered /pokemon listing via limit/offset; a short
//     page ends the session
//   - type: the full /type/{name} membership list is loaded once and sliced
//     locally
//   - search: a single name-or-id lookup, optionally checked against the type
//     filter; never has a second page
package pagination
