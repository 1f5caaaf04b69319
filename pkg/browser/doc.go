// Package browser drives one browsing session over PokeAPI.
//
// A Session owns the current query state and serialises page loads against
// it. Starting a new query cancels the previous load and bumps a generation
// counter; a load that completes after its generation was replaced reports
// ErrSuperseded and leaves the session untouched.
//
//	session := browser.NewSession(planner, service, 24)
//	types, err := session.Init(ctx)
//	page, err := session.RunQuery(ctx, "", "fire", sorting.NameAsc)
//	for session.HasMore() {
//	    page, err = session.LoadNextPage(ctx)
//	}
package browser
