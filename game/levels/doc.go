// Package levels serves level descriptors to the rest of the game.
//
// A Manager reads every *.json, *.yaml and *.yml file at the root of an fs.FS,
// compiles each descriptor against the catalog and caches the result by level
// id. The built-in levels are embedded; a directory on disk can replace them.
//
// Usage:
//
//	manager, err := levels.NewDefaultManager()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	desc, err := manager.FetchLevel(1)
//	summaries := manager.ListSummaries()
//
// Descriptors returned by FetchLevel are shared and must be treated as read-only.
package levels
