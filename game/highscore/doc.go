// Package highscore implements the per-level leaderboard.
//
// Board is the in-process store: it validates submissions, truncates player
// names, keeps only the best entries of each level and optionally mirrors
// itself to a JSON file. Client talks to a remote board over HTTP with the
// same method set, so the game service can use either.
//
// A submission carries an optional SubmissionID. Submitting the same id twice
// returns the stored entry instead of inserting a duplicate, which makes the
// service's retry safe when a response is lost after the write succeeded.
package highscore
