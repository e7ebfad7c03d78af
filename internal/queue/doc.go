// Package queue persists topic-addressed messages in SQLite and hands them
// back in timestamp order.
//
// A Store is constructed closed. Listen opens the database, probes it, creates
// the schema when it is missing and prepares the insert, select and delete
// statements shared by every Channel derived from the store. Close tears all of
// that down again; a closed store rejects work with ErrNotOpened until it is
// opened again.
//
// The store runs in one of two modes. ModeQueue keeps rows in the messages
// table and returns the oldest first; ModeFeed keeps rows in the notifications
// table and returns the newest first. Non-requeue reads delete each returned
// row by uuid after every row decoded successfully. Deletes are independent of
// one another, so a crash between decode and delete redelivers on restart.
//
// Every store operation holds the store mutex from start to finish, so two
// consumers reading the same topic in one process never receive the same row.
// File-backed stores also hold an advisory lock next to the database file for
// as long as they are open.
package queue
