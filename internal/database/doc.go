// Package database stores the capture history of slides in SQLite.
//
// Every capture that produced a layout report is saved as a row in the
// runs table, keyed by the absolute path of the slide. The history backs
// the history and compare commands. The database lives in a single file
// under the XDG data directory and uses the CGO-free modernc.org/sqlite
// driver.
package database
